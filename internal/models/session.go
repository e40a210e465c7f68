package models

// Session stores the durable access token for a Telegram user.
// One row per user: a fresh login replaces the previous token.
type Session struct {
	TelegramID  int64  `json:"telegram_id" gorm:"primaryKey"`
	AccessToken string `json:"-" gorm:"not null"`
}
