package storage

import "errors"

// ErrTokenNotFound is returned when no session row exists for a user.
var ErrTokenNotFound = errors.New("token not found")

// Store defines the interface for session persistence.
// Every call is its own transaction; nothing spans calls.
type Store interface {
	// SaveToken upserts the access token for a Telegram user.
	SaveToken(telegramID int64, accessToken string) error
	// GetToken returns the stored token, or ErrTokenNotFound.
	GetToken(telegramID int64) (string, error)
	// DeleteToken removes the session row. Deleting an absent row is a no-op.
	DeleteToken(telegramID int64) error
}
