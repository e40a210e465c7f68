package storage

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyzo-ops/orderbot-backend/internal/models"
)

// DatabaseStore persists sessions in PostgreSQL via GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) SaveToken(telegramID int64, accessToken string) error {
	session := models.Session{
		TelegramID:  telegramID,
		AccessToken: accessToken,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token"}),
	}).Create(&session).Error
}

func (s *DatabaseStore) GetToken(telegramID int64) (string, error) {
	var session models.Session
	err := s.db.First(&session, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return session.AccessToken, nil
}

func (s *DatabaseStore) DeleteToken(telegramID int64) error {
	return s.db.Delete(&models.Session{}, "telegram_id = ?", telegramID).Error
}
