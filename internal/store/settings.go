package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

func (s *Store) SettingsByUserID(ctx context.Context, userID uint) (*models.UserSettings, error) {
	var st models.UserSettings
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrSettingsNotFound
		}
		return nil, apperr.Store(err)
	}
	return &st, nil
}

// UpsertSettings inserts st, or, when the user already has a settings row,
// overwrites only the listed columns with the values carried by st.
func (s *Store) UpsertSettings(ctx context.Context, st *models.UserSettings, columns []string) error {
	update := append(append([]string{}, columns...), "updated_at")

	// The conflict target is user_id; a carried-over primary key would
	// collide on id instead.
	row := *st
	row.ID = 0

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(update),
	}).Create(&row).Error

	return translate(err)
}
