package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

// CreateUserWithSettings inserts the user and its default settings row in one
// transaction, so no user exists without settings.
func (s *Store) CreateUserWithSettings(ctx context.Context, u *models.User) (*models.UserSettings, error) {
	var settings *models.UserSettings

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		settings = models.DefaultSettings(u.ID)
		return tx.Create(settings).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return settings, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store(err)
	}
	return &u, nil
}

// UpdateUsername returns the number of rows the update touched.
func (s *Store) UpdateUsername(ctx context.Context, id uint, username string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("username", username)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) UpdateProfilePicture(ctx context.Context, id uint, ref string) error {
	return s.updateUserColumn(ctx, id, "profile_picture", ref)
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return s.updateUserColumn(ctx, id, "password", hash)
}

func (s *Store) updateUserColumn(ctx context.Context, id uint, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}
