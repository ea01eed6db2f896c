package service

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
	"voice-ai-go/internal/settings"
	"voice-ai-go/internal/storage"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type ProfileService struct {
	users         UserStore
	settings      SettingsStore
	history       HistoryStore
	blobs         storage.Blobs
	maxImageBytes int64
	log           *logrus.Logger
	cost          int
}

func NewProfileService(users UserStore, st SettingsStore, history HistoryStore, blobs storage.Blobs, maxImageBytes int64, log *logrus.Logger) *ProfileService {
	return &ProfileService{
		users:         users,
		settings:      st,
		history:       history,
		blobs:         blobs,
		maxImageBytes: maxImageBytes,
		log:           log,
		cost:          bcrypt.DefaultCost,
	}
}

func (s *ProfileService) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	chats, err := s.history.ChatStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	voice, err := s.history.VoiceStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		ChatStats:      chats,
		VoiceStats:     voice,
	}, nil
}

// Settings returns the stored settings, or the defaults when the user has no
// row yet.
func (s *ProfileService) Settings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	return settingsOrDefault(ctx, s.settings, userID)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.Validation("username cannot be empty")
	}
	if usernameTooLong(username) {
		return apperr.Validation("username must be at most 50 characters")
	}

	n, err := s.users.UpdateUsername(ctx, userID, username)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNoChange
	}
	return nil
}

// UpdateProfilePicture sniffs the image type from its content, stores it and
// returns the new reference.
func (s *ProfileService) UpdateProfilePicture(ctx context.Context, userID uint, up Upload) (string, error) {
	if up.Body == nil {
		return "", apperr.Detail(apperr.ErrInvalidUpload, "no file provided")
	}
	if up.Size > s.maxImageBytes {
		return "", apperr.Detail(apperr.ErrInvalidUpload, "file too large")
	}

	data, err := readLimited(up.Body, s.maxImageBytes)
	if err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperr.Detail(apperr.ErrInvalidUpload, "invalid file type")
	}

	key := "profiles/profile_" + uuid.NewString() + ext
	ref, err := s.blobs.Save(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("saving profile picture failed")
		return "", apperr.Blob(err)
	}

	if err := s.users.UpdateProfilePicture(ctx, userID, ref); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("current and new password are required")
	}

	u, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.PasswordHash, current) {
		return apperr.ErrWrongPassword
	}

	hash, err := hashPassword(next, s.cost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

// UpdateSettings validates a partial update and upserts it. Only the columns
// named in the payload are overwritten on an existing row.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID uint, raw map[string]any) (*models.UserSettings, error) {
	changes, err := settings.Parse(raw)
	if err != nil {
		return nil, err
	}

	st, err := settingsOrDefault(ctx, s.settings, userID)
	if err != nil {
		return nil, err
	}
	changes.ApplyTo(st)
	st.UserID = userID

	if err := s.settings.UpsertSettings(ctx, st, changes.Columns()); err != nil {
		return nil, err
	}
	return st, nil
}
