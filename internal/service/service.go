// Package service implements the application operations behind the HTTP
// handlers: authentication, chat, voice transcription and profile/settings
// management. Dependencies are declared here as small interfaces so handlers
// and tests can swap the gorm store and the OpenAI client for fakes.
package service

import (
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

// TimestampLayout is how reply and transcript timestamps are rendered.
const TimestampLayout = "2006-01-02 15:04:05"

// maxUsernameLen matches the users.username VARCHAR(50) column, in characters.
const maxUsernameLen = 50

type UserStore interface {
	CreateUserWithSettings(ctx context.Context, u *models.User) (*models.UserSettings, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUsername(ctx context.Context, id uint, username string) (int64, error)
	UpdateProfilePicture(ctx context.Context, id uint, ref string) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

type SettingsStore interface {
	SettingsByUserID(ctx context.Context, userID uint) (*models.UserSettings, error)
	UpsertSettings(ctx context.Context, st *models.UserSettings, columns []string) error
}

type HistoryStore interface {
	CreateChat(ctx context.Context, rec *models.ChatRecord) error
	RecentChats(ctx context.Context, userID uint, limit int) ([]models.ChatRecord, error)
	ChatStats(ctx context.Context, userID uint) (models.ChatStats, error)
	CreateVoiceRecord(ctx context.Context, rec *models.VoiceRecord) error
	VoiceStats(ctx context.Context, userID uint) (models.VoiceStats, error)
}

type Completer interface {
	Complete(ctx context.Context, mode models.ChatMode, text string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Publisher pushes a transcript to the user's live listener, if any.
type Publisher interface {
	Publish(userID uint, text string) bool
}

// Upload is a file received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func usernameTooLong(username string) bool {
	return utf8.RuneCountInString(username) > maxUsernameLen
}

func settingsOrDefault(ctx context.Context, store SettingsStore, userID uint) (*models.UserSettings, error) {
	st, err := store.SettingsByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrSettingsNotFound) {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// readLimited reads at most max bytes; a longer body is an invalid upload.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "failed to read file")
	}
	if int64(len(data)) > max {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "file too large")
	}
	return data, nil
}
