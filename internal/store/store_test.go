package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return New(gdb), mock
}

func TestCreateUserWithSettings_SingleTransaction(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`INSERT INTO "user_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	u := &models.User{Username: "alice", PasswordHash: "hash"}
	st, err := s.CreateUserWithSettings(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, uint(5), u.ID)
	assert.Equal(t, uint(5), st.UserID)
	assert.Equal(t, models.ChatModeNormal, st.DefaultChatMode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithSettings_DuplicateRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	_, err := s.CreateUserWithSettings(context.Background(), &models.User{Username: "alice"})
	assert.True(t, errors.Is(err, apperr.ErrDuplicateUsername), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWithSettings_SettingsFailureRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`INSERT INTO "user_settings"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.CreateUserWithSettings(context.Background(), &models.User{Username: "alice"})
	assert.True(t, errors.Is(err, apperr.ErrStore), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserByUsername_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := s.UserByUsername(context.Background(), "ghost")
	assert.True(t, errors.Is(err, apperr.ErrUserNotFound), "got %v", err)
}

func TestUserByUsername_Found(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}).AddRow(3, "alice", "hash"))

	u, err := s.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUpdateUsername_RowsAffected(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "username"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := s.UpdateUsername(context.Background(), 3, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordHash_MissingUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "password"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.UpdatePasswordHash(context.Background(), 3, "newhash")
	assert.True(t, errors.Is(err, apperr.ErrUserNotFound), "got %v", err)
}

func TestSettingsByUserID_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "user_settings" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.SettingsByUserID(context.Background(), 3)
	assert.True(t, errors.Is(err, apperr.ErrSettingsNotFound), "got %v", err)
}

func TestUpsertSettings_UpdatesOnlyChangedColumns(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "user_settings" .*ON CONFLICT \("user_id"\) DO UPDATE SET "theme"="excluded"."theme","updated_at"="excluded"."updated_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	st := models.DefaultSettings(3)
	st.Theme = "dark"
	require.NoError(t, s.UpsertSettings(context.Background(), st, []string{"theme"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentChats_NewestFirst(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "message", "response", "chat_mode", "created_at"}).
		AddRow(2, 3, "second", "r2", "friend", now).
		AddRow(1, 3, "first", "r1", "normal", now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT \* FROM "chat_history" WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT`).
		WillReturnRows(rows)

	recs, err := s.RecentChats(context.Background(), 3, 50)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "second", recs[0].Message)
	assert.Equal(t, models.ChatModeFriend, recs[0].ChatMode)
}

func TestChatStats(t *testing.T) {
	s, mock := newMockStore(t)

	last := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_chats`).
		WillReturnRows(sqlmock.NewRows([]string{"total_chats", "active_days", "last_chat"}).AddRow(4, 2, last))

	st, err := s.ChatStats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalChats)
	assert.Equal(t, 2, st.ActiveDays)
	require.NotNil(t, st.LastChat)
	assert.True(t, last.Equal(*st.LastChat))
}

func TestVoiceStats_DBError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_voice_records`).
		WillReturnError(errors.New("connection reset"))

	_, err := s.VoiceStats(context.Background(), 3)
	assert.True(t, errors.Is(err, apperr.ErrStore), "got %v", err)
}
