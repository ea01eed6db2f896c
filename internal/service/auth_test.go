package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/auth"
	"voice-ai-go/internal/models"
)

func newAuthService(t *testing.T) (*AuthService, *memStore) {
	t.Helper()
	st := newMemStore()
	svc := NewAuthService(st, st, auth.NewIssuer("test-secret", 24*time.Hour), quietLogger())
	svc.cost = bcrypt.MinCost
	return svc, st
}

func TestRegister_CreatesUserAndDefaultSettings(t *testing.T) {
	svc, st := newAuthService(t)

	u, err := svc.Register(context.Background(), "  alice ", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "pw123", u.PasswordHash)

	settings, err := st.SettingsByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChatModeNormal, settings.DefaultChatMode)
	assert.Equal(t, "tr", settings.PreferredLanguage)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "other")
	assert.True(t, errors.Is(err, apperr.ErrDuplicate), "got %v", err)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)

	for _, tc := range []struct{ user, pw string }{
		{"", "pw"},
		{"   ", "pw"},
		{"alice", ""},
	} {
		_, err := svc.Register(context.Background(), tc.user, tc.pw)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "%q/%q: %v", tc.user, tc.pw, err)
	}
}

func TestRegister_UsernameLengthCountsCharacters(t *testing.T) {
	svc, _ := newAuthService(t)

	u, err := svc.Register(context.Background(), strings.Repeat("ş", 30), "pw123")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ş", 30), u.Username)

	_, err = svc.Register(context.Background(), strings.Repeat("ğ", 50), "pw123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), strings.Repeat("ü", 51), "pw123")
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	svc, _ := newAuthService(t)
	u, err := svc.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	sess, err := svc.Login(context.Background(), "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.User.ID)
	require.NotNil(t, sess.Settings)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)

	claims, err := svc.VerifyToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), "bob", "pw123")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestVerify_LoadsUserAndSettings(t *testing.T) {
	svc, st := newAuthService(t)
	_, err := svc.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)
	sess, err := svc.Login(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	got, err := svc.Verify(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, "light", got.Settings.Theme)

	delete(st.users, sess.User.ID)
	_, err = svc.Verify(context.Background(), sess.Token)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestVerify_RejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Verify(context.Background(), "not.a.token")
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}
