package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/auth"
	"voice-ai-go/internal/models"
)

// Session is what a successful login or token verification hands back.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
	Settings  *models.UserSettings
}

type AuthService struct {
	users    UserStore
	settings SettingsStore
	tokens   *auth.Issuer
	log      *logrus.Logger
	cost     int
}

func NewAuthService(users UserStore, settings SettingsStore, tokens *auth.Issuer, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:    users,
		settings: settings,
		tokens:   tokens,
		log:      log,
		cost:     bcrypt.DefaultCost,
	}
}

// Register creates the user together with its default settings.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	if usernameTooLong(username) {
		return nil, apperr.Validation("username must be at most 50 characters")
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	u := &models.User{Username: username, PasswordHash: hash}
	if _, err := s.users.CreateUserWithSettings(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}

	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !checkPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	st, err := settingsOrDefault(ctx, s.settings, u.ID)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: exp, User: u, Settings: st}, nil
}

func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

// Verify checks the token and loads the user it names. A token for a user
// that no longer exists is invalid.
func (s *AuthService) Verify(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.UserByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return nil, apperr.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	st, err := settingsOrDefault(ctx, s.settings, u.ID)
	if err != nil {
		return nil, err
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return &Session{Token: token, ExpiresAt: exp, User: u, Settings: st}, nil
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("password is too long")
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
