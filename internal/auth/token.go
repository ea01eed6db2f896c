// Package auth issues and verifies session tokens: HS256-signed
// header.payload.signature tokens carrying the user id, username and expiry.
// Nothing is stored server side; a token is valid when its signature
// recomputes under the server secret and its expiry has not passed.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voice-ai-go/internal/apperr"
)

// Claims is the payload segment of a session token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user that expires after the issuer's TTL.
func (i *Issuer) Issue(userID uint, username string) (string, time.Time, error) {
	expires := i.now().Add(i.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(i.now()),
		},
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expires, nil
}

// Verify checks structure, signature (hmac.Equal, constant time) and expiry.
// It returns apperr.ErrExpiredToken for a correctly signed but expired token
// and apperr.ErrInvalidToken for everything else.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrExpiredToken
		}
		return nil, apperr.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}
