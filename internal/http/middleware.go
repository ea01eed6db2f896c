package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/auth"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// TokenVerifier checks a session token.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid Bearer token and stores the caller's id and
// username on the context. Browsers cannot set headers on a websocket
// handshake, so upgrade requests may pass the token as ?token= instead.
func AuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return authRequired(tokens, func(c *gin.Context, err error) {
		c.AbortWithStatusJSON(401, gin.H{"error": err.Error()})
	})
}

// EnvelopeAuthMiddleware is AuthMiddleware for the /settings group, whose
// failures carry success:false like every other response there.
func EnvelopeAuthMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return authRequired(tokens, func(c *gin.Context, err error) {
		c.AbortWithStatusJSON(401, gin.H{"success": false, "error": err.Error()})
	})
}

func authRequired(tokens TokenVerifier, reject func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			reject(c, err)
			return
		}

		claims, err := tokens.VerifyToken(token)
		if err != nil {
			reject(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if isWebsocketUpgrade(c) {
			if t := c.Query("token"); t != "" {
				return t, nil
			}
		}
		return "", apperr.ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func isWebsocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
