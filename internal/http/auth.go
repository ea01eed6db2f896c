package http

import (
	"github.com/gin-gonic/gin"

	"voice-ai-go/internal/models"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sessionUser is the user block of the login and verify responses.
type sessionUser struct {
	ID       uint                 `json:"id"`
	Username string               `json:"username"`
	Settings *models.UserSettings `json:"settings"`
}

// POST /register
func (s *Server) register(c *gin.Context) {
	var input credentials
	if err := s.bindJSON(c, "register", &input); err != nil {
		s.writeError(c, err)
		return
	}

	u, err := s.auth.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Registration successful", "user_id": u.ID})
}

// POST /login
func (s *Server) login(c *gin.Context) {
	var input credentials
	if err := s.bindJSON(c, "login", &input); err != nil {
		s.writeError(c, err)
		return
	}

	sess, err := s.auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"token": sess.Token,
		"user":  sessionUser{ID: sess.User.ID, Username: sess.User.Username, Settings: sess.Settings},
	})
}

// GET /verify
func (s *Server) verify(c *gin.Context) {
	token, err := bearerToken(c)
	if err != nil {
		c.JSON(401, gin.H{"valid": false, "error": err.Error()})
		return
	}

	sess, err := s.auth.Verify(c.Request.Context(), token)
	if err != nil {
		status := statusFor(err)
		c.JSON(status, gin.H{"valid": false, "error": s.errorMessage(c, err, status)})
		return
	}

	c.JSON(200, gin.H{
		"valid": true,
		"token": sess.Token,
		"user":  sessionUser{ID: sess.User.ID, Username: sess.User.Username, Settings: sess.Settings},
	})
}
