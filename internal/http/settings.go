package http

import (
	"github.com/gin-gonic/gin"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/service"
)

// Everything under /settings answers with {success, data} or {success, error}.

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.profile.Profile(c.Request.Context(), userID(c))
	if err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, p)
}

func (s *Server) getSettings(c *gin.Context) {
	st, err := s.profile.Settings(c.Request.Context(), userID(c))
	if err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, st)
}

func (s *Server) updateProfile(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
	}
	if err := s.bindJSON(c, "update_profile", &input); err != nil {
		s.writeEnvelopeError(c, err)
		return
	}

	if err := s.profile.UpdateProfile(c.Request.Context(), userID(c), input.Username); err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, true)
}

// multipart field "profile_picture"
func (s *Server) updateProfilePicture(c *gin.Context) {
	file, header, err := c.Request.FormFile("profile_picture")
	if err != nil {
		s.writeEnvelopeError(c, apperr.Detail(apperr.ErrInvalidUpload, "no file uploaded"))
		return
	}
	defer file.Close()

	ref, err := s.profile.UpdateProfilePicture(c.Request.Context(), userID(c), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, gin.H{"profile_picture": ref})
}

func (s *Server) changePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := s.bindJSON(c, "change_password", &input); err != nil {
		s.writeEnvelopeError(c, err)
		return
	}

	if err := s.profile.ChangePassword(c.Request.Context(), userID(c), input.CurrentPassword, input.NewPassword); err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, true)
}

func (s *Server) updateSettings(c *gin.Context) {
	var raw map[string]any
	if err := s.bindJSON(c, "update_settings", &raw); err != nil {
		s.writeEnvelopeError(c, err)
		return
	}

	st, err := s.profile.UpdateSettings(c.Request.Context(), userID(c), raw)
	if err != nil {
		s.writeEnvelopeError(c, err)
		return
	}
	writeEnvelope(c, st)
}
