package http

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
	"voice-ai-go/internal/service"
)

// POST /chat/send
func (s *Server) sendMessage(c *gin.Context) {
	var input struct {
		Message string          `json:"message"`
		Mode    models.ChatMode `json:"mode"`
	}
	if err := s.bindJSON(c, "chat_send", &input); err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	reply, err := s.chat.Send(ctx, userID(c), input.Message, input.Mode)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// POST /chat/voice, multipart field "audio".
func (s *Server) voiceMessage(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		s.writeError(c, apperr.Detail(apperr.ErrInvalidUpload, "no audio file provided"))
		return
	}
	defer file.Close()

	ctx, cancel := s.requestContext(c)
	defer cancel()

	out, err := s.voice.Transcribe(ctx, userID(c), service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /chat/history
func (s *Server) history(c *gin.Context) {
	recs, err := s.chat.History(c.Request.Context(), userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": recs})
}

// POST /chat/speech
func (s *Server) speech(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := s.bindJSON(c, "speech", &input); err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	audio, err := s.chat.Speak(ctx, input.Text)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_data": base64.StdEncoding.EncodeToString(audio)})
}

// GET /chat/stream upgrades to the live dictation websocket.
func (s *Server) streamAudio(c *gin.Context) {
	if err := s.stream.Serve(c.Writer, c.Request, userID(c)); err != nil {
		s.log.WithError(err).WithField("user_id", userID(c)).Debug("websocket upgrade failed")
	}
}
