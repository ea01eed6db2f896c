package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

// HistoryLimit caps GET /chat/history.
const HistoryLimit = 50

type Reply struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type ChatService struct {
	ai      Completer
	speaker Speaker
	history HistoryStore
	log     *logrus.Logger
	now     func() time.Time
}

func NewChatService(ai Completer, speaker Speaker, history HistoryStore, log *logrus.Logger) *ChatService {
	return &ChatService{ai: ai, speaker: speaker, history: history, log: log, now: time.Now}
}

// Send asks the upstream model for a reply in the given mode and records the
// exchange. An empty mode means normal.
func (s *ChatService) Send(ctx context.Context, userID uint, text string, mode models.ChatMode) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("message is required")
	}
	if mode == "" {
		mode = models.ChatModeNormal
	}
	if !mode.Valid() {
		return nil, apperr.Validation("invalid chat mode")
	}

	response, err := s.ai.Complete(ctx, mode, text)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "mode": mode}).Warn("completion failed")
		return nil, err
	}

	now := s.now()
	rec := &models.ChatRecord{
		UserID:    userID,
		Message:   text,
		Response:  response,
		ChatMode:  mode,
		CreatedAt: now,
	}
	if err := s.history.CreateChat(ctx, rec); err != nil {
		return nil, err
	}

	return &Reply{Response: response, Timestamp: now.Format(TimestampLayout)}, nil
}

func (s *ChatService) History(ctx context.Context, userID uint) ([]models.ChatRecord, error) {
	return s.history.RecentChats(ctx, userID, HistoryLimit)
}

// Speak synthesises text to mp3.
func (s *ChatService) Speak(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}

	audio, err := s.speaker.Speak(ctx, text)
	if err != nil {
		s.log.WithError(err).Warn("speech synthesis failed")
		return nil, err
	}
	return audio, nil
}
