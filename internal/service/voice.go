package service

import (
	"bytes"
	"context"
	"mime"
	"time"

	"github.com/sirupsen/logrus"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
	"voice-ai-go/internal/storage"
)

var allowedAudioTypes = map[string]bool{
	"audio/wav":  true,
	"audio/mp3":  true,
	"audio/mpeg": true,
}

// chunkFilename is the name live dictation chunks are sent upstream under;
// the transcription API picks the decoder from the extension.
const chunkFilename = "chunk.wav"

type Transcript struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type VoiceService struct {
	ai       Transcriber
	blobs    storage.Blobs
	history  HistoryStore
	relay    Publisher
	maxBytes int64
	log      *logrus.Logger
	now      func() time.Time
}

func NewVoiceService(ai Transcriber, blobs storage.Blobs, history HistoryStore, maxBytes int64, log *logrus.Logger) *VoiceService {
	return &VoiceService{
		ai:       ai,
		blobs:    blobs,
		history:  history,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

// SetPublisher makes Transcribe forward each transcript to the user's live
// listener.
func (s *VoiceService) SetPublisher(p Publisher) { s.relay = p }

// Transcribe stores the recording, sends it upstream and records the
// transcript. Duration is not measured and stays 0.
func (s *VoiceService) Transcribe(ctx context.Context, userID uint, up Upload) (*Transcript, error) {
	if up.Body == nil {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "no audio file provided")
	}
	if up.Size > s.maxBytes {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "file too large")
	}

	contentType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || !allowedAudioTypes[contentType] {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "invalid file type")
	}

	data, err := readLimited(up.Body, s.maxBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperr.Detail(apperr.ErrInvalidUpload, "no audio file provided")
	}

	ref, err := s.blobs.Save(ctx, storage.Key("audio", up.Filename), bytes.NewReader(data), contentType)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("saving recording failed")
		return nil, apperr.Blob(err)
	}

	text, err := s.ai.Transcribe(ctx, up.Filename, bytes.NewReader(data))
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("transcription failed")
		return nil, err
	}

	now := s.now()
	rec := &models.VoiceRecord{
		UserID:        userID,
		FilePath:      ref,
		Transcription: text,
		CreatedAt:     now,
	}
	if err := s.history.CreateVoiceRecord(ctx, rec); err != nil {
		return nil, err
	}

	if s.relay != nil {
		s.relay.Publish(userID, text)
	}

	return &Transcript{Text: text, Timestamp: now.Format(TimestampLayout)}, nil
}

// TranscribeChunk transcribes one live-dictation chunk. Nothing is stored.
func (s *VoiceService) TranscribeChunk(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.Detail(apperr.ErrInvalidUpload, "empty audio chunk")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperr.Detail(apperr.ErrInvalidUpload, "file too large")
	}
	return s.ai.Transcribe(ctx, chunkFilename, bytes.NewReader(data))
}
