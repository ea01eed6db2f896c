package store

import (
	"context"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

func (s *Store) CreateChat(ctx context.Context, rec *models.ChatRecord) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error)
}

// RecentChats returns at most limit records, newest first.
func (s *Store) RecentChats(ctx context.Context, userID uint, limit int) ([]models.ChatRecord, error) {
	recs := []models.ChatRecord{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, apperr.Store(err)
	}
	return recs, nil
}

func (s *Store) ChatStats(ctx context.Context, userID uint) (models.ChatStats, error) {
	var st models.ChatStats
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_chats,
		        COUNT(DISTINCT DATE(created_at)) AS active_days,
		        MAX(created_at) AS last_chat
		   FROM chat_history
		  WHERE user_id = ?`, userID).Scan(&st).Error
	if err != nil {
		return models.ChatStats{}, apperr.Store(err)
	}
	return st, nil
}

func (s *Store) CreateVoiceRecord(ctx context.Context, rec *models.VoiceRecord) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error)
}

func (s *Store) VoiceStats(ctx context.Context, userID uint) (models.VoiceStats, error) {
	var st models.VoiceStats
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_voice_records,
		        COALESCE(SUM(duration), 0) AS total_duration
		   FROM voice_records
		  WHERE user_id = ?`, userID).Scan(&st).Error
	if err != nil {
		return models.VoiceStats{}, apperr.Store(err)
	}
	return st, nil
}
