package models

import "time"

type ChatRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"index" json:"-"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	ChatMode  ChatMode  `gorm:"size:20" json:"chat_mode"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatRecord) TableName() string { return "chat_history" }

type VoiceRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index" json:"user_id"`
	FilePath      string    `json:"file_path"`
	Transcription string    `json:"transcription"`
	Duration      int       `json:"duration"` // seconds; not computed yet, always 0
	CreatedAt     time.Time `json:"created_at"`
}

func (VoiceRecord) TableName() string { return "voice_records" }

// ChatStats and VoiceStats are per-user aggregates shown on the profile page.
type ChatStats struct {
	TotalChats int        `json:"total_chats"`
	ActiveDays int        `json:"active_days"`
	LastChat   *time.Time `json:"last_chat"`
}

type VoiceStats struct {
	TotalVoiceRecords int `json:"total_voice_records"`
	TotalDuration     int `json:"total_duration"`
}

// Profile is the GET /settings/profile payload.
type Profile struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
	ChatStats
	VoiceStats
}
