package models

import "time"

type ChatMode string

const (
	ChatModeNormal  ChatMode = "normal"
	ChatModeTherapy ChatMode = "therapy"
	ChatModeFriend  ChatMode = "friend"
)

// ChatModes lists every mode a chat message or the default-mode setting may use.
var ChatModes = []ChatMode{ChatModeNormal, ChatModeTherapy, ChatModeFriend}

func (m ChatMode) Valid() bool {
	for _, v := range ChatModes {
		if m == v {
			return true
		}
	}
	return false
}

// UserSettings is one-to-one with User. JSON names follow what the web client
// reads (notifications_enabled, language).
type UserSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	UserID              uint      `gorm:"uniqueIndex" json:"-"`
	DefaultChatMode     ChatMode  `gorm:"size:20" json:"default_chat_mode"`
	VoiceEnabled        bool      `json:"voice_enabled"`
	NotificationEnabled bool      `json:"notifications_enabled"`
	Theme               string    `gorm:"size:10" json:"theme"`
	PreferredLanguage   string    `gorm:"size:5" json:"language"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}

func (UserSettings) TableName() string { return "user_settings" }

func DefaultSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		DefaultChatMode:     ChatModeNormal,
		VoiceEnabled:        true,
		NotificationEnabled: true,
		Theme:               "light",
		PreferredLanguage:   "tr",
	}
}
