// Package settings holds the closed set of user settings, their allowed
// values and the validation of partial updates coming from the client.
package settings

import (
	"fmt"
	"sort"
	"strconv"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

// Field is a settings column name.
type Field string

const (
	DefaultChatMode     Field = "default_chat_mode"
	VoiceEnabled        Field = "voice_enabled"
	NotificationEnabled Field = "notification_enabled"
	Theme               Field = "theme"
	PreferredLanguage   Field = "preferred_language"
)

type kind int

const (
	kindEnum kind = iota
	kindBool
)

type rule struct {
	kind    kind
	allowed []string
}

func chatModes() []string {
	out := make([]string, 0, len(models.ChatModes))
	for _, m := range models.ChatModes {
		out = append(out, string(m))
	}
	return out
}

var rules = map[Field]rule{
	DefaultChatMode:     {kind: kindEnum, allowed: chatModes()},
	VoiceEnabled:        {kind: kindBool},
	NotificationEnabled: {kind: kindBool},
	Theme:               {kind: kindEnum, allowed: []string{"light", "dark"}},
	PreferredLanguage:   {kind: kindEnum, allowed: []string{"en", "tr"}},
}

// aliases are the names the web client reads back from GET /settings/settings.
var aliases = map[string]Field{
	"language":              PreferredLanguage,
	"notifications_enabled": NotificationEnabled,
}

// Changes is a validated partial update. Nil fields are left untouched.
type Changes struct {
	DefaultChatMode     *models.ChatMode
	VoiceEnabled        *bool
	NotificationEnabled *bool
	Theme               *string
	PreferredLanguage   *string
}

// Parse validates a raw client payload. Unknown keys fail with
// apperr.ErrInvalidSetting, values outside a field's allowed set with
// apperr.ErrInvalidValue. Booleans accept JSON booleans, numbers and the
// strings strconv.ParseBool understands.
func Parse(raw map[string]any) (Changes, error) {
	var c Changes

	if len(raw) == 0 {
		return c, apperr.Validation("no settings provided")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := Field(key)
		if alias, ok := aliases[key]; ok {
			field = alias
		}

		r, ok := rules[field]
		if !ok {
			return Changes{}, apperr.Detail(apperr.ErrInvalidSetting, "Invalid setting: "+key)
		}

		switch r.kind {
		case kindBool:
			b, ok := toBool(raw[key])
			if !ok {
				return Changes{}, invalidValue(field)
			}
			c.setBool(field, b)
		case kindEnum:
			s, ok := raw[key].(string)
			if !ok || !contains(r.allowed, s) {
				return Changes{}, invalidValue(field)
			}
			c.setString(field, s)
		}
	}

	return c, nil
}

func invalidValue(f Field) error {
	return apperr.Detail(apperr.ErrInvalidValue, fmt.Sprintf("Invalid value for %s", f))
}

func (c *Changes) setBool(f Field, v bool) {
	switch f {
	case VoiceEnabled:
		c.VoiceEnabled = &v
	case NotificationEnabled:
		c.NotificationEnabled = &v
	}
}

func (c *Changes) setString(f Field, v string) {
	switch f {
	case DefaultChatMode:
		m := models.ChatMode(v)
		c.DefaultChatMode = &m
	case Theme:
		c.Theme = &v
	case PreferredLanguage:
		c.PreferredLanguage = &v
	}
}

// Columns lists the fields this update touches, in a stable order.
func (c Changes) Columns() []string {
	var cols []string
	if c.DefaultChatMode != nil {
		cols = append(cols, string(DefaultChatMode))
	}
	if c.VoiceEnabled != nil {
		cols = append(cols, string(VoiceEnabled))
	}
	if c.NotificationEnabled != nil {
		cols = append(cols, string(NotificationEnabled))
	}
	if c.Theme != nil {
		cols = append(cols, string(Theme))
	}
	if c.PreferredLanguage != nil {
		cols = append(cols, string(PreferredLanguage))
	}
	return cols
}

// ApplyTo copies the set fields onto st.
func (c Changes) ApplyTo(st *models.UserSettings) {
	if c.DefaultChatMode != nil {
		st.DefaultChatMode = *c.DefaultChatMode
	}
	if c.VoiceEnabled != nil {
		st.VoiceEnabled = *c.VoiceEnabled
	}
	if c.NotificationEnabled != nil {
		st.NotificationEnabled = *c.NotificationEnabled
	}
	if c.Theme != nil {
		st.Theme = *c.Theme
	}
	if c.PreferredLanguage != nil {
		st.PreferredLanguage = *c.PreferredLanguage
	}
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	default:
		return false, false
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
