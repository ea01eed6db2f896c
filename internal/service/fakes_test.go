package service

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"voice-ai-go/internal/apperr"
	"voice-ai-go/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStore is an in-memory UserStore, SettingsStore and HistoryStore.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]*models.User
	settings map[uint]*models.UserSettings
	chats    []models.ChatRecord
	voice    []models.VoiceRecord
	upserts  [][]string
}

func newMemStore() *memStore {
	return &memStore{users: map[uint]*models.User{}, settings: map[uint]*models.UserSettings{}}
}

func (m *memStore) CreateUserWithSettings(ctx context.Context, u *models.User) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, apperr.ErrDuplicateUsername
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.ID] = &cp
	st := models.DefaultSettings(u.ID)
	m.settings[u.ID] = st
	out := *st
	return &out, nil
}

func (m *memStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrUserNotFound
}

func (m *memStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUsername(ctx context.Context, id uint, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	for oid, other := range m.users {
		if oid != id && other.Username == username {
			return 0, apperr.ErrDuplicateUsername
		}
	}
	u.Username = username
	return 1, nil
}

func (m *memStore) UpdateProfilePicture(ctx context.Context, id uint, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.ErrUserNotFound
	}
	u.ProfilePicture = ref
	return nil
}

func (m *memStore) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) SettingsByUserID(ctx context.Context, userID uint) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.settings[userID]
	if !ok {
		return nil, apperr.ErrSettingsNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStore) UpsertSettings(ctx context.Context, st *models.UserSettings, columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[st.UserID]; !ok {
		return apperr.ErrUserNotFound
	}
	cp := *st
	m.settings[st.UserID] = &cp
	m.upserts = append(m.upserts, columns)
	return nil
}

func (m *memStore) CreateChat(ctx context.Context, rec *models.ChatRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uint(len(m.chats) + 1)
	m.chats = append(m.chats, *rec)
	return nil
}

func (m *memStore) RecentChats(ctx context.Context, userID uint, limit int) ([]models.ChatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ChatRecord{}
	for _, c := range m.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ChatStats(ctx context.Context, userID uint) (models.ChatStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st models.ChatStats
	days := map[string]bool{}
	for _, c := range m.chats {
		if c.UserID != userID {
			continue
		}
		st.TotalChats++
		days[c.CreatedAt.Format("2006-01-02")] = true
		t := c.CreatedAt
		if st.LastChat == nil || t.After(*st.LastChat) {
			st.LastChat = &t
		}
	}
	st.ActiveDays = len(days)
	return st, nil
}

func (m *memStore) CreateVoiceRecord(ctx context.Context, rec *models.VoiceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voice = append(m.voice, *rec)
	return nil
}

func (m *memStore) VoiceStats(ctx context.Context, userID uint) (models.VoiceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st models.VoiceStats
	for _, v := range m.voice {
		if v.UserID == userID {
			st.TotalVoiceRecords++
			st.TotalDuration += v.Duration
		}
	}
	return st, nil
}

// fakeAI records the last call of each kind.
type fakeAI struct {
	mode       models.ChatMode
	text       string
	filename   string
	audio      []byte
	reply      string
	transcript string
	speech     []byte
	err        error
}

func (f *fakeAI) Complete(ctx context.Context, mode models.ChatMode, text string) (string, error) {
	f.mode, f.text = mode, text
	return f.reply, f.err
}

func (f *fakeAI) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	f.filename = filename
	f.audio, _ = io.ReadAll(audio)
	return f.transcript, f.err
}

func (f *fakeAI) Speak(ctx context.Context, text string) ([]byte, error) {
	f.text = text
	return f.speech, f.err
}

type memBlobs struct {
	saved map[string][]byte
	types map[string]string
	err   error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{saved: map[string][]byte{}, types: map[string]string{}}
}

func (b *memBlobs) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.saved[key] = data
	b.types[key] = contentType
	return "/uploads/" + key, nil
}

type recordingPublisher struct {
	userID uint
	text   string
}

func (p *recordingPublisher) Publish(userID uint, text string) bool {
	p.userID, p.text = userID, text
	return true
}
