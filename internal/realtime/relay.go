// Package realtime carries live dictation over websockets: the client streams
// audio chunks as binary frames and gets partial transcripts back as JSON
// events. Each user has at most one listener; a newer connection replaces
// the older one.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 16
)

const (
	EventTranscription = "transcription"
	EventError         = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	// Connections authenticate with a bearer token, not cookies.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Event struct {
	Event string `json:"event"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// ChunkTranscriber turns one audio chunk into text.
type ChunkTranscriber interface {
	TranscribeChunk(ctx context.Context, data []byte) (string, error)
}

type Relay struct {
	mu        sync.Mutex
	listeners map[uint]*listener

	voice    ChunkTranscriber
	maxChunk int64
	timeout  time.Duration
	log      *logrus.Logger
}

func NewRelay(voice ChunkTranscriber, maxChunk int64, timeout time.Duration, log *logrus.Logger) *Relay {
	return &Relay{
		listeners: make(map[uint]*listener),
		voice:     voice,
		maxChunk:  maxChunk,
		timeout:   timeout,
		log:       log,
	}
}

// Serve upgrades the request and makes the connection userID's listener.
// On upgrade failure the upgrader has already answered the client.
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}

	l := &listener{
		relay:  r,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	old := r.listeners[userID]
	r.listeners[userID] = l
	r.mu.Unlock()

	if old != nil {
		old.closeWith("replaced by a newer connection")
	}

	r.log.WithField("user_id", userID).Debug("dictation listener connected")

	go l.writePump()
	go l.readPump()
	return nil
}

// Publish sends a transcript to userID's listener. It reports false when the
// user has no listener or its queue is full.
func (r *Relay) Publish(userID uint, text string) bool {
	r.mu.Lock()
	l := r.listeners[userID]
	r.mu.Unlock()

	if l == nil {
		return false
	}
	return l.enqueue(Event{Event: EventTranscription, Text: text})
}

// Shutdown closes every listener.
func (r *Relay) Shutdown() {
	r.mu.Lock()
	ls := make([]*listener, 0, len(r.listeners))
	for id, l := range r.listeners {
		ls = append(ls, l)
		delete(r.listeners, id)
	}
	r.mu.Unlock()

	for _, l := range ls {
		l.closeWith("server shutting down")
	}
}

func (r *Relay) remove(l *listener) {
	r.mu.Lock()
	if r.listeners[l.userID] == l {
		delete(r.listeners, l.userID)
	}
	r.mu.Unlock()
}

type listener struct {
	relay  *Relay
	userID uint
	conn   *websocket.Conn

	// send is never closed; done signals shutdown to the write pump.
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	reason string
}

func (l *listener) closeWith(reason string) {
	l.once.Do(func() {
		l.reason = reason
		close(l.done)
	})
}

func (l *listener) enqueue(ev Event) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.send <- data:
		return true
	default:
		return false
	}
}

func (l *listener) readPump() {
	defer func() {
		l.relay.remove(l)
		l.closeWith("")
	}()

	l.conn.SetReadLimit(l.relay.maxChunk)
	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		typ, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.relay.log.WithError(err).WithField("user_id", l.userID).Debug("dictation listener dropped")
			}
			return
		}
		_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))

		if typ != websocket.BinaryMessage {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.relay.timeout)
		text, err := l.relay.voice.TranscribeChunk(ctx, data)
		cancel()

		if err != nil {
			l.relay.log.WithError(err).WithField("user_id", l.userID).Warn("chunk transcription failed")
			l.enqueue(Event{Event: EventError, Error: err.Error()})
			continue
		}
		l.enqueue(Event{Event: EventTranscription, Text: text})
	}
}

func (l *listener) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = l.conn.Close()
	}()

	for {
		select {
		case msg := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-l.done:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = l.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, l.reason))
			return
		}
	}
}
