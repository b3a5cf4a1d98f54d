package local

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lakshb/ai-chat-relay/internal/realtime"
)

// Hub is an in-process stand-in for the hosted chat provider, used when no
// API credentials are configured. Users live in a map and channels fan
// messages out to connected websocket subscribers. Delivery is best-effort:
// a subscriber that is not connected when a message is published misses it.
type Hub struct {
	mu       sync.Mutex
	users    map[string]realtime.User
	channels map[string]*channel
	upgrader websocket.Upgrader
}

type channel struct {
	name      string
	createdBy string
	subs      map[*websocket.Conn]bool
}

// Frame is the JSON message delivered to websocket subscribers.
type Frame struct {
	Channel string `json:"channel"`
	UserID  string `json:"userId"`
	Text    string `json:"text"`
	SentAt  int64  `json:"sentAt"`
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		users:    make(map[string]realtime.User),
		channels: make(map[string]*channel),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// UserExists reports whether the hub directory holds this id.
func (h *Hub) UserExists(_ context.Context, userID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.users[userID]
	return ok, nil
}

// UpsertUser creates or refreshes the directory entry.
func (h *Hub) UpsertUser(_ context.Context, u realtime.User) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[u.ID] = u
	return nil
}

// EnsureChannel creates the channel if absent.
func (h *Hub) EnsureChannel(_ context.Context, channelID, createdBy, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.getOrCreateLocked(channelID, createdBy, name)
	return nil
}

// SendMessage broadcasts a frame to the channel's current subscribers.
func (h *Hub) SendMessage(_ context.Context, channelID, authorID, text string) error {
	frame := Frame{
		Channel: channelID,
		UserID:  authorID,
		Text:    text,
		SentAt:  time.Now().UnixMilli(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %s does not exist", channelID)
	}

	for conn := range ch.subs {
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("[realtime] dropping subscriber of %s: %v", channelID, err)
			conn.Close()
			delete(ch.subs, conn)
		}
	}
	return nil
}

// HandleWS upgrades the request and subscribes the client to the channel
// named in the URL. Subscribing creates the channel if needed, so clients
// can connect before the first exchange happens.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channel")
	if channelID == "" {
		http.Error(w, "channel is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[realtime] websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	ch := h.getOrCreateLocked(channelID, "", "")
	ch.subs[conn] = true
	h.mu.Unlock()

	log.Printf("[realtime] subscriber joined channel %s", channelID)

	// Read loop only detects disconnects; inbound frames are discarded.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(ch.subs, conn)
	h.mu.Unlock()
	conn.Close()
	log.Printf("[realtime] subscriber left channel %s", channelID)
}

func (h *Hub) getOrCreateLocked(channelID, createdBy, name string) *channel {
	ch, ok := h.channels[channelID]
	if !ok {
		ch = &channel{
			name:      name,
			createdBy: createdBy,
			subs:      make(map[*websocket.Conn]bool),
		}
		h.channels[channelID] = ch
	}
	return ch
}
