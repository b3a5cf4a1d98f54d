package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lakshb/ai-chat-relay/internal/model/chat"
	"github.com/lakshb/ai-chat-relay/internal/model/user"
)

// MemoryStore implements Store with in-memory maps. It backs service-level
// tests and behaves identically to the SQLite store for every operation.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]user.User
	exchanges map[string][]chat.Exchange
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]user.User),
		exchanges: make(map[string][]chat.Exchange),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return user.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) AppendExchange(_ context.Context, userID, message, reply string) (chat.Exchange, error) {
	exchange := chat.Exchange{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges[userID] = append(s.exchanges[userID], exchange)
	return exchange, nil
}

func (s *MemoryStore) RecentExchanges(_ context.Context, userID string, limit int) ([]chat.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.exchanges[userID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}

	out := make([]chat.Exchange, len(all)-start)
	copy(out, all[start:])
	return out, nil
}

func (s *MemoryStore) ListExchanges(_ context.Context, userID string) ([]chat.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Exchange, len(s.exchanges[userID]))
	copy(out, s.exchanges[userID])
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
