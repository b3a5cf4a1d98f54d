package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lakshb/ai-chat-relay/internal/model/chat"
	"github.com/lakshb/ai-chat-relay/internal/realtime"
	"github.com/lakshb/ai-chat-relay/internal/store"
)

const (
	// historyWindow caps how many prior exchanges feed the completion
	// prompt. Fixed by design, not configurable per call.
	historyWindow = 10

	channelPrefix = "chat-"
	channelName   = "AI Chat"
	botUserID     = "ai_bot"
)

var (
	ErrMissingFields     = errors.New("user id and message are required")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNotRegistered = errors.New("user not registered")
)

// Completer is the completion capability: it turns prior exchanges plus the
// incoming message into an assistant reply.
type Completer interface {
	Complete(ctx context.Context, history []chat.Exchange, message string) (string, error)
}

// Service orchestrates one conversation turn: validate identity, window the
// history, complete, persist, then mirror the reply into the realtime
// channel. It carries no state between calls.
type Service struct {
	directory realtime.Provider
	store     store.Store
	completer Completer
}

// NewService wires the orchestrator to its capabilities.
func NewService(directory realtime.Provider, st store.Store, completer Completer) *Service {
	return &Service{directory: directory, store: st, completer: completer}
}

// Converse turns one incoming message into a persisted, delivered reply.
// The exchange is persisted before the reply is returned or delivered, so a
// returned reply is always durably recorded.
func (s *Service) Converse(ctx context.Context, userID, message string) (string, error) {
	userID = strings.TrimSpace(userID)
	message = strings.TrimSpace(message)
	if userID == "" || message == "" {
		return "", ErrMissingFields
	}

	exists, err := s.directory.UserExists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("querying chat directory: %w", err)
	}
	if !exists {
		return "", ErrUserNotFound
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotRegistered
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	history, err := s.store.RecentExchanges(ctx, userID, historyWindow)
	if err != nil {
		return "", fmt.Errorf("loading history: %w", err)
	}

	reply, err := s.completer.Complete(ctx, history, message)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	if _, err := s.store.AppendExchange(ctx, userID, message, reply); err != nil {
		return "", fmt.Errorf("saving exchange: %w", err)
	}

	s.deliver(ctx, userID, reply)
	return reply, nil
}

// deliver mirrors the reply into the user's channel. The exchange is already
// durable at this point, so a delivery failure only logs.
func (s *Service) deliver(ctx context.Context, userID, reply string) {
	channelID := channelPrefix + userID
	if err := s.directory.EnsureChannel(ctx, channelID, botUserID, channelName); err != nil {
		log.Printf("[conversation] ensure channel %s failed: %v", channelID, err)
		return
	}
	if err := s.directory.SendMessage(ctx, channelID, botUserID, reply); err != nil {
		log.Printf("[conversation] publish to %s failed: %v", channelID, err)
	}
}
