package registration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lakshb/ai-chat-relay/internal/model/user"
	"github.com/lakshb/ai-chat-relay/internal/realtime"
	"github.com/lakshb/ai-chat-relay/internal/store"
)

// ErrMissingFields indicates a register call without a name or email.
var ErrMissingFields = errors.New("name and email are required")

// Service ensures a user identity exists in both the realtime directory and
// the store. Both side effects are individually idempotent, so a partial
// failure is safe to retry without rollback.
type Service struct {
	directory realtime.Provider
	store     store.Store
}

// NewService wires the registration handler to its capabilities.
func NewService(directory realtime.Provider, st store.Store) *Service {
	return &Service{directory: directory, store: st}
}

// Register derives the canonical user id from the email and creates the
// identity wherever it does not exist yet. It returns the same identity
// whether or not anything was created.
func (s *Service) Register(ctx context.Context, name, email string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return user.User{}, ErrMissingFields
	}

	userID := user.SanitizeID(email)

	exists, err := s.directory.UserExists(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("querying chat directory: %w", err)
	}
	if !exists {
		entry := realtime.User{ID: userID, Name: name, Email: email, Role: "user"}
		if err := s.directory.UpsertUser(ctx, entry); err != nil {
			return user.User{}, fmt.Errorf("adding user to chat directory: %w", err)
		}
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return user.User{}, fmt.Errorf("looking up user: %w", err)
		}
		log.Printf("[registration] user %s not in store yet, adding", userID)
		if err := s.store.CreateUser(ctx, user.User{UserID: userID, Name: name, Email: email}); err != nil {
			return user.User{}, fmt.Errorf("storing user: %w", err)
		}
	}

	return user.User{UserID: userID, Name: name, Email: email}, nil
}
