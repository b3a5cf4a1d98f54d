package store

import (
	"context"
	"errors"

	"github.com/lakshb/ai-chat-relay/internal/model/chat"
	"github.com/lakshb/ai-chat-relay/internal/model/user"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store persists user identities and conversation exchanges. It is the sole
// authority for exchange records; callers hold no state between requests.
type Store interface {
	// CreateUser inserts a new user identity.
	CreateUser(ctx context.Context, u user.User) error

	// GetUser returns the user with the given id, or ErrNotFound.
	GetUser(ctx context.Context, userID string) (user.User, error)

	// AppendExchange records a message/reply pair for the user, assigning
	// its id and creation time.
	AppendExchange(ctx context.Context, userID, message, reply string) (chat.Exchange, error)

	// RecentExchanges returns the most recent exchanges for the user,
	// at most limit of them, ordered oldest first. A user with no history
	// yields an empty slice, not an error.
	RecentExchanges(ctx context.Context, userID string, limit int) ([]chat.Exchange, error)

	// ListExchanges returns the full history for the user, oldest first.
	ListExchanges(ctx context.Context, userID string) ([]chat.Exchange, error)

	Close() error
}
