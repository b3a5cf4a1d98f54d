package realtime

import "context"

// User mirrors an identity record in the chat provider's directory.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// Provider is the realtime chat capability: a user directory plus named
// channels that deliver messages to connected subscribers. Implementations
// are long-lived handles constructed once at startup.
type Provider interface {
	// UserExists reports whether the directory already holds this id.
	UserExists(ctx context.Context, userID string) (bool, error)

	// UpsertUser creates or refreshes a directory entry.
	UpsertUser(ctx context.Context, u User) error

	// EnsureChannel creates the channel if it does not exist yet.
	// Calling it for an existing channel is a no-op.
	EnsureChannel(ctx context.Context, channelID, createdBy, name string) error

	// SendMessage publishes text to the channel, authored by authorID.
	SendMessage(ctx context.Context, channelID, authorID, text string) error
}
