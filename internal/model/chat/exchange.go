package chat

import "time"

// Exchange pairs one user message with its assistant reply, the atomic unit
// of conversation history. Created as a whole once the reply is known; never
// updated afterwards.
type Exchange struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}
