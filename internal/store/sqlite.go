package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lakshb/ai-chat-relay/internal/model/chat"
	"github.com/lakshb/ai-chat-relay/internal/model/user"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists. Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps concurrent request handlers from blocking each other.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Printf("[store] sqlite store initialized at %s", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chats (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			message    TEXT NOT NULL,
			reply      TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chats_user_created
			ON chats(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a new user row. Registration checks existence first, so
// a duplicate insert surfaces as an error rather than being swallowed.
func (s *SQLiteStore) CreateUser(ctx context.Context, u user.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (user_id, name, email, created_at) VALUES (?, ?, ?, ?)",
		u.UserID, u.Name, u.Email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.UserID, err)
	}
	return nil
}

// GetUser looks up a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, name, email FROM users WHERE user_id = ?", userID).
		Scan(&u.UserID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("querying user %s: %w", userID, err)
	}
	return u, nil
}

// AppendExchange stores one message/reply pair and assigns id and timestamp.
func (s *SQLiteStore) AppendExchange(ctx context.Context, userID, message, reply string) (chat.Exchange, error) {
	exchange := chat.Exchange{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chats (id, user_id, message, reply, created_at) VALUES (?, ?, ?, ?, ?)",
		exchange.ID, exchange.UserID, exchange.Message, exchange.Reply, exchange.CreatedAt)
	if err != nil {
		return chat.Exchange{}, fmt.Errorf("inserting exchange for %s: %w", userID, err)
	}
	return exchange, nil
}

// RecentExchanges returns the latest limit exchanges ordered oldest first.
// rowid breaks ties between rows inserted within the same timestamp tick.
func (s *SQLiteStore) RecentExchanges(ctx context.Context, userID string, limit int) ([]chat.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, reply, created_at FROM chats
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent exchanges for %s: %w", userID, err)
	}
	defer rows.Close()

	newestFirst, err := scanExchanges(rows)
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(newestFirst)-1; i < j; i, j = i+1, j-1 {
		newestFirst[i], newestFirst[j] = newestFirst[j], newestFirst[i]
	}
	return newestFirst, nil
}

// ListExchanges returns the user's full history, oldest first.
func (s *SQLiteStore) ListExchanges(ctx context.Context, userID string) ([]chat.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, reply, created_at FROM chats
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges for %s: %w", userID, err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

func scanExchanges(rows *sql.Rows) ([]chat.Exchange, error) {
	exchanges := make([]chat.Exchange, 0, 16)
	for rows.Next() {
		var ex chat.Exchange
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Message, &ex.Reply, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchanges: %w", err)
	}
	return exchanges, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
