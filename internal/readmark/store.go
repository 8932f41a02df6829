package readmark

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records, per conversation id, the id of the last message read. It
// exists only to suppress unread badges; it is not a message cache.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS read_marks (
		conversation_id TEXT PRIMARY KEY,
		message_id TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// MarkRead upserts the last read message id for a conversation.
func (s *Store) MarkRead(conversationID, messageID string) error {
	query := `INSERT INTO read_marks (conversation_id, message_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			message_id = excluded.message_id,
			updated_at = excluded.updated_at`
	if _, err := s.db.Exec(query, conversationID, messageID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// LastRead returns the last read message id for a conversation, empty when
// the conversation was never marked.
func (s *Store) LastRead(conversationID string) (string, error) {
	var messageID string
	err := s.db.QueryRow(
		`SELECT message_id FROM read_marks WHERE conversation_id = ?`,
		conversationID,
	).Scan(&messageID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read mark: %w", err)
	}
	return messageID, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
