// Package history persists per-chat conversation history and per-user
// preferences in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/tgaibot/tgaibot/internal/provider"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// MaxMessages bounds the number of messages kept per chat.
const MaxMessages = 20

// Store is a SQLite-backed history and preferences store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and migrates the
// schema. The database uses WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes).
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds a message to the chat's history and prunes entries beyond
// MaxMessages, oldest first.
func (s *Store) Append(ctx context.Context, chatID int64, role provider.MessageRole, content string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (chat_id, seq, role, content)
		VALUES (?, COALESCE((SELECT MAX(seq) FROM messages WHERE chat_id = ?), 0) + 1, ?, ?)`,
		chatID, chatID, string(role), content,
	); err != nil {
		return fmt.Errorf("history: append message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages
		WHERE chat_id = ? AND seq <= (SELECT MAX(seq) FROM messages WHERE chat_id = ?) - ?`,
		chatID, chatID, MaxMessages,
	); err != nil {
		return fmt.Errorf("history: prune messages: %w", err)
	}

	return tx.Commit()
}

// Recent returns up to n most recent messages for a chat in chronological
// order.
func (s *Store) Recent(ctx context.Context, chatID int64, n int) ([]provider.LLMMessage, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content
		FROM messages
		WHERE chat_id = ?
		ORDER BY seq DESC
		LIMIT ?`,
		chatID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("history: get recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []provider.LLMMessage
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("history: scan message: %w", err)
		}
		msgs = append(msgs, provider.LLMMessage{
			Role:    provider.MessageRole(role),
			Content: content,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: get recent rows: %w", err)
	}

	// Reverse to chronological order.
	slices.Reverse(msgs)
	return msgs, nil
}

// Purge removes all history for a chat.
func (s *Store) Purge(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		return fmt.Errorf("history: purge messages: %w", err)
	}
	return nil
}

// Len returns the number of messages stored for a chat.
func (s *Store) Len(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE chat_id = ?", chatID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("history: count messages: %w", err)
	}
	return count, nil
}
