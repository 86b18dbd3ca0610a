package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore implements driven.MessageStore using SQLite
type MessageStore struct {
	db *DB
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append stores messages in order, atomically
func (s *MessageStore) Append(ctx context.Context, messages []*domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO messages (id, session_id, role, content, created_at, is_trimmed)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for _, m := range messages {
			if _, err := tx.ExecContext(ctx, query,
				m.ID, m.SessionID, string(m.Role), m.Content, m.CreatedAt, m.IsTrimmed,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListBySession returns all messages for a session, oldest first
func (s *MessageStore) ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at, is_trimmed
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CountBySession returns the number of stored messages for a session
func (s *MessageStore) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID,
	).Scan(&count)
	return count, err
}

// MarkTrimmed sets is_trimmed on the given messages
func (s *MessageStore) MarkTrimmed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_trimmed = 1 WHERE id IN (`+placeholders+`)`, args...,
	)
	return err
}

// ListTrimmed returns up to limit trimmed messages, most recent first
func (s *MessageStore) ListTrimmed(ctx context.Context, sessionID string, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at, is_trimmed
		FROM messages
		WHERE session_id = ? AND is_trimmed = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// SetTrimmed updates the trimmed flag of a single message
func (s *MessageStore) SetTrimmed(ctx context.Context, id string, trimmed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_trimmed = ? WHERE id = ?`, trimmed, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteBySession removes all messages for a session
func (s *MessageStore) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE session_id = ?`, sessionID,
	)
	return err
}

func scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		var role string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt, &m.IsTrimmed); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		out = append(out, &m)
	}
	return out, rows.Err()
}
