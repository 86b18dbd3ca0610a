package postgres

import (
	"context"
	"database/sql"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore implements driven.KnowledgeStore using PostgreSQL.
// Entries are append-only.
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new KnowledgeStore
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Append stores knowledge entries atomically
func (s *KnowledgeStore) Append(ctx context.Context, entries []*domain.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO knowledge_entries (id, session_id, key, value, source_message_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, query,
				e.ID, e.SessionID, e.Key, e.Value, e.SourceMessageID, e.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListBySession returns up to limit entries, most recent first
func (s *KnowledgeStore) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.KnowledgeEntry, error) {
	query := `
		SELECT id, session_id, key, value, source_message_id, created_at
		FROM knowledge_entries
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.KnowledgeEntry
	for rows.Next() {
		var e domain.KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Key, &e.Value, &e.SourceMessageID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
