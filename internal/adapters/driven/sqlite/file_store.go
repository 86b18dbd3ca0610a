package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*FileStore)(nil)

// FileStore implements driven.FileStore using SQLite
type FileStore struct {
	db *DB
}

// NewFileStore creates a new FileStore
func NewFileStore(db *DB) *FileStore {
	return &FileStore{db: db}
}

// Create persists a new file record
func (s *FileStore) Create(ctx context.Context, file *domain.File) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (id, session_id, name, size_bytes, soft_deleted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		file.ID, file.SessionID, file.Name, file.SizeBytes, file.SoftDeleted, file.CreatedAt,
	)
	return err
}

// Get retrieves a file by ID
func (s *FileStore) Get(ctx context.Context, id string) (*domain.File, error) {
	var f domain.File
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, name, size_bytes, soft_deleted, created_at
		 FROM files WHERE id = ?`, id,
	).Scan(&f.ID, &f.SessionID, &f.Name, &f.SizeBytes, &f.SoftDeleted, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns files visible to a session: its own plus global ones.
// An empty sessionID lists everything.
func (s *FileStore) List(ctx context.Context, sessionID string) ([]*domain.File, error) {
	query := `
		SELECT id, session_id, name, size_bytes, soft_deleted, created_at
		FROM files
		WHERE ? = '' OR session_id = '' OR session_id = ?
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.File
	for rows.Next() {
		var f domain.File
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Name, &f.SizeBytes, &f.SoftDeleted, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// SoftDelete marks a file deleted without removing its rows or chunks
func (s *FileStore) SoftDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE files SET soft_deleted = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	return nil
}

// SoftDeletedIDs returns the set of soft-deleted file IDs
func (s *FileStore) SoftDeletedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM files WHERE soft_deleted = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// DisplayNames resolves file IDs to display names. Unknown IDs are absent
// from the result.
func (s *FileStore) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM files WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
