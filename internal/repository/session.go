// Package repository provides the SQL-backed session store used when the
// client shares a database instead of a local session file.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krishichetan/kchetan/internal/client/storage"
	"github.com/krishichetan/kchetan/internal/models"
)

// DefaultSlot is the row id used for the current session.
const DefaultSlot = "current"

// SQLSessionRepository stores one session per slot in the sessions table.
type SQLSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Slot identifies the row this client reads and writes.
	Slot string
}

// NewSQLSessionRepository creates a repository for the default slot.
// db must already carry the sessions schema (see db.Migrate).
func NewSQLSessionRepository(db *sql.DB) *SQLSessionRepository {
	return &SQLSessionRepository{DB: db, Slot: DefaultSlot}
}

// Load returns the stored session or storage.ErrNoSession.
func (r *SQLSessionRepository) Load(ctx context.Context) (*models.Session, error) {
	var (
		s       models.Session
		role    string
		created int64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, role, name, phone, created_at FROM sessions WHERE id = $1
	`, r.Slot).Scan(&s.Token, &role, &s.Name, &s.Phone, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Token == "" {
		return nil, storage.ErrNoSession
	}
	s.Role = models.Role(role)
	s.CreatedAt = time.Unix(created, 0)
	s.Normalize()
	return &s, nil
}

// Save inserts or replaces the session in the slot.
func (r *SQLSessionRepository) Save(ctx context.Context, s models.Session) error {
	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, token, role, name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			role = EXCLUDED.role,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			created_at = EXCLUDED.created_at
	`, r.Slot, s.Token, string(s.Role), s.Name, s.Phone, created.Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear deletes the slot's session.
func (r *SQLSessionRepository) Clear(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, r.Slot); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
