package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smartrecruiter/internal/repository"
)

// VisitorPostgres is a PostgreSQL implementation of repository.VisitorRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type VisitorPostgres struct {
	db *sql.DB
}

// NewVisitorPostgres creates a new VisitorPostgres repository.
func NewVisitorPostgres(db *sql.DB) *VisitorPostgres {
	return &VisitorPostgres{db: db}
}

var _ repository.VisitorRepository = (*VisitorPostgres)(nil)

// Get fetches a single value by visitor ID and key.
func (r *VisitorPostgres) Get(ctx context.Context, visitorID, key string) (string, error) {
	const q = `
		SELECT value
		FROM visitor_store
		WHERE visitor_id = $1 AND key = $2
	`
	var value string
	err := r.db.QueryRowContext(ctx, q, visitorID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts the value for (visitor_id, key).
func (r *VisitorPostgres) Set(ctx context.Context, visitorID, key, value string) error {
	const q = `
		INSERT INTO visitor_store (visitor_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (visitor_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, visitorID, key, value, time.Now().UTC())
	return err
}

// Delete removes a single key. It does not return an error if the row does not exist.
func (r *VisitorPostgres) Delete(ctx context.Context, visitorID, key string) error {
	const q = `DELETE FROM visitor_store WHERE visitor_id = $1 AND key = $2`
	res, err := r.db.ExecContext(ctx, q, visitorID, key)
	if err != nil {
		return err
	}
	// Ignore rows affected: a missing key is already the desired end state.
	_, _ = res.RowsAffected()
	return nil
}

// DeleteAll removes every key stored for the visitor.
func (r *VisitorPostgres) DeleteAll(ctx context.Context, visitorID string) error {
	const q = `DELETE FROM visitor_store WHERE visitor_id = $1`
	_, err := r.db.ExecContext(ctx, q, visitorID)
	return err
}
