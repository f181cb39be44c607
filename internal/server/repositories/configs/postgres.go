// Package configs provides the PostgreSQL-backed repository for
// server-side key-value config persistence and sync queries.
package configs

import (
	"context"
	"fmt"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/dbx"
)

// PostgresRepository implements config storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a config value keyed by (user_id, key) under
// last-writer-wins. A stale write affects zero rows and is a silent no-op.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rec api.Config) error {
	query := `
		INSERT INTO config (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		WHERE config.updated_at < EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, userID, rec.Key, rec.Value, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}

// SelectUpdated returns the user's config rows with updated_at strictly
// greater than since, ordered ascending by updated_at.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID, since string) ([]api.Config, error) {
	query := `SELECT key, value, updated_at FROM config
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select configs: %w", err)
	}
	defer rows.Close()

	result := []api.Config{}
	for rows.Next() {
		var c api.Config
		if err := rows.Scan(&c.Key, &c.Value, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteAllForUser removes every config row the user owns.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM config WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete configs: %w", err)
	}
	return nil
}
