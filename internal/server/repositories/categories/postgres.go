// Package categories provides the PostgreSQL-backed repository for
// server-side category persistence and sync queries.
package categories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/dbx"
)

// PostgresRepository implements category storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates a category for a specific user under
// last-writer-wins: an existing row with an equal-or-newer updated_at (or a
// row owned by another user) is left untouched. Zero rows affected is the
// expected stale-write outcome, not an error.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rec api.Category) error {
	query := `
		INSERT INTO category (id, user_id, name, color, icon, sort_order, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			icon = EXCLUDED.icon,
			sort_order = EXCLUDED.sort_order,
			is_deleted = EXCLUDED.is_deleted,
			updated_at = EXCLUDED.updated_at
		WHERE category.user_id = EXCLUDED.user_id
		  AND category.updated_at < EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, userID, rec.Name, rec.Color, rec.Icon, rec.SortOrder, rec.IsDeleted, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

// SelectUpdated returns the user's categories with updated_at strictly
// greater than since, ordered ascending by updated_at.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID, since string) ([]api.Category, error) {
	query := `SELECT id, name, color, icon, sort_order, is_deleted, created_at, updated_at
		FROM category WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	result := []api.Category{}
	for rows.Next() {
		var c api.Category
		var icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &icon, &c.SortOrder, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if icon.Valid {
			c.Icon = &icon.String
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// DeleteAllForUser removes every category row the user owns.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM category WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}
	return nil
}
