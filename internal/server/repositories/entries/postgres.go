// Package entries provides the PostgreSQL-backed repository for
// server-side day entry persistence and sync queries.
package entries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/dbx"
)

// PostgresRepository implements day entry storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or updates an entry for a specific user under
// last-writer-wins. Stale writes and cross-user id collisions affect zero
// rows; both are silent no-ops.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, rec api.Entry) error {
	query := `
		INSERT INTO day_entry (id, user_id, date, category_id, title, description, photo_url, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			date = EXCLUDED.date,
			category_id = EXCLUDED.category_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			photo_url = EXCLUDED.photo_url,
			is_deleted = EXCLUDED.is_deleted,
			updated_at = EXCLUDED.updated_at
		WHERE day_entry.user_id = EXCLUDED.user_id
		  AND day_entry.updated_at < EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, userID, rec.Date, rec.CategoryID, rec.Title, rec.Description, rec.PhotoURL,
		rec.IsDeleted, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// SelectUpdated returns the user's entries with updated_at strictly greater
// than since, ordered ascending by updated_at.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID, since string) ([]api.Entry, error) {
	query := `SELECT id, date, category_id, title, description, photo_url, is_deleted, created_at, updated_at
		FROM day_entry WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []api.Entry{}
	for rows.Next() {
		var e api.Entry
		var description, photoURL sql.NullString
		if err := rows.Scan(&e.ID, &e.Date, &e.CategoryID, &e.Title, &description, &photoURL,
			&e.IsDeleted, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			e.Description = &description.String
		}
		if photoURL.Valid {
			e.PhotoURL = &photoURL.String
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// PhotoKeys returns the photo_url values of every entry the user owns that
// has one. Used to purge stored media on account deletion.
func (r *PostgresRepository) PhotoKeys(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT photo_url FROM day_entry WHERE user_id = $1 AND photo_url IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select photo urls: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// DeleteAllForUser removes every entry row the user owns.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM day_entry WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}
