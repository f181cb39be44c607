package configs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/models"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/daybook-app/daybook/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() string
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: timex.NowISO}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to select config %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	query := `SELECT key, value FROM config WHERE key IN (` + placeholders(len(keys)) + `)`
	rows, err := r.db.QueryContext(ctx, query, toAnySlice(keys)...)
	if err != nil {
		return nil, fmt.Errorf("failed to select configs: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value, common.SyncStatusPending)
}

func (r *SQLiteRepository) SetLocal(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value, common.SyncStatusSynced)
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string, status common.SyncStatus) error {
	query := `INSERT INTO config (key, value, sync_status, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			sync_status = excluded.sync_status,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, value, status, r.now()); err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]*models.ConfigItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, sync_status, updated_at FROM config WHERE sync_status = 'pending'`)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced configs: %w", err)
	}
	defer rows.Close()

	var pending []*models.ConfigItem
	for rows.Next() {
		var c models.ConfigItem
		if err := rows.Scan(&c.Key, &c.Value, &c.SyncStatus, &c.UpdatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, &c)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `UPDATE config SET sync_status = 'synced' WHERE key IN (` + placeholders(len(keys)) + `)`
	if _, err := r.db.ExecContext(ctx, query, toAnySlice(keys)...); err != nil {
		return fmt.Errorf("failed to mark configs synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertFromServer(ctx context.Context, rec api.Config) error {
	query := `INSERT INTO config (key, value, sync_status, updated_at)
		VALUES (?, ?, 'synced', ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			sync_status = 'synced',
			updated_at = excluded.updated_at
		WHERE config.updated_at < excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, rec.Key, rec.Value, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM config`); err != nil {
		return fmt.Errorf("failed to clear configs: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
