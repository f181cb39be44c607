package configs

import (
	"context"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/models"
)

// Repository describes storage operations for key-value config rows.
//
// Set produces a pending row that syncs across devices. SetLocal writes the
// row already "synced" so it is never pushed; the sync checkpoint relies on
// this to stay device-local.
type Repository interface {
	// Get returns the value for key, or common.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// GetMany returns the values for the given keys; absent keys are omitted.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// Set writes a value and flags the row for push.
	Set(ctx context.Context, key, value string) error

	// SetLocal writes a device-local value that must never be pushed.
	SetLocal(ctx context.Context, key, value string) error

	// GetUnsynced returns every row awaiting push.
	GetUnsynced(ctx context.Context) ([]*models.ConfigItem, error)

	// MarkSynced flags the given rows as confirmed on the server.
	MarkSynced(ctx context.Context, keys []string) error

	// UpsertFromServer applies a pulled row under last-writer-wins; a stale
	// incoming row is a silent no-op.
	UpsertFromServer(ctx context.Context, rec api.Config) error

	// ClearAll wipes the table on sign-out or account deletion.
	ClearAll(ctx context.Context) error
}
