package categories

import (
	"context"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/models"
)

// Update carries optional field changes; nil means "leave unchanged".
// ClearIcon removes the icon regardless of Icon.
type Update struct {
	Name      *string
	Color     *string
	Icon      *string
	ClearIcon bool
}

// Repository describes storage operations for categories.
//
// Create, Update, SoftDelete and Reorder stamp updated_at and flag the row
// pending; only MarkSynced and UpsertFromServer may write a synced state.
type Repository interface {
	// List returns non-deleted categories ordered by sort_order.
	List(ctx context.Context) ([]models.Category, error)

	// GetByID returns a category or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Category, error)

	// Create inserts a pending category with the next sort_order.
	Create(ctx context.Context, name, color string, icon *string) (*models.Category, error)

	// Update applies the given field changes to a category.
	Update(ctx context.Context, id string, upd Update) error

	// SoftDelete tombstones a category. Returns common.ErrReferentialConflict
	// when a non-deleted entry still references it.
	SoftDelete(ctx context.Context, id string) error

	// Reorder rewrites sort_order to match the given id order.
	Reorder(ctx context.Context, orderedIDs []string) error

	// GetUnsynced returns every row awaiting push.
	GetUnsynced(ctx context.Context) ([]*models.Category, error)

	// MarkSynced flags the given rows as confirmed on the server.
	MarkSynced(ctx context.Context, ids []string) error

	// UpsertFromServer applies a pulled row under last-writer-wins: the write
	// happens only when the incoming updated_at is strictly newer (or the row
	// is absent locally). A stale incoming row is a silent no-op.
	UpsertFromServer(ctx context.Context, rec api.Category) error

	// PruneUnsyncedOrphans removes local categories that are absent from the
	// server set, never synced, and unreferenced by any live entry. This keeps
	// divergent client-seeded defaults from accumulating across devices.
	PruneUnsyncedOrphans(ctx context.Context, serverIDs []string) (int64, error)

	// CollapseDuplicateNames keeps the newest of several same-named live
	// categories, re-points entries to the survivor (flagging them pending so
	// the reassignment syncs), and removes the losers.
	CollapseDuplicateNames(ctx context.Context) error

	// ClearAll wipes the table on sign-out or account deletion.
	ClearAll(ctx context.Context) error
}
