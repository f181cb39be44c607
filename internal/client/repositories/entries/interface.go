package entries

import (
	"context"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/models"
)

// NewEntry carries the fields required to create a day entry.
type NewEntry struct {
	Date          string
	CategoryID    string
	Title         string
	Description   *string
	LocalPhotoURI *string
}

// Update carries optional field changes; nil means "leave unchanged".
type Update struct {
	CategoryID       *string
	Title            *string
	Description      *string
	ClearDescription bool
}

// ListOptions narrows List results. Zero values mean "no constraint".
type ListOptions struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

// Repository describes storage operations for day entries.
//
// Every local mutation stamps updated_at and flags the row pending; only
// MarkSynced and UpsertFromServer may write a synced state.
type Repository interface {
	// List returns non-deleted entries, newest date first.
	List(ctx context.Context, opts ListOptions) ([]models.DayEntry, error)

	// ListByDate returns non-deleted entries for one calendar day.
	ListByDate(ctx context.Context, date string) ([]models.DayEntry, error)

	// ListByYear returns non-deleted entries within a calendar year,
	// ordered by date then creation time.
	ListByYear(ctx context.Context, year int) ([]models.DayEntry, error)

	// CountByDate counts non-deleted entries on one day.
	CountByDate(ctx context.Context, date string) (int, error)

	// GetByID returns an entry or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.DayEntry, error)

	// Create inserts a pending entry.
	Create(ctx context.Context, e NewEntry) (*models.DayEntry, error)

	// Update applies the given field changes.
	Update(ctx context.Context, id string, upd Update) error

	// SoftDelete tombstones an entry.
	SoftDelete(ctx context.Context, id string) error

	// SetLocalPhoto stages a device-local photo path for later upload.
	SetLocalPhoto(ctx context.Context, id, localURI string) error

	// SetPhotoURL records the confirmed remote URL and clears the staging path.
	SetPhotoURL(ctx context.Context, id, publicURL string) error

	// PendingUploads returns live entries with a staged photo and no remote URL.
	PendingUploads(ctx context.Context) ([]*models.DayEntry, error)

	// GetUnsynced returns every row awaiting push.
	GetUnsynced(ctx context.Context) ([]*models.DayEntry, error)

	// MarkSynced flags the given rows as confirmed on the server.
	MarkSynced(ctx context.Context, ids []string) error

	// UpsertFromServer applies a pulled row under last-writer-wins; a stale
	// incoming row is a silent no-op.
	UpsertFromServer(ctx context.Context, rec api.Entry) error

	// ClearAll wipes the table on sign-out or account deletion.
	ClearAll(ctx context.Context) error
}
