// Package models defines the client-side row types stored in the local
// SQLite database, including per-row sync metadata.
package models

import (
	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"
)

// Category is a user-defined grouping for day entries. A category may not be
// deleted while any non-deleted entry still references it.
type Category struct {
	ID         string
	Name       string
	Color      string
	Icon       *string
	SortOrder  int
	IsDeleted  bool
	SyncStatus common.SyncStatus
	CreatedAt  string
	UpdatedAt  string
}

// DayEntry is a single dated journal record. LocalPhotoURI is a transient
// staging path, cleared once PhotoURL is confirmed by the upload queue.
type DayEntry struct {
	ID            string
	Date          string
	CategoryID    string
	Title         string
	Description   *string
	PhotoURL      *string
	LocalPhotoURI *string
	IsDeleted     bool
	SyncStatus    common.SyncStatus
	CreatedAt     string
	UpdatedAt     string
}

// ConfigItem is a generic key-value row used both for user preferences and
// for the sync checkpoint.
type ConfigItem struct {
	Key        string
	Value      string
	SyncStatus common.SyncStatus
	UpdatedAt  string
}

// Wire returns the row snapshot pushed to the server. The staging path stays
// on the device.
func (c *Category) Wire() api.Category {
	return api.Category{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
		IsDeleted: c.IsDeleted,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (e *DayEntry) Wire() api.Entry {
	return api.Entry{
		ID:          e.ID,
		Date:        e.Date,
		CategoryID:  e.CategoryID,
		Title:       e.Title,
		Description: e.Description,
		PhotoURL:    e.PhotoURL,
		IsDeleted:   e.IsDeleted,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (c *ConfigItem) Wire() api.Config {
	return api.Config{Key: c.Key, Value: c.Value, UpdatedAt: c.UpdatedAt}
}
