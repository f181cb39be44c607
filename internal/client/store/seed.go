package store

import (
	"context"
	"database/sql"
	"fmt"
)

type seedCategory struct {
	name  string
	color string
	icon  string
}

// Every fresh install starts with the same defaults. They are created
// pending, so two installs seed categories with different ids; the sync
// engine's duplicate-name collapse reconciles them after the first pull.
var defaultCategories = []seedCategory{
	{name: "Work", color: "#4A9EFF", icon: "briefcase"},
	{name: "Health", color: "#4ADE80", icon: "heart"},
	{name: "Social", color: "#F472B6", icon: "people"},
	{name: "Creative", color: "#C084FC", icon: "color-palette"},
}

// SeedCategories inserts the default categories when the table is empty.
func SeedCategories(ctx context.Context, db *sql.DB, repos *Repositories) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM category`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		icon := c.icon
		if _, err := repos.Categories.Create(ctx, c.name, c.color, &icon); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.name, err)
		}
	}
	return nil
}
