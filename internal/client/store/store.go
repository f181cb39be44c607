// Package store owns the client's durable state: it opens the local SQLite
// database, applies schema migrations, and hands out the per-collection
// repositories that are the only components allowed to touch it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daybook-app/daybook/internal/client/migrations"
	"github.com/daybook-app/daybook/internal/client/repositories/categories"
	"github.com/daybook-app/daybook/internal/client/repositories/configs"
	"github.com/daybook-app/daybook/internal/client/repositories/entries"
	"github.com/daybook-app/daybook/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Categories categories.Repository
	Entries    entries.Repository
	Configs    configs.Repository
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the local database at dsn, migrates it,
// and returns the handle together with repositories bound to it.
func Open(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	repos := &Repositories{
		Categories: categories.NewSQLiteRepository(db),
		Entries:    entries.NewSQLiteRepository(db),
		Configs:    configs.NewSQLiteRepository(db),
	}
	return db, repos, nil
}

// ClearAll wipes every collection in a single transaction. Called on
// sign-out and after remote account deletion; the server never clears
// local tables for us.
func ClearAll(ctx context.Context, db *sql.DB) error {
	return dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := entries.NewSQLiteRepository(tx).ClearAll(ctx); err != nil {
			return err
		}
		if err := categories.NewSQLiteRepository(tx).ClearAll(ctx); err != nil {
			return err
		}
		return configs.NewSQLiteRepository(tx).ClearAll(ctx)
	})
}
