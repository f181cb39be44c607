// Package store opens the server's PostgreSQL database, runs migrations, and
// hands out the per-collection repositories.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/daybook-app/daybook/internal/server/migrations"
	"github.com/daybook-app/daybook/internal/server/repositories/categories"
	"github.com/daybook-app/daybook/internal/server/repositories/configs"
	"github.com/daybook-app/daybook/internal/server/repositories/entries"
)

// Store owns the database handle and the repositories bound to it.
type Store struct {
	db         *sql.DB
	Categories *categories.PostgresRepository
	Entries    *entries.PostgresRepository
	Configs    *configs.PostgresRepository
}

func (s *Store) Conn() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return err
	}

	return nil
}

// Open connects over pgx, migrates the schema, and builds the repositories.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &Store{
		db:         db,
		Categories: categories.NewPostgresRepository(db),
		Entries:    entries.NewPostgresRepository(db),
		Configs:    configs.NewPostgresRepository(db),
	}

	if err := s.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return s, nil
}
