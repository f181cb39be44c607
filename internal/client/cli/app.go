// Package cli implements the Daybook command-line client: local journaling
// commands plus the sync, upload and account operations built on top of the
// shared core.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/daybook-app/daybook/internal/client/config"
	"github.com/daybook-app/daybook/internal/client/invalidation"
	"github.com/daybook-app/daybook/internal/client/media"
	"github.com/daybook-app/daybook/internal/client/remote"
	"github.com/daybook-app/daybook/internal/client/session"
	"github.com/daybook-app/daybook/internal/client/store"
	daysync "github.com/daybook-app/daybook/internal/client/sync"
	"github.com/daybook-app/daybook/internal/client/uploads"
	"github.com/daybook-app/daybook/internal/logging"
)

// App wires the client components together. Dependencies are passed
// explicitly so every piece stays testable with fakes.
type App struct {
	cfg     *config.Config
	db      *sql.DB
	repos   *store.Repositories
	media   *media.Store
	session *session.FileStore
	remote  remote.Client
	queue   *uploads.Queue
	trigger *daysync.Trigger
	bus     *invalidation.Bus
	log     logging.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := os.MkdirAll(cfg.DataDir, 0o770); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, repos, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := store.SeedCategories(ctx, db, repos); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed error: %w", err)
	}

	mediaStore, err := media.NewStore(cfg.MediaDir(), nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media store error: %w", err)
	}

	sess := session.NewFileStore(cfg.TokenPath())
	client := remote.NewHTTPClient(cfg.ServerURL, sess, nil)
	queue := uploads.NewQueue(repos.Entries, mediaStore, client, sess, logger)
	engine := daysync.NewEngine(repos, client, logger)
	bus := invalidation.NewBus()
	trigger := daysync.NewTrigger(engine, queue, sess, bus, logger)

	return &App{
		cfg:     cfg,
		db:      db,
		repos:   repos,
		media:   mediaStore,
		session: sess,
		remote:  client,
		queue:   queue,
		trigger: trigger,
		bus:     bus,
		log:     logger,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}
