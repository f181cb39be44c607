// Package sync reconciles the local store with the remote one: push pending
// rows, pull rows newer than the checkpoint, merge under last-writer-wins,
// and advance the checkpoint from the server clock.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/client/remote"
	"github.com/daybook-app/daybook/internal/client/store"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/logging"
)

// Result reports how many rows one engine run moved in each direction.
type Result struct {
	Pushed int
	Pulled int
}

// Engine performs exactly one reconciliation per Run invocation. It never
// retries on its own; retry policy belongs to the Trigger.
type Engine struct {
	repos  *store.Repositories
	remote remote.Client
	log    logging.Logger
}

func NewEngine(repos *store.Repositories, client remote.Client, log logging.Logger) *Engine {
	return &Engine{repos: repos, remote: client, log: log}
}

// Run executes the sync algorithm in strict order: collect, push, acknowledge,
// pull, merge, reconcile category identity, checkpoint. Any failure aborts the
// step it occurred in; pending rows stay pending and no partial checkpoint
// advance happens on pull failure.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	pushed, err := e.push(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: %w", err)
	}
	result.Pushed = pushed

	pulled, err := e.pull(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull: %w", err)
	}
	result.Pulled = pulled

	e.log.Info(ctx, "sync finished", "pushed", result.Pushed, "pulled", result.Pulled)
	return result, nil
}

func (e *Engine) push(ctx context.Context) (int, error) {
	cats, err := e.repos.Categories.GetUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect categories: %w", err)
	}
	ents, err := e.repos.Entries.GetUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect entries: %w", err)
	}
	confs, err := e.repos.Configs.GetUnsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect configs: %w", err)
	}

	total := len(cats) + len(ents) + len(confs)
	if total == 0 {
		return 0, nil
	}

	req := api.PushRequest{
		Categories: make([]api.Category, 0, len(cats)),
		Entries:    make([]api.Entry, 0, len(ents)),
		Configs:    make([]api.Config, 0, len(confs)),
	}
	catIDs := make([]string, 0, len(cats))
	for _, c := range cats {
		req.Categories = append(req.Categories, c.Wire())
		catIDs = append(catIDs, c.ID)
	}
	entryIDs := make([]string, 0, len(ents))
	for _, en := range ents {
		req.Entries = append(req.Entries, en.Wire())
		entryIDs = append(entryIDs, en.ID)
	}
	confKeys := make([]string, 0, len(confs))
	for _, c := range confs {
		req.Configs = append(req.Configs, c.Wire())
		confKeys = append(confKeys, c.Key)
	}

	// One batch, all or nothing. On failure every row stays pending and the
	// next run re-pushes; the server upserts by id, so re-pushing is safe.
	if _, err := e.remote.Push(ctx, req); err != nil {
		return 0, err
	}

	// Acknowledge per collection. A crash in between is safe for the same
	// idempotency reason.
	if err := e.repos.Categories.MarkSynced(ctx, catIDs); err != nil {
		return 0, fmt.Errorf("acknowledge categories: %w", err)
	}
	if err := e.repos.Entries.MarkSynced(ctx, entryIDs); err != nil {
		return 0, fmt.Errorf("acknowledge entries: %w", err)
	}
	if err := e.repos.Configs.MarkSynced(ctx, confKeys); err != nil {
		return 0, fmt.Errorf("acknowledge configs: %w", err)
	}

	return total, nil
}

func (e *Engine) pull(ctx context.Context) (int, error) {
	var lastSyncedAt *string
	checkpoint, err := e.repos.Configs.Get(ctx, common.LastSyncedAtKey)
	switch {
	case err == nil:
		lastSyncedAt = &checkpoint
	case errors.Is(err, common.ErrNotFound):
		// First pull fetches everything.
	default:
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}

	resp, err := e.remote.Pull(ctx, lastSyncedAt)
	if err != nil {
		return 0, err
	}

	pulled := 0

	if len(resp.Categories) > 0 {
		// Drop local-only seed categories the server has never heard of, so
		// the same defaults created on two devices do not pile up under
		// different ids.
		serverIDs := make([]string, 0, len(resp.Categories))
		for _, c := range resp.Categories {
			serverIDs = append(serverIDs, c.ID)
		}
		pruned, err := e.repos.Categories.PruneUnsyncedOrphans(ctx, serverIDs)
		if err != nil {
			return 0, fmt.Errorf("prune orphan categories: %w", err)
		}
		if pruned > 0 {
			e.log.Info(ctx, "pruned orphan categories", "count", pruned)
		}
	}

	for _, c := range resp.Categories {
		if err := e.repos.Categories.UpsertFromServer(ctx, c); err != nil {
			return 0, fmt.Errorf("merge category %s: %w", c.ID, err)
		}
		pulled++
	}

	if len(resp.Categories) > 0 {
		if err := e.repos.Categories.CollapseDuplicateNames(ctx); err != nil {
			return 0, fmt.Errorf("collapse duplicate categories: %w", err)
		}
	}

	for _, en := range resp.Entries {
		if err := e.repos.Entries.UpsertFromServer(ctx, en); err != nil {
			return 0, fmt.Errorf("merge entry %s: %w", en.ID, err)
		}
		pulled++
	}

	for _, c := range resp.Configs {
		if err := e.repos.Configs.UpsertFromServer(ctx, c); err != nil {
			return 0, fmt.Errorf("merge config %s: %w", c.Key, err)
		}
		pulled++
	}

	// The checkpoint is derived from the server clock and stays device-local,
	// so clock skew between devices cannot lose rows and one device's
	// checkpoint can never overwrite another's.
	if err := e.repos.Configs.SetLocal(ctx, common.LastSyncedAtKey, resp.ServerTime); err != nil {
		return 0, fmt.Errorf("store checkpoint: %w", err)
	}

	return pulled, nil
}
