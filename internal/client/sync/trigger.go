package sync

import (
	"context"
	"sync/atomic"

	"github.com/daybook-app/daybook/internal/client/invalidation"
	"github.com/daybook-app/daybook/internal/client/remote"
	"github.com/daybook-app/daybook/internal/logging"
)

// Runner is the contract the Trigger drives; satisfied by *Engine.
type Runner interface {
	Run(ctx context.Context) (*Result, error)
}

// Drainer is the upload queue contract; satisfied by *uploads.Queue.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// Trigger decides when a sync actually runs. It enforces at-most-one engine
// invocation at a time process-wide, drains the upload queue first so fresh
// photo URLs ride along in the same pass, and swallows failures: sync is
// best-effort and must never crash the caller. A dropped trigger is retried
// at the next natural trigger point (foreground, mutation, sign-in).
type Trigger struct {
	running atomic.Bool
	engine  Runner
	uploads Drainer
	tokens  remote.TokenSource
	bus     *invalidation.Bus
	log     logging.Logger
}

func NewTrigger(engine Runner, uploads Drainer, tokens remote.TokenSource, bus *invalidation.Bus, log logging.Logger) *Trigger {
	return &Trigger{
		engine:  engine,
		uploads: uploads,
		tokens:  tokens,
		bus:     bus,
		log:     log,
	}
}

// InProgress reports whether a sync pass is currently running.
func (t *Trigger) InProgress() bool {
	return t.running.Load()
}

// TriggerSync runs one sync pass. It returns false without doing anything
// when a pass is already in progress or there is no authenticated session;
// the second concurrent caller is dropped, not queued.
func (t *Trigger) TriggerSync(ctx context.Context) bool {
	token, err := t.tokens.Token(ctx)
	if err != nil || token == "" {
		return false
	}

	if !t.running.CompareAndSwap(false, true) {
		return false
	}
	defer t.running.Store(false)

	changed := false

	uploaded, err := t.uploads.Drain(ctx)
	if err != nil {
		t.log.Warn(ctx, "upload drain failed", "error", err)
	}
	if uploaded > 0 {
		changed = true
	}

	result, err := t.engine.Run(ctx)
	if err != nil {
		t.log.Warn(ctx, "sync failed", "error", err)
	} else if result.Pulled > 0 {
		changed = true
	}

	if changed {
		t.bus.Publish()
	}
	return true
}
