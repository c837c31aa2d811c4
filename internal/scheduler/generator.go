package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/gbtgo/internal/ctxlog"
	"github.com/vk/gbtgo/internal/graph"
	"github.com/vk/gbtgo/internal/poolstore"
	"github.com/vk/gbtgo/internal/threadtx"
)

// Generator projects block templates for a pool that changes between runs.
// Calls are serialized; the store may still be read concurrently by others.
type Generator struct {
	mu     sync.Mutex
	store  poolstore.Store
	limits Limits
	runs   uint64
}

// NewGenerator creates a generator over store.
func NewGenerator(store poolstore.Store, limits Limits) *Generator {
	return &Generator{store: store, limits: limits}
}

// Make replaces the whole pool with records and runs a selection.
func (g *Generator) Make(ctx context.Context, records []*threadtx.ThreadTx) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.store.Reset(ctx)
	for _, rec := range records {
		if err := g.store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store transaction: %w", err)
		}
	}
	return g.run(ctx)
}

// Update removes and then adds transactions before running a selection.
// Removing an unknown uid is not an error. It is the entry point for
// services that embed the generator and feed it mempool deltas between
// runs; the command-line app projects a single snapshot and uses Make.
func (g *Generator) Update(ctx context.Context, added []*threadtx.ThreadTx, removed []uint32) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	missing := 0
	for _, uid := range removed {
		if !g.store.Remove(ctx, uid) {
			missing++
		}
	}
	if missing > 0 {
		logger.Debug("Some removed transactions were not in the pool.", "missing", missing)
	}
	for _, rec := range added {
		if err := g.store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store transaction: %w", err)
		}
	}
	return g.run(ctx)
}

func (g *Generator) run(ctx context.Context) (*Result, error) {
	g.runs++
	ctx = ctxlog.With(ctx, "run", g.runs)

	pool, err := graph.New(g.store.All(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to build pool: %w", err)
	}
	if err := pool.SetRelatives(ctx); err != nil {
		return nil, fmt.Errorf("ancestor discovery failed: %w", err)
	}
	return Select(ctx, pool, g.limits)
}
