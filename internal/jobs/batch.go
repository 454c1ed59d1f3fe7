package jobs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatch processes units concurrently with at most limit in flight and
// returns one result per unit in input order. Every goroutine writes only
// its own slot. RunBatch returns after all units finish; it issues no
// cancellation of its own, ctx alone bounds the calls.
func RunBatch(ctx context.Context, w *Worker, units []*WorkUnit, limit int) []WorkResult {
	results := make([]WorkResult, len(units))
	if len(units) == 0 {
		return results
	}
	if limit <= 0 || limit > len(units) {
		limit = len(units)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, unit := range units {
		g.Go(func() error {
			results[i] = w.Process(ctx, unit)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	return results
}
