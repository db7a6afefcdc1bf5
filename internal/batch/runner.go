package batch

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trade-confirmer/internal/confirm"
	"trade-confirmer/internal/logging"
)

// Runner fans items out over a bounded worker pool.
type Runner struct {
	gen     *confirm.Generator
	workers int
	logger  zerolog.Logger
}

// NewRunner creates a runner. workers below 1 means 1.
func NewRunner(gen *confirm.Generator, workers int, logger zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if gen == nil {
		gen = confirm.NewGenerator(confirm.DefaultOptions())
	}
	return &Runner{gen: gen, workers: workers, logger: logger}
}

// Run processes every item and returns one result per item in input order.
// Item failures are recorded in their Result; only cancellation of ctx stops
// the run early and is returned as the error.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Result, error) {
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Result{Index: i, Notation: item.Notation}
			trade, text, err := Process(item, r.gen)
			logging.LogParse(r.logger, item.Notation, trade.StrategyType, err)
			if err != nil {
				res.Err = err
				res.Error = err.Error()
			} else {
				res.Trade = &trade
				res.Text = text
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
