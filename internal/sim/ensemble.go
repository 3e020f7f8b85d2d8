package sim

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/scenario"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs the same descriptor under consecutive seeds, one session per
// run, in parallel.
type Ensemble struct {
	cfg       *config.Config
	logger    *log.Logger
	numRuns   int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, logger *log.Logger, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, logger: logger, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, desc *scenario.Descriptor) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		i := i
		cfgCopy := *e.cfg
		cfgCopy.Seed = e.seedStart + int64(i)

		g.Go(func() error {
			logger := e.logger
			if logger != nil {
				logger = logger.With("run", i)
			}
			s, err := NewSession(&cfgCopy, logger)
			if err != nil {
				return err
			}
			runner := NewRunner(s)
			for _, m := range metrics.Standard() {
				runner.AddMetric(m)
			}
			results[i], err = runner.Run(ctx, desc)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
