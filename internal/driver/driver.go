// Package driver implements the parallel driver (spec §4.8): a bounded
// worker pool that runs the season analyzer across seasons concurrently,
// reports progress, and respects cancellation. Grounded on
// jobs.PhashLibraryHandler.ProcessTask's channel + goroutine + atomic-counter
// worker-pool pattern.
package driver

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/introscan/introscan/internal/episode"
	"github.com/introscan/introscan/internal/season"
)

// ErrNoWork is surfaced to the caller when Run is invoked with an empty
// season queue (spec §7 NoWorkError).
var ErrNoWork = errors.New("driver: no seasons queued for analysis")

// ErrInvalidState is surfaced at construction time when a required
// collaborator is missing (spec §7 InvalidState).
var ErrInvalidState = errors.New("driver: required collaborator missing")

// Season bundles one season's episodes with the identity the analyzer logs
// against.
type Season struct {
	Series   string
	Number   int
	Episodes []episode.Episode
}

// ProgressFunc receives processed*100/total after each season completes.
type ProgressFunc func(percent int)

// Driver runs season.Analyzer across seasons with bounded concurrency.
type Driver struct {
	Analyzer       *season.Analyzer
	MaxParallelism int
}

// New constructs a Driver. analyzer carries every collaborator the core
// needs (AudioTool, intro Store, persistence callback); a nil analyzer means
// the caller never wired those collaborators, which is fatal (spec §7).
func New(analyzer *season.Analyzer, maxParallelism int) (*Driver, error) {
	if analyzer == nil {
		return nil, ErrInvalidState
	}
	if maxParallelism <= 0 {
		maxParallelism = 1
	}
	return &Driver{Analyzer: analyzer, MaxParallelism: maxParallelism}, nil
}

// Run analyzes every season in seasons, running up to MaxParallelism in
// parallel. Per-season failures are logged and skipped (spec §4.8 failure
// policy); they never abort the driver. Cancellation is cooperative: once
// ctx is done, queued-but-not-yet-started seasons are dropped and in-flight
// seasons return cleanly via season.Analyzer's own checkpoints.
func (d *Driver) Run(ctx context.Context, seasons []Season, progress ProgressFunc) error {
	if len(seasons) == 0 {
		return ErrNoWork
	}

	total := int64(len(seasons))
	var processed int64

	work := make(chan Season)
	var wg sync.WaitGroup

	for w := 0; w < d.MaxParallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				if _, err := d.Analyzer.AnalyzeSeason(ctx, s.Series, s.Number, s.Episodes); err != nil {
					log.Printf("driver: %s season %d failed, skipping: %v", s.Series, s.Number, err)
				}

				done := atomic.AddInt64(&processed, 1)
				if progress != nil {
					progress(int(done * 100 / total))
				}
			}
		}()
	}

feed:
	for _, s := range seasons {
		select {
		case <-ctx.Done():
			break feed
		case work <- s:
		}
	}
	close(work)
	wg.Wait()

	return nil
}
