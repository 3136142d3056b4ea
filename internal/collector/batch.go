package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"rankdelta/internal/metrics"
	"rankdelta/internal/riot"
)

// Skip records one work item that contributed nothing.
type Skip struct {
	Item string
	Err  error
}

// BatchReport summarizes a fan-out stage. Total counts items handed to the
// stage; Succeeded+len(Skipped) can be lower when an auth failure stopped
// scheduling.
type BatchReport struct {
	Stage     string
	Total     int
	Succeeded int
	Skipped   []Skip
	AuthErr   error
	Elapsed   time.Duration
}

// AllFailed distinguishes "every item failed" from "nothing to do".
func (r *BatchReport) AllFailed() bool {
	return r.Total > 0 && r.Succeeded == 0
}

type outcome[T any] struct {
	item  string
	value T
	err   error
}

type batchRunner struct {
	stage         string
	width         int
	progressEvery int
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// runBatch executes fetch for every item on at most width goroutines. merge
// is only ever called from the calling goroutine, in completion order.
// An *riot.AuthError stops new items from being scheduled; in-flight items
// still finish and are merged.
func runBatch[T any](ctx context.Context, b batchRunner, items []string,
	fetch func(ctx context.Context, item string) (T, error), merge func(item string, v T)) *BatchReport {

	start := time.Now()
	report := &BatchReport{Stage: b.stage, Total: len(items)}
	if len(items) == 0 {
		return report
	}

	width := max(b.width, 1)
	results := make(chan outcome[T], width)
	var stop atomic.Bool

	go func() {
		p := pool.New().WithMaxGoroutines(width)
		for _, item := range items {
			if stop.Load() {
				break
			}
			p.Go(func() {
				v, err := fetch(ctx, item)
				results <- outcome[T]{item: item, value: v, err: err}
			})
		}
		p.Wait()
		close(results)
	}()

	done := 0
	for o := range results {
		done++
		switch {
		case o.err == nil:
			report.Succeeded++
			merge(o.item, o.value)
			b.metrics.ObserveItem(b.stage, "ok")
		case riot.IsAuthError(o.err):
			if report.AuthErr == nil {
				report.AuthErr = o.err
				b.logger.Error("credential rejected, stopping batch", "stage", b.stage, "item", o.item, "error", o.err)
			}
			stop.Store(true)
			report.Skipped = append(report.Skipped, Skip{Item: o.item, Err: o.err})
			b.metrics.ObserveItem(b.stage, "auth")
		default:
			report.Skipped = append(report.Skipped, Skip{Item: o.item, Err: o.err})
			b.metrics.ObserveItem(b.stage, "skipped")
			b.logger.Warn("skipping item", "stage", b.stage, "item", o.item, "error", o.err)
		}

		if b.progressEvery > 0 && done%b.progressEvery == 0 {
			b.logger.Info("progress", "stage", b.stage, "processed", done, "total", len(items),
				"elapsed", formatDuration(time.Since(start)))
		}
	}

	report.Elapsed = time.Since(start)
	b.logger.Info("batch complete", "stage", b.stage, "total", report.Total,
		"succeeded", report.Succeeded, "skipped", len(report.Skipped), "elapsed", formatDuration(report.Elapsed))
	return report
}

// Err returns the terminal error for a finished stage, if any.
func (r *BatchReport) Err() error {
	if r.AuthErr != nil {
		return r.AuthErr
	}
	if r.AllFailed() {
		return errors.Join(ErrAllItemsFailed, r.Skipped[0].Err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}
