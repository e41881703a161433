package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of runs executed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor runs one pipeline per snapshot file concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
// Runs share no state; each gets a fresh pipeline from the factory.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each run.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline for every source.
// Results are returned in source order. A failing run does not stop the
// others; its error is recorded in its Run. The returned error is non-nil
// only when the batch was cancelled; runs that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*Run, error) {
	results := make([]*Run, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(run *Run, index int) {
		results[index] = run
	})
	return results, err
}

// ProcessBatchWithCallback runs the pipeline for every source and calls
// callback for each finished run with the run's index in sources.
// The callback is called from the goroutine that finished the run, so it
// must be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(run *Run, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			run := NewRun(source)
			if err := bp.pipelineFactory().Execute(ctx, run); err != nil {
				// Recorded in run; the other runs continue.
				bp.logger.Warn("report run failed",
					"source", source,
					"error", err,
				)
			}

			callback(run, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)

	return err
}
