package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/methodstatus/internal/aggregate"
	"github.com/nao1215/methodstatus/internal/database"
	"github.com/nao1215/methodstatus/internal/model"
	"github.com/nao1215/methodstatus/internal/report"
	"github.com/nao1215/methodstatus/internal/repository"
)

var (
	// ErrNoGraph is returned when a step needs a loaded snapshot and
	// the load step did not run or failed.
	ErrNoGraph = errors.New("no model snapshot loaded")

	// ErrNoReport is returned when a step needs an aggregated report.
	ErrNoReport = errors.New("no status report aggregated")
)

// LoadStep reads the run's snapshot file into a repository graph.
type LoadStep struct {
	logger *slog.Logger
}

// NewLoadStep creates a snapshot loading step.
func NewLoadStep(logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, run *Run) error {
	g, err := repository.Load(run.Source)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	run.Graph = g

	s.logger.Debug("snapshot loaded",
		"source", run.Source,
		"elements", g.Len(),
		"digest", g.Digest(),
	)
	return nil
}

// AggregateStep builds the status report from the loaded graph.
type AggregateStep struct {
	aggregator *aggregate.Aggregator
}

// NewAggregateStep creates an aggregation step.
func NewAggregateStep(a *aggregate.Aggregator) *AggregateStep {
	return &AggregateStep{aggregator: a}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(ctx context.Context, run *Run) error {
	if run.Graph == nil {
		return ErrNoGraph
	}

	r, err := s.aggregator.Run(ctx, run.Graph)
	if err != nil {
		return err
	}
	r.Source = run.Graph.Source()
	r.Digest = run.Graph.Digest()
	run.Report = r
	return nil
}

// WriteStep renders the report with a report.Writer.
// One WriteStep may be shared by concurrent pipelines; writes are serialized
// so reports never interleave.
type WriteStep struct {
	writer report.Writer
	mu     sync.Mutex
}

// NewWriteStep creates an output step.
func NewWriteStep(w report.Writer) *WriteStep {
	return &WriteStep{writer: w}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do executes the output step.
func (s *WriteStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(run.Report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// HistoryStore is the part of the history database the persist step uses.
type HistoryStore interface {
	SaveStatusReport(ctx context.Context, r *model.StatusReport) (int64, error)
	FindByDigest(ctx context.Context, release, digest string) (*database.ReportMetadata, error)
}

// PersistStep records the report in the history database.
type PersistStep struct {
	store         HistoryStore
	skipUnchanged bool
	logger        *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithSkipUnchanged skips saving when history already holds a report for the
// same release built from identical snapshot content.
func WithSkipUnchanged(skip bool) PersistStepOption {
	return func(s *PersistStep) {
		s.skipUnchanged = skip
	}
}

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a history step.
func NewPersistStep(store HistoryStore, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the history step.
func (s *PersistStep) Do(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNoReport
	}

	if s.skipUnchanged && run.Report.Digest != "" {
		prev, err := s.store.FindByDigest(ctx, run.Report.Release, run.Report.Digest)
		if err != nil {
			return fmt.Errorf("failed to look up history: %w", err)
		}
		if prev != nil {
			run.ReportID = prev.ID
			run.Unchanged = true
			s.logger.Info("snapshot unchanged, history not updated",
				"source", run.Source,
				"report_id", prev.ID,
			)
			return nil
		}
	}

	id, err := s.store.SaveStatusReport(ctx, run.Report)
	if err != nil {
		return fmt.Errorf("failed to save status report: %w", err)
	}
	run.ReportID = id

	s.logger.Info("status report saved to database",
		"source", run.Source,
		"report_id", id,
	)
	return nil
}

// DefaultPipelineConfig holds the collaborators of the default pipeline.
type DefaultPipelineConfig struct {
	// Write renders the report. Nil skips the write step.
	// Share one WriteStep between pipelines writing to the same output.
	Write *WriteStep

	// Store records the report. Nil skips the persist step.
	Store HistoryStore

	// SkipUnchanged is passed to the persist step.
	SkipUnchanged bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineWriter renders reports with w.
func WithPipelineWriter(w report.Writer) DefaultPipelineOption {
	return WithPipelineWriteStep(NewWriteStep(w))
}

// WithPipelineWriteStep uses an existing, possibly shared, write step.
func WithPipelineWriteStep(step *WriteStep) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Write = step
	}
}

// WithPipelineStore sets the history store.
func WithPipelineStore(store HistoryStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineSkipUnchanged skips saving reports of unchanged snapshots.
func WithPipelineSkipUnchanged(skip bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SkipUnchanged = skip
	}
}

// DefaultPipeline creates the standard report pipeline:
// load, aggregate, then optionally write and persist.
func DefaultPipeline(a *aggregate.Aggregator, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadStep(p.logger),
		NewAggregateStep(a),
	)
	if cfg.Write != nil {
		p.AddStep(cfg.Write)
	}
	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store,
			WithSkipUnchanged(cfg.SkipUnchanged),
			WithPersistLogger(p.logger),
		))
	}

	return p
}
