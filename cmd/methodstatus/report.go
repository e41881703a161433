package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/methodstatus/internal/aggregate"
	"github.com/nao1215/methodstatus/internal/config"
	"github.com/nao1215/methodstatus/internal/database"
	"github.com/nao1215/methodstatus/internal/pipeline"
	"github.com/nao1215/methodstatus/internal/report"
	"github.com/spf13/cobra"
)

// errReportsFailed is returned when at least one snapshot could not be reported on.
var errReportsFailed = errors.New("report failed")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [snapshot-file...]",
		Short: "Build the release status report of model snapshots",
		Long: `Report reads one or more model repository snapshots and builds their
release status report.

For every selected solution in the release it counts:
- Work packages on the solution's value-chain diagrams
- Assets feeding those work packages
- How many of both are released

Every solution also gets a line in the Maturity table. Reports are saved to
the history database unless --no-history is given.

Examples:
  # Report on a snapshot
  methodstatus report model.yaml

  # Report on a different release
  methodstatus report -r "Prime 1.3 Release" model.yaml

  # Report on several snapshots concurrently
  methodstatus report -b 8 a.yaml b.yaml c.yaml

  # Write a Markdown report to a file
  methodstatus report --markdown -o reports/status.md model.yaml

  # Read German attribute values
  methodstatus report -L de model.yaml`,
		Args: cobra.ArbitraryArgs,
		RunE: runReportCmd,
	}

	// Run parameters
	cmd.Flags().StringP("release", "r", config.DefaultRelease,
		"Release tag in scope")
	cmd.Flags().StringP("language", "L", config.DefaultLanguage,
		"Attribute language (BCP 47 tag)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of snapshots reported on concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .methodstatus in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().Bool("html", false,
		"Output HTML report")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not save reports to the history database")
	cmd.Flags().Bool("skip-unchanged", false,
		"Do not save a report when history already holds one for the same snapshot content")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runReport(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and command flags.
// Flags override file values only when given on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; the searched ones are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("release") {
		if cfg.Release, err = flags.GetString("release"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("language") {
		if cfg.Language, err = flags.GetString("language"); err != nil {
			return nil, err
		}
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.HTMLReport, err = flags.GetBool("html"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	if cfg.SkipUnchanged, err = flags.GetBool("skip-unchanged"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Sources = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// runReport builds and writes the report of every source in cfg.
// Progress and failures go to errOut; reports go to the configured output.
func runReport(ctx context.Context, cfg *config.Config, stdout, errOut io.Writer, logger *slog.Logger) error {
	rc, err := cfg.RunConfig()
	if err != nil {
		return err
	}
	agg, err := aggregate.New(rc, aggregate.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("starting report",
		"sources", cfg.Sources,
		"release", cfg.Release,
		"language", cfg.Language,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineWriteStep(pipeline.NewWriteStep(newReportWriter(cfg, output))),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())

		configOpts = append(configOpts,
			pipeline.WithPipelineStore(db),
			pipeline.WithPipelineSkipUnchanged(cfg.SkipUnchanged),
		)
	}

	factory := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(agg, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	}

	var runs []*pipeline.Run
	if len(cfg.Sources) > 1 && cfg.BatchSize > 1 {
		runs, err = runBatchReport(ctx, cfg, factory, errOut, logger)
	} else {
		runs, err = runSequentialReport(ctx, cfg, factory)
	}
	if err != nil {
		return err
	}

	return reportFailures(runs, errOut)
}

// runSequentialReport reports on sources one at a time.
func runSequentialReport(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline) ([]*pipeline.Run, error) {
	runs := make([]*pipeline.Run, 0, len(cfg.Sources))
	for _, source := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return runs, err
		}

		run := pipeline.NewRun(source)
		// Failures are recorded in run and reported once all sources are done.
		_ = factory().Execute(ctx, run)
		runs = append(runs, run)
	}
	return runs, nil
}

// runBatchReport reports on sources concurrently using BatchProcessor.
func runBatchReport(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline, errOut io.Writer, logger *slog.Logger) ([]*pipeline.Run, error) {
	fmt.Fprintf(errOut, "Starting batch report of %d snapshots (concurrency: %d)...\n",
		len(cfg.Sources), cfg.BatchSize)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	runs := make([]*pipeline.Run, len(cfg.Sources))
	var (
		mu   sync.Mutex
		done int
	)
	err := bp.ProcessBatchWithCallback(ctx, cfg.Sources, func(run *pipeline.Run, index int) {
		mu.Lock()
		defer mu.Unlock()

		runs[index] = run
		done++
		state := "completed"
		if run.Failed() {
			state = "failed"
		}
		fmt.Fprintf(errOut, "[%d/%d] Report %s: %s\n", done, len(cfg.Sources), state, run.Source)
	})

	fmt.Fprintf(errOut, "Batch report completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return runs, err
}

// reportFailures prints every failed run and returns errReportsFailed if any.
func reportFailures(runs []*pipeline.Run, errOut io.Writer) error {
	failed := 0
	for _, run := range runs {
		if run == nil {
			continue
		}
		if run.Failed() {
			failed++
			fmt.Fprintf(errOut, "Report error for %s: %v\n", run.Source, run.Err)
			continue
		}
		if run.Unchanged {
			fmt.Fprintf(errOut, "Snapshot %s unchanged since report %d\n", run.Source, run.ReportID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d snapshots", errReportsFailed, failed, len(runs))
	}
	return nil
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	labels := cfg.ReportLabels()
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, labels,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, labels)
	case cfg.HTMLReport:
		return report.NewHTMLWriter(output, labels)
	default:
		return report.NewSimpleWriter(output, labels)
	}
}

// openOutput returns the report destination: path, or stdout when path is empty.
// Report files are created with owner-only permissions.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
