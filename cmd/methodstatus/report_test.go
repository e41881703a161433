package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/methodstatus/internal/config"
	"github.com/nao1215/methodstatus/internal/database"
	"github.com/nao1215/methodstatus/internal/model"
	"github.com/nao1215/methodstatus/internal/report"
)

// TestNewReportCmd tests the report command creation.
func TestNewReportCmd(t *testing.T) {
	t.Parallel()

	cmd := NewReportCmd()

	if cmd.Use != "report [snapshot-file...]" {
		t.Errorf("expected use 'report [snapshot-file...]', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected non-empty descriptions")
	}

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"release", "r", config.DefaultRelease},
		{"language", "L", config.DefaultLanguage},
		{"batch", "b", "4"},
		{"config", "c", ""},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"html", "", "false"},
		{"output", "o", ""},
		{"no-history", "", "false"},
		{"skip-unchanged", "", "false"},
		{"db-dir", "", ""},
	}
	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	for _, verbose := range []bool{true, false} {
		if logger := setupLogger(verbose); logger == nil {
			t.Errorf("expected non-nil logger (verbose=%v)", verbose)
		}
	}
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("returns false when flag not set", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(NewReportCmd()) {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		reportCmd, _, err := root.Find([]string{"report"})
		if err != nil {
			t.Fatalf("failed to find report command: %v", err)
		}
		if !getVerboseFlag(reportCmd) {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags and config files.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("sets sources and history defaults", func(t *testing.T) {
		t.Parallel()
		cmd := NewReportCmd()
		cfg, err := buildConfig(cmd, []string{"model.yaml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"model.yaml"}, cfg.Sources); diff != "" {
			t.Errorf("sources mismatch (-want +got):\n%s", diff)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != config.XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", config.XDGDataDir(), cfg.DBDir)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("expected BatchSize %d, got %d", config.DefaultBatchSize, cfg.BatchSize)
		}
	})

	t.Run("loads config file when specified", func(t *testing.T) {
		t.Parallel()
		cmd := NewReportCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, t.TempDir()))

		cfg, err := buildConfig(cmd, []string{"model.yaml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Release != "R1" {
			t.Errorf("expected release R1, got %q", cfg.Release)
		}
		if cfg.Attributes.Status != "STATUS" {
			t.Errorf("expected status key STATUS, got %q", cfg.Attributes.Status)
		}
		if cfg.Attributes.Identifier != config.DefaultIdentifierKind {
			t.Errorf("expected default identifier key, got %q", cfg.Attributes.Identifier)
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()
		cmd := NewReportCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, t.TempDir()))
		_ = cmd.Flags().Set("release", "R2")
		_ = cmd.Flags().Set("language", "de")

		cfg, err := buildConfig(cmd, []string{"model.yaml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Release != "R2" {
			t.Errorf("expected release R2, got %q", cfg.Release)
		}
		if cfg.Language != "de" {
			t.Errorf("expected language de, got %q", cfg.Language)
		}
	})

	t.Run("sets report and history flags", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		cmd := NewReportCmd()
		for name, value := range map[string]string{
			"markdown":       "true",
			"output":         "out.md",
			"batch":          "2",
			"no-history":     "true",
			"skip-unchanged": "true",
			"db-dir":         dbDir,
		} {
			if err := cmd.Flags().Set(name, value); err != nil {
				t.Fatalf("failed to set %s: %v", name, err)
			}
		}

		cfg, err := buildConfig(cmd, []string{"model.yaml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.MarkdownReport || cfg.JSONReport || cfg.HTMLReport {
			t.Errorf("expected markdown report only, got json=%v markdown=%v html=%v",
				cfg.JSONReport, cfg.MarkdownReport, cfg.HTMLReport)
		}
		if cfg.ReportFile != "out.md" {
			t.Errorf("expected ReportFile out.md, got %q", cfg.ReportFile)
		}
		if cfg.BatchSize != 2 {
			t.Errorf("expected BatchSize 2, got %d", cfg.BatchSize)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
		if !cfg.SkipUnchanged {
			t.Error("expected SkipUnchanged to be true")
		}
		if cfg.DBDir != dbDir {
			t.Errorf("expected DBDir %q, got %q", dbDir, cfg.DBDir)
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		t.Parallel()
		cmd := NewReportCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := buildConfig(cmd, []string{"model.yaml"})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
		if err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0600); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		cmd := NewReportCmd()
		_ = cmd.Flags().Set("config", path)

		if _, err := buildConfig(cmd, []string{"model.yaml"}); err == nil {
			t.Error("expected error for invalid config file")
		}
	})
}

// executeReport runs the report command with args and returns stdout and stderr.
func executeReport(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewReportCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunReportCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes text report", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeSnapshot(t, dir, "model.yaml", "open")

		stdout, _, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history", snapshot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"METHOD STATUS REPORT", "Billing", "Archive", "R1"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
	})

	t.Run("writes json report", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeSnapshot(t, dir, "model.yaml", "released")

		stdout, _, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history", "--json", snapshot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("failed to decode report: %v\n%s", err, stdout)
		}
		want := []model.StatusRow{
			{Identifier: "Archive", Release: "R0"},
			{
				Identifier: "Billing", WorkPackages: 1, WorkPackagesReleased: 1,
				Assets: 1, AssetsReleased: 1, Status: "active", Release: "R1", InScope: true,
			},
		}
		if diff := cmp.Diff(want, got.Report.Status); diff != "" {
			t.Errorf("status rows mismatch (-want +got):\n%s", diff)
		}
		if got.Report.Source != snapshot {
			t.Errorf("expected source %q, got %q", snapshot, got.Report.Source)
		}
		if got.Version == "" {
			t.Error("expected version in JSON report")
		}
	})

	t.Run("writes report to output file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeSnapshot(t, dir, "model.yaml", "open")
		outPath := filepath.Join(dir, "reports", "status.html")

		stdout, _, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history", "--html", "-o", outPath, snapshot)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected empty stdout, got %q", stdout)
		}

		content, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.HasPrefix(string(content), "<!DOCTYPE html>") {
			t.Errorf("expected HTML document, got:\n%s", content)
		}
	})

	t.Run("reports several snapshots concurrently", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sources := []string{
			writeSnapshot(t, dir, "a.yaml", "open"),
			writeSnapshot(t, dir, "b.yaml", "released"),
			writeSnapshot(t, dir, "c.yaml", "open"),
		}

		args := append([]string{"-c", writeConfig(t, dir), "--db-dir", dir, "-b", "2"}, sources...)
		stdout, stderr, err := executeReport(t, args...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := strings.Count(stdout, "METHOD STATUS REPORT"); n != len(sources) {
			t.Errorf("expected %d reports, got %d", len(sources), n)
		}
		if !strings.Contains(stderr, "[3/3]") {
			t.Errorf("expected batch progress, got:\n%s", stderr)
		}

		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		history, err := db.GetStatusHistory(t.Context(), "R1")
		if err != nil {
			t.Fatalf("failed to get history: %v", err)
		}
		if len(history) != len(sources) {
			t.Errorf("expected %d saved reports, got %d", len(sources), len(history))
		}
	})

	t.Run("skips unchanged snapshot", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeSnapshot(t, dir, "model.yaml", "open")
		args := []string{"-c", writeConfig(t, dir), "--db-dir", dir, "--skip-unchanged", snapshot}

		if _, _, err := executeReport(t, args...); err != nil {
			t.Fatalf("first run: unexpected error: %v", err)
		}
		_, stderr, err := executeReport(t, args...)
		if err != nil {
			t.Fatalf("second run: unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "unchanged since report 1") {
			t.Errorf("expected unchanged notice, got:\n%s", stderr)
		}
	})

	t.Run("fails for missing snapshot", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		good := writeSnapshot(t, dir, "model.yaml", "open")
		missing := filepath.Join(dir, "missing.yaml")

		stdout, stderr, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history", "-b", "1", missing, good)
		if !errors.Is(err, errReportsFailed) {
			t.Fatalf("expected errReportsFailed, got %v", err)
		}
		if !strings.Contains(stderr, missing) {
			t.Errorf("expected failing source in stderr, got:\n%s", stderr)
		}
		if !strings.Contains(stdout, "Billing") {
			t.Errorf("expected report of the good snapshot, got:\n%s", stdout)
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, _, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history", "--json", "--markdown", "model.yaml")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("requires a snapshot", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, _, err := executeReport(t, "-c", writeConfig(t, dir), "--no-history")
		if !errors.Is(err, config.ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("uses stdout without path", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		out, closeOutput, err := openOutput("", &buf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeOutput()
		if out != &buf {
			t.Error("expected stdout writer")
		}
	})

	t.Run("creates file with owner-only permissions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "report.txt")
		out, closeOutput, err := openOutput(path, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := out.Write([]byte("x")); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		closeOutput()

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  func(*config.Config)
		want string
	}{
		{"text", func(*config.Config) {}, "*report.SimpleWriter"},
		{"json", func(c *config.Config) { c.JSONReport = true }, "*report.JSONWriter"},
		{"markdown", func(c *config.Config) { c.MarkdownReport = true }, "*report.MarkdownWriter"},
		{"html", func(c *config.Config) { c.HTMLReport = true }, "*report.HTMLWriter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			tt.set(cfg)

			w := newReportWriter(cfg, &bytes.Buffer{})
			var got string
			switch w.(type) {
			case *report.SimpleWriter:
				got = "*report.SimpleWriter"
			case *report.JSONWriter:
				got = "*report.JSONWriter"
			case *report.MarkdownWriter:
				got = "*report.MarkdownWriter"
			case *report.HTMLWriter:
				got = "*report.HTMLWriter"
			}
			if got != tt.want {
				t.Errorf("expected %s, got %T", tt.want, w)
			}
		})
	}
}
