package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/methodstatus/internal/config"
	"github.com/nao1215/methodstatus/internal/database"
	"github.com/nao1215/methodstatus/internal/model"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Progress directions of a comparison.
const (
	directionImproved  = "improved"
	directionRegressed = "regressed"
	directionUnchanged = "unchanged"
)

// Per-solution changes between two reports.
const (
	changeAdded      = "added"
	changeRemoved    = "removed"
	changeProgressed = "progressed"
	changeRegressed  = "regressed"
	changeRescoped   = "rescoped"
	changeUnchanged  = "unchanged"
)

const compareTimeLayout = "2006-01-02 15:04:05"

var errNotEnoughHistory = errors.New("not enough history to compare")

// NewCompareCmd creates the compare command.
// This command compares status reports stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare status reports with historical data",
		Long: `Compare shows how the release status changed between two reports.

This command retrieves the report history of a release and shows:
- Solutions that entered or left the report
- Solutions whose released work packages or assets changed
- The overall released totals of both reports

The comparison requires at least two reports of the release in the database.
Use 'methodstatus report' to build reports and save them.

Examples:
  # Compare the latest two reports of the default release
  methodstatus compare

  # Compare reports of another release
  methodstatus compare -r "Prime 1.3 Release"

  # List the report history of a release
  methodstatus compare --list

  # Compare the latest report with a specific one by ID
  methodstatus compare --with-id 5

  # Output comparison in JSON format
  methodstatus compare --json

  # List every release in the database
  methodstatus compare --list-releases`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("release", "r", config.DefaultRelease,
		"Release whose reports are compared")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path; its release is used when --release is not given")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List report history of the release")
	cmd.Flags().BoolP("list-releases", "L", false,
		"List all releases in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare the latest report with the report of this ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	release      string
	dbDir        string
	list         bool
	listReleases bool
	withID       int64
	json         bool
	markdown     bool
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseCompareFlags(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.listReleases:
		return listReleases(ctx, out, db)
	case opts.list:
		return listHistory(ctx, out, db, opts.release)
	default:
		return runComparison(ctx, out, db, opts)
	}
}

func parseCompareFlags(cmd *cobra.Command) (compareOptions, error) {
	var (
		opts compareOptions
		err  error
	)
	flags := cmd.Flags()

	if opts.release, err = flags.GetString("release"); err != nil {
		return opts, err
	}
	if !flags.Changed("release") {
		configPath, err := flags.GetString("config")
		if err != nil {
			return opts, err
		}
		release, err := configuredRelease(configPath)
		if err != nil {
			return opts, err
		}
		if release != "" {
			opts.release = release
		}
	}

	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.dbDir == "" {
		opts.dbDir = config.XDGDataDir()
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.listReleases, err = flags.GetBool("list-releases"); err != nil {
		return opts, err
	}
	if opts.withID, err = flags.GetInt64("with-id"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.json && opts.markdown {
		return opts, errors.New("use only one of --json and --markdown")
	}
	return opts, nil
}

// configuredRelease returns the release of the config file, "" when there is none.
func configuredRelease(configPath string) (string, error) {
	path := config.FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return "", fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
		}
		return "", nil
	}
	file, err := config.LoadConfigFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return file.Release, nil
}

// listReleases lists all releases that have reports in the database.
func listReleases(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	releases, err := db.ListReleases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	if len(releases) == 0 {
		fmt.Fprintln(out, "No reports found in the database.")
		fmt.Fprintln(out, "\nUse 'methodstatus report <snapshot>' to build a report.")
		return nil
	}

	fmt.Fprintf(out, "Reported releases (%d):\n\n", len(releases))
	for _, release := range releases {
		fmt.Fprintf(out, "  • %s\n", release)
	}
	fmt.Fprintln(out, "\nUse 'methodstatus compare --list -r <release>' to see the report history of a release.")
	return nil
}

// listHistory lists all stored reports of a release.
func listHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, release string) error {
	metas, err := db.GetStatusHistoryWithMetadata(ctx, release)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}

	if len(metas) == 0 {
		fmt.Fprintf(out, "No report history found for %s\n", release)
		fmt.Fprintln(out, "\nUse 'methodstatus report' to build a report of this release.")
		return nil
	}

	fmt.Fprintf(out, "Report history for %s (%d reports):\n\n", release, len(metas))

	rows := make([][]string, 0, len(metas))
	for _, meta := range metas {
		rows = append(rows, []string{
			strconv.FormatInt(meta.ID, 10),
			meta.Timestamp.Format(compareTimeLayout),
			meta.Source,
			ratio(meta.Summary.WorkPackagesReleased, meta.Summary.WorkPackages),
			ratio(meta.Summary.AssetsReleased, meta.Summary.Assets),
		})
	}
	if err := renderTable(out, []string{"ID", "Date", "Source", "Work packages released", "Assets released"}, rows); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nUse 'methodstatus compare' to compare the latest two reports.")
	fmt.Fprintln(out, "Use 'methodstatus compare --with-id <id>' to compare with a specific report.")
	return nil
}

// runComparison compares the latest report of the release with the previous
// one, or with the report of opts.withID.
func runComparison(ctx context.Context, out io.Writer, db *database.HistoryDB, opts compareOptions) error {
	metas, err := db.GetStatusHistoryWithMetadata(ctx, opts.release)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}
	if len(metas) == 0 {
		return fmt.Errorf("%w: no reports found for %s", errNotEnoughHistory, opts.release)
	}

	currentMeta := metas[0]
	var previousMeta database.ReportMetadata
	switch {
	case opts.withID > 0:
		found := false
		for _, m := range metas {
			if m.ID == opts.withID {
				previousMeta, found = m, true
				break
			}
		}
		if !found {
			return fmt.Errorf("report with ID %d not found for %s", opts.withID, opts.release)
		}
		if previousMeta.ID == currentMeta.ID {
			return fmt.Errorf("report %d is the latest report; choose an older one", opts.withID)
		}
	case len(metas) < 2:
		return fmt.Errorf("%w: at least 2 reports are required (found %d)", errNotEnoughHistory, len(metas))
	default:
		previousMeta = metas[1]
	}

	current, err := loadReport(ctx, db, currentMeta.ID)
	if err != nil {
		return err
	}
	previous, err := loadReport(ctx, db, previousMeta.ID)
	if err != nil {
		return err
	}

	result := compareReports(previousMeta, previous, currentMeta, current)

	switch {
	case opts.json:
		return outputComparisonJSON(out, result)
	case opts.markdown:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

func loadReport(ctx context.Context, db *database.HistoryDB, id int64) (*model.StatusReport, error) {
	r, err := db.GetStatusReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report with ID %d: %w", id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("report with ID %d not found", id)
	}
	return r, nil
}

// ComparisonResult holds the result of comparing two status reports.
type ComparisonResult struct {
	// Release is the release both reports were scoped to.
	Release string `json:"release"`

	// Previous and Current describe the compared reports.
	Previous ReportInfo `json:"previous"`
	Current  ReportInfo `json:"current"`

	// Solutions lists the solution changes: the current report's order first,
	// then the solutions only the previous report had.
	Solutions []SolutionChange `json:"solutions"`

	// Direction is "improved", "regressed" or "unchanged" by released totals.
	Direction string `json:"direction"`
}

// ReportInfo describes one compared report.
type ReportInfo struct {
	ID          int64         `json:"id"`
	Source      string        `json:"source"`
	GeneratedAt time.Time     `json:"generated_at"`
	Summary     model.Summary `json:"summary"`
}

// SolutionChange is one solution's change between the reports.
type SolutionChange struct {
	Identifier string `json:"identifier"`
	Change     string `json:"change"`
	Previous   Counts `json:"previous"`
	Current    Counts `json:"current"`
}

// Counts are the status counts of one solution in one report.
type Counts struct {
	WorkPackages         int `json:"work_packages"`
	WorkPackagesReleased int `json:"work_packages_released"`
	Assets               int `json:"assets"`
	AssetsReleased       int `json:"assets_released"`
}

func countsOf(row model.StatusRow) Counts {
	return Counts{
		WorkPackages:         row.WorkPackages,
		WorkPackagesReleased: row.WorkPackagesReleased,
		Assets:               row.Assets,
		AssetsReleased:       row.AssetsReleased,
	}
}

func (c Counts) released() int {
	return c.WorkPackagesReleased + c.AssetsReleased
}

// compareReports compares two status reports solution by solution.
// Solutions are matched by identifier.
func compareReports(previousMeta database.ReportMetadata, previous *model.StatusReport, currentMeta database.ReportMetadata, current *model.StatusReport) *ComparisonResult {
	result := &ComparisonResult{
		Release:  current.Release,
		Previous: reportInfo(previousMeta, previous),
		Current:  reportInfo(currentMeta, current),
	}

	previousRows := make(map[string]model.StatusRow, len(previous.Status))
	for _, row := range previous.Status {
		previousRows[row.Identifier] = row
	}

	seen := make(map[string]bool, len(current.Status))
	for _, row := range current.Status {
		seen[row.Identifier] = true
		change := SolutionChange{
			Identifier: row.Identifier,
			Current:    countsOf(row),
		}
		if prev, ok := previousRows[row.Identifier]; ok {
			change.Previous = countsOf(prev)
			change.Change = classifyChange(change.Previous, change.Current)
		} else {
			change.Change = changeAdded
		}
		result.Solutions = append(result.Solutions, change)
	}

	for _, row := range previous.Status {
		if seen[row.Identifier] {
			continue
		}
		seen[row.Identifier] = true
		result.Solutions = append(result.Solutions, SolutionChange{
			Identifier: row.Identifier,
			Change:     changeRemoved,
			Previous:   countsOf(row),
		})
	}

	result.Direction = direction(result.Previous.Summary, result.Current.Summary)
	return result
}

func reportInfo(meta database.ReportMetadata, r *model.StatusReport) ReportInfo {
	return ReportInfo{
		ID:          meta.ID,
		Source:      r.Source,
		GeneratedAt: r.GeneratedAt,
		Summary:     r.Summary(),
	}
}

// classifyChange compares the released counts first; totals that moved with
// the same released count mean the solution's scope changed.
func classifyChange(previous, current Counts) string {
	switch delta := current.released() - previous.released(); {
	case delta > 0:
		return changeProgressed
	case delta < 0:
		return changeRegressed
	case previous != current:
		return changeRescoped
	default:
		return changeUnchanged
	}
}

func direction(previous, current model.Summary) string {
	prev := previous.WorkPackagesReleased + previous.AssetsReleased
	cur := current.WorkPackagesReleased + current.AssetsReleased
	switch {
	case cur > prev:
		return directionImproved
	case cur < prev:
		return directionRegressed
	default:
		return directionUnchanged
	}
}

// changedSolutions returns the solutions whose change is not "unchanged".
func (r *ComparisonResult) changedSolutions() []SolutionChange {
	var out []SolutionChange
	for _, s := range r.Solutions {
		if s.Change != changeUnchanged {
			out = append(out, s)
		}
	}
	return out
}

func (r *ComparisonResult) unchangedCount() int {
	return len(r.Solutions) - len(r.changedSolutions())
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1(fmt.Sprintf("Status Comparison: %s", result.Release))
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainText(fmt.Sprintf("**Progress:** %s", formatDirection(result.Direction)))
	md.PlainText("")

	prev, cur := result.Previous.Summary, result.Current.Summary
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Report", strconv.FormatInt(result.Previous.ID, 10), strconv.FormatInt(result.Current.ID, 10), "-"},
			{"Date", result.Previous.GeneratedAt.Format(compareTimeLayout), result.Current.GeneratedAt.Format(compareTimeLayout), "-"},
			{"Solutions in release", strconv.Itoa(prev.InScope), strconv.Itoa(cur.InScope), formatDelta(cur.InScope - prev.InScope)},
			{"Work packages released", ratio(prev.WorkPackagesReleased, prev.WorkPackages), ratio(cur.WorkPackagesReleased, cur.WorkPackages), formatDelta(cur.WorkPackagesReleased - prev.WorkPackagesReleased)},
			{"Assets released", ratio(prev.AssetsReleased, prev.Assets), ratio(cur.AssetsReleased, cur.Assets), formatDelta(cur.AssetsReleased - prev.AssetsReleased)},
		},
	})
	md.PlainText("")

	if changed := result.changedSolutions(); len(changed) > 0 {
		md.H2(fmt.Sprintf("Changed Solutions (%d)", len(changed)))
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: solutionHeader(),
			Rows:   solutionRows(changed),
		})
		md.PlainText("")
	}

	if n := result.unchangedCount(); n > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainText(fmt.Sprintf("*%d solutions unchanged*", n))
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Status Comparison: %s\n", result.Release)
	fmt.Fprintf(out, "\nProgress: %s\n", formatDirection(result.Direction))
	fmt.Fprintf(out, "\nPrevious report: #%d %s\n", result.Previous.ID, result.Previous.GeneratedAt.Format(compareTimeLayout))
	fmt.Fprintf(out, "Current report:  #%d %s\n\n", result.Current.ID, result.Current.GeneratedAt.Format(compareTimeLayout))

	prev, cur := result.Previous.Summary, result.Current.Summary
	if err := renderTable(out, []string{"Metric", "Previous", "Current", "Change"}, [][]string{
		{"Solutions in release", strconv.Itoa(prev.InScope), strconv.Itoa(cur.InScope), formatDelta(cur.InScope - prev.InScope)},
		{"Work packages released", ratio(prev.WorkPackagesReleased, prev.WorkPackages), ratio(cur.WorkPackagesReleased, cur.WorkPackages), formatDelta(cur.WorkPackagesReleased - prev.WorkPackagesReleased)},
		{"Assets released", ratio(prev.AssetsReleased, prev.Assets), ratio(cur.AssetsReleased, cur.Assets), formatDelta(cur.AssetsReleased - prev.AssetsReleased)},
	}); err != nil {
		return err
	}

	if changed := result.changedSolutions(); len(changed) > 0 {
		fmt.Fprintf(out, "\nChanged Solutions (%d):\n", len(changed))
		if err := renderTable(out, solutionHeader(), solutionRows(changed)); err != nil {
			return err
		}
	}

	if n := result.unchangedCount(); n > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d solutions\n", n)
	}
	return nil
}

func solutionHeader() []string {
	return []string{"Solution", "Change", "Work packages released", "Assets released"}
}

func solutionRows(changes []SolutionChange) [][]string {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{
			c.Identifier,
			c.Change,
			ratio(c.Previous.WorkPackagesReleased, c.Previous.WorkPackages) + " -> " + ratio(c.Current.WorkPackagesReleased, c.Current.WorkPackages),
			ratio(c.Previous.AssetsReleased, c.Previous.Assets) + " -> " + ratio(c.Current.AssetsReleased, c.Current.Assets),
		})
	}
	return rows
}

// renderTable writes a bordered text table.
func renderTable(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// formatDirection formats the progress direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (more released)"
	case directionRegressed:
		return "REGRESSED (fewer released)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

func ratio(released, total int) string {
	return strconv.Itoa(released) + "/" + strconv.Itoa(total)
}
