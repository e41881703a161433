package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/methodstatus/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "methodstatus.db"

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// HistoryDB provides SQLite-based storage for status reports.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	// Concurrent openers of the same file wait for locks instead of failing.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS status_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		release TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_release ON status_reports(release);
	CREATE INDEX IF NOT EXISTS idx_reports_digest ON status_reports(digest);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON status_reports(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveStatusReport stores a report and returns its ID.
// The report's GeneratedAt becomes the entry timestamp; a zero time uses
// the current time.
func (hdb *HistoryDB) SaveStatusReport(ctx context.Context, report *model.StatusReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	ts := report.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO status_reports (release, source, digest, timestamp, report_json, summary)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Release,
		report.Source,
		report.Digest,
		ts.UTC().Format(timestampFormats[0]),
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save status report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestStatusReport retrieves the most recent report for a release.
// It returns nil without error when the release has no history.
func (hdb *HistoryDB) GetLatestStatusReport(ctx context.Context, release string) (*model.StatusReport, error) {
	query := `
	SELECT report_json FROM status_reports
	WHERE release = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return hdb.queryReport(ctx, query, release)
}

// GetStatusReportByID retrieves a report by its database ID.
// It returns nil without error when no such report exists.
func (hdb *HistoryDB) GetStatusReportByID(ctx context.Context, id int64) (*model.StatusReport, error) {
	query := `
	SELECT report_json FROM status_reports
	WHERE id = ?
	`
	return hdb.queryReport(ctx, query, id)
}

// queryReport decodes the report_json of the single row query selects.
func (hdb *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.StatusReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status report: %w", err)
	}

	var report model.StatusReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListReleases returns every release with stored reports, sorted.
func (hdb *HistoryDB) ListReleases(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT release FROM status_reports
	ORDER BY release
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	defer rows.Close()

	var releases []string
	for rows.Next() {
		var release string
		if err := rows.Scan(&release); err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, release)
	}

	return releases, rows.Err()
}

// GetStatusHistory retrieves all reports for a release, newest first.
// Malformed rows are skipped.
func (hdb *HistoryDB) GetStatusHistory(ctx context.Context, release string) ([]*model.StatusReport, error) {
	query := `
	SELECT report_json FROM status_reports
	WHERE release = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, release)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	var reports []*model.StatusReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.StatusReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// It is used for listing history without loading full reports.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// Release is the release tag the report was scoped to.
	Release string

	// Source names the snapshot the report was built from.
	Source string

	// Digest fingerprints the snapshot content.
	Digest string

	// Timestamp is when the report was generated.
	Timestamp time.Time

	// Summary holds the released totals.
	Summary model.Summary
}

// GetStatusHistoryWithMetadata retrieves report metadata for a release,
// newest first.
func (hdb *HistoryDB) GetStatusHistoryWithMetadata(ctx context.Context, release string) ([]ReportMetadata, error) {
	query := `
	SELECT id, release, source, digest, timestamp, summary
	FROM status_reports
	WHERE release = ?
	ORDER BY timestamp DESC, id DESC
	`
	return hdb.queryMetadata(ctx, query, release)
}

// FindByDigest returns the newest report metadata for a release built from
// a snapshot with the given digest.
func (hdb *HistoryDB) FindByDigest(ctx context.Context, release, digest string) (*ReportMetadata, error) {
	query := `
	SELECT id, release, source, digest, timestamp, summary
	FROM status_reports
	WHERE release = ? AND digest = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	results, err := hdb.queryMetadata(ctx, query, release, digest)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

// queryMetadata scans metadata rows.
func (hdb *HistoryDB) queryMetadata(ctx context.Context, query string, args ...any) ([]ReportMetadata, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Release, &meta.Source, &meta.Digest, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.Summary); err != nil {
				meta.Summary = model.Summary{}
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
