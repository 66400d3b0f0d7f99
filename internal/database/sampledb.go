package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/circload/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "circload.db"

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// SampleDB stores samples and run summaries.
type SampleDB struct {
	db *sql.DB

	dbPath string
}

// Options configures SampleDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SampleDB in dbDir.
// Without CreateIfNotExists a missing database is an error.
func Open(dbDir string, opts Options) (*SampleDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SampleDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *SampleDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SampleDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SampleDB) createTables() error {
	schema := `
	-- One row per scenario execution
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id);
	CREATE INDEX IF NOT EXISTS idx_samples_scenario ON samples(scenario);

	-- Finished runs with their summary as JSON
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		elapsed_ns INTEGER NOT NULL,
		sessions INTEGER NOT NULL,
		total INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordSamples inserts samples in one transaction.
func (sdb *SampleDB) RecordSamples(ctx context.Context, samples []model.Sample) (err error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO samples (run_id, session_id, scenario, started_at, duration_ns, error)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err = stmt.ExecContext(ctx,
			s.RunID,
			s.SessionID,
			s.Scenario,
			s.Start.UTC().Format(time.RFC3339Nano),
			int64(s.Duration),
			s.Error,
		); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}
	return nil
}

// Samples returns the samples of a run ordered by start time.
func (sdb *SampleDB) Samples(ctx context.Context, runID string) ([]model.Sample, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT run_id, session_id, scenario, started_at, duration_ns, error
	FROM samples
	WHERE run_id = ?
	ORDER BY started_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var s model.Sample
		var startedAt string
		var duration int64
		if err := rows.Scan(&s.RunID, &s.SessionID, &s.Scenario, &startedAt, &duration, &s.Error); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		s.Start = parseTimestamp(startedAt)
		s.Duration = time.Duration(duration)
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// SaveRun stores the summary of a finished run, replacing an earlier one
// with the same id.
func (sdb *SampleDB) SaveRun(ctx context.Context, summary *model.Summary) error {
	data, err := jsonAPI.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	_, err = sdb.db.ExecContext(ctx, `
	INSERT INTO runs (run_id, started_at, elapsed_ns, sessions, total, failures, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		started_at = excluded.started_at,
		elapsed_ns = excluded.elapsed_ns,
		sessions = excluded.sessions,
		total = excluded.total,
		failures = excluded.failures,
		summary_json = excluded.summary_json
	`,
		summary.RunID,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		int64(summary.Elapsed),
		summary.Sessions,
		summary.Total,
		summary.Failures,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RunRecord is the listing entry of a stored run.
type RunRecord struct {
	RunID     string
	StartedAt time.Time
	Elapsed   time.Duration
	Sessions  int
	Total     int
	Failures  int
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (sdb *SampleDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT run_id, started_at, elapsed_ns, sessions, total, failures
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		var elapsed int64
		if err := rows.Scan(&r.RunID, &startedAt, &elapsed, &r.Sessions, &r.Total, &r.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.Elapsed = time.Duration(elapsed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the stored summary of a run.
func (sdb *SampleDB) GetRun(ctx context.Context, runID string) (*model.Summary, error) {
	var data string
	err := sdb.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.Summary
	if err := jsonAPI.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &summary, nil
}

// timestampFormats lists the formats parseTimestamp accepts.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp parses a stored timestamp. Unparseable values give the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
