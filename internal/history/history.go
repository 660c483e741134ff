package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// dbFileName is the database file name inside the history directory.
const dbFileName = "torctl.db"

// Record is one renewal attempt.
type Record struct {
	// ID is the database row ID, assigned on insert.
	ID int64

	// Timestamp is when the renewal was attempted.
	Timestamp time.Time

	// OK reports whether the renewal succeeded.
	OK bool

	// Message is the success message or the error text.
	Message string

	// RawReply is the raw ControlPort reply, when one was received.
	// Empty for transport-level failures.
	RawReply string
}

// DB provides SQLite-backed storage for renewal records.
//
// Design decision: We keep a single database file for the whole tool
// rather than one per endpoint. Renewals are rare events (a handful per
// session), so one table with a timestamp index covers every query the
// CLI needs.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the renewal history database in dir.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw / mode=rwc in the DSN to control
	// whether a missing file may be created.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite supports only one writer; a second connection buys nothing
	// for this workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// Path returns the path of the database file.
func (h *DB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renewals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		ok INTEGER NOT NULL,
		message TEXT NOT NULL,
		raw_reply TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_renewals_timestamp ON renewals(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Append records one renewal attempt and fills in the record's ID.
func (h *DB) Append(ctx context.Context, rec *Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	result, err := h.db.ExecContext(ctx,
		"INSERT INTO renewals (timestamp, ok, message, raw_reply) VALUES (?, ?, ?, ?)",
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.OK, rec.Message, rec.RawReply)
	if err != nil {
		return fmt.Errorf("failed to insert renewal record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read renewal record id: %w", err)
	}
	rec.ID = id

	return nil
}

// Recent returns up to limit renewal records, newest first.
// A non-positive limit returns all records.
func (h *DB) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := "SELECT id, timestamp, ok, message, raw_reply FROM renewals ORDER BY timestamp DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query renewal records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only iteration

	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.OK, &rec.Message, &rec.RawReply); err != nil {
			return nil, fmt.Errorf("failed to scan renewal record: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse renewal timestamp %q: %w", ts, err)
		}
		rec.Timestamp = parsed
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating renewal records: %w", err)
	}

	return records, nil
}

// Count returns the total number of recorded renewals.
func (h *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM renewals").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count renewal records: %w", err)
	}
	return n, nil
}
