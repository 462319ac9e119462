package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"academy/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQuery is the threshold used when NewTimedDB gets a non-positive value.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to log slow queries and record them to a perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection; collector may be nil
// POST: Returns a TimedDB that logs queries slower than slow
func NewTimedDB(db *sql.DB, collector *perf.Collector, slow time.Duration) *TimedDB {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: slow}
}

// RawDB returns the underlying *sql.DB for migrations and pool config.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// queryLabel reduces a statement to "VERB table", e.g. "SELECT booking".
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "?"
	}
	verb := strings.ToUpper(fields[0])
	for i, f := range fields {
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(fields) {
				return verb + " " + strings.Trim(fields[i+1], "(),;")
			}
		}
	}
	return verb
}

func (t *TimedDB) observe(label string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(queryLabel(query), start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing. Statements inside the transaction are not timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}
