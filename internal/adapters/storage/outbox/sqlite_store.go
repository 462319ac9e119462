package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/outbox"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("outbox entry not found")

const (
	timeLayout   = "2006-01-02T15:04:05.999999999Z07:00"
	entryColumns = "id, action_type, payload, status, attempts, max_attempts, last_attempted_at, created_at, external_id, error_message"
)

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM outbox WHERE id = ?", id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Save persists an outbox entry.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	lastAttemptedAt := ""
	if !e.LastAttemptedAt.IsZero() {
		lastAttemptedAt = e.LastAttemptedAt.Format(timeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, external_id=excluded.external_id,
		   error_message=excluded.error_message`,
		e.ID, e.ActionType, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		lastAttemptedAt, e.CreatedAt.Format(timeLayout), e.ExternalID, e.ErrorMessage)
	return err
}

// ListPending returns live entries, oldest first.
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx,
		"SELECT "+entryColumns+" FROM outbox WHERE status IN (?, ?) ORDER BY created_at ASC LIMIT ?",
		domain.StatusPending, domain.StatusRetrying, limit)
}

// ListFailed returns entries that ran out of attempts, most recent first.
func (s *SQLiteStore) ListFailed(ctx context.Context, limit int) ([]domain.Entry, error) {
	return s.list(ctx,
		"SELECT "+entryColumns+" FROM outbox WHERE status = ? ORDER BY last_attempted_at DESC LIMIT ?",
		domain.StatusFailed, limit)
}

// CountByStatus returns the number of entries in each status. Absent statuses are omitted.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM outbox GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Delete removes an outbox entry.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM outbox WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...interface{}) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// scanEntry extracts an Entry from a row scanner function.
func scanEntry(scan func(dest ...interface{}) error) (domain.Entry, error) {
	var e domain.Entry
	var createdAt, lastAttemptedAt string
	err := scan(&e.ID, &e.ActionType, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&lastAttemptedAt, &createdAt, &e.ExternalID, &e.ErrorMessage)
	if err != nil {
		return domain.Entry{}, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if lastAttemptedAt != "" {
		e.LastAttemptedAt, _ = time.Parse(time.RFC3339Nano, lastAttemptedAt)
	}
	return e, nil
}
