package audit

import (
	"context"
	"strings"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/audit"
)

const (
	timeLayout   = "2006-01-02T15:04:05.999999999Z07:00"
	eventColumns = "id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_type, resource_id, description, ip_address"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends an audit event.
// PRE: event is valid
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Timestamp.UTC().Format(timeLayout), string(e.Category), string(e.Action), string(e.Severity),
		e.ActorID, e.ActorEmail, e.ActorRole, e.ResourceType, e.ResourceID, e.Description, e.IPAddress)
	return err
}

// List returns matching events ordered by timestamp desc.
// PRE: limit > 0
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	var qb strings.Builder
	qb.WriteString("SELECT " + eventColumns + " FROM audit_event WHERE 1=1")
	var args []any

	if filter.Category != "" {
		qb.WriteString(" AND category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Action != "" {
		qb.WriteString(" AND action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.ActorID != "" {
		qb.WriteString(" AND actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.ResourceID != "" {
		qb.WriteString(" AND resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	qb.WriteString(" ORDER BY timestamp DESC, rowid DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail,
			&e.ActorRole, &e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timeLayout, ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
