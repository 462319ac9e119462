package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/account"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

const (
	timeLayout  = "2006-01-02T15:04:05.999999999Z07:00"
	userColumns = "id, name, email, phone, password_hash, role, verified, created_at, failed_logins, locked_until"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a User by its ID.
// PRE: id is non-empty
// POST: Returns the user or an error wrapping ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user_account WHERE id = ?", id)
	return s.one(row)
}

// GetByEmail retrieves a User by email. The lookup is case-insensitive.
// PRE: email is non-empty
// POST: Returns the user or an error wrapping ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user_account WHERE email = ?", domain.NormalizeEmail(email))
	return s.one(row)
}

func (s *SQLiteStore) one(row *sql.Row) (domain.User, error) {
	entity, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return entity, err
}

// Save persists a User to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); email stored normalized
func (s *SQLiteStore) Save(ctx context.Context, entity domain.User) error {
	var lockedUntil interface{}
	if !entity.LockedUntil.IsZero() {
		lockedUntil = entity.LockedUntil.Format(timeLayout)
	}
	verified := 0
	if entity.Verified {
		verified = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_account (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone,
		   password_hash=excluded.password_hash, role=excluded.role, verified=excluded.verified,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		entity.ID,
		entity.Name,
		domain.NormalizeEmail(entity.Email),
		entity.Phone,
		entity.PasswordHash,
		entity.Role,
		verified,
		entity.CreatedAt.Format(timeLayout),
		entity.FailedLogins,
		lockedUntil,
	)
	return err
}

// Delete removes a User. Their bookings go with them through the foreign key cascade.
// PRE: id is non-empty
// POST: User with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM user_account WHERE id = ?", id)
	return err
}

// List retrieves Users based on the filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching users
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	var qb strings.Builder
	var where []string
	var args []interface{}

	qb.WriteString("SELECT " + userColumns + " FROM user_account")

	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		where = append(where, "(LOWER(name) LIKE ? OR email LIKE ?)")
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		qb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.User
	for rows.Next() {
		entity, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_account").Scan(&count)
	return count, err
}

// scanUser extracts a User from a row scanner function.
func scanUser(scan func(dest ...interface{}) error) (domain.User, error) {
	var entity domain.User
	var createdAt string
	var verified int
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&entity.Phone,
		&entity.PasswordHash,
		&entity.Role,
		&verified,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.User{}, err
	}
	entity.Verified = verified != 0
	entity.CreatedAt, _ = parseTime(createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = parseTime(lockedUntil.String)
	}
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
