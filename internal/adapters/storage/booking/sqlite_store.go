package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/booking"
	"academy/internal/domain/capacity"
)

// ErrNotFound is returned when no booking has the requested ID.
var ErrNotFound = errors.New("booking not found")

const (
	timeLayout     = "2006-01-02T15:04:05.999999999Z07:00"
	bookingColumns = "id, user_id, user_name, user_email, package_type, month, players, amount, status, created_at, confirmed_at"
	insertBooking  = "INSERT INTO booking (" + bookingColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	sumPlayers     = "SELECT COALESCE(SUM(players), 0) FROM booking WHERE month = ? AND status != 'cancelled'"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the booking or an error wrapping ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM booking WHERE id = ?", id)
	entity, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entity, err
}

// Save persists a Booking (insert or update). It does not check capacity;
// new bookings go through InsertWithinCapacity.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		insertBooking+` ON CONFLICT(id) DO UPDATE SET
		   user_name=excluded.user_name, user_email=excluded.user_email,
		   package_type=excluded.package_type, month=excluded.month, players=excluded.players,
		   amount=excluded.amount, status=excluded.status, confirmed_at=excluded.confirmed_at`,
		bookingArgs(entity)...)
	return err
}

// UpdateStatus changes the status only while the row still holds from.
// A zero confirmedAt leaves confirmed_at as it was.
// PRE: from -> to is a valid transition
// POST: Updated; ErrNotFound for an unknown id; domain.ErrStatusChanged when from is stale
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, from, to domain.Status, confirmedAt time.Time) error {
	var confirmed interface{}
	if !confirmedAt.IsZero() {
		confirmed = confirmedAt.Format(timeLayout)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE booking SET status = ?, confirmed_at = COALESCE(?, confirmed_at) WHERE id = ? AND status = ?",
		string(to), confirmed, id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s is no longer %s", domain.ErrStatusChanged, id, from)
}

// InsertWithinCapacity recounts the month and inserts in one transaction.
// SQLite serialises writers, so two racing inserts cannot both pass the check.
func (s *SQLiteStore) InsertWithinCapacity(ctx context.Context, entity domain.Booking, maxPerMonth int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Take the write lock before reading so the count cannot go stale.
	if _, err := tx.ExecContext(ctx, "UPDATE booking SET id = id WHERE 0"); err != nil {
		return err
	}

	var booked int
	if err := tx.QueryRowContext(ctx, sumPlayers, entity.Month).Scan(&booked); err != nil {
		return fmt.Errorf("count booked players: %w", err)
	}
	if capacity.Remaining(booked, maxPerMonth) < entity.Players {
		return capacity.ErrInsufficientSlots
	}

	if _, err := tx.ExecContext(ctx, insertBooking, bookingArgs(entity)...); err != nil {
		return err
	}
	return tx.Commit()
}

// BookedPlayers sums players of non-cancelled bookings in month.
func (s *SQLiteStore) BookedPlayers(ctx context.Context, month string) (int, error) {
	var booked int
	err := s.db.QueryRowContext(ctx, sumPlayers, month).Scan(&booked)
	return booked, err
}

// List retrieves bookings matching filter, newest first.
// PRE: filter has valid parameters
// POST: Returns matching bookings
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	where, args := filterClause(filter)
	query := "SELECT " + bookingColumns + " FROM booking" + where + " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Booking
	for rows.Next() {
		entity, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of bookings matching filter. Limit and Offset are ignored.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filterClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM booking"+where, args...).Scan(&count)
	return count, err
}

func filterClause(filter ListFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.PackageType != "" {
		conds = append(conds, "package_type = ?")
		args = append(args, string(filter.PackageType))
	}
	if filter.Month != "" {
		conds = append(conds, "month = ?")
		args = append(args, filter.Month)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func bookingArgs(b domain.Booking) []interface{} {
	var confirmedAt interface{}
	if !b.ConfirmedAt.IsZero() {
		confirmedAt = b.ConfirmedAt.Format(timeLayout)
	}
	return []interface{}{
		b.ID,
		b.UserID,
		b.UserName,
		b.UserEmail,
		string(b.PackageType),
		b.Month,
		b.Players,
		b.Amount,
		string(b.Status),
		b.CreatedAt.Format(timeLayout),
		confirmedAt,
	}
}

// scanBooking extracts a Booking from a row scanner function.
func scanBooking(scan func(dest ...interface{}) error) (domain.Booking, error) {
	var b domain.Booking
	var packageType, status, createdAt string
	var confirmedAt sql.NullString
	err := scan(
		&b.ID,
		&b.UserID,
		&b.UserName,
		&b.UserEmail,
		&packageType,
		&b.Month,
		&b.Players,
		&b.Amount,
		&status,
		&createdAt,
		&confirmedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.PackageType = domain.PackageType(packageType)
	b.Status = domain.Status(status)
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if confirmedAt.Valid && confirmedAt.String != "" {
		b.ConfirmedAt, _ = time.Parse(time.RFC3339Nano, confirmedAt.String)
	}
	return b, nil
}
