package booking

import (
	"context"
	"time"

	domain "academy/internal/domain/booking"
)

// Store persists bookings and answers capacity questions about them.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Save(ctx context.Context, value domain.Booking) error

	// UpdateStatus moves a booking from one status to another.
	// PRE: from -> to is a valid transition
	// POST: Updated, or domain.ErrStatusChanged when the stored status is no longer from
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, confirmedAt time.Time) error
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// BookedPlayers sums players of non-cancelled bookings in month.
	// PRE: month is YYYY-MM
	// POST: Returns >= 0
	BookedPlayers(ctx context.Context, month string) (int, error)

	// InsertWithinCapacity inserts value only if the month still has room for its players.
	// PRE: value has been validated and is not cancelled
	// POST: Inserted, or capacity.ErrInsufficientSlots and nothing written
	InsertWithinCapacity(ctx context.Context, value domain.Booking, maxPerMonth int) error
}

// ListFilter carries filtering parameters for List and Count.
// Zero values match everything; a zero Limit returns every matching row.
type ListFilter struct {
	UserID      string
	Status      domain.Status
	PackageType domain.PackageType
	Month       string
	Limit       int
	Offset      int
}
