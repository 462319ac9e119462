package projections

import (
	"context"

	"academy/internal/adapters/storage/account"
	"academy/internal/adapters/storage/booking"
	domainAccount "academy/internal/domain/account"
	domainBooking "academy/internal/domain/booking"
)

// BookingStore interface for booking queries.
type BookingStore interface {
	List(ctx context.Context, filter booking.ListFilter) ([]domainBooking.Booking, error)
	Count(ctx context.Context, filter booking.ListFilter) (int, error)
}

// AvailabilityReader reads the capacity used by a month.
type AvailabilityReader interface {
	BookedPlayers(ctx context.Context, month string) (int, error)
}

// UserStore interface for user queries.
type UserStore interface {
	List(ctx context.Context, filter account.ListFilter) ([]domainAccount.User, error)
	Count(ctx context.Context) (int, error)
}
