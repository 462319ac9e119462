package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/adapters/events"
	"academy/internal/domain/account"
	"academy/internal/domain/booking"
	"academy/internal/domain/capacity"
	"academy/internal/domain/pricing"
)

// BookedPlayersReader reports how many players already hold a month.
type BookedPlayersReader interface {
	BookedPlayers(ctx context.Context, month string) (int, error)
}

// BookingStoreForCreate defines the store interface needed by CreateBooking.
type BookingStoreForCreate interface {
	BookedPlayersReader
	InsertWithinCapacity(ctx context.Context, b booking.Booking, maxPerMonth int) error
}

// UserLookup loads a user by ID.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (account.User, error)
}

// CreateBookingInput carries input for the orchestrator.
type CreateBookingInput struct {
	UserID      string
	PackageType booking.PackageType
	Month       string
	Players     int
}

// CreateBookingDeps holds dependencies for CreateBooking.
type CreateBookingDeps struct {
	BookingStore BookingStoreForCreate
	UserStore    UserLookup
	Prices       pricing.UnitPrices
	MaxPerMonth  int
	Notifier     BookingNotifier
	Now          func() time.Time
	GenerateID   func() string
}

// ErrUserRequired is returned when a booking is attempted without a signed-in user.
var ErrUserRequired = errors.New("sign in to book")

// ExecuteCreateBooking prices and stores a new pending booking.
// PRE: input.Players >= 1, input.Month is YYYY-MM, the user exists
// POST: Booking stored as pending with amount = unit price x players, or capacity.ErrInsufficientSlots
// INVARIANT: Booked players in the month never exceed MaxPerMonth
func ExecuteCreateBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (booking.Booking, error) {
	if input.UserID == "" {
		return booking.Booking{}, ErrUserRequired
	}
	amount, err := deps.Prices.Amount(input.PackageType, input.Players)
	if err != nil {
		return booking.Booking{}, err
	}
	user, err := deps.UserStore.GetByID(ctx, input.UserID)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("load user: %w", err)
	}

	now := nowOr(deps.Now)
	b := booking.Booking{
		ID:          idOr(deps.GenerateID),
		UserID:      user.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		PackageType: input.PackageType,
		Month:       input.Month,
		Players:     input.Players,
		Amount:      amount,
		Status:      booking.StatusPending,
		CreatedAt:   now,
	}
	if err := b.Validate(); err != nil {
		return booking.Booking{}, err
	}

	if err := deps.BookingStore.InsertWithinCapacity(ctx, b, deps.MaxPerMonth); err != nil {
		if errors.Is(err, capacity.ErrInsufficientSlots) {
			slog.Info("booking_event", "event", "booking_rejected", "user_id", b.UserID, "month", b.Month, "players", b.Players, "reason", "capacity")
		}
		return booking.Booking{}, err
	}

	slog.Info("booking_event", "event", "booking_created", "booking_id", b.ID, "user_id", b.UserID,
		"package", b.PackageType, "month", b.Month, "players", b.Players, "amount", b.Amount)
	deps.Notifier.Notify(ctx, events.TypeBookingCreated, b)
	return b, nil
}

// AvailableSlotsDeps holds dependencies for AvailableSlots.
type AvailableSlotsDeps struct {
	BookingStore BookedPlayersReader
	MaxPerMonth  int
}

// ExecuteAvailableSlots returns the free player slots for month.
// PRE: month is YYYY-MM
// POST: 0 <= result <= MaxPerMonth
func ExecuteAvailableSlots(ctx context.Context, month string, deps AvailableSlotsDeps) (int, error) {
	if _, err := booking.ParseMonth(month); err != nil {
		return 0, err
	}
	booked, err := deps.BookingStore.BookedPlayers(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("count booked players: %w", err)
	}
	return capacity.Remaining(booked, deps.MaxPerMonth), nil
}
