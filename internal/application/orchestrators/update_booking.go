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
	"academy/internal/domain/outbox"
	"academy/internal/domain/pricing"
)

// BookingStoreForUpdate defines the store interface needed by Confirm and Cancel.
type BookingStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to booking.Status, confirmedAt time.Time) error
}

// UserStoreForUpdate loads and saves users.
type UserStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (account.User, error)
	Save(ctx context.Context, u account.User) error
}

// Authorization errors.
var (
	ErrAdminRequired = errors.New("admin access required")
	ErrNotOwner      = errors.New("you can only change your own bookings")
)

// UpdateBookingInput identifies the booking and who is acting on it.
type UpdateBookingInput struct {
	BookingID string
	ActorID   string
	ActorRole string
}

// ConfirmBookingDeps holds dependencies for ConfirmBooking.
type ConfirmBookingDeps struct {
	BookingStore BookingStoreForUpdate
	UserStore    UserStoreForUpdate
	Outbox       OutboxWriter
	Notifier     BookingNotifier
	Now          func() time.Time
}

// ExecuteConfirmBooking marks a pending booking confirmed after the admin verifies payment.
// PRE: Actor is an admin; booking is pending
// POST: Booking confirmed, its user marked verified, confirmation email queued
func ExecuteConfirmBooking(ctx context.Context, input UpdateBookingInput, deps ConfirmBookingDeps) (booking.Booking, error) {
	if input.ActorRole != account.RoleAdmin {
		return booking.Booking{}, ErrAdminRequired
	}
	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return booking.Booking{}, err
	}

	now := nowOr(deps.Now)
	from := b.Status
	if err := b.Confirm(now); err != nil {
		return booking.Booking{}, err
	}
	if err := deps.BookingStore.UpdateStatus(ctx, b.ID, from, b.Status, b.ConfirmedAt); err != nil {
		return booking.Booking{}, fmt.Errorf("save booking: %w", err)
	}

	if u, err := deps.UserStore.GetByID(ctx, b.UserID); err == nil && !u.Verified {
		u.MarkVerified()
		if err := deps.UserStore.Save(ctx, u); err != nil {
			slog.Warn("user_verify_failed", "user_id", u.ID, "error", err)
		}
	}

	if deps.Outbox != nil && b.UserEmail != "" {
		_, err := enqueueOutbox(ctx, deps.Outbox, outbox.ActionTypeEmail, confirmationEmail(b), now)
		if err != nil {
			slog.Error("outbox_enqueue_failed", "booking_id", b.ID, "error", err)
		}
	}

	slog.Info("booking_event", "event", "booking_confirmed", "booking_id", b.ID, "admin_id", input.ActorID, "amount", b.Amount)
	deps.Notifier.Notify(ctx, events.TypeBookingConfirmed, b)
	return b, nil
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	BookingStore BookingStoreForUpdate
	Notifier     BookingNotifier
}

// ExecuteCancelBooking releases a booking's slots.
// PRE: Actor is an admin or the booking's owner
// POST: Booking cancelled and no longer counted against capacity
func ExecuteCancelBooking(ctx context.Context, input UpdateBookingInput, deps CancelBookingDeps) (booking.Booking, error) {
	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return booking.Booking{}, err
	}
	if input.ActorRole != account.RoleAdmin && b.UserID != input.ActorID {
		return booking.Booking{}, ErrNotOwner
	}
	from := b.Status
	if err := b.Cancel(); err != nil {
		return booking.Booking{}, err
	}
	if err := deps.BookingStore.UpdateStatus(ctx, b.ID, from, b.Status, time.Time{}); err != nil {
		return booking.Booking{}, fmt.Errorf("save booking: %w", err)
	}

	slog.Info("booking_event", "event", "booking_cancelled", "booking_id", b.ID, "actor_id", input.ActorID, "players_released", b.Players)
	deps.Notifier.Notify(ctx, events.TypeBookingCancelled, b)
	return b, nil
}

func confirmationEmail(b booking.Booking) EmailPayload {
	return EmailPayload{
		To:      []string{b.UserEmail},
		Subject: "Your " + b.Label() + " is confirmed",
		Markdown: fmt.Sprintf("Hi %s,\n\nYour payment has been verified.\n\n*Ref:* %s\n*Package:* %s\n*Month:* %s\n*Players:* %d\n*Amount:* %s\n\nSee you on court!",
			b.UserName, b.ID, b.Label(), booking.FormatMonth(b.Month), b.Players, pricing.FormatCurrency(b.Amount)),
	}
}
