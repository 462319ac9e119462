package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"academy/internal/adapters/changefeed"
	"academy/internal/adapters/events"
	"academy/internal/domain/booking"
	"academy/internal/domain/outbox"

	"github.com/google/uuid"
)

// ChangePublisher receives change notifications for open dashboards.
type ChangePublisher interface {
	Publish(ctx context.Context, e changefeed.Event) error
}

// OutboxWriter queues side effects that failed inline.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// BookingNotifier fans a booking change out to dashboards and the broker.
// Every field is optional; a nil collaborator is skipped.
type BookingNotifier struct {
	Changes ChangePublisher
	Events  events.Publisher
	Outbox  OutboxWriter
	Now     func() time.Time
}

// Notify publishes kind for b. It never fails the caller: a broker failure is
// queued in the outbox and a change-feed failure is only logged.
func (n BookingNotifier) Notify(ctx context.Context, kind string, b booking.Booking) {
	now := nowOr(n.Now)

	if n.Changes != nil {
		err := n.Changes.Publish(ctx, changefeed.Event{
			Kind:      kind,
			BookingID: b.ID,
			UserID:    b.UserID,
			Month:     b.Month,
			At:        now,
		})
		if err != nil {
			slog.Warn("changefeed_publish_failed", "kind", kind, "booking_id", b.ID, "error", err)
		}
	}

	if n.Events == nil {
		return
	}
	ev := bookingEvent(kind, b, now)
	if err := n.Events.Publish(ctx, ev); err != nil {
		slog.Warn("booking_event_publish_failed", "type", kind, "booking_id", b.ID, "error", err)
		n.enqueue(ctx, outbox.ActionTypeBookingEvent, ev, now)
	}
}

func (n BookingNotifier) enqueue(ctx context.Context, actionType string, payload any, now time.Time) {
	if n.Outbox == nil {
		return
	}
	if _, err := enqueueOutbox(ctx, n.Outbox, actionType, payload, now); err != nil {
		slog.Error("outbox_enqueue_failed", "action_type", actionType, "error", err)
	}
}

// enqueueOutbox stores payload as a pending outbox entry and returns its ID.
func enqueueOutbox(ctx context.Context, store OutboxWriter, actionType string, payload any, now time.Time) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	entry := outbox.Entry{
		ID:         uuid.New().String(),
		ActionType: actionType,
		Payload:    string(body),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}
	if err := store.Save(ctx, entry); err != nil {
		return "", err
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "action_type", actionType)
	return entry.ID, nil
}

func bookingEvent(kind string, b booking.Booking, now time.Time) events.BookingEvent {
	return events.BookingEvent{
		Type:        kind,
		BookingID:   b.ID,
		UserID:      b.UserID,
		UserEmail:   b.UserEmail,
		PackageType: string(b.PackageType),
		Month:       b.Month,
		Players:     b.Players,
		Amount:      b.Amount,
		Status:      string(b.Status),
		OccurredAt:  now,
	}
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

func idOr(gen func() string) string {
	if gen == nil {
		return uuid.New().String()
	}
	return gen()
}
