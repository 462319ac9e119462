// Package changefeed tells open dashboards that bookings or users changed,
// so they refresh instead of polling.
package changefeed

import (
	"context"
	"time"
)

// Event kinds
const (
	KindBookingCreated   = "booking.created"
	KindBookingConfirmed = "booking.confirmed"
	KindBookingCancelled = "booking.cancelled"
	KindUserCreated      = "user.created"
	KindUserDeleted      = "user.deleted"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events are dropped for it.
const subscriberBuffer = 16

// Event describes one change. Subscribers re-read state; events carry no snapshot.
type Event struct {
	Kind      string    `json:"kind"`
	BookingID string    `json:"booking_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Month     string    `json:"month,omitempty"`
	At        time.Time `json:"at"`
}

// Feed fans change events out to subscribers.
// Delivery is best effort: a subscriber that falls behind misses events.
type Feed interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe returns a channel of events and a cancel func that closes it.
	// The subscription also ends when ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, func())
}
