// Package events publishes booking lifecycle events to a message broker
// for consumers outside the dashboard (accounting, messaging bots).
package events

import (
	"context"
	"time"
)

// Event types double as queue names.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// Queues lists every queue the AMQP publisher declares.
var Queues = []string{TypeBookingCreated, TypeBookingConfirmed, TypeBookingCancelled}

// BookingEvent is the message body for every booking event.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	PackageType string    `json:"package_type"`
	Month       string    `json:"month"`
	Players     int       `json:"players"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher sends booking events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
}
