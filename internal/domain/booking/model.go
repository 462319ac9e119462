package booking

import (
	"errors"
	"strings"
	"time"
)

// PackageType identifies the training pass a booking buys.
type PackageType string

// Package types
const (
	PackageWeekly  PackageType = "weekly"
	PackageMonthly PackageType = "monthly"
)

// Status tracks the admin approval lifecycle of a booking.
type Status string

// Status constants
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Domain errors
var (
	ErrEmptyID            = errors.New("booking ID cannot be empty")
	ErrEmptyUserID        = errors.New("user ID cannot be empty")
	ErrEmptyUserName      = errors.New("user name cannot be empty")
	ErrInvalidPackageType = errors.New("package type must be weekly or monthly")
	ErrInvalidPlayers     = errors.New("player count must be at least 1")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrInvalidStatus      = errors.New("status must be pending, confirmed, or cancelled")
	ErrAlreadyConfirmed   = errors.New("booking is already confirmed")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrCancelled          = errors.New("cancelled bookings cannot be confirmed")
	ErrStatusChanged      = errors.New("booking was changed by someone else, reload and try again")
)

// Booking is a purchased training pass for one or more players in a given month.
type Booking struct {
	ID          string
	UserID      string
	UserName    string
	UserEmail   string
	PackageType PackageType
	Month       string // YYYY-MM
	Players     int
	Amount      int64 // whole rupees
	Status      Status
	CreatedAt   time.Time
	ConfirmedAt time.Time
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(b.UserName) == "" {
		return ErrEmptyUserName
	}
	if !b.PackageType.Valid() {
		return ErrInvalidPackageType
	}
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	if b.Players < 1 {
		return ErrInvalidPlayers
	}
	if b.Amount < 0 {
		return ErrNegativeAmount
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Confirm marks a pending booking as confirmed after the admin verifies payment.
// PRE: Status is pending
// POST: Status is confirmed, ConfirmedAt is now
func (b *Booking) Confirm(now time.Time) error {
	switch b.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusCancelled:
		return ErrCancelled
	}
	b.Status = StatusConfirmed
	b.ConfirmedAt = now
	return nil
}

// Cancel releases the booking's slots.
// PRE: Status is pending or confirmed
// POST: Status is cancelled
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	return nil
}

// HoldsCapacity reports whether the booking consumes monthly slots.
// INVARIANT: Booking fields are not mutated
func (b *Booking) HoldsCapacity() bool {
	return b.Status != StatusCancelled
}

// Label returns the display name of the booking's package.
func (b *Booking) Label() string {
	return b.PackageType.Label()
}

// Valid reports whether t is a known package type.
func (t PackageType) Valid() bool {
	return t == PackageWeekly || t == PackageMonthly
}

// Label returns the display name shown on dashboards and receipts.
func (t PackageType) Label() string {
	switch t {
	case PackageMonthly:
		return "Monthly Pass"
	case PackageWeekly:
		return "Weekly Pass"
	}
	return ""
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}
