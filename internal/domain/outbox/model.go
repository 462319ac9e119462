package outbox

import (
	"errors"
	"time"
)

// Status constants for outbox entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Action types handled by the outbox processor.
const (
	ActionTypeEmail        = "email"
	ActionTypeBookingEvent = "booking_event"
)

// DefaultMaxAttempts applies when an entry is saved without a limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyActionType = errors.New("action type is required")
	ErrEmptyPayload    = errors.New("payload is required")
	ErrEmptyCreatedAt  = errors.New("created_at must be set")
)

// Entry is a side effect (email, broker event) that failed inline and waits for a retry.
type Entry struct {
	ID              string
	ActionType      string
	Payload         string // JSON, decoded by the executor for ActionType
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	ExternalID      string // provider message ID once delivered
	ErrorMessage    string
}

// Validate checks that the Entry has valid data and fills the default attempt limit.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.ActionType == "" {
		return ErrEmptyActionType
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrEmptyCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry returns true while the entry is live and under its attempt limit.
func (e *Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying) && e.Attempts < e.MaxAttempts
}

// IsTerminal returns true once the entry is done, abandoned, or out of attempts.
func (e *Entry) IsTerminal() bool {
	switch e.Status {
	case StatusDone, StatusAbandoned, StatusFailed:
		return true
	}
	return false
}

// MarkAttempt records a delivery attempt.
// POST: Attempts incremented, LastAttemptedAt is now, status is retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess marks the entry as delivered.
func (e *Entry) MarkSuccess(externalID string) {
	e.Status = StatusDone
	e.ExternalID = externalID
	e.ErrorMessage = ""
}

// MarkFailed records err and gives up once the attempt limit is reached.
// POST: ErrorMessage set; Status is failed when Attempts >= MaxAttempts
func (e *Entry) MarkFailed(err error) {
	e.ErrorMessage = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}

// MarkAbandoned stops retries on admin request.
func (e *Entry) MarkAbandoned() {
	e.Status = StatusAbandoned
}

// DueAt returns when the next attempt may run: 2^attempts * base, capped at maxDelay.
func (e *Entry) DueAt(base, maxDelay time.Duration) time.Time {
	if e.LastAttemptedAt.IsZero() {
		return e.CreatedAt
	}
	delay := base * time.Duration(1<<min(e.Attempts, 20))
	if delay > maxDelay {
		delay = maxDelay
	}
	return e.LastAttemptedAt.Add(delay)
}
