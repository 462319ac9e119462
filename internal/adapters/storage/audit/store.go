package audit

import (
	"context"

	domain "academy/internal/domain/audit"
)

// Store persists the admin activity trail. Events are append-only.
type Store interface {
	// Save appends an audit event.
	// PRE: event has been validated
	Save(ctx context.Context, event domain.Event) error

	// List returns matching events, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Category   domain.Category
	Action     domain.Action
	ActorID    string
	ResourceID string
}

var _ Store = (*SQLiteStore)(nil)
