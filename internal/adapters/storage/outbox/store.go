package outbox

import (
	"context"

	domain "academy/internal/domain/outbox"
)

// Store persists side effects awaiting delivery.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error if not found
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry (insert or update).
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns live entries (pending or retrying), oldest first.
	// PRE: limit > 0
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that ran out of attempts, most recent first.
	// PRE: limit > 0
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)

	// CountByStatus returns the number of entries in each status.
	CountByStatus(ctx context.Context) (map[string]int, error)

	// Delete removes a terminal entry.
	Delete(ctx context.Context, id string) error
}
