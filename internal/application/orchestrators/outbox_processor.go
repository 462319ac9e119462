package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "academy/internal/adapters/email"
	"academy/internal/adapters/events"
	domain "academy/internal/domain/outbox"
)

// OutboxStore defines the store interface needed by the processor.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor performs one kind of deferred side effect.
type ActionExecutor interface {
	// Execute runs the action for payload and returns the provider's ID for it.
	Execute(ctx context.Context, payload string) (string, error)
}

// OutboxProcessor retries queued side effects with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a processor with executors keyed by action type.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 20,
		now:       time.Now,
	}
}

// ProcessResult counts what one pass did.
type ProcessResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int // still backing off
}

// ProcessPending attempts every due entry once.
// PRE: Context is valid
// POST: Due entries attempted; failures rescheduled or marked failed at the attempt limit
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessResult, error) {
	var res ProcessResult
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return res, fmt.Errorf("list pending outbox entries: %w", err)
	}

	now := p.now()
	for _, entry := range entries {
		if now.Before(entry.DueAt(p.baseDelay, p.maxDelay)) {
			res.Skipped++
			continue
		}
		res.Attempted++
		if p.attempt(ctx, &entry) {
			res.Succeeded++
		} else {
			res.Failed++
		}
		if err := p.store.Save(ctx, entry); err != nil {
			slog.Error("outbox_save_failed", "entry_id", entry.ID, "error", err)
		}
	}
	if res.Attempted > 0 {
		slog.Info("outbox_pass", "attempted", res.Attempted, "succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped)
	}
	return res, nil
}

// attempt runs entry's executor and records the outcome on entry.
func (p *OutboxProcessor) attempt(ctx context.Context, entry *domain.Entry) bool {
	entry.MarkAttempt(p.now())

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		entry.Status = domain.StatusFailed
		slog.Error("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "reason", "no_executor")
		return false
	}

	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "error", err)
		return false
	}
	entry.MarkSuccess(externalID)
	slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	return true
}

// ErrOutboxEntryClosed is returned when retrying a delivered or abandoned entry.
var ErrOutboxEntryClosed = errors.New("outbox entry can no longer be retried")

// ProcessSingle retries one entry now, ignoring backoff (admin retry).
// PRE: entryID names a live entry
// POST: Entry attempted and saved
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.Status == domain.StatusDone || entry.Status == domain.StatusAbandoned {
		return fmt.Errorf("entry %s is %s: %w", entryID, entry.Status, ErrOutboxEntryClosed)
	}
	if entry.Status == domain.StatusFailed {
		entry.MaxAttempts = entry.Attempts + 1
		entry.Status = domain.StatusRetrying
	}
	p.attempt(ctx, &entry)
	return p.store.Save(ctx, entry)
}

// AbandonEntry stops retries for an entry.
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	slog.Info("outbox_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
	return p.store.Save(ctx, entry)
}

// Run is a scheduler task: one pass with a bounded context.
func (p *OutboxProcessor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := p.ProcessPending(ctx); err != nil {
		slog.Error("outbox_pass_failed", "error", err)
	}
}

// EmailExecutor delivers queued EmailPayload messages.
type EmailExecutor struct {
	Mailer emailAdapter.Sender
}

// Execute renders and sends the payload.
// PRE: payload is a JSON EmailPayload
// POST: Email accepted by the provider; returns its message ID
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal email payload: %w", err)
	}
	sent, err := sendEmailPayload(ctx, e.Mailer, p)
	if err != nil {
		return "", err
	}
	return sent.MessageID, nil
}

// BookingEventExecutor republishes booking events the broker rejected earlier.
type BookingEventExecutor struct {
	Publisher events.Publisher
}

// Execute publishes the payload.
// PRE: payload is a JSON events.BookingEvent
func (e *BookingEventExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var ev events.BookingEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return "", fmt.Errorf("unmarshal booking event: %w", err)
	}
	if err := e.Publisher.Publish(ctx, ev); err != nil {
		return "", err
	}
	return ev.Type + ":" + ev.BookingID, nil
}
