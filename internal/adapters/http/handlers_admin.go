package web

import (
	"net/http"
	"strconv"
	"time"

	"academy/internal/domain/audit"
	"academy/internal/domain/outbox"
)

// handleAdminPerf handles GET /api/admin/perf?minutes=. Default window is 15 minutes.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	minutes := 15
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24*60 {
			badRequest(w, "minutes must be between 1 and 1440")
			return
		}
		minutes = n
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "performance collection disabled"})
		return
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}

type outboxEntryView struct {
	ID              string     `json:"id"`
	ActionType      string     `json:"action_type"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

func toOutboxView(e outbox.Entry) outboxEntryView {
	v := outboxEntryView{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		at := e.LastAttemptedAt
		v.LastAttemptedAt = &at
	}
	return v
}

const outboxListLimit = 100

// handleAdminOutbox handles GET /api/admin/outbox?status=pending|failed
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	list := stores.OutboxStore.ListPending
	switch r.URL.Query().Get("status") {
	case "", outbox.StatusPending:
	case outbox.StatusFailed:
		list = stores.OutboxStore.ListFailed
	default:
		badRequest(w, "status must be pending or failed")
		return
	}

	entries, err := list(r.Context(), outboxListLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	counts, err := stores.OutboxStore.CountByStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toOutboxView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": views, "counts": counts})
}

// handleAdminOutboxAction handles POST /api/admin/outbox/{id}/{action} where action is retry or abandon.
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var err error
	var action audit.Action
	switch r.PathValue("action") {
	case "retry":
		action = audit.ActionRetry
		err = services.Outbox.ProcessSingle(r.Context(), id)
	case "abandon":
		action = audit.ActionAbandon
		err = services.Outbox.AbandonEntry(r.Context(), id)
	default:
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown outbox action"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := stores.OutboxStore.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	recordAudit(r, audit.CategoryOutbox, action, "outbox", entry.ID, entry.ActionType+" now "+entry.Status)
	writeJSON(w, http.StatusOK, toOutboxView(entry))
}
