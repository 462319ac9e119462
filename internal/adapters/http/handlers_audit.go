package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"academy/internal/adapters/http/middleware"
	auditStore "academy/internal/adapters/storage/audit"
	"academy/internal/domain/audit"
)

// recordAudit appends an event for the signed-in actor. Failures are logged and never
// fail the request that triggered them.
func recordAudit(r *http.Request, category audit.Category, action audit.Action, resourceType, resourceID, desc string) {
	if stores.AuditStore == nil {
		return
	}
	sess := currentSession(r)
	e := audit.NewEvent(generateID(), timeNow(), sess.UserID, sess.Email, sess.Role, category, action).
		WithResource(resourceType, resourceID).
		WithDescription(desc).
		WithIP(middleware.ClientIP(r))
	if category == audit.CategorySecurity || action == audit.ActionDelete {
		e = e.WithSeverity(audit.SeverityWarning)
	}
	saveAudit(r, e)
}

func saveAudit(r *http.Request, e audit.Event) {
	if err := e.Validate(); err != nil {
		slog.Error("audit_invalid", "error", err)
		return
	}
	if err := stores.AuditStore.Save(r.Context(), e); err != nil {
		slog.Error("audit_save_failed", "action", e.Action, "resource_id", e.ResourceID, "error", err)
	}
}

// recordLoginFailure logs a failed login. There is no session yet, so the email is the actor.
func recordLoginFailure(r *http.Request, email string, locked bool) {
	if stores.AuditStore == nil {
		return
	}
	e := audit.NewEvent(generateID(), timeNow(), "", email, "", audit.CategorySecurity, audit.ActionLoginFailed).
		WithResource("account", email).
		WithIP(middleware.ClientIP(r)).
		WithSeverity(audit.SeverityWarning)
	if locked {
		e = e.WithSeverity(audit.SeverityCritical).WithDescription("account locked")
	}
	saveAudit(r, e)
}

// handleAdminAudit handles GET /api/admin/audit?category=&action=&actor_id=&resource_id=&limit=
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if stores.AuditStore == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []audit.Event{}})
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   audit.Category(q.Get("category")),
		Action:     audit.Action(q.Get("action")),
		ActorID:    q.Get("actor_id"),
		ResourceID: q.Get("resource_id"),
	}

	limit := 100
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
