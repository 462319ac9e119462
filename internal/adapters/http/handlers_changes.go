package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"academy/internal/adapters/changefeed"
	"academy/internal/adapters/http/middleware"
)

// heartbeatInterval keeps idle event streams open through proxies.
var heartbeatInterval = 25 * time.Second

// visibleTo reports whether sess may see e. Athletes only hear about bookings,
// which is enough to refresh availability.
func visibleTo(sess middleware.Session, e changefeed.Event) bool {
	if sess.IsAdmin() {
		return true
	}
	return strings.HasPrefix(e.Kind, "booking.")
}

// redactFor strips identifiers an athlete has no business seeing. Their own
// bookings keep their IDs; everyone else's arrive as kind and month only.
func redactFor(sess middleware.Session, e changefeed.Event) changefeed.Event {
	if sess.IsAdmin() || e.UserID == sess.UserID {
		return e
	}
	e.BookingID = ""
	e.UserID = ""
	return e
}

// handleChanges handles GET /api/changes as a server-sent event stream.
// POST: One "event: <kind>" frame per visible change until the client goes away
func handleChanges(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Warn("sse_flush_unsupported", "error", err)
		return
	}

	events, cancel := services.Changes.Subscribe(r.Context())
	defer cancel()
	slog.Debug("sse_subscribed", "user_id", sess.UserID)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			if !visibleTo(sess, e) {
				continue
			}
			data, err := json.Marshal(redactFor(sess, e))
			if err != nil {
				slog.Warn("sse_encode_failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
