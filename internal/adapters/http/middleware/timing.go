package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"academy/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold used when Timing gets a non-positive value.
const DefaultSlowRequest = 500 * time.Millisecond

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer's Flush.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// untimed reports paths that are never recorded: static assets and the
// long-lived change stream, whose duration is the lifetime of a browser tab.
func untimed(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/api/changes"
}

// Timing returns middleware that logs request duration.
// Normal requests log at DEBUG; requests slower than slow log at WARN.
// If collector is non-nil, entries are recorded for the perf endpoint.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if untimed(path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				level := slog.LevelDebug
				msg := "request"
				if elapsed >= slow {
					level = slog.LevelWarn
					msg = "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"status", sw.status,
					"duration_ms", durationMs,
				)

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + path,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
