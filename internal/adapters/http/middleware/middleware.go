package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// visitorTTL is how long an idle client keeps its bucket.
const visitorTTL = 5 * time.Minute

// RateLimiter provides a per-IP token bucket rate limiter.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      int           // tokens per interval
	interval  time.Duration // refill interval
	lastPrune time.Time
	now       func() time.Time
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing `rate` requests per `interval`.
// Idle visitors are pruned during Allow, so no background goroutine is needed.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// Allow checks if a request from the given IP is allowed.
// PRE: ip is non-empty
// POST: Returns true if within rate limit, false if exceeded
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	refill := int(now.Sub(v.lastSeen)/rl.interval) * rl.rate
	v.tokens += refill
	if v.tokens > rl.rate {
		v.tokens = rl.rate
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		slog.Warn("rate_limit_exceeded", "ip", ip)
		return false
	}
	v.tokens--
	return true
}

// prune drops idle visitors at most once a minute. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) < time.Minute {
		return
	}
	rl.lastPrune = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// ClientIP strips the port from RemoteAddr so every connection of a client shares a bucket.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit returns middleware that limits requests per IP.
// The change stream is exempt: it is one long-lived request per tab.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/changes" && !limiter.Allow(ClientIP(r)) {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds OWASP recommended headers.
// Payment QR codes are served locally or from api.qrserver.com.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self'; img-src 'self' data: https://api.qrserver.com; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRF returns a handler that protects form submissions against CSRF attacks.
// PRE: authKey is 32 bytes
// JSON API requests (Content-Type: application/json) are exempt; the SameSite=Strict
// session cookie covers them.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	csrfProtect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)

	return func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares in order (outer to inner).
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
