package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"academy/internal/adapters/changefeed"
	"academy/internal/adapters/events"
	"academy/internal/adapters/http/middleware"
	"academy/internal/adapters/http/perf"
	accountStore "academy/internal/adapters/storage/account"
	auditStore "academy/internal/adapters/storage/audit"
	bookingStore "academy/internal/adapters/storage/booking"
	outboxStore "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/config"
	"academy/internal/domain/pricing"
)

// Stores holds all storage dependencies.
type Stores struct {
	UserStore    accountStore.Store
	BookingStore bookingStore.Store
	OutboxStore  outboxStore.Store
	AuditStore   auditStore.Store // nil disables the activity trail
}

// Services holds the collaborators that live outside the database.
type Services struct {
	Changes changefeed.Feed
	Events  events.Publisher
	Outbox  *orchestrators.OutboxProcessor
	// ScheduleHandoff queues the admin hand-off for a new booking. Nil skips it.
	ScheduleHandoff func(bookingID, athleteName string) error
}

// TrustedOrigins are the origins allowed to submit forms. Tests append their port.
var TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Globals set by NewMux.
var (
	stores        *Stores
	services      Services
	settings      config.Config
	sessions      *middleware.SessionStore
	perfCollector *perf.Collector
	wizards       *wizardStates
)

// loadCSRFKey decodes the hex CSRF secret. In production the key MUST be set;
// in development a random key is generated per startup.
func loadCSRFKey(cfg config.Config) []byte {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			log.Fatal("ACADEMY_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if cfg.IsProduction() {
		log.Fatal("ACADEMY_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key. Set ACADEMY_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; missing services fall back to in-process defaults
// POST: Returns the router wrapped in the middleware chain
func NewMux(staticDir string, s *Stores, svc Services, cfg config.Config, collector *perf.Collector) http.Handler {
	if svc.Changes == nil {
		svc.Changes = changefeed.NewMemory()
	}
	if svc.Events == nil {
		svc.Events = events.NewNoopPublisher()
	}
	if svc.Outbox == nil {
		svc.Outbox = orchestrators.NewOutboxProcessor(s.OutboxStore, nil)
	}
	stores = s
	services = svc
	settings = cfg
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	wizards = newWizardStates()
	middleware.SecureCookies = cfg.IsProduction()

	mux := http.NewServeMux()
	if staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost last: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(loadCSRFKey(cfg), cfg.IsProduction(), TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, cfg.SlowRequest),
	)
}

// prices returns the configured unit prices.
func prices() pricing.UnitPrices {
	return pricing.UnitPrices{Weekly: settings.PriceWeekly, Monthly: settings.PriceMonthly}
}

// notifier builds the change-feed and broker notifier for booking orchestrators.
func notifier() orchestrators.BookingNotifier {
	return orchestrators.BookingNotifier{
		Changes: services.Changes,
		Events:  services.Events,
		Outbox:  stores.OutboxStore,
		Now:     timeNow,
	}
}
