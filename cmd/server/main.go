package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/changefeed"
	emailPkg "academy/internal/adapters/email"
	"academy/internal/adapters/events"
	web "academy/internal/adapters/http"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/scheduler"
	"academy/internal/adapters/storage"
	accountStore "academy/internal/adapters/storage/account"
	auditStore "academy/internal/adapters/storage/audit"
	bookingStore "academy/internal/adapters/storage/booking"
	outboxStorePkg "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/config"
	"academy/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	if !cfg.IsProduction() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// WAL mode, foreign keys and busy timeout on every pooled connection
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		UserStore:    accountStore.NewSQLiteStore(timedDB),
		BookingStore: bookingStore.NewSQLiteStore(timedDB),
		OutboxStore:  outboxStorePkg.NewSQLiteStore(timedDB),
		AuditStore:   auditStore.NewSQLiteStore(timedDB),
	}

	seedDeps := orchestrators.RegisterUserDeps{UserStore: stores.UserStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Email
	var mailer emailPkg.Sender
	if cfg.ResendKey != "" {
		mailer = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		mailer = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: ACADEMY_RESEND_KEY is not set, admin hand-off emails are DISABLED")
		} else {
			log.Println("Email sender configured (noop, set ACADEMY_RESEND_KEY for real delivery)")
		}
	}

	// Change feed for open dashboards
	var feed changefeed.Feed = changefeed.NewMemory()
	if cfg.RedisURL != "" {
		rf, err := changefeed.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect change feed: %v", err)
		}
		defer rf.Close()
		feed = rf
		log.Println("Change feed configured (Redis)")
	}

	// Booking events for downstream consumers
	var publisher events.Publisher = events.NewNoopPublisher()
	if cfg.AMQPURL != "" {
		ap := events.NewAMQPPublisher(cfg.AMQPURL)
		defer ap.Close()
		publisher = ap
		log.Println("Booking events configured (AMQP)")
	}

	outboxProcessor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail:        &orchestrators.EmailExecutor{Mailer: mailer},
		outbox.ActionTypeBookingEvent: &orchestrators.BookingEventExecutor{Publisher: publisher},
	})

	sched, err := scheduler.New()
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	if _, err := sched.Every(cfg.OutboxInterval, "outbox", outboxProcessor.Run); err != nil {
		log.Fatalf("failed to schedule outbox: %v", err)
	}
	handoffDeps := orchestrators.HandoffDeps{
		BookingStore:   stores.BookingStore,
		Mailer:         mailer,
		Outbox:         stores.OutboxStore,
		AdminEmail:     cfg.AdminEmail,
		WhatsAppNumber: cfg.WhatsAppNumber,
		Now:            time.Now,
	}
	scheduleHandoff := func(bookingID, athleteName string) error {
		_, err := sched.After(cfg.HandoffDelay, "handoff:"+bookingID, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := orchestrators.ExecuteHandoff(ctx, orchestrators.HandoffInput{
				BookingID:   bookingID,
				AthleteName: athleteName,
			}, handoffDeps); err != nil {
				slog.Error("booking_event", "event", "handoff_failed", "booking_id", bookingID, "error", err)
			}
		})
		return err
	}
	sched.Start()

	mux := web.NewMux("static", stores, web.Services{
		Changes:         feed,
		Events:          publisher,
		Outbox:          outboxProcessor,
		ScheduleHandoff: scheduleHandoff,
	}, cfg, collector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WriteTimeout stays zero so /api/changes streams are not cut off.
	// Request contexts derive from ctx, so open streams end on shutdown.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Printf("Academy %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	if err := sched.Shutdown(); err != nil {
		slog.Error("scheduler_shutdown_failed", "error", err)
	}
}
