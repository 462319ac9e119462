package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the academy server.
type Config struct {
	Addr   string
	Env    string
	DBPath string

	MaxPlayersPerMonth int
	PriceWeekly        int64
	PriceMonthly       int64

	UPIID          string
	PayeeName      string
	WhatsAppNumber string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	ResendKey  string
	ResendFrom string
	ReplyTo    string

	RedisURL string
	AMQPURL  string

	CSRFKey string // 64 hex characters; required in production

	HandoffDelay   time.Duration
	OutboxInterval time.Duration

	SlowQuery   time.Duration
	SlowRequest time.Duration
}

// IsProduction reports whether the server runs with ACADEMY_ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
// PRE: none
// POST: Returns a Config with defaults applied for unset keys
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv_load_failed", "error", err)
	}

	return Config{
		Addr:   envOrDefault("ACADEMY_ADDR", ":8080"),
		Env:    envOrDefault("ACADEMY_ENV", "development"),
		DBPath: envOrDefault("ACADEMY_DB_PATH", "academy.db"),

		MaxPlayersPerMonth: envInt("ACADEMY_MAX_PLAYERS_PER_MONTH", 10),
		PriceWeekly:        int64(envInt("ACADEMY_PRICE_WEEKLY", 500)),
		PriceMonthly:       int64(envInt("ACADEMY_PRICE_MONTHLY", 1500)),

		UPIID:          envOrDefault("ACADEMY_UPI_ID", "dribbleground@upi"),
		PayeeName:      envOrDefault("ACADEMY_PAYEE_NAME", "DribbleGround"),
		WhatsAppNumber: envOrDefault("ACADEMY_WHATSAPP_NUMBER", "918084970887"),

		AdminEmail:    envOrDefault("ACADEMY_ADMIN_EMAIL", "admin@dribbleground.in"),
		AdminPassword: envOrDefault("ACADEMY_ADMIN_PASSWORD", "change-me-admin"),
		AdminName:     envOrDefault("ACADEMY_ADMIN_NAME", "Academy Admin"),

		ResendKey:  os.Getenv("ACADEMY_RESEND_KEY"),
		ResendFrom: envOrDefault("ACADEMY_RESEND_FROM", "DribbleGround Academy <noreply@dribbleground.in>"),
		ReplyTo:    envOrDefault("ACADEMY_REPLY_TO", "admin@dribbleground.in"),

		RedisURL: os.Getenv("ACADEMY_REDIS_URL"),
		AMQPURL:  os.Getenv("ACADEMY_AMQP_URL"),

		CSRFKey: os.Getenv("ACADEMY_CSRF_KEY"),

		HandoffDelay:   envDuration("ACADEMY_HANDOFF_DELAY", 2*time.Second),
		OutboxInterval: envDuration("ACADEMY_OUTBOX_INTERVAL", time.Minute),

		SlowQuery:   time.Duration(envInt("ACADEMY_SLOW_QUERY_MS", 50)) * time.Millisecond,
		SlowRequest: time.Duration(envInt("ACADEMY_SLOW_REQUEST_MS", 500)) * time.Millisecond,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("config_invalid_int", "key", key, "value", v)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("config_invalid_duration", "key", key, "value", v)
		return fallback
	}
	return d
}
