package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step. Steps run in order inside a transaction.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, name: "baseline", up: migrateBaseline},
	{version: 2, name: "booking_status_index", up: migrateBookingStatusIndex},
	{version: 3, name: "audit_event", up: migrateAuditEvent},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// MigrateDB enables SQLite pragmas and applies all pending migrations.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion; running again is a no-op
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			return err
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

func migrateBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_account (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS booking (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		user_email TEXT NOT NULL,
		package_type TEXT NOT NULL,
		month TEXT NOT NULL,
		players INTEGER NOT NULL CHECK (players >= 1),
		amount INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		confirmed_at TEXT,
		FOREIGN KEY (user_id) REFERENCES user_account(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_booking_month ON booking(month);
	CREATE INDEX IF NOT EXISTS idx_booking_user ON booking(user_id);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := tx.Exec(schema)
	return err
}

func migrateBookingStatusIndex(tx *sql.Tx) error {
	_, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_booking_status ON booking(status, created_at)")
	return err
}

func migrateAuditEvent(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		actor_id TEXT NOT NULL DEFAULT '',
		actor_email TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_event(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_event(resource_id);
	`)
	return err
}
