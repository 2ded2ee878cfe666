package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step. Steps are applied in order and
// each runs inside its own transaction together with the version bump.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "baseline schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				password_hash TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS trainer (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				bio TEXT NOT NULL DEFAULT '',
				FOREIGN KEY (account_id) REFERENCES account(id)
			)`,
			`CREATE TABLE IF NOT EXISTS gym_class (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				type TEXT NOT NULL,
				trainer_id TEXT NOT NULL,
				starts_at TEXT NOT NULL,
				max_capacity INTEGER NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				FOREIGN KEY (trainer_id) REFERENCES trainer(id)
			)`,
			`CREATE TABLE IF NOT EXISTS enrollment (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL,
				class_id TEXT NOT NULL,
				created_at TEXT NOT NULL,
				UNIQUE (member_id, class_id),
				FOREIGN KEY (member_id) REFERENCES account(id),
				FOREIGN KEY (class_id) REFERENCES gym_class(id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_enrollment_class ON enrollment(class_id)`,
			`CREATE TABLE IF NOT EXISTS locker (
				id TEXT PRIMARY KEY,
				number TEXT NOT NULL UNIQUE
			)`,
			`CREATE TABLE IF NOT EXISTS locker_assignment (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL UNIQUE,
				locker_id TEXT NOT NULL UNIQUE,
				assigned_at TEXT NOT NULL,
				FOREIGN KEY (member_id) REFERENCES account(id),
				FOREIGN KEY (locker_id) REFERENCES locker(id)
			)`,
			`CREATE TABLE IF NOT EXISTS availability (
				id TEXT PRIMARY KEY,
				trainer_id TEXT NOT NULL,
				day TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				FOREIGN KEY (trainer_id) REFERENCES trainer(id)
			)`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
// PRE: none
// POST: returns the highest known migration version
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reports the version recorded in schema_version, or 0 for a
// database that has never been migrated.
// PRE: db is a valid database connection
// POST: returns the current version without modifying the database
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// DSN builds the connection string for a database file: WAL for concurrent
// readers, a busy timeout, and immediate transactions so a writer takes the
// lock at BEGIN and waits its turn instead of failing mid-transaction with
// SQLITE_BUSY_SNAPSHOT.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_txlock=immediate"
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// PRE: db is a valid database connection; dbPath is used for logging only
// POST: all pending migrations applied, foreign keys enforced
// INVARIANT: running MigrateDB on an up-to-date database is a no-op
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
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
		if err := applyMigration(db, m); err != nil {
			return err
		}
		slog.Info("migration_event",
			"event", "migration_applied",
			"version", m.version,
			"description", m.description,
			"db", dbPath,
		)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	return tx.Commit()
}
