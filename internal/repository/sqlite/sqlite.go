// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed.
//
// All coordination (uniqueness, the first-user count, cascade deletes) is
// delegated to SQLite's transactional guarantees. Multi-statement operations
// run inside one sql.Tx — all-or-nothing.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The repository implementations are
// exposed as sub-stores (Users, Scans, Connections, Stats) sharing this
// pool, so each interface gets its own method set.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/hackathon.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	// _time_format=sqlite makes the driver bind time.Time values in SQLite's
	// own datetime text format. Without it the stored strings are opaque to
	// strftime(), which the analytics queries rely on for hour bucketing.
	//
	// foreign_keys is connection-scoped in SQLite and OFF by default, and
	// database/sql opens new physical connections on demand — a one-off
	// `PRAGMA foreign_keys=ON` would cover only the connection it ran on.
	// Putting the pragma in the DSN makes the driver apply it to every
	// connection the pool opens. We need it everywhere: scans must always
	// reference an existing user.
	dsn := dbPath
	if !strings.Contains(dsn, "?") {
		dsn += "?_time_format=sqlite&_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per physical connection, so a pool of
	// them would hand out fresh, schema-less databases. Cap the pool at one
	// connection so every query sees the same data.
	if strings.Contains(dbPath, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where many requests hit the DB. Unlike
	// foreign_keys this setting is persistent in the database file, so one
	// statement covers the whole pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user store backed by this connection pool.
// The sub-store types exist so each repository interface gets its own method
// set (Create on users and Create on scans would otherwise collide).
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Scans returns the scan store backed by this connection pool.
func (db *DB) Scans() *ScanStore { return &ScanStore{db: db} }

// Connections returns the connection store backed by this connection pool.
func (db *DB) Connections() *ConnectionStore { return &ConnectionStore{db: db} }

// Stats returns the read-only analytics store.
func (db *DB) Stats() *StatsStore { return &StatsStore{db: db} }

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe to run on every start.
//
// updated_at is nullable on purpose: non-NULL means "checked in", NULL means
// "checked out". The marker doubles as the profile-update timestamp.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			phone         TEXT NOT NULL,
			badge_code    TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			updated_at    DATETIME,
			is_active     BOOLEAN NOT NULL DEFAULT 1,
			is_admin      BOOLEAN NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
		CREATE INDEX IF NOT EXISTS idx_users_badge_code ON users(badge_code);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id           INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			activity_name     TEXT NOT NULL,
			activity_category TEXT NOT NULL,
			scanned_at        DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scans_user_id ON scans(user_id);
		CREATE INDEX IF NOT EXISTS idx_scans_activity_name ON scans(activity_name);
	`)
	if err != nil {
		return fmt.Errorf("creating scans table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS connections (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id1 INTEGER NOT NULL REFERENCES users(id),
			user_id2 INTEGER NOT NULL REFERENCES users(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating connections table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The modernc driver surfaces constraint failures as plain errors with the
// SQLite message text, so we match on it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint
// failure (e.g. inserting a scan for a user id that doesn't exist).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
