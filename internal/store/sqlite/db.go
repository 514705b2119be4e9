// Package sqlite provides the SQLite-backed implementations of every
// persistence port in the backend.
//
// WAL mode is enabled on Open so that readers never block writers: the
// purchase coordinator writes while catalog and payout reads are in
// flight.
//
// Concurrency-sensitive mutations are single conditional statements, never
// read-modify-write:
//
//   - ownership grants are INSERT OR IGNORE against a UNIQUE(user_id,
//     item_id) relation, so a grant is idempotent at the storage layer;
//   - purchase counters are "SET purchases = purchases + 1";
//   - payout settlement is one UPDATE ... RETURNING that claims and sums
//     the unpaid receipts in a single atomic step.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite avoids CGO requirements, keeping Docker (Alpine)
	// builds simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent via IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    token       TEXT NOT NULL UNIQUE,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sellable_items (
    id             TEXT PRIMARY KEY,
    creator_id     TEXT NOT NULL,
    title          TEXT NOT NULL,
    price          INTEGER NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    object_url     TEXT NOT NULL DEFAULT '',
    image          TEXT NOT NULL DEFAULT '',
    sellable_type  TEXT NOT NULL DEFAULT '',
    purchases      INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sellable_items_creator ON sellable_items(creator_id);

-- Ownership is a relation, not an embedded set on the user record.
-- The UNIQUE constraint makes grants idempotent and race-free.
CREATE TABLE IF NOT EXISTS ownerships (
    user_id     TEXT NOT NULL,
    item_id     TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    UNIQUE(user_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_ownerships_user ON ownerships(user_id);

CREATE TABLE IF NOT EXISTS receipts (
    id            TEXT PRIMARY KEY,
    order_id      TEXT NOT NULL DEFAULT '',
    payment_id    TEXT NOT NULL DEFAULT '',
    item_id       TEXT NOT NULL,
    buyer_id      TEXT NOT NULL,
    creator_id    TEXT NOT NULL,
    price         INTEGER NOT NULL,
    paid_creator  INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL
);

-- The payout queries always filter on (creator_id, paid_creator).
CREATE INDEX IF NOT EXISTS idx_receipts_creator_unpaid ON receipts(creator_id, paid_creator);

CREATE TABLE IF NOT EXISTS print_jobs (
    id          TEXT PRIMARY KEY,
    buyer_id    TEXT NOT NULL,
    title       TEXT NOT NULL,
    price       INTEGER NOT NULL,
    volume      INTEGER NOT NULL,
    quantity    INTEGER NOT NULL,
    object_url  TEXT NOT NULL DEFAULT '',
    address     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

-- Append-only audit trail of purchase finalizations. Each row is an
-- immutable event; MAX(updated_at) per execution_id gives current state.
CREATE TABLE IF NOT EXISTS purchase_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    execution_id    TEXT NOT NULL,
    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',
    payload         TEXT,
    error_messages  TEXT NOT NULL DEFAULT '[]',
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_purchase_logs_execution ON purchase_logs(execution_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_purchase_logs_trace ON purchase_logs(trace_id);
`

// DB wraps the SQLite handle and hands out repository implementations.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and
// applies the schema.
//
//	store, err := sqlite.Open("./data/backend.db")
func Open(path string) (*DB, error) {
	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the connection, for startup checks.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// formatTime renders timestamps the way they are stored: RFC3339 TEXT in
// UTC. SQLite has no native datetime type.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}

// parseTime parses the timestamp strings stored in SQLite.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of an empty TEXT.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
