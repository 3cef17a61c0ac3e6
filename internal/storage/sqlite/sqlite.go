// Package sqlite owns the storefront's relational store: connection setup,
// pragmas, and the schema for the catalog, cart, card, and order tables.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa: catalog reads keep flowing while a checkout transaction commits.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
//
// Money columns (price, subtotal, tax, shipping, total) are TEXT holding
// canonical decimal strings. SQLite's REAL would reintroduce the float
// rounding the decimal type exists to avoid.
const schema = `
CREATE TABLE IF NOT EXISTS watches (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    brand        TEXT    NOT NULL,
    model        TEXT    NOT NULL,
    price        TEXT    NOT NULL,
    description  TEXT    NOT NULL DEFAULT '',
    image_url    TEXT    NOT NULL DEFAULT '',

    -- Discontinued watches stay in the table so historical cart and order
    -- rows keep a valid product reference; default listings filter them out.
    discontinued INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cart_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username   TEXT    NOT NULL,
    product_id INTEGER NOT NULL REFERENCES watches(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    created_at TEXT    NOT NULL,
    updated_at TEXT    NOT NULL,

    -- One row per (user, product). Repeated adds merge into this row via
    -- upsert, so two concurrent adds cannot produce duplicates.
    UNIQUE (username, product_id)
);

CREATE INDEX IF NOT EXISTS idx_cart_items_username ON cart_items(username, updated_at);

CREATE TABLE IF NOT EXISTS payment_cards (
    id              TEXT    PRIMARY KEY,
    username        TEXT    NOT NULL,
    card_number     TEXT    NOT NULL,
    cardholder_name TEXT    NOT NULL,
    expiry_month    INTEGER NOT NULL,
    expiry_year     INTEGER NOT NULL,

    -- Stored but never serialised in any response.
    cvv             TEXT    NOT NULL,
    created_at      TEXT    NOT NULL,

    UNIQUE (username, card_number)
);

CREATE INDEX IF NOT EXISTS idx_payment_cards_username ON payment_cards(username);

CREATE TABLE IF NOT EXISTS orders (
    id         TEXT PRIMARY KEY,
    username   TEXT NOT NULL,
    card_id    TEXT NOT NULL,
    subtotal   TEXT NOT NULL DEFAULT '0',
    tax        TEXT NOT NULL DEFAULT '0',
    shipping   TEXT NOT NULL DEFAULT '0',
    total      TEXT NOT NULL DEFAULT '0',
    status     TEXT NOT NULL DEFAULT 'completed',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_username ON orders(username, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id   TEXT    NOT NULL REFERENCES orders(id),
    product_id INTEGER NOT NULL,
    quantity   INTEGER NOT NULL,

    -- Unit price captured at purchase time, decoupled from the live catalog
    -- price so old orders survive later repricing.
    price      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Open opens (or creates) the SQLite database at the given path and applies
// the schema. WAL mode is enabled for better concurrent read/write
// performance.
//
//	db, err := sqlite.Open("./data/storefront.db")
func Open(path string) (*sql.DB, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces integrity.
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	// Readers can use additional connections from the pool.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// FormatTime renders a timestamp the way every table stores it.
// SQLite has no native datetime type; we store RFC3339 TEXT.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses the timestamp strings stored in SQLite.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
