// Package storage handles data persistence: the SQLite export history and
// the directory holding finished archives and videos.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Blank import: registers the SQLite driver.
)

// schema is applied on every start; every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS exports (
    id            TEXT PRIMARY KEY,
    template      TEXT NOT NULL,
    kind          TEXT NOT NULL,
    format        TEXT NOT NULL DEFAULT '',
    item_count    INTEGER NOT NULL DEFAULT 0,
    unused_count  INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL DEFAULT 'pending',
    error_message TEXT,
    output_path   TEXT,
    filename      TEXT,
    size_bytes    INTEGER,
    duration_ms   INTEGER,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_exports_status ON exports(status);
CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
`

// NewDatabase creates a new SQLite connection and runs migrations.
// sqlx wraps database/sql with convenience methods like StructScan and NamedExec.
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	// - WAL mode: allows concurrent reads while writing
	// - busy_timeout: wait up to 5s instead of failing on lock contention
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
