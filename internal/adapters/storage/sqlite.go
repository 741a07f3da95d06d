// Package storage provides the SQLite activity journal.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/marianecozta/Pomodoro/internal/ports"
)

// ErrDuplicateEntry is returned when an entry id is appended twice.
var ErrDuplicateEntry = errors.New("journal entry already exists")

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// New opens the journal at dsn and creates its schema.
func New(dsn string, logger hclog.Logger) (ports.Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	j := &journal{db: db, logger: logger.Named("journal")}
	if err := j.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return j, nil
}

// NewMemory creates a journal that lives as long as the process.
func NewMemory(logger hclog.Logger) (ports.Journal, error) {
	return New(MemoryDSN, logger)
}

// Migrate creates the database schema.
func (j *journal) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		phase TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		git_branch TEXT NOT NULL DEFAULT '',
		recorded_at INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_seq ON events(seq);
	`

	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *journal) Close() error {
	return j.db.Close()
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
