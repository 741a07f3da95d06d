// Package ports defines the interfaces (driven and driving ports)
// for the study timer following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

// JournalEntry is one recorded controller event.
type JournalEntry struct {
	ID         string
	SessionID  string
	Kind       domain.EventKind
	Phase      domain.Phase
	Detail     string
	GitBranch  string
	RecordedAt time.Time
}

// JournalSummary aggregates the journal of one session.
type JournalSummary struct {
	SessionID       string
	Entries         int
	CyclesCompleted int
	TasksAdded      int
	TasksCompleted  int
	FirstEvent      *time.Time
	LastEvent       *time.Time
	// CompletedTasks lists the text of every check-off, oldest first.
	CompletedTasks []string
}

// Journal is the process-lifetime activity log.
// This is a driven port (implemented by adapters).
type Journal interface {
	// Append records an entry.
	Append(ctx context.Context, entry JournalEntry) error

	// Recent returns the latest entries, newest first.
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)

	// ByKind returns all entries of the given kind in recording order.
	ByKind(ctx context.Context, kind domain.EventKind) ([]JournalEntry, error)

	// Summary aggregates the entries of sessionID.
	Summary(ctx context.Context, sessionID string) (*JournalSummary, error)

	// Close releases the journal.
	Close() error
}
