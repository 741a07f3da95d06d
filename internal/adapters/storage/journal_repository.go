package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// journal implements ports.Journal using SQLite.
type journal struct {
	db     *sql.DB
	logger hclog.Logger

	// seq orders entries recorded within the same clock reading.
	mu  sync.Mutex
	seq int64
}

var _ ports.Journal = (*journal)(nil)

// Append persists an entry. A missing id or timestamp is filled in.
func (j *journal) Append(ctx context.Context, entry ports.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = domain.NewEventID()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	j.mu.Lock()
	j.seq++
	seq := j.seq
	j.mu.Unlock()

	query := `
		INSERT INTO events (id, session_id, kind, phase, detail, git_branch, recorded_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, query,
		entry.ID,
		entry.SessionID,
		string(entry.Kind),
		string(entry.Phase),
		entry.Detail,
		entry.GitBranch,
		entry.RecordedAt.UnixNano(),
		seq,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, entry.ID)
		}
		return fmt.Errorf("failed to append entry: %w", err)
	}

	j.logger.Trace("entry appended", "kind", entry.Kind, "seq", seq)
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *journal) Recent(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	if limit <= 0 {
		return []ports.JournalEntry{}, nil
	}

	query := `
		SELECT id, session_id, kind, phase, detail, git_branch, recorded_at
		FROM events
		ORDER BY seq DESC
		LIMIT ?
	`
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByKind returns every entry of kind in recording order.
func (j *journal) ByKind(ctx context.Context, kind domain.EventKind) ([]ports.JournalEntry, error) {
	query := `
		SELECT id, session_id, kind, phase, detail, git_branch, recorded_at
		FROM events
		WHERE kind = ?
		ORDER BY seq ASC
	`
	rows, err := j.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by kind: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Summary aggregates the entries of sessionID.
func (j *journal) Summary(ctx context.Context, sessionID string) (*ports.JournalSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			MIN(recorded_at),
			MAX(recorded_at)
		FROM events
		WHERE session_id = ?
	`

	sum := &ports.JournalSummary{SessionID: sessionID}
	var first, last sql.NullInt64
	err := j.db.QueryRowContext(ctx, query,
		string(domain.EventCycleCompleted),
		string(domain.EventTaskAdded),
		string(domain.EventTaskCompleted),
		sessionID,
	).Scan(
		&sum.Entries,
		&sum.CyclesCompleted,
		&sum.TasksAdded,
		&sum.TasksCompleted,
		&first,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize session: %w", err)
	}

	if first.Valid {
		t := time.Unix(0, first.Int64)
		sum.FirstEvent = &t
	}
	if last.Valid {
		t := time.Unix(0, last.Int64)
		sum.LastEvent = &t
	}
	return sum, nil
}

func scanEntries(rows *sql.Rows) ([]ports.JournalEntry, error) {
	entries := []ports.JournalEntry{}
	for rows.Next() {
		var (
			e          ports.JournalEntry
			kind       string
			phase      string
			recordedAt int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &phase, &e.Detail, &e.GitBranch, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		e.Phase = domain.Phase(phase)
		e.RecordedAt = time.Unix(0, recordedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}
