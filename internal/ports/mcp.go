package ports

import (
	"context"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server. It may be called before Start.
	Stop() error
}

// IndexedTask pairs a task with its position in the list.
type IndexedTask struct {
	Index int
	domain.Task
}

// CurrentState is the full read model exposed to tools.
type CurrentState struct {
	Snapshot       domain.Snapshot
	RecentActivity []JournalEntry
}

// ActivityProvider exposes the journal to tools.
// This is a driven port (implemented by the services layer).
type ActivityProvider interface {
	// RecentActivity returns the latest journal entries, newest first.
	RecentActivity(ctx context.Context, limit int) ([]JournalEntry, error)
}

// MCPStateProvider defines the operations MCP tools can perform.
// This is a driven port (implemented by the services layer).
type MCPStateProvider interface {
	ActivityProvider

	// CurrentSnapshot returns the latest session state.
	CurrentSnapshot() domain.Snapshot

	// GetCurrentState returns the latest state with up to activityLimit
	// journal entries.
	GetCurrentState(ctx context.Context, activityLimit int) (*CurrentState, error)

	// ListTasks returns the tasks matching query, best match first.
	ListTasks(query string) []IndexedTask

	// ToggleStart starts or pauses the countdown.
	ToggleStart(ctx context.Context) (domain.Snapshot, error)

	// ResetTimer pauses and refills the countdown.
	ResetTimer(ctx context.Context) (domain.Snapshot, error)

	// ApplyConfig sets new focus and rest lengths in minutes.
	ApplyConfig(ctx context.Context, focusMinutes, restMinutes int) (domain.Snapshot, error)

	// AddTask appends a task and returns its position.
	AddTask(ctx context.Context, text string) (int, domain.Task, error)

	// ToggleTask flips the task ref names, by 1-based position or fuzzy text.
	ToggleTask(ctx context.Context, ref string) (int, domain.Task, error)

	// ClearTasks empties the list and returns how many tasks were removed.
	ClearTasks(ctx context.Context) (int, error)
}
