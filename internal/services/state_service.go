package services

import (
	"context"
	"errors"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// ErrServiceUnavailable is returned when a write operation is called before
// its service was wired.
var ErrServiceUnavailable = errors.New("service not configured")

// StateService implements the MCPStateProvider interface.
type StateService struct {
	driver      ports.SessionDriver
	activity    ports.ActivityProvider
	taskService *TaskService
	pomodoroSvc *PomodoroService
}

var _ ports.MCPStateProvider = (*StateService)(nil)

// NewStateService creates a new state service. activity may be nil.
func NewStateService(driver ports.SessionDriver, activity ports.ActivityProvider) *StateService {
	return &StateService{driver: driver, activity: activity}
}

// SetTaskService sets the task service for write operations.
func (s *StateService) SetTaskService(taskService *TaskService) {
	s.taskService = taskService
}

// SetPomodoroService sets the pomodoro service for write operations.
func (s *StateService) SetPomodoroService(pomodoroSvc *PomodoroService) {
	s.pomodoroSvc = pomodoroSvc
}

// GetCurrentState returns the latest snapshot with the last few journal
// entries. Journal failures leave RecentActivity empty.
func (s *StateService) GetCurrentState(ctx context.Context, activityLimit int) (*ports.CurrentState, error) {
	state := &ports.CurrentState{Snapshot: s.driver.Snapshot()}
	if activityLimit > 0 {
		if entries, err := s.RecentActivity(ctx, activityLimit); err == nil {
			state.RecentActivity = entries
		}
	}
	return state, nil
}

// CurrentSnapshot implements ports.MCPStateProvider.
func (s *StateService) CurrentSnapshot() domain.Snapshot {
	return s.driver.Snapshot()
}

// RecentActivity implements ports.MCPStateProvider.
func (s *StateService) RecentActivity(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	if s.activity == nil {
		return []ports.JournalEntry{}, nil
	}
	return s.activity.RecentActivity(ctx, limit)
}

// ListTasks implements ports.MCPStateProvider.
func (s *StateService) ListTasks(query string) []ports.IndexedTask {
	if s.taskService == nil {
		return []ports.IndexedTask{}
	}
	return s.taskService.ListTasks(query)
}

// ToggleStart implements ports.MCPStateProvider.
func (s *StateService) ToggleStart(ctx context.Context) (domain.Snapshot, error) {
	if s.pomodoroSvc == nil {
		return domain.Snapshot{}, ErrServiceUnavailable
	}
	return s.pomodoroSvc.ToggleStart(ctx)
}

// ResetTimer implements ports.MCPStateProvider.
func (s *StateService) ResetTimer(ctx context.Context) (domain.Snapshot, error) {
	if s.pomodoroSvc == nil {
		return domain.Snapshot{}, ErrServiceUnavailable
	}
	return s.pomodoroSvc.Reset(ctx)
}

// ApplyConfig implements ports.MCPStateProvider.
func (s *StateService) ApplyConfig(ctx context.Context, focusMinutes, restMinutes int) (domain.Snapshot, error) {
	if s.pomodoroSvc == nil {
		return domain.Snapshot{}, ErrServiceUnavailable
	}
	return s.pomodoroSvc.Configure(ctx, focusMinutes, restMinutes)
}

// AddTask implements ports.MCPStateProvider.
func (s *StateService) AddTask(ctx context.Context, text string) (int, domain.Task, error) {
	if s.taskService == nil {
		return 0, domain.Task{}, ErrServiceUnavailable
	}
	t, err := s.taskService.AddTask(ctx, text)
	if err != nil {
		return 0, domain.Task{}, err
	}
	return t.Index, t.Task, nil
}

// ToggleTask implements ports.MCPStateProvider.
func (s *StateService) ToggleTask(ctx context.Context, ref string) (int, domain.Task, error) {
	if s.taskService == nil {
		return 0, domain.Task{}, ErrServiceUnavailable
	}
	t, err := s.taskService.ToggleTask(ctx, ref)
	if err != nil {
		return 0, domain.Task{}, err
	}
	return t.Index, t.Task, nil
}

// ClearTasks implements ports.MCPStateProvider.
func (s *StateService) ClearTasks(ctx context.Context) (int, error) {
	if s.taskService == nil {
		return 0, ErrServiceUnavailable
	}
	return s.taskService.ClearTasks(ctx)
}
