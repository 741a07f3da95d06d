package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// TaskService handles to-do list use cases on top of a session driver.
type TaskService struct {
	driver ports.SessionDriver
}

// NewTaskService creates a new task service.
func NewTaskService(driver ports.SessionDriver) *TaskService {
	return &TaskService{driver: driver}
}

// AddTask appends a task. Unlike the interactive input, blank text is
// reported as an error so tools get feedback.
func (s *TaskService) AddTask(ctx context.Context, text string) (*ports.IndexedTask, error) {
	if _, err := domain.NewTask(text); err != nil {
		return nil, err
	}
	snap, err := s.driver.Dispatch(ctx, domain.AddTask{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}
	idx := len(snap.Session.Tasks) - 1
	return &ports.IndexedTask{Index: idx, Task: snap.Session.Tasks[idx]}, nil
}

// ListTasks returns the tasks matching query, best match first. An empty
// query lists every task in order.
func (s *TaskService) ListTasks(query string) []ports.IndexedTask {
	tasks := s.driver.Snapshot().Session.Tasks
	indices := domain.FindTasks(tasks, query)
	out := make([]ports.IndexedTask, 0, len(indices))
	for _, i := range indices {
		out = append(out, ports.IndexedTask{Index: i, Task: tasks[i]})
	}
	return out
}

// ResolveTask finds the task a ref names. A ref is either a 1-based
// position or a fuzzy query, in which case the best match wins.
func (s *TaskService) ResolveTask(ref string) (ports.IndexedTask, error) {
	ref = strings.TrimSpace(ref)
	tasks := s.driver.Snapshot().Session.Tasks

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return ports.IndexedTask{}, fmt.Errorf("%w: %d of %d", domain.ErrTaskIndexRange, n, len(tasks))
		}
		return ports.IndexedTask{Index: n - 1, Task: tasks[n-1]}, nil
	}

	if ref == "" {
		return ports.IndexedTask{}, domain.ErrNoTaskMatch
	}
	matches := domain.FindTasks(tasks, ref)
	if len(matches) == 0 {
		return ports.IndexedTask{}, fmt.Errorf("%w: %q", domain.ErrNoTaskMatch, ref)
	}
	return ports.IndexedTask{Index: matches[0], Task: tasks[matches[0]]}, nil
}

// ToggleTask flips the completion flag of the task ref resolves to. The
// command carries the resolved text, so if the list changed in between
// nothing is toggled and ErrTaskChanged is returned.
func (s *TaskService) ToggleTask(ctx context.Context, ref string) (*ports.IndexedTask, error) {
	target, err := s.ResolveTask(ref)
	if err != nil {
		return nil, err
	}
	snap, err := s.driver.Dispatch(ctx, domain.ToggleTask{Index: target.Index, Text: target.Text})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	tasks := snap.Session.Tasks
	if target.Index >= len(tasks) || tasks[target.Index].Text != target.Text {
		return nil, fmt.Errorf("%w: %q is no longer at position %d", domain.ErrTaskChanged, target.Text, target.Index+1)
	}
	return &ports.IndexedTask{Index: target.Index, Task: tasks[target.Index]}, nil
}

// ClearTasks empties the list and returns how many tasks were removed.
func (s *TaskService) ClearTasks(ctx context.Context) (int, error) {
	before := len(s.driver.Snapshot().Session.Tasks)
	if _, err := s.driver.Dispatch(ctx, domain.ClearTasks{}); err != nil {
		return 0, fmt.Errorf("failed to clear tasks: %w", err)
	}
	return before, nil
}
