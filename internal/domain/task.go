// Package domain contains the study session state machine.
// Everything here is pure: commands go in, a new Session and a list of
// effects come out. Executing the effects is the caller's job.
package domain

import (
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Common domain errors.
var (
	ErrEmptyTaskText     = errors.New("task text cannot be empty")
	ErrTaskIndexRange    = errors.New("task index out of range")
	ErrNoTaskMatch       = errors.New("no task matches query")
	ErrTaskChanged       = errors.New("task list changed")
	ErrControllerStopped = errors.New("session controller stopped")
)

// Task is one entry of the to-do list. Its identity is its position.
type Task struct {
	Text      string
	Completed bool
}

// NewTask trims text and rejects blank input.
func NewTask(text string) (Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Task{}, ErrEmptyTaskText
	}
	return Task{Text: trimmed}, nil
}

// CompletedCount returns how many tasks are currently checked.
func (s Session) CompletedCount() int {
	n := 0
	for _, t := range s.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// taskSource adapts a task slice to fuzzy.Source.
type taskSource []Task

func (ts taskSource) String(i int) string { return ts[i].Text }
func (ts taskSource) Len() int            { return len(ts) }

// FindTasks returns the indices of tasks matching query, best match first.
// An empty query matches every task in list order.
func FindTasks(tasks []Task, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]int, len(tasks))
		for i := range tasks {
			all[i] = i
		}
		return all
	}

	matches := fuzzy.FindFrom(query, taskSource(tasks))
	indices := make([]int, 0, len(matches))
	for _, m := range matches {
		indices = append(indices, m.Index)
	}
	return indices
}
