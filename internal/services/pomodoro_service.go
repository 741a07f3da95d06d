package services

import (
	"context"
	"fmt"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// PomodoroService handles timer use cases on top of a session driver.
type PomodoroService struct {
	driver ports.SessionDriver
}

// NewPomodoroService creates a new pomodoro service.
func NewPomodoroService(driver ports.SessionDriver) *PomodoroService {
	return &PomodoroService{driver: driver}
}

// ToggleStart starts a paused countdown or pauses a running one.
func (s *PomodoroService) ToggleStart(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.driver.Dispatch(ctx, domain.ToggleStart{})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to toggle timer: %w", err)
	}
	return snap, nil
}

// Reset pauses and refills the countdown.
func (s *PomodoroService) Reset(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.driver.Dispatch(ctx, domain.Reset{})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to reset timer: %w", err)
	}
	return snap, nil
}

// Configure stages new focus and rest lengths and applies them.
func (s *PomodoroService) Configure(ctx context.Context, focusMinutes, restMinutes int) (domain.Snapshot, error) {
	cmds := []domain.Command{
		domain.SetConfigFocusMinutes{Minutes: focusMinutes},
		domain.SetConfigRestMinutes{Minutes: restMinutes},
		domain.ApplyConfig{},
	}

	var snap domain.Snapshot
	for _, cmd := range cmds {
		var err error
		if snap, err = s.driver.Dispatch(ctx, cmd); err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to apply configuration: %w", err)
		}
	}
	return snap, nil
}
