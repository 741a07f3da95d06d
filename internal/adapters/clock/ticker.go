// Package clock provides the wall-clock tick source.
package clock

import (
	"sync"
	"time"

	"github.com/marianecozta/Pomodoro/internal/ports"
)

// Scheduler implements ports.Scheduler with time.Ticker.
type Scheduler struct{}

// NewScheduler creates a wall-clock scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

var _ ports.Scheduler = (*Scheduler)(nil)

// Every starts a goroutine calling fn once per d.
func (s *Scheduler) Every(d time.Duration, fn func()) ports.TickerHandle {
	h := &handle{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go h.loop(fn)
	return h
}

type handle struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (h *handle) loop(fn func()) {
	for {
		select {
		case <-h.stop:
			return
		case <-h.ticker.C:
			// Stop may race with a pending tick; prefer stopping.
			select {
			case <-h.stop:
				return
			default:
			}
			fn()
		}
	}
}

// Stop is safe to call more than once. It does not wait for a callback
// already running, since that callback may be blocked on the caller.
func (h *handle) Stop() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.stop)
	})
}
