package ports

import (
	"context"
	"time"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

// TickerHandle is a live periodic tick registration.
type TickerHandle interface {
	// Stop releases the registration. A callback already in flight may still
	// complete, so consumers must tolerate one late call.
	Stop()
}

// Scheduler is the tick source.
// This is a driven port (implemented by adapters).
type Scheduler interface {
	// Every calls fn roughly every d until the returned handle is stopped.
	Every(d time.Duration, fn func()) TickerHandle
}

// CuePlayer plays short audio signals.
// This is a driven port (implemented by adapters).
type CuePlayer interface {
	// Play plays cue. Implementations may block until playback is queued.
	Play(ctx context.Context, cue domain.Cue) error
}

// Notifier surfaces a message to the user outside the main view.
// This is a driven port (implemented by adapters).
type Notifier interface {
	Notify(message string) error
}

// SessionDriver is how input surfaces talk to the session controller.
// This is a driving port (implemented by the services layer).
type SessionDriver interface {
	// Dispatch applies cmd and returns the resulting snapshot.
	Dispatch(ctx context.Context, cmd domain.Command) (domain.Snapshot, error)

	// Snapshot returns the latest state without changing it.
	Snapshot() domain.Snapshot

	// Subscribe returns a channel receiving a snapshot after every processed
	// command, and a function to cancel the subscription.
	Subscribe() (<-chan domain.Snapshot, func())
}
