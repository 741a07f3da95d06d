package domain

import "time"

// Phase tells which duration the countdown was last refilled from.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseRest  Phase = "rest"
)

// Label returns a human-readable label.
func (p Phase) Label() string {
	switch p {
	case PhaseFocus:
		return "Foco"
	case PhaseRest:
		return "Descanso"
	default:
		return "Unknown"
	}
}

const (
	// DefaultFocusMinutes is the focus block length of a fresh session.
	DefaultFocusMinutes = 25
	// DefaultRestMinutes is the rest block length of a fresh session.
	DefaultRestMinutes = 5

	// ReferenceSpanSeconds is the 25 minute span the reset target, the
	// progress ring and the study credit are pinned to when the matching
	// Behavior switch is on.
	ReferenceSpanSeconds = DefaultFocusMinutes * 60
	// StudyCreditMinutes is credited to MinutesStudied on every expiry
	// while Behavior.FixedStudyCredit is on.
	StudyCreditMinutes = DefaultFocusMinutes

	// TickInterval is the cadence of the external tick source.
	TickInterval = time.Second

	// ExpiryMessage is shown when a block runs out.
	ExpiryMessage = "Tempo finalizado!"
)

// Behavior isolates the hardcoded quirks of the reference timer. The zero
// value is not the default; use DefaultBehavior.
type Behavior struct {
	// FixedStudyCredit credits StudyCreditMinutes per expiry instead of the
	// configured focus length.
	FixedStudyCredit bool
	// FixedResetSeconds makes Reset refill ReferenceSpanSeconds instead of
	// the configured focus length.
	FixedResetSeconds bool
	// RestAfterEveryExpiry refills from the rest length on every expiry and
	// credits statistics each time. When off, phases alternate and only focus
	// expiries are credited.
	RestAfterEveryExpiry bool
	// FixedProgressDenominator measures the progress ring against
	// ReferenceSpanSeconds instead of the current phase length.
	FixedProgressDenominator bool
}

// DefaultBehavior reproduces the reference timer exactly.
func DefaultBehavior() Behavior {
	return Behavior{
		FixedStudyCredit:         true,
		FixedResetSeconds:        true,
		RestAfterEveryExpiry:     true,
		FixedProgressDenominator: true,
	}
}

// SessionConfig seeds a new Session.
type SessionConfig struct {
	FocusMinutes int
	RestMinutes  int
	NightMode    bool
	Behavior     Behavior
}

// DefaultSessionConfig returns the standard 25/5 configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FocusMinutes: DefaultFocusMinutes,
		RestMinutes:  DefaultRestMinutes,
		Behavior:     DefaultBehavior(),
	}
}

// Session is the single state record owned by the session controller.
// It is a value: Reduce returns a modified copy.
type Session struct {
	ID string

	RemainingSeconds     int
	FocusDurationSeconds int
	RestDurationSeconds  int
	Running              bool
	Phase                Phase

	NightMode          bool
	ConfigPanelVisible bool

	TaskDraft         string
	DraftFocusMinutes int
	DraftRestMinutes  int

	Tasks    []Task
	Stats    Statistics
	Behavior Behavior
}

// NewSession creates a paused session at the start of a focus block.
func NewSession(cfg SessionConfig) Session {
	return Session{
		ID:                   generateID(),
		RemainingSeconds:     clampSeconds(cfg.FocusMinutes * 60),
		FocusDurationSeconds: cfg.FocusMinutes * 60,
		RestDurationSeconds:  cfg.RestMinutes * 60,
		Phase:                PhaseFocus,
		NightMode:            cfg.NightMode,
		DraftFocusMinutes:    cfg.FocusMinutes,
		DraftRestMinutes:     cfg.RestMinutes,
		Tasks:                []Task{},
		Behavior:             cfg.Behavior,
	}
}

// Clone returns a copy that shares no task storage with s.
func (s Session) Clone() Session {
	c := s
	c.Tasks = make([]Task, len(s.Tasks))
	copy(c.Tasks, s.Tasks)
	return c
}

// PhaseDurationSeconds returns the configured length of the current phase.
func (s Session) PhaseDurationSeconds() int {
	if s.Phase == PhaseRest {
		return s.RestDurationSeconds
	}
	return s.FocusDurationSeconds
}

// StatusLabel returns "Running" or "Paused".
func (s Session) StatusLabel() string {
	if s.Running {
		return "Running"
	}
	return "Paused"
}

func clampSeconds(sec int) int {
	if sec < 0 {
		return 0
	}
	return sec
}
