package domain

// Cue identifies a short audio signal.
type Cue string

const (
	CueStart        Cue = "start"
	CueEnd          Cue = "end"
	CueTaskComplete Cue = "task_complete"
)

// Effect describes a side effect requested by Reduce.
type Effect interface {
	effectName() string
}

// PlayCue asks the audio collaborator to play a cue. Failures are ignored.
type PlayCue struct {
	Cue Cue
}

// Notify asks the notification collaborator to show a message.
type Notify struct {
	Message string
}

// StartTicker asks for a fresh periodic tick registration.
type StartTicker struct{}

// StopTicker asks for the current tick registration to be released.
type StopTicker struct{}

// EventKind names a journal entry.
type EventKind string

const (
	EventStarted        EventKind = "started"
	EventPaused         EventKind = "paused"
	EventCycleCompleted EventKind = "cycle_completed"
	EventRestCompleted  EventKind = "rest_completed"
	EventReset          EventKind = "reset"
	EventConfigApplied  EventKind = "config_applied"
	EventTaskAdded      EventKind = "task_added"
	EventTaskCompleted  EventKind = "task_completed"
	EventTasksCleared   EventKind = "tasks_cleared"
)

// Record asks for an entry in the activity journal.
type Record struct {
	Kind   EventKind
	Detail string
	Phase  Phase
}

func (PlayCue) effectName() string     { return "play_cue" }
func (Notify) effectName() string      { return "notify" }
func (StartTicker) effectName() string { return "start_ticker" }
func (StopTicker) effectName() string  { return "stop_ticker" }
func (Record) effectName() string      { return "record" }

// EffectName returns the name of e for logging.
func EffectName(e Effect) string {
	if e == nil {
		return "<nil>"
	}
	return e.effectName()
}
