package domain

import "fmt"

// Reduce applies cmd to s and returns the new session together with the
// effects the caller must execute, in order. s is never modified.
//
// Expiry is evaluated after every command that can move the countdown or the
// running flag, at most once per command.
func Reduce(s Session, cmd Command) (Session, []Effect) {
	next := s.Clone()
	var effects []Effect
	evaluate := false

	switch c := cmd.(type) {
	case ToggleStart:
		next.Running = !next.Running
		if next.Running {
			effects = append(effects,
				PlayCue{Cue: CueStart},
				Record{Kind: EventStarted, Phase: next.Phase},
			)
		} else {
			effects = append(effects, Record{Kind: EventPaused, Phase: next.Phase})
		}
		evaluate = true

	case Tick:
		if !next.Running {
			return next, nil
		}
		if next.RemainingSeconds > 0 {
			next.RemainingSeconds--
		}
		evaluate = true

	case Reset:
		next.Running = false
		next.Phase = PhaseFocus
		if next.Behavior.FixedResetSeconds {
			next.RemainingSeconds = ReferenceSpanSeconds
		} else {
			next.RemainingSeconds = clampSeconds(next.FocusDurationSeconds)
		}
		effects = append(effects, Record{Kind: EventReset, Phase: PhaseFocus})
		evaluate = true

	case ToggleConfigPanel:
		next.ConfigPanelVisible = !next.ConfigPanelVisible

	case ToggleNightMode:
		next.NightMode = !next.NightMode

	case SetTaskDraft:
		next.TaskDraft = c.Text

	case AddTask:
		task, err := NewTask(c.Text)
		if err != nil {
			next.TaskDraft = c.Text
			break
		}
		next.Tasks = append(next.Tasks, task)
		next.TaskDraft = ""
		effects = append(effects, Record{Kind: EventTaskAdded, Detail: task.Text, Phase: next.Phase})

	case ToggleTask:
		if c.Index < 0 || c.Index >= len(next.Tasks) {
			break
		}
		if c.Text != "" && next.Tasks[c.Index].Text != c.Text {
			break
		}
		task := &next.Tasks[c.Index]
		task.Completed = !task.Completed
		if task.Completed {
			next.Stats.creditTask()
			effects = append(effects,
				PlayCue{Cue: CueTaskComplete},
				Record{Kind: EventTaskCompleted, Detail: task.Text, Phase: next.Phase},
			)
		}

	case ClearTasks:
		cleared := len(next.Tasks)
		next.Tasks = []Task{}
		effects = append(effects, Record{
			Kind:   EventTasksCleared,
			Detail: fmt.Sprintf("%d tasks", cleared),
			Phase:  next.Phase,
		})

	case SetConfigFocusMinutes:
		next.DraftFocusMinutes = c.Minutes

	case SetConfigRestMinutes:
		next.DraftRestMinutes = c.Minutes

	case ApplyConfig:
		next.FocusDurationSeconds = next.DraftFocusMinutes * 60
		next.RestDurationSeconds = next.DraftRestMinutes * 60
		next.RemainingSeconds = clampSeconds(next.FocusDurationSeconds)
		next.Phase = PhaseFocus
		next.ConfigPanelVisible = false
		effects = append(effects, Record{
			Kind:   EventConfigApplied,
			Detail: fmt.Sprintf("%dm focus / %dm rest", next.DraftFocusMinutes, next.DraftRestMinutes),
			Phase:  PhaseFocus,
		})
		evaluate = true
	}

	if evaluate {
		effects = evaluateExpiry(&next, effects)
	}
	return next, tickerEffects(s.Running, next.Running, effects)
}

// evaluateExpiry runs the expiry sequence if the countdown is exhausted.
func evaluateExpiry(s *Session, effects []Effect) []Effect {
	s.RemainingSeconds = clampSeconds(s.RemainingSeconds)
	if s.RemainingSeconds > 0 {
		return effects
	}

	expired := s.Phase
	effects = append(effects,
		PlayCue{Cue: CueEnd},
		Notify{Message: ExpiryMessage},
	)

	if s.Behavior.RestAfterEveryExpiry || expired == PhaseFocus {
		credit := studyCredit(*s)
		s.Stats.creditExpiry(credit)
		s.Phase = PhaseRest
		s.RemainingSeconds = clampSeconds(s.RestDurationSeconds)
		effects = append(effects, Record{
			Kind:   EventCycleCompleted,
			Detail: fmt.Sprintf("+%d min", credit),
			Phase:  expired,
		})
	} else {
		s.Phase = PhaseFocus
		s.RemainingSeconds = clampSeconds(s.FocusDurationSeconds)
		effects = append(effects, Record{Kind: EventRestCompleted, Phase: expired})
	}

	s.Running = false
	return effects
}

// studyCredit returns the minutes one expiry adds to MinutesStudied.
func studyCredit(s Session) int {
	if s.Behavior.FixedStudyCredit {
		return StudyCreditMinutes
	}
	if s.FocusDurationSeconds <= 0 {
		return 0
	}
	return s.FocusDurationSeconds / 60
}

// tickerEffects appends the tick source transitions implied by a change of
// the running flag.
func tickerEffects(wasRunning, isRunning bool, effects []Effect) []Effect {
	switch {
	case !wasRunning && isRunning:
		return append(effects, StartTicker{})
	case wasRunning && !isRunning:
		return append(effects, StopTicker{})
	default:
		return effects
	}
}
