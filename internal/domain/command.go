package domain

import "fmt"

// Command is a user action or a clock signal fed to Reduce.
type Command interface {
	commandName() string
}

// ToggleStart flips between running and paused.
type ToggleStart struct{}

// Tick is one signal from the tick source. Generation identifies the ticker
// handle that produced it; the controller drops ticks from stale handles.
type Tick struct {
	Generation uint64
}

// Reset pauses and refills the countdown.
type Reset struct{}

// ToggleConfigPanel shows or hides the configuration panel.
type ToggleConfigPanel struct{}

// ToggleNightMode switches the colour scheme.
type ToggleNightMode struct{}

// SetTaskDraft replaces the task input buffer.
type SetTaskDraft struct {
	Text string
}

// AddTask appends a task built from Text.
type AddTask struct {
	Text string
}

// ToggleTask flips the completion flag of the task at Index. When Text is
// set the toggle only applies if the task at Index still has that text.
type ToggleTask struct {
	Index int
	Text  string
}

// ClearTasks empties the task list.
type ClearTasks struct{}

// SetConfigFocusMinutes edits the focus input of the configuration panel.
type SetConfigFocusMinutes struct {
	Minutes int
}

// SetConfigRestMinutes edits the rest input of the configuration panel.
type SetConfigRestMinutes struct {
	Minutes int
}

// ApplyConfig commits the configuration panel inputs.
type ApplyConfig struct{}

func (ToggleStart) commandName() string           { return "toggle_start" }
func (Tick) commandName() string                  { return "tick" }
func (Reset) commandName() string                 { return "reset" }
func (ToggleConfigPanel) commandName() string     { return "toggle_config_panel" }
func (ToggleNightMode) commandName() string       { return "toggle_night_mode" }
func (SetTaskDraft) commandName() string          { return "set_task_draft" }
func (AddTask) commandName() string               { return "add_task" }
func (ToggleTask) commandName() string            { return "toggle_task" }
func (ClearTasks) commandName() string            { return "clear_tasks" }
func (SetConfigFocusMinutes) commandName() string { return "set_config_focus_minutes" }
func (SetConfigRestMinutes) commandName() string  { return "set_config_rest_minutes" }
func (ApplyConfig) commandName() string           { return "apply_config" }

// CommandName returns the wire name of cmd, used in logs and tool output.
func CommandName(cmd Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.commandName()
}

// String helpers keep log lines readable.
func (c AddTask) String() string    { return fmt.Sprintf("add_task(%q)", c.Text) }
func (c ToggleTask) String() string { return fmt.Sprintf("toggle_task(%d)", c.Index) }
