package tui

// Key-flow tests: each one drives a complete interaction through Update so
// regressions in key dispatch or input modes fail here.

import (
	"context"
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marianecozta/Pomodoro/internal/domain"
)

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func windowSize(w, h int) tea.Msg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m = update(m, key(k))
	}
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m = press(m, string(r))
	}
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func withTasks(texts ...string) (*fakeDriver, Model) {
	driver := newFakeDriver()
	for _, text := range texts {
		driver.Dispatch(context.Background(), domain.AddTask{Text: text})
	}
	driver.sent = nil
	return driver, NewModel(driver, nil, Options{})
}

func TestKeyFlow_TimerKeys(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})

	m = press(m, " ")
	if !m.snap.Session.Running {
		t.Fatal("space should start the countdown")
	}
	m = press(m, "s")
	if m.snap.Session.Running {
		t.Fatal("s should pause the countdown")
	}
	m = press(m, "r", "n")

	want := []string{"toggle_start", "toggle_start", "reset", "toggle_night_mode"}
	if got := driver.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
	if !m.snap.Session.NightMode {
		t.Error("n should switch to night mode")
	}
}

func TestKeyFlow_Quit(t *testing.T) {
	m := NewModel(newFakeDriver(), nil, Options{})

	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(key(k))
		if !isQuit(cmd) {
			t.Errorf("%s should quit", k)
		}
	}

	// q is text while typing a task.
	m = press(m, "a")
	_, cmd := m.Update(key("q"))
	if isQuit(cmd) {
		t.Error("q inside the task input should not quit")
	}
}

func TestKeyFlow_AddTask(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})

	m = press(m, "a")
	if m.mode != modeAddTask {
		t.Fatalf("mode = %v, want modeAddTask", m.mode)
	}
	m = typeText(m, "Ler")
	if m.snap.Session.TaskDraft != "Ler" {
		t.Errorf("TaskDraft = %q, want draft mirrored to the session", m.snap.Session.TaskDraft)
	}
	m = press(m, "enter")

	if m.mode != modeNormal {
		t.Errorf("mode = %v after enter", m.mode)
	}
	tasks := m.snap.Session.Tasks
	if len(tasks) != 1 || tasks[0].Text != "Ler" || tasks[0].Completed {
		t.Fatalf("tasks = %+v", tasks)
	}
	if m.snap.Session.TaskDraft != "" || m.taskInput.Value() != "" {
		t.Error("draft should be cleared after adding")
	}

	want := []string{"set_task_draft", "set_task_draft", "set_task_draft", "add_task"}
	if got := driver.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
}

func TestKeyFlow_AddBlankTask(t *testing.T) {
	m := NewModel(newFakeDriver(), nil, Options{})

	m = press(m, "a", " ", " ", "enter")
	if len(m.snap.Session.Tasks) != 0 {
		t.Errorf("blank text should not add a task: %+v", m.snap.Session.Tasks)
	}
	if m.mode != modeNormal {
		t.Errorf("mode = %v", m.mode)
	}
}

func TestKeyFlow_AddTaskEscKeepsDraft(t *testing.T) {
	m := NewModel(newFakeDriver(), nil, Options{})

	m = press(m, "a")
	m = typeText(m, "Fís")
	m = press(m, "esc")
	if m.mode != modeNormal || len(m.snap.Session.Tasks) != 0 {
		t.Fatalf("esc should leave without adding: mode=%v tasks=%v", m.mode, m.snap.Session.Tasks)
	}

	m = press(m, "a")
	if m.taskInput.Value() != "Fís" {
		t.Errorf("reopened input = %q, want the kept draft", m.taskInput.Value())
	}
}

func TestKeyFlow_ToggleAtCursor(t *testing.T) {
	driver, m := withTasks("Estudar física", "Lavar louça", "Revisar cálculo")

	m = press(m, "j", "j", "j", "x")
	if !m.snap.Session.Tasks[2].Completed {
		t.Fatal("x should toggle the task under the cursor, clamped to the last one")
	}
	m = press(m, "k", "k", "k", "enter")
	if !m.snap.Session.Tasks[0].Completed {
		t.Fatal("enter should toggle the first task")
	}
	m = press(m, "enter")
	if m.snap.Session.Tasks[0].Completed {
		t.Fatal("a second toggle should uncheck")
	}
	if m.snap.Session.Stats.TasksCompleted != 2 {
		t.Errorf("TasksCompleted = %d, want 2 (never decremented)", m.snap.Session.Stats.TasksCompleted)
	}
	if len(driver.sent) != 3 {
		t.Errorf("sent %v", driver.names())
	}
}

func TestKeyFlow_ToggleWithEmptyList(t *testing.T) {
	driver, m := withTasks()

	m = press(m, "x", "j", "enter")
	if len(driver.sent) != 0 {
		t.Errorf("no command expected with an empty list, sent %v", driver.names())
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
}

func TestKeyFlow_ClearTasksNeedsConfirmation(t *testing.T) {
	driver, m := withTasks("a", "b")

	m = press(m, "D")
	if !m.confirmClear || len(m.snap.Session.Tasks) != 2 {
		t.Fatal("first D should only ask for confirmation")
	}
	m = press(m, "j")
	if m.confirmClear {
		t.Fatal("any other key cancels the confirmation")
	}

	m = press(m, "D", "D")
	if len(m.snap.Session.Tasks) != 0 {
		t.Fatalf("tasks = %v, want cleared", m.snap.Session.Tasks)
	}
	if got := driver.names(); !reflect.DeepEqual(got, []string{"clear_tasks"}) {
		t.Errorf("sent %v", got)
	}

	m = press(m, "D")
	if m.confirmClear {
		t.Error("D on an empty list should do nothing")
	}
}

func TestKeyFlow_ConfigPanel(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})

	m = press(m, "c")
	if m.mode != modeConfig || !m.snap.Session.ConfigPanelVisible {
		t.Fatalf("c should open the config panel, mode=%v", m.mode)
	}
	if m.configInputs[0].Value() != "25" || m.configInputs[1].Value() != "5" {
		t.Fatalf("inputs = %q/%q, want drafts 25/5", m.configInputs[0].Value(), m.configInputs[1].Value())
	}

	m = press(m, "backspace", "backspace", "5", "0", "tab", "backspace", "1", "0")
	if m.snap.Session.DraftFocusMinutes != 50 || m.snap.Session.DraftRestMinutes != 10 {
		t.Fatalf("drafts = %d/%d, want 50/10", m.snap.Session.DraftFocusMinutes, m.snap.Session.DraftRestMinutes)
	}
	if m.snap.Session.FocusDurationSeconds != 1500 {
		t.Fatal("drafts must not apply before enter")
	}

	m = press(m, "enter")
	s := m.snap.Session
	if s.FocusDurationSeconds != 3000 || s.RestDurationSeconds != 600 || s.RemainingSeconds != 3000 {
		t.Errorf("applied = %d/%d remaining %d", s.FocusDurationSeconds, s.RestDurationSeconds, s.RemainingSeconds)
	}
	if s.ConfigPanelVisible || m.mode != modeNormal {
		t.Error("apply should close the panel")
	}
}

func TestKeyFlow_ConfigPanelRejectsLetters(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})

	m = press(m, "c", "x")
	if m.configInputs[0].Value() != "25" {
		t.Errorf("input = %q, letters should be dropped", m.configInputs[0].Value())
	}
	if m.snap.Session.DraftFocusMinutes != 25 {
		t.Errorf("DraftFocusMinutes = %d", m.snap.Session.DraftFocusMinutes)
	}

	m = press(m, "esc")
	if m.mode != modeNormal || m.snap.Session.ConfigPanelVisible {
		t.Error("esc should close the panel")
	}
}

func TestKeyFlow_ConfigPanelClosedElsewhere(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})
	m = press(m, "c")

	snap, _ := driver.Dispatch(context.Background(), domain.ApplyConfig{})
	m = update(m, snapshotMsg(snap))
	if m.mode != modeNormal {
		t.Errorf("mode = %v, a snapshot with the panel hidden should leave config mode", m.mode)
	}
}

func TestKeyFlow_OutdatedSnapshotIgnored(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})

	m = press(m, " ")
	tick, _ := driver.Dispatch(context.Background(), domain.Tick{})

	m = press(m, "c")
	if m.mode != modeConfig {
		t.Fatalf("mode = %v, c should open the config panel", m.mode)
	}

	// The tick was published before the panel opened but is read afterwards.
	m = update(m, snapshotMsg(tick))
	if m.mode != modeConfig || !m.snap.Session.ConfigPanelVisible {
		t.Fatalf("an older snapshot closed the panel: mode = %v", m.mode)
	}

	driver.sent = nil
	m = press(m, "r")
	if len(driver.sent) != 0 {
		t.Errorf("r inside the config panel sent %v, want nothing", driver.names())
	}
	if m.configInputs[0].Value() != "25" {
		t.Errorf("focus input = %q, letters should be dropped", m.configInputs[0].Value())
	}
}

func TestKeyFlow_Filter(t *testing.T) {
	_, m := withTasks("Estudar física", "Lavar louça", "Revisar cálculo")

	m = press(m, "/")
	m = typeText(m, "lavar")
	m = press(m, "enter")

	if m.filter != "lavar" || m.mode != modeNormal {
		t.Fatalf("filter = %q, mode = %v", m.filter, m.mode)
	}
	if got := m.visibleTasks(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("visibleTasks() = %v, want [1]", got)
	}

	m = press(m, "x")
	if !m.snap.Session.Tasks[1].Completed || m.snap.Session.Tasks[0].Completed {
		t.Errorf("x should toggle the filtered task: %+v", m.snap.Session.Tasks)
	}

	m = press(m, "esc")
	if m.filter != "" || len(m.visibleTasks()) != 3 {
		t.Error("esc should clear the filter")
	}
}

func TestKeyFlow_SnapshotUpdates(t *testing.T) {
	driver := newFakeDriver()
	updates := make(chan domain.Snapshot, 1)
	m := NewModel(driver, updates, Options{})

	driver.Dispatch(context.Background(), domain.ToggleStart{})
	snap, _ := driver.Dispatch(context.Background(), domain.Tick{})
	updates <- snap

	msg := waitForSnapshot(updates)()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if m.snap.Clock != "24:59" {
		t.Errorf("clock = %q, want 24:59", m.snap.Clock)
	}
	if cmd == nil {
		t.Error("the subscription should be re-armed")
	}

	close(updates)
	_, cmd = m.Update(waitForSnapshot(updates)())
	if !isQuit(cmd) {
		t.Error("a closed subscription should quit")
	}
}

func TestKeyFlow_ControllerStopped(t *testing.T) {
	driver := newFakeDriver()
	m := NewModel(driver, nil, Options{})
	driver.err = domain.ErrControllerStopped

	next, cmd := m.Update(key(" "))
	m = next.(Model)
	if !isQuit(cmd) {
		t.Error("a stopped controller should end the program")
	}
	if m.lastErr == nil {
		t.Error("lastErr should be set")
	}
}
