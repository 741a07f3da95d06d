// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

const (
	dispatchTimeout = 2 * time.Second
	activityLines   = 4
)

// resolveTheme fills any empty palette colours with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	fillPalette(&resolved.Day, defaults.Day)
	fillPalette(&resolved.Night, defaults.Night)
	return resolved
}

func fillPalette(p *config.Palette, defaults config.Palette) {
	rv := reflect.ValueOf(p).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
}

// snapshotMsg carries a snapshot pushed by the controller.
type snapshotMsg domain.Snapshot

// updatesClosedMsg is sent once the controller stops publishing.
type updatesClosedMsg struct{}

// activityMsg carries the latest journal entries.
type activityMsg []ports.JournalEntry

type inputMode int

const (
	modeNormal inputMode = iota
	modeAddTask
	modeConfig
	modeFilter
)

// Options configures a Model beyond its driver.
type Options struct {
	Theme    *config.ThemeConfig
	Activity ports.ActivityProvider
	// GitLabel is shown under the title, e.g. "main@1a2b3c4".
	GitLabel string
	Logger   hclog.Logger
}

// Model represents the TUI state. It never changes the session itself:
// every key becomes a command sent to the driver, and the screen is drawn
// from the snapshots that come back.
type Model struct {
	driver   ports.SessionDriver
	updates  <-chan domain.Snapshot
	activity ports.ActivityProvider
	logger   hclog.Logger

	snap     domain.Snapshot
	recent   []ports.JournalEntry
	theme    config.ThemeConfig
	gitLabel string
	width    int
	height   int
	progress progress.Model

	mode         inputMode
	taskInput    textinput.Model
	filterInput  textinput.Model
	configInputs [2]textinput.Model
	configField  int
	filter       string
	cursor       int
	confirmClear bool
	lastErr      error
}

// NewModel creates a new TUI model bound to driver.
func NewModel(driver ports.SessionDriver, updates <-chan domain.Snapshot, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	task := textinput.New()
	task.Placeholder = "Adicionar nova tarefa"
	task.CharLimit = 120
	task.Width = 40

	filter := textinput.New()
	filter.Placeholder = "filtrar tarefas"
	filter.Prompt = "/ "
	filter.Width = 30

	var cfgInputs [2]textinput.Model
	for i := range cfgInputs {
		in := textinput.New()
		in.CharLimit = 4
		in.Width = 6
		in.Prompt = ""
		cfgInputs[i] = in
	}

	return Model{
		driver:       driver,
		updates:      updates,
		activity:     opts.Activity,
		logger:       logger.Named("tui"),
		snap:         driver.Snapshot(),
		theme:        resolveTheme(opts.Theme),
		gitLabel:     opts.GitLabel,
		progress:     progress.New(progress.WithoutPercentage()),
		taskInput:    task,
		filterInput:  filter,
		configInputs: cfgInputs,
	}
}

// Init starts listening for snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), m.fetchActivity())
}

// waitForSnapshot blocks on the subscription until the next snapshot.
func waitForSnapshot(updates <-chan domain.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) fetchActivity() tea.Cmd {
	if m.activity == nil {
		return nil
	}
	provider := m.activity
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		entries, err := provider.RecentActivity(ctx, activityLines)
		if err != nil {
			return nil
		}
		return activityMsg(entries)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-4, 60)
		return m, nil

	case snapshotMsg:
		cmd := m.applySnapshot(domain.Snapshot(msg))
		return m, tea.Batch(waitForSnapshot(m.updates), cmd)

	case updatesClosedMsg:
		return m, tea.Quit

	case activityMsg:
		m.recent = msg
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAddTask:
			return m.updateTaskInput(msg)
		case modeConfig:
			return m.updateConfigInput(msg)
		case modeFilter:
			return m.updateFilterInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.confirmClear
	m.confirmClear = false

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ", "s":
		cmd := m.dispatch(domain.ToggleStart{})
		return m, cmd
	case "r":
		cmd := m.dispatch(domain.Reset{})
		return m, cmd
	case "n":
		cmd := m.dispatch(domain.ToggleNightMode{})
		return m, cmd
	case "c":
		cmd := m.dispatch(domain.ToggleConfigPanel{})
		return m, cmd
	case "a":
		m.mode = modeAddTask
		m.taskInput.SetValue(m.snap.Session.TaskDraft)
		m.taskInput.CursorEnd()
		blink := m.taskInput.Focus()
		return m, blink
	case "/":
		m.mode = modeFilter
		m.filterInput.SetValue(m.filter)
		blink := m.filterInput.Focus()
		return m, blink
	case "esc":
		m.filter = ""
		m.clampCursor()
	case "j", "down":
		if m.cursor < len(m.visibleTasks())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "x", "enter":
		visible := m.visibleTasks()
		if m.cursor < len(visible) {
			cmd := m.dispatch(domain.ToggleTask{Index: visible[m.cursor]})
			return m, cmd
		}
	case "D":
		if len(m.snap.Session.Tasks) == 0 {
			return m, nil
		}
		if confirming {
			cmd := m.dispatch(domain.ClearTasks{})
			return m, cmd
		}
		m.confirmClear = true
	}
	return m, nil
}

func (m Model) updateTaskInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := m.taskInput.Value()
		m.leaveInput()
		cmd := m.dispatch(domain.AddTask{Text: text})
		m.taskInput.SetValue(m.snap.Session.TaskDraft)
		return m, cmd
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	}

	before := m.taskInput.Value()
	var cmd tea.Cmd
	m.taskInput, cmd = m.taskInput.Update(msg)
	if after := m.taskInput.Value(); after != before {
		dispatched := m.dispatch(domain.SetTaskDraft{Text: after})
		return m, tea.Batch(cmd, dispatched)
	}
	return m, cmd
}

func (m Model) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.leaveInput()
		return m, nil
	case tea.KeyEsc:
		m.filter = ""
		m.filterInput.Reset()
		m.leaveInput()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filter = m.filterInput.Value()
	m.cursor = 0
	return m, cmd
}

func (m Model) updateConfigInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := m.dispatch(domain.ApplyConfig{})
		return m, cmd
	case "esc":
		cmd := m.dispatch(domain.ToggleConfigPanel{})
		return m, cmd
	case "tab", "shift+tab", "up", "down":
		m.configInputs[m.configField].Blur()
		m.configField = 1 - m.configField
		blink := m.configInputs[m.configField].Focus()
		return m, blink
	}

	field := m.configField
	before := m.configInputs[field].Value()
	var cmd tea.Cmd
	m.configInputs[field], cmd = m.configInputs[field].Update(msg)
	after := m.configInputs[field].Value()
	if after == before {
		return m, cmd
	}

	minutes, ok := parseMinutes(after)
	if !ok {
		m.configInputs[field].SetValue(before)
		return m, cmd
	}
	var set domain.Command = domain.SetConfigFocusMinutes{Minutes: minutes}
	if field == 1 {
		set = domain.SetConfigRestMinutes{Minutes: minutes}
	}
	dispatched := m.dispatch(set)
	return m, tea.Batch(cmd, dispatched)
}

// parseMinutes reads a config field. An empty field counts as zero, which
// the session accepts as is.
func parseMinutes(s string) (int, bool) {
	if s == "" || s == "-" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (m *Model) leaveInput() {
	m.mode = modeNormal
	m.taskInput.Blur()
	m.filterInput.Blur()
	for i := range m.configInputs {
		m.configInputs[i].Blur()
	}
}

// dispatch sends cmd to the driver and applies the resulting snapshot.
func (m *Model) dispatch(cmd domain.Command) tea.Cmd {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	snap, err := m.driver.Dispatch(ctx, cmd)
	if err != nil {
		m.lastErr = err
		m.logger.Warn("dispatch failed", "command", domain.CommandName(cmd), "error", err)
		if errors.Is(err, domain.ErrControllerStopped) {
			return tea.Quit
		}
		return nil
	}
	m.lastErr = nil
	return m.applySnapshot(snap)
}

// applySnapshot replaces the displayed state and keeps the input modes in
// step with it. Snapshots older than the one on screen are dropped: a
// subscription read can race a synchronous dispatch reply. It returns a
// command refreshing the activity lines unless the change was a plain
// countdown tick.
func (m *Model) applySnapshot(snap domain.Snapshot) tea.Cmd {
	if snap.Seq != 0 && snap.Seq <= m.snap.Seq {
		return nil
	}
	prev := m.snap.Session
	next := snap.Session
	m.snap = snap

	switch {
	case next.ConfigPanelVisible && m.mode != modeConfig:
		m.leaveInput()
		m.mode = modeConfig
		m.configField = 0
		m.configInputs[0].SetValue(strconv.Itoa(next.DraftFocusMinutes))
		m.configInputs[1].SetValue(strconv.Itoa(next.DraftRestMinutes))
		for i := range m.configInputs {
			m.configInputs[i].CursorEnd()
		}
		m.configInputs[0].Focus()
	case !next.ConfigPanelVisible && m.mode == modeConfig:
		m.leaveInput()
	}
	m.clampCursor()

	if isCountdownTick(prev, next) {
		return nil
	}
	return m.fetchActivity()
}

func isCountdownTick(prev, next domain.Session) bool {
	return prev.Running && next.Running &&
		prev.Phase == next.Phase &&
		next.RemainingSeconds == prev.RemainingSeconds-1
}

// visibleTasks returns the task indices shown in the list, ranked by the
// filter when one is set.
func (m Model) visibleTasks() []int {
	tasks := m.snap.Session.Tasks
	if m.filter == "" {
		idx := make([]int, len(tasks))
		for i := range tasks {
			idx[i] = i
		}
		return idx
	}
	return domain.FindTasks(tasks, m.filter)
}

func (m *Model) clampCursor() {
	n := len(m.visibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Snapshot returns the last snapshot the model rendered.
func (m Model) Snapshot() domain.Snapshot {
	return m.snap
}
