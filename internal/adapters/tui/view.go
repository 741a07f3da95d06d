package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/marianecozta/Pomodoro/internal/config"
	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

const appTitle = "🍅 Pomodoro Universitário"

// palette returns the colours for the current day/night setting.
func (m Model) palette() config.Palette {
	if m.snap.Session.NightMode {
		return m.theme.Night
	}
	return m.theme.Day
}

// timerColor follows the phase, greyed out while paused.
func (m Model) timerColor() lipgloss.Color {
	p := m.palette()
	s := m.snap.Session
	switch {
	case !s.Running:
		return lipgloss.Color(p.Paused)
	case s.Phase == domain.PhaseRest:
		return lipgloss.Color(p.Rest)
	default:
		return lipgloss.Color(p.Focus)
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	p := m.palette()
	s := m.snap.Session
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	statusStyle := lipgloss.NewStyle().Foreground(m.timerColor())

	var sections []string
	sections = append(sections, titleStyle.Render(appTitle))
	if m.gitLabel != "" {
		sections = append(sections, mutedStyle.Render("⎇ "+m.gitLabel))
	}
	sections = append(sections, mutedStyle.Render(statsLine(s.Stats)))

	sections = append(sections, "")
	sections = append(sections, statusStyle.Render(fmt.Sprintf("%s · %s", s.Phase.Label(), s.StatusLabel())))
	sections = append(sections, renderBigTime(m.snap.Clock, m.timerColor(), m.width))
	sections = append(sections, "")
	sections = append(sections, m.viewProgress())
	sections = append(sections, "")
	sections = append(sections, mutedStyle.Render(m.helpLine()))

	if m.mode == modeConfig {
		sections = append(sections, "", m.viewConfigPanel())
	}

	sections = append(sections, "", m.viewTasks())

	if len(m.recent) > 0 {
		sections = append(sections, "", m.viewActivity())
	}

	if m.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Focus))
		sections = append(sections, "", errStyle.Render("Erro: "+m.lastErr.Error()))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func statsLine(st domain.Statistics) string {
	return fmt.Sprintf("Ciclos concluídos: %d · Tempo estudado: %d min · Atividades concluídas: %d",
		st.CyclesCompleted, st.MinutesStudied, st.TasksCompleted)
}

// viewProgress draws the ring as a bar. The fraction can exceed 1 when the
// focus block is longer than the reference span; the bar saturates but the
// label shows the raw value.
func (m Model) viewProgress() string {
	bar := m.progress
	bar.FullColor = string(m.timerColor())
	bar.EmptyColor = m.palette().Done
	if bar.Width <= 0 {
		bar = progress.New(progress.WithoutPercentage(), progress.WithSolidFill(string(m.timerColor())))
		bar.Width = 40
	}
	fraction := m.snap.Progress
	shown := fraction
	if shown > 1 {
		shown = 1
	}
	if shown < 0 {
		shown = 0
	}
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette().Muted)).
		Render(fmt.Sprintf(" %3.0f%%", fraction*100))
	return bar.ViewAs(shown) + label
}

func (m Model) helpLine() string {
	action := "iniciar"
	if m.snap.Session.Running {
		action = "pausar"
	}
	night := "noite"
	if m.snap.Session.NightMode {
		night = "dia"
	}
	switch m.mode {
	case modeAddTask:
		return "enter adicionar · esc voltar"
	case modeFilter:
		return "enter manter filtro · esc limpar"
	case modeConfig:
		return "tab trocar campo · enter aplicar · esc fechar"
	}
	if m.confirmClear {
		return "Limpar todas as tarefas? [D] confirmar"
	}
	return fmt.Sprintf("[espaço] %s  [r]esetar  [c]onfigurar  [n] %s  [a]dicionar  [x] concluir  [/] filtrar  [D] limpar  [q] sair",
		action, night)
}

func (m Model) viewConfigPanel() string {
	p := m.palette()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Muted)).
		Padding(0, 1)

	rows := []string{
		labelStyle.Bold(true).Render("Configurar Timer"),
		labelStyle.Render("Tempo de Foco (min):      ") + m.configInputs[0].View(),
		labelStyle.Render("Tempo de Descanso (min):  ") + m.configInputs[1].View(),
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewTasks() string {
	p := m.palette()
	s := m.snap.Session
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text))
	doneStyle := lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color(p.Done))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Focus))

	header := fmt.Sprintf("Lista de Tarefas (%d/%d)", s.CompletedCount(), len(s.Tasks))
	lines := []string{headerStyle.Render(header)}

	switch m.mode {
	case modeAddTask:
		lines = append(lines, m.taskInput.View())
	case modeFilter:
		lines = append(lines, m.filterInput.View())
	default:
		if m.filter != "" {
			lines = append(lines, mutedStyle.Render("filtro: "+m.filter))
		}
	}

	visible := m.visibleTasks()
	if len(s.Tasks) == 0 {
		lines = append(lines, mutedStyle.Render("Nenhuma tarefa. [a] para adicionar"))
	} else if len(visible) == 0 {
		lines = append(lines, mutedStyle.Render("Nenhuma tarefa corresponde ao filtro"))
	}
	for pos, idx := range visible {
		task := s.Tasks[idx]
		pointer := "  "
		if pos == m.cursor && m.mode == modeNormal {
			pointer = cursorStyle.Render("› ")
		}
		box := "[ ]"
		style := textStyle
		if task.Completed {
			box = "[x]"
			style = doneStyle
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", pointer, box, style.Render(task.Text)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewActivity() string {
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette().Muted))
	lines := make([]string, 0, len(m.recent))
	for _, e := range m.recent {
		lines = append(lines, mutedStyle.Render(activityLine(e)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

var activityLabels = map[domain.EventKind]string{
	domain.EventStarted:        "iniciado",
	domain.EventPaused:         "pausado",
	domain.EventCycleCompleted: "ciclo concluído",
	domain.EventRestCompleted:  "descanso concluído",
	domain.EventReset:          "resetado",
	domain.EventConfigApplied:  "configuração aplicada",
	domain.EventTaskAdded:      "tarefa adicionada",
	domain.EventTaskCompleted:  "tarefa concluída",
	domain.EventTasksCleared:   "tarefas limpas",
}

func activityLine(e ports.JournalEntry) string {
	label, ok := activityLabels[e.Kind]
	if !ok {
		label = string(e.Kind)
	}
	parts := []string{e.RecordedAt.Local().Format("15:04"), label}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	line := strings.Join(parts, " · ")
	if e.GitBranch != "" {
		line += fmt.Sprintf(" (%s)", e.GitBranch)
	}
	return line
}
