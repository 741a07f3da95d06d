package tui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marianecozta/Pomodoro/internal/domain"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// Run shows the interactive screen until the user quits or ctx is
// cancelled, and returns the last snapshot it displayed.
func Run(ctx context.Context, driver ports.SessionDriver, opts Options, progOpts ...tea.ProgramOption) (domain.Snapshot, error) {
	updates, unsubscribe := driver.Subscribe()
	defer unsubscribe()

	model := NewModel(driver, updates, opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	program := tea.NewProgram(model, progOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-runCtx.Done()
		program.Quit()
	}()

	final, err := program.Run()
	cancel()
	wg.Wait()

	if err != nil {
		return driver.Snapshot(), fmt.Errorf("failed to run TUI: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Snapshot(), nil
	}
	return driver.Snapshot(), nil
}

// PrintSummary writes the end-of-run report shown after the screen closes.
func PrintSummary(w io.Writer, snap domain.Snapshot, journal *ports.JournalSummary) {
	s := snap.Session
	fmt.Fprintln(w, appTitle)
	fmt.Fprintf(w, "   Ciclos concluídos: %d\n", s.Stats.CyclesCompleted)
	fmt.Fprintf(w, "   Tempo estudado: %d min\n", s.Stats.MinutesStudied)
	fmt.Fprintf(w, "   Atividades concluídas: %d\n", s.Stats.TasksCompleted)

	if pending := len(s.Tasks) - s.CompletedCount(); pending > 0 {
		fmt.Fprintf(w, "\n📋 Tarefas pendentes: %d\n", pending)
		for _, t := range s.Tasks {
			if !t.Completed {
				fmt.Fprintf(w, "   - %s\n", t.Text)
			}
		}
	}

	if journal != nil && len(journal.CompletedTasks) > 0 {
		fmt.Fprintf(w, "\n✅ Tarefas concluídas nesta sessão: %d\n", len(journal.CompletedTasks))
		for _, text := range journal.CompletedTasks {
			fmt.Fprintf(w, "   - %s\n", text)
		}
	}

	if journal != nil && journal.FirstEvent != nil && journal.LastEvent != nil {
		span := journal.LastEvent.Sub(*journal.FirstEvent).Round(time.Second)
		fmt.Fprintf(w, "\n📊 %d eventos em %s\n", journal.Entries, span)
	}
}
