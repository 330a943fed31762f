// Package tui renders the one piece of interactive surface the CLI
// still needs: a live view of a batch dispatch's N workers completing
// (§4.6). It is adapted down from the teacher's full scenario-browsing
// TUI (internal/tui/model.go, internal/tui/components/progress.go) to
// this single scene.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/rpgo/retirement-sim/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// runMsg carries one completed SimulationRun off the batch dispatcher's
// results channel into the Bubble Tea event loop.
type runMsg domain.SimulationRun

// closedMsg signals the results channel was drained and closed.
type closedMsg struct{}

// Model is the batch-progress scene: a progress bar plus a rolling
// count of successes/failures.
type Model struct {
	bar       progress.Model
	total     int
	completed int
	failed    int
	runs      chan domain.SimulationRun
	done      bool
	results   []domain.SimulationRun
}

// NewModel builds the scene for a dispatch of total runs, consuming
// completions off runs until it is closed.
func NewModel(total int, runs chan domain.SimulationRun) Model {
	return Model{
		bar:   progress.New(progress.WithDefaultGradient()),
		total: total,
		runs:  runs,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForRun(m.runs)
}

func waitForRun(runs chan domain.SimulationRun) tea.Cmd {
	return func() tea.Msg {
		run, ok := <-runs
		if !ok {
			return closedMsg{}
		}
		return runMsg(run)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		return m, nil
	case runMsg:
		run := domain.SimulationRun(msg)
		m.results = append(m.results, run)
		m.completed++
		if run.Status == domain.StatusError {
			m.failed++
		}
		cmd := m.bar.SetPercent(float64(m.completed) / float64(m.total))
		return m, tea.Batch(cmd, waitForRun(m.runs))
	case progress.FrameMsg:
		newBar, cmd := m.bar.Update(msg)
		m.bar = newBar.(progress.Model)
		return m, cmd
	case closedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("running batch"))
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d/%d complete", m.completed, m.total))
	if m.failed > 0 {
		b.WriteString(" " + errStyle.Render(fmt.Sprintf("(%d failed)", m.failed)))
	}
	if m.done {
		b.WriteString("\n" + doneStyle.Render("done"))
	}
	b.WriteString("\n")
	return b.String()
}

// Results returns the runs observed so far, in completion order (not
// RunIndex order; callers re-sort by RunIndex for deterministic
// reporting, per §5 "wall-clock arrival order is not [deterministic]").
func (m Model) Results() []domain.SimulationRun { return m.results }

// RunBatchProgress drives the progress scene to completion against a
// live channel of completed runs, returning every run observed.
func RunBatchProgress(total int, runs chan domain.SimulationRun) ([]domain.SimulationRun, error) {
	program := tea.NewProgram(NewModel(total, runs))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run batch progress: %w", err)
	}
	return final.(Model).Results(), nil
}
