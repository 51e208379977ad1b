// Package tui provides the Bubble Tea terminal UI for linkbadger,
// displaying live check progress and a styled summary of results.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/linkbadger/checker"
	"github.com/lukemcguire/linkbadger/result"
)

// Model is the Bubble Tea model for a link check run.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	runner     *checker.Runner
	root       string
	spinner    spinner.Model
	progressCh <-chan checker.Event

	checked  int
	total    int
	failed   int
	current  string
	quitting bool
	done     bool
	summary  *result.Summary
	err      error
	width    int
}

// NewModel creates a TUI model that runs runner over root and listens on
// progressCh.
func NewModel(ctx context.Context, cancel context.CancelFunc, runner *checker.Runner, root string, progressCh <-chan checker.Event) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		runner:     runner,
		root:       root,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, the run, and the progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), waitForProgress(m.progressCh))
}

// startRun returns a tea.Cmd that runs the batch and sends RunDoneMsg.
func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		sum, err := m.runner.Run(m.ctx, m.root)
		if err != nil {
			err = fmt.Errorf("run: %w", err)
		}
		return RunDoneMsg{Summary: sum, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
//
// Quitting cancels dispatch but the program keeps running until RunDoneMsg
// arrives, so in-flight checks are recorded before the program exits.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.checked = msg.Checked
		m.total = msg.Total
		m.failed = msg.Failed
		m.current = msg.URL
		return m, waitForProgress(m.progressCh)

	case RunDoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		// The summary is printed after the program exits.
		return ""
	}
	verb := "Checking..."
	if m.quitting {
		verb = "Stopping, waiting for in-flight checks..."
	}
	return fmt.Sprintf("%s %s checked %d/%d, failed %d\n%s\n",
		m.spinner.View(), verb, m.checked, m.total, m.failed,
		dimStyle.Render("  "+m.current))
}

// Summary returns the run summary once the run has finished.
func (m Model) Summary() *result.Summary {
	return m.summary
}

// Err returns the error the run finished with, if any.
func (m Model) Err() error {
	return m.err
}

// Interrupted reports whether the user asked to stop the run early.
func (m Model) Interrupted() bool {
	return m.quitting
}
