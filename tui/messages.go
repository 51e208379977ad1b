package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/linkbadger/checker"
	"github.com/lukemcguire/linkbadger/result"
)

// ProgressMsg reports progress for a single checked candidate.
type ProgressMsg struct {
	Checked int
	Total   int
	Failed  int
	URL     string
}

// RunDoneMsg signals the run has completed.
type RunDoneMsg struct {
	Summary *result.Summary
	Err     error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. A closed channel yields no message; completion is reported by
// startRun.
func waitForProgress(ch <-chan checker.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{
			Checked: evt.Checked,
			Total:   evt.Total,
			Failed:  evt.Failed,
			URL:     evt.URL,
		}
	}
}
