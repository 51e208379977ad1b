package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/linkbadger/checker"
	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/result"
)

func newTestRunner(t *testing.T, progressCh chan<- checker.Event) *checker.Runner {
	t.Helper()
	c, err := checker.New(checker.DefaultConfig(), eventlog.New(io.Discard, eventlog.SeverityInfo))
	if err != nil {
		t.Fatalf("checker.New: %v", err)
	}
	return checker.NewRunner(c, progressCh)
}

func TestNewModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressCh := make(chan checker.Event, 10)
	runner := newTestRunner(t, progressCh)

	model := NewModel(ctx, cancel, runner, "./sources", progressCh)

	if model.ctx != ctx {
		t.Error("expected ctx to be stored in model")
	}
	if model.cancel == nil {
		t.Error("expected cancel to be stored in model")
	}
	if model.runner != runner {
		t.Error("expected runner to be stored in model")
	}
	if model.root != "./sources" {
		t.Errorf("root = %q, want ./sources", model.root)
	}
	if model.progressCh != progressCh {
		t.Error("expected progressCh to be stored in model")
	}
	if model.checked != 0 || model.failed != 0 {
		t.Error("expected initial counters to be zero")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
}

func TestInit_ReturnsBatchCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progressCh := make(chan checker.Event, 10)
	model := NewModel(ctx, cancel, newTestRunner(t, progressCh), t.TempDir(), progressCh)
	if cmd := model.Init(); cmd == nil {
		t.Error("Init() should return a non-nil batch command")
	}
}

func TestStartRun_EmptyTree(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewModel(ctx, cancel, newTestRunner(t, nil), t.TempDir(), nil)
	msg := model.startRun()()

	done, ok := msg.(RunDoneMsg)
	if !ok {
		t.Fatalf("startRun produced %T, want RunDoneMsg", msg)
	}
	if done.Err != nil {
		t.Fatalf("Err = %v", done.Err)
	}
	if done.Summary == nil || done.Summary.Stats.Checked != 0 {
		t.Errorf("Summary = %+v, want empty run", done.Summary)
	}
}

func TestUpdate_ProgressMsg(t *testing.T) {
	model := Model{
		progressCh: make(chan checker.Event, 10),
	}

	msg := ProgressMsg{Checked: 5, Total: 9, Failed: 1, URL: "https://example.com/page"}
	updatedModel, cmd := model.Update(msg)
	updated := updatedModel.(Model)

	if updated.checked != 5 || updated.total != 9 {
		t.Errorf("expected 5/9, got %d/%d", updated.checked, updated.total)
	}
	if updated.failed != 1 {
		t.Errorf("expected failed=1, got %d", updated.failed)
	}
	if updated.current != "https://example.com/page" {
		t.Errorf("expected current URL to be set, got %s", updated.current)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to progress channel")
	}
}

func TestWaitForProgress(t *testing.T) {
	ch := make(chan checker.Event, 1)
	ch <- checker.Event{URL: "https://example.com", Checked: 1, Total: 2, Failed: 1}

	msg := waitForProgress(ch)()
	want := ProgressMsg{Checked: 1, Total: 2, Failed: 1, URL: "https://example.com"}
	if msg != want {
		t.Errorf("msg = %+v, want %+v", msg, want)
	}

	close(ch)
	if msg := waitForProgress(ch)(); msg != nil {
		t.Errorf("closed channel produced %+v, want nil", msg)
	}
}

func TestUpdate_RunDoneMsg(t *testing.T) {
	model := Model{}
	sum := &result.Summary{
		Failures: []result.Outcome{{Kind: result.KindBroken, URL: "https://example.com/404", StatusCode: 404}},
		Stats:    result.Stats{Checked: 10, Broken: 1},
	}

	updatedModel, cmd := model.Update(RunDoneMsg{Summary: sum})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after RunDoneMsg")
	}
	if updated.Summary() != sum {
		t.Error("expected summary to be stored")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestUpdate_QuitWaitsForRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := Model{ctx: ctx, cancel: cancel}
	updatedModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	updated := updatedModel.(Model)

	if !updated.Interrupted() {
		t.Error("expected quitting after q")
	}
	if ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
	if cmd != nil {
		t.Error("quit must wait for RunDoneMsg, got a command")
	}
	if !strings.Contains(updated.View(), "Stopping") {
		t.Errorf("expected stopping view, got %q", updated.View())
	}
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model)
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := updatedModel.(Model)

	if updated.width != 120 {
		t.Errorf("expected width=120, got %d", updated.width)
	}
}

func TestView_InProgress(t *testing.T) {
	model := Model{
		checked: 3,
		total:   7,
		failed:  1,
		current: "https://example.com/checking",
	}
	output := model.View()
	if !strings.Contains(output, "Checking") {
		t.Errorf("expected 'Checking' in progress view, got: %s", output)
	}
	if !strings.Contains(output, "3/7") {
		t.Errorf("expected checked count in view, got: %s", output)
	}
}

func TestView_DoneWithError(t *testing.T) {
	model := Model{
		done: true,
		err:  errors.New("boom"),
	}
	if output := model.View(); !strings.Contains(output, "Error") {
		t.Errorf("expected error message in done view, got: %s", output)
	}
}

func TestRenderSummary_NilSummary(t *testing.T) {
	if output := RenderSummary(nil); output == "" {
		t.Error("expected non-empty output for nil summary")
	}
}

func TestRenderSummary_NoFailures(t *testing.T) {
	sum := &result.Summary{
		Stats: result.Stats{Documents: 4, Checked: 10, Working: 8, Skipped: 2, Duration: 2 * time.Second},
	}
	output := RenderSummary(sum)
	if !strings.Contains(output, "No broken links found") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "10") {
		t.Errorf("expected URL count in output, got: %s", output)
	}
}

func TestRenderSummary_WithFailures(t *testing.T) {
	sum := &result.Summary{
		Failures: []result.Outcome{
			{Kind: result.KindBroken, URL: "https://example.com/dead", StatusCode: 404, File: "sources/us/ca/oakland.json", ErrorCategory: result.Category4xx},
			{Kind: result.KindException, URL: "https://example.com/err", Error: "connection refused", File: "sources/us/ca/berkeley.json", ErrorCategory: result.CategoryConnectionRefused},
		},
		Stats: result.Stats{Documents: 2, Checked: 25, Broken: 1, Exceptions: 1, ParseErrors: 1, Duration: 3 * time.Second},
	}
	output := RenderSummary(sum)
	for _, want := range []string{"example.com/dead", "404", "connection refused", "oakland.json", "2 broken links", "1 unreadable files"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}
