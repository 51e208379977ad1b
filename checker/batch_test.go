package checker

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lukemcguire/linkbadger/eventlog"
	"github.com/lukemcguire/linkbadger/result"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// statusByPath answers HEAD requests with the status registered for the path.
func statusByPath(codes map[string]int) func(*http.Request) (*http.Response, error) {
	return func(req *http.Request) (*http.Response, error) {
		code, ok := codes[req.URL.Path]
		if !ok {
			code = http.StatusOK
		}
		return stubResponse(req, code, ""), nil
	}
}

var sampleTree = map[string]string{
	"sources/us/ca/oakland.json":  `{"conform": {"data": "https://example.com/gone"}, "data": "https://example.com/ok"}`,
	"sources/us/ca/berkeley.json": `{"layers": [{"data": "https://example.com/addresses.zip"}, {"data": "not a url"}]}`,
	"sources/broken.json":         `{"data": `,
	"sources/readme.txt":          `{"data": "https://example.com/ignored"}`,
}

func runBatch(t *testing.T, cfg Config, root string, client *http.Client) (*result.Summary, *eventlog.Journal) {
	t.Helper()
	journal := eventlog.New(io.Discard, eventlog.SeverityDebug)
	c, err := New(cfg, journal, WithHTTPClient(client))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sum, err := NewRunner(c, nil).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return sum, journal
}

func TestRunner_Modes(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			root := writeTree(t, sampleTree)
			client, web := newFakeClient(statusByPath(map[string]int{"/gone": http.StatusNotFound}))
			cfg := DefaultConfig()
			cfg.Parallel = parallel
			cfg.Workers = 4

			sum, journal := runBatch(t, cfg, root, client)

			wantStats := result.Stats{
				Documents:     3,
				ParseErrors:   1,
				MalformedURLs: 1,
				Checked:       3,
				Working:       1,
				Broken:        1,
				Skipped:       1,
			}
			if diff := cmp.Diff(wantStats, sum.Stats, cmpopts.IgnoreFields(result.Stats{}, "Duration")); diff != "" {
				t.Errorf("Stats mismatch (-want +got):\n%s", diff)
			}
			if len(sum.Failures) != 1 || sum.Failures[0].URL != "https://example.com/gone" {
				t.Errorf("Failures = %+v, want the /gone URL", sum.Failures)
			}
			if n := web.total(); n != 2 {
				t.Errorf("HEAD requests = %d, want 2", n)
			}

			parseErrs := recordsOf(journal, eventlog.EventParseError)
			if len(parseErrs) != 1 || !strings.HasSuffix(parseErrs[0].File, "broken.json") {
				t.Errorf("parse error records = %+v, want one for broken.json", parseErrs)
			}
			if got := recordsOf(journal, eventlog.EventMalformedURL); len(got) != 1 || got[0].Detail != "not a url" {
				t.Errorf("malformed records = %+v", got)
			}

			processing := recordsOf(journal, eventlog.EventProcessing)
			wantProcessing := 0
			if !parallel {
				wantProcessing = 3
			}
			if len(processing) != wantProcessing {
				t.Errorf("got %d processing notes, want %d", len(processing), wantProcessing)
			}
		})
	}
}

func TestRunner_MissingRootIsNotFatal(t *testing.T) {
	client, _ := newFakeClient(statusByPath(nil))
	sum, journal := runBatch(t, DefaultConfig(), filepath.Join(t.TempDir(), "absent"), client)

	if sum.Stats.Documents != 0 || sum.Stats.Checked != 0 {
		t.Errorf("Stats = %+v, want empty run", sum.Stats)
	}
	notes := recordsOf(journal, eventlog.EventNote)
	if len(notes) != 1 || notes[0].Severity != eventlog.SeverityError {
		t.Errorf("notes = %+v, want one error note", notes)
	}
}

func TestRunner_TaskPanicIsCollected(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.json": `[{"data": "https://example.com/boom"}, {"data": "https://example.com/fine"}]`,
	})
	client, _ := newFakeClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/boom" {
			panic("transport exploded")
		}
		return stubResponse(req, http.StatusOK, ""), nil
	})
	cfg := DefaultConfig()
	cfg.ShareProbes = false

	sum, journal := runBatch(t, cfg, root, client)

	if sum.Stats.TaskErrors != 1 {
		t.Errorf("TaskErrors = %d, want 1", sum.Stats.TaskErrors)
	}
	if sum.Stats.Working != 1 {
		t.Errorf("Working = %d, want 1 (sibling task must finish)", sum.Stats.Working)
	}
	taskErrs := recordsOf(journal, eventlog.EventTaskError)
	if len(taskErrs) != 1 || !strings.Contains(taskErrs[0].Detail, "transport exploded") {
		t.Errorf("task error records = %+v", taskErrs)
	}
}

func TestRunner_DedupeCandidates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.json": `[{"data": "https://example.com/x"}, {"data": "https://example.com/x"}]`,
		"b.json": `{"data": "https://example.com/x"}`,
	})
	client, web := newFakeClient(statusByPath(nil))
	cfg := DefaultConfig()
	cfg.Parallel = false
	cfg.ShareProbes = false
	cfg.DedupeCandidates = true

	sum, journal := runBatch(t, cfg, root, client)

	if sum.Stats.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", sum.Stats.Duplicates)
	}
	if sum.Stats.Checked != 2 {
		t.Errorf("Checked = %d, want 2 (same URL in another file is still checked)", sum.Stats.Checked)
	}
	if n := web.total(); n != 2 {
		t.Errorf("HEAD requests = %d, want 2", n)
	}
	notes := recordsOf(journal, eventlog.EventNote)
	if len(notes) != 1 || !strings.Contains(notes[0].Message(), "Dropping duplicate URL in file") {
		t.Errorf("notes = %+v, want one duplicate note", notes)
	}
}

func TestRunner_ProgressEvents(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.json": `[{"data": "https://example.com/1"}, {"data": "https://example.com/2"}, {"data": "https://example.com/3"}]`,
	})
	client, _ := newFakeClient(statusByPath(map[string]int{"/2": http.StatusInternalServerError}))
	journal := eventlog.New(io.Discard, eventlog.SeverityInfo)
	c, err := New(DefaultConfig(), journal, WithHTTPClient(client))
	if err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 10)
	if _, err := NewRunner(c, events).Run(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	close(events)

	var got []Event
	for evt := range events {
		got = append(got, evt)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	last := got[len(got)-1]
	if last.Checked != 3 || last.Total != 3 || last.Failed != 1 {
		t.Errorf("last event = %+v, want 3/3 with 1 failure", last)
	}

	urls := make([]string, len(got))
	for i, evt := range got {
		urls[i] = evt.URL
	}
	sort.Strings(urls)
	want := []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Errorf("event URLs mismatch (-want +got):\n%s", diff)
	}
}

func TestRunner_CancelledBeforeDispatch(t *testing.T) {
	root := writeTree(t, sampleTree)
	client, web := newFakeClient(statusByPath(nil))
	journal := eventlog.New(io.Discard, eventlog.SeverityDebug)
	c, err := New(DefaultConfig(), journal, WithHTTPClient(client))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := NewRunner(c, nil).Run(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Stats.Checked != 0 || web.total() != 0 {
		t.Errorf("checked %d URLs with %d requests after cancellation", sum.Stats.Checked, web.total())
	}
}
