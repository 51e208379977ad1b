// Package result defines link check outcomes and run summaries, and renders
// them as plain text, JSON, or CSV.
package result

import "time"

// Kind classifies a single link check.
type Kind string

const (
	KindWorking   Kind = "working"
	KindBroken    Kind = "broken"
	KindSkipped   Kind = "skipped"
	KindException Kind = "exception"
)

// Outcome is the result of checking one URL found in one source file.
type Outcome struct {
	Kind          Kind          `json:"kind"`
	File          string        `json:"file"`
	URL           string        `json:"url"`
	StatusCode    int           `json:"status_code,omitempty"` // HTTP status (0 if unreachable or skipped)
	Reason        string        `json:"reason,omitempty"`      // why a URL was skipped
	Error         string        `json:"error,omitempty"`       // probe error message
	ErrorCategory ErrorCategory `json:"error_type,omitempty"`
}

// Failed reports whether the outcome should be surfaced as a failure.
func (o Outcome) Failed() bool {
	return o.Kind == KindBroken || o.Kind == KindException
}

// Stats contains aggregate counters for one run.
type Stats struct {
	Documents     int           `json:"documents"`      // source files discovered
	ParseErrors   int           `json:"parse_errors"`   // files skipped because they failed to load
	MalformedURLs int           `json:"malformed_urls"` // reserved-key values rejected as URLs
	Duplicates    int           `json:"duplicates"`     // candidates dropped by de-duplication
	Checked       int           `json:"checked"`        // candidates that produced an outcome
	Working       int           `json:"working"`
	Broken        int           `json:"broken"`
	Skipped       int           `json:"skipped"`
	Exceptions    int           `json:"exceptions"`
	TaskErrors    int           `json:"task_errors"`
	Duration      time.Duration `json:"duration"`
}

// Summary is the complete output of a run.
type Summary struct {
	Failures []Outcome // Broken and Exception outcomes in completion order
	Stats    Stats
}

// Add folds one outcome into the summary.
func (s *Summary) Add(o Outcome) {
	s.Stats.Checked++
	switch o.Kind {
	case KindWorking:
		s.Stats.Working++
	case KindBroken:
		s.Stats.Broken++
	case KindSkipped:
		s.Stats.Skipped++
	case KindException:
		s.Stats.Exceptions++
	}
	if o.Failed() {
		s.Failures = append(s.Failures, o)
	}
}

// FailureCount returns the number of broken and exception outcomes.
func (s *Summary) FailureCount() int {
	return s.Stats.Broken + s.Stats.Exceptions
}
