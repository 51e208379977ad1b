package eventlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal appends records to a text sink and keeps the written records in
// memory. It is safe for concurrent use; each record is written with a single
// Write call while holding the lock, so lines never interleave.
type Journal struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	min     Severity
	now     func() time.Time
	records []Record
	err     error
}

// New returns a Journal writing to w. Records below min are dropped.
func New(w io.Writer, min Severity) *Journal {
	if w == nil {
		w = io.Discard
	}
	return &Journal{w: w, min: min, now: time.Now}
}

// Open creates (or truncates) the log file at path, creating parent
// directories as needed.
func Open(path string, min Severity) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	j := New(f, min)
	j.closer = f
	return j, nil
}

// SetClock replaces the time source. Intended for tests.
func (j *Journal) SetClock(now func() time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.now = now
}

// Log stamps r with the current time and its line index, writes it, and
// retains it. Records below the minimum severity are ignored.
func (j *Journal) Log(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if r.Severity < j.min {
		return
	}
	if r.Time.IsZero() {
		r.Time = j.now()
	}
	r.Line = len(j.records)
	j.records = append(j.records, r)

	if _, err := io.WriteString(j.w, r.Format()+"\n"); err != nil && j.err == nil {
		j.err = fmt.Errorf("write log line %d: %w", r.Line, err)
	}
}

// Working records a URL that answered with a 2xx status.
func (j *Journal) Working(file, url string) {
	j.Log(Record{Severity: SeverityInfo, Event: EventWorking, File: file, URL: url})
}

// Broken records a URL that answered with a non-2xx status.
func (j *Journal) Broken(file, url string, status int) {
	j.Log(Record{Severity: SeverityWarning, Event: EventBroken, File: file, URL: url, StatusCode: status})
}

// Exception records a URL whose probe failed before a response arrived.
func (j *Journal) Exception(file, url, detail string) {
	j.Log(Record{Severity: SeverityWarning, Event: EventException, File: file, URL: url, Detail: detail})
}

// Skipped records a URL that was not probed.
func (j *Journal) Skipped(file, url, reason string) {
	j.Log(Record{Severity: SeverityInfo, Event: EventSkipped, File: file, URL: url, Detail: reason})
}

// Fallback records the switch from a failed http:// probe to https://.
func (j *Journal) Fallback(file, httpsURL string) {
	j.Log(Record{Severity: SeverityInfo, Event: EventFallback, File: file, URL: httpsURL})
}

// Processing records the start of a source file in sequential mode.
func (j *Journal) Processing(file string) {
	j.Log(Record{Severity: SeverityInfo, Event: EventProcessing, File: file})
}

// ParseError records a source file that could not be loaded.
func (j *Journal) ParseError(file string, err error) {
	j.Log(Record{Severity: SeverityError, Event: EventParseError, File: file, Detail: errText(err)})
}

// MalformedURL records a reserved-key value that is not an absolute URL.
func (j *Journal) MalformedURL(file, value string) {
	j.Log(Record{Severity: SeverityError, Event: EventMalformedURL, File: file, Detail: value})
}

// TaskError records a check task that failed outside the normal outcome path.
func (j *Journal) TaskError(err error) {
	j.Log(Record{Severity: SeverityError, Event: EventTaskError, Detail: errText(err)})
}

// Note records a free-form message.
func (j *Journal) Note(severity Severity, msg string) {
	j.Log(Record{Severity: severity, Event: EventNote, Detail: msg})
}

// Records returns a copy of every record written so far.
func (j *Journal) Records() []Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Record, len(j.records))
	copy(out, j.records)
	return out
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Close flushes and closes the underlying file when the Journal owns one.
// It also reports the first write error seen.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var errs []error
	if j.err != nil {
		errs = append(errs, j.err)
	}
	if j.closer != nil {
		if syncer, ok := j.closer.(interface{ Sync() error }); ok {
			if err := syncer.Sync(); err != nil {
				errs = append(errs, fmt.Errorf("sync log file: %w", err))
			}
		}
		if err := j.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
		j.closer = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close journal: %w", errors.Join(errs...))
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
