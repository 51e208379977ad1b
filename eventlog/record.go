// Package eventlog is the append-only record channel between the link checker
// and the badge generator. Records are kept in memory as typed values and
// serialised one per line as "<timestamp> - <SEVERITY> - <message>".
package eventlog

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp layout of a serialised line.
const TimeLayout = "2006-01-02 15:04:05,000"

// Severity orders records from least to most severe.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// ParseSeverity accepts DEBUG, INFO, WARN, WARNING, and ERROR in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO", "":
		return SeverityInfo, nil
	case "WARN", "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Event identifies what a record describes.
type Event string

const (
	EventWorking      Event = "working"
	EventBroken       Event = "broken"
	EventException    Event = "exception"
	EventSkipped      Event = "skipped"
	EventFallback     Event = "https_fallback"
	EventProcessing   Event = "processing"
	EventParseError   Event = "parse_error"
	EventMalformedURL Event = "malformed_url"
	EventTaskError    Event = "task_error"
	EventNote         Event = "note"
)

// Record is one log entry.
type Record struct {
	Line       int // 0-based line index in the serialised log
	Time       time.Time
	Severity   Severity
	Event      Event
	File       string
	URL        string
	StatusCode int
	Detail     string // error text, skip reason, or free-form note
}

// Failed reports whether the record describes a broken or unreachable URL.
func (r Record) Failed() bool {
	return r.Event == EventBroken || r.Event == EventException
}

// Message renders the human-readable message part of the line.
func (r Record) Message() string {
	var msg string
	switch r.Event {
	case EventWorking:
		msg = fmt.Sprintf("%s - URL is working - %s", r.File, r.URL)
	case EventBroken:
		msg = fmt.Sprintf("%s - URL might be broken in file, Status code: %d: %s", r.File, r.StatusCode, r.URL)
	case EventException:
		msg = fmt.Sprintf("%s - Exception for URL in file :%s %s", r.File, r.URL, r.Detail)
	case EventSkipped:
		msg = fmt.Sprintf("Skipping URL (%s) in file %s: %s", r.Detail, r.File, r.URL)
	case EventFallback:
		msg = fmt.Sprintf("Trying HTTPS version of the URL: %s", r.URL)
	case EventProcessing:
		msg = fmt.Sprintf("Processing file: %s", r.File)
	case EventParseError:
		msg = fmt.Sprintf("Failed to load JSON file %s - %s", r.File, r.Detail)
	case EventMalformedURL:
		msg = fmt.Sprintf("Invalid URL format in 'data' in file %s: %s", r.File, r.Detail)
	case EventTaskError:
		msg = fmt.Sprintf("Exception during URL processing: %s", r.Detail)
	default:
		msg = r.Detail
	}
	return singleLine(msg)
}

// Format renders the full serialised line without a trailing newline.
func (r Record) Format() string {
	return r.Time.Format(TimeLayout) + " - " + r.Severity.String() + " - " + r.Message()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func singleLine(s string) string {
	return lineBreaks.Replace(s)
}
