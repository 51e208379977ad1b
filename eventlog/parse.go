package eventlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognized is returned by ParseLine for text that is not a log line.
var ErrUnrecognized = errors.New("unrecognized log line")

var linePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}) - (DEBUG|INFO|WARNING|ERROR) - (.*)$`)

type messagePattern struct {
	event    Event
	severity Severity
	anyLevel bool
	re       *regexp.Regexp
	fill     func(r *Record, m []string)
}

// Broken and exception lines are only recognised at WARNING severity, the
// level they are written at. "broken," without "in file" is accepted so older
// logs still parse.
var messagePatterns = []messagePattern{
	{
		event:    EventBroken,
		severity: SeverityWarning,
		re:       regexp.MustCompile(`^\s*(.*) - URL might be broken(?: in file)?, Status code: (\d+): (https?://.*?)\s*$`),
		fill: func(r *Record, m []string) {
			r.File, r.URL = m[1], m[3]
			r.StatusCode, _ = strconv.Atoi(m[2])
		},
	},
	{
		event:    EventException,
		severity: SeverityWarning,
		re:       regexp.MustCompile(`^\s*(.*) - Exception for URL in file :(\S+) (.*)$`),
		fill: func(r *Record, m []string) {
			r.File, r.URL, r.Detail = m[1], m[2], m[3]
		},
	},
	{
		event:    EventWorking,
		anyLevel: true,
		re:       regexp.MustCompile(`^\s*(.*) - URL is working - (.*)$`),
		fill: func(r *Record, m []string) {
			r.File, r.URL = m[1], m[2]
		},
	},
	{
		event:    EventSkipped,
		anyLevel: true,
		re:       regexp.MustCompile(`^Skipping URL \((.*?)\) in file (.*): (\S*)$`),
		fill: func(r *Record, m []string) {
			r.Detail, r.File, r.URL = m[1], m[2], m[3]
		},
	},
	{
		event:    EventFallback,
		anyLevel: true,
		re:       regexp.MustCompile(`^Trying HTTPS version of the URL: (.*)$`),
		fill: func(r *Record, m []string) {
			r.URL = m[1]
		},
	},
	{
		event:    EventProcessing,
		anyLevel: true,
		re:       regexp.MustCompile(`^Processing file: (.*)$`),
		fill: func(r *Record, m []string) {
			r.File = m[1]
		},
	},
	{
		event:    EventParseError,
		anyLevel: true,
		re:       regexp.MustCompile(`^Failed to load JSON file (.*?) - (.*)$`),
		fill: func(r *Record, m []string) {
			r.File, r.Detail = m[1], m[2]
		},
	},
	{
		event:    EventMalformedURL,
		anyLevel: true,
		re:       regexp.MustCompile(`^Invalid URL format in 'data' in file (.*?): (.*)$`),
		fill: func(r *Record, m []string) {
			r.File, r.Detail = m[1], m[2]
		},
	},
	{
		event:    EventTaskError,
		anyLevel: true,
		re:       regexp.MustCompile(`^Exception during URL processing: (.*)$`),
		fill: func(r *Record, m []string) {
			r.Detail = m[1]
		},
	},
}

// ParseLine turns one serialised line back into a Record with the given line
// index. Messages that match no known event come back as EventNote with the
// message in Detail.
func ParseLine(line string, index int) (Record, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, ErrUnrecognized
	}
	ts, err := time.ParseInLocation(TimeLayout, m[1], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("parse timestamp %q: %w", m[1], err)
	}
	sev, err := ParseSeverity(m[2])
	if err != nil {
		return Record{}, err
	}

	rec := Record{Line: index, Time: ts, Severity: sev, Event: EventNote, Detail: m[3]}
	for _, p := range messagePatterns {
		if !p.anyLevel && p.severity != sev {
			continue
		}
		sub := p.re.FindStringSubmatch(m[3])
		if sub == nil {
			continue
		}
		rec.Event = p.event
		rec.Detail = ""
		p.fill(&rec, sub)
		break
	}
	return rec, nil
}

// Read parses every recognised line from r. Line indexes count every line,
// including ones that are skipped as unrecognised. Lines have no length limit.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	var records []Record
	index := 0
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			if rec, parseErr := ParseLine(line, index); parseErr == nil {
				records = append(records, rec)
			}
			index++
		}
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("read log: %w", err)
		}
	}
}

// ReadFile parses the log file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Read(f)
}
