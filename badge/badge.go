// Package badge turns failing log records into small markdown badge files
// that link back to the source file that referenced the failing URL.
package badge

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lukemcguire/linkbadger/eventlog"
)

const (
	// DefaultRepositoryURL is prefixed to the short identifier in badge links.
	DefaultRepositoryURL = "https://github.com/openaddresses/openaddresses/tree/master/sources/"
	// DefaultAnchor is the path segment everything up to which is dropped.
	DefaultAnchor = "sources/"

	shieldsBase = "https://img.shields.io/badge/"
)

// Options controls badge rendering and output.
type Options struct {
	RepositoryURL    string
	Anchor           string
	ClearBeforeWrite bool // remove badge_*.md files from the output directory first
}

// DefaultOptions returns the options used for the openaddresses layout.
func DefaultOptions() Options {
	return Options{
		RepositoryURL: DefaultRepositoryURL,
		Anchor:        DefaultAnchor,
	}
}

// Badge is one rendered failure badge.
type Badge struct {
	Line     int    // 0-based index of the originating log line
	ShortID  string // normalised file identifier
	Markdown string
}

// FileName is the name of the file the badge is written to.
func (b Badge) FileName() string {
	return fmt.Sprintf("badge_%d.md", b.Line)
}

// ShortID normalises a file identifier: backslashes become slashes, leading
// "." and "/" characters are trimmed, and everything up to and including the
// first occurrence of anchor is dropped.
func ShortID(file, anchor string) string {
	id := strings.ReplaceAll(file, `\`, "/")
	id = strings.TrimLeft(id, "./")
	if anchor != "" {
		if _, after, found := strings.Cut(id, anchor); found {
			id = after
		}
	}
	return id
}

// FromRecord renders the badge for a failing record. The second return value
// is false for records that are not failures.
func FromRecord(r eventlog.Record, opts Options) (Badge, bool) {
	if r.Severity != eventlog.SeverityWarning {
		return Badge{}, false
	}

	id := ShortID(r.File, opts.Anchor)
	var alt, message string
	switch r.Event {
	case eventlog.EventBroken:
		alt = fmt.Sprintf("%s - Status code %d", id, r.StatusCode)
		message = "Failed"
	case eventlog.EventException:
		alt = id + " - Exception"
		message = "Exception"
	default:
		return Badge{}, false
	}

	image := shieldsBase + shieldsEscape(id) + "-" + message + "-red"
	md := fmt.Sprintf("[![%s](%s)](%s%s)", alt, image, opts.RepositoryURL, id)
	return Badge{Line: r.Line, ShortID: id, Markdown: md}, true
}

// shieldsEscape encodes text for a shields.io static badge path segment:
// dashes and underscores are doubled and the result is path-escaped.
func shieldsEscape(s string) string {
	s = strings.ReplaceAll(s, "-", "--")
	s = strings.ReplaceAll(s, "_", "__")
	return url.PathEscape(s)
}
