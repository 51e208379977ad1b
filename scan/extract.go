package scan

import (
	"fmt"
	"iter"

	"github.com/lukemcguire/linkbadger/urlutil"
)

// ReservedKey is the object key whose string values are treated as URLs.
const ReservedKey = "data"

// Candidate is a URL found in a source document.
type Candidate struct {
	URL  string
	File string
}

// MalformedURLError reports a reserved-key value that is not an absolute URL.
type MalformedURLError struct {
	File  string
	Value string
	Err   error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("invalid URL format in %q in file %s: %s", ReservedKey, e.File, e.Value)
}

func (e *MalformedURLError) Unwrap() error { return e.Err }

// Extract walks v and yields every string stored under ReservedKey at any depth.
// Values that do not parse into a scheme and host are yielded as a
// *MalformedURLError instead of a Candidate; traversal continues either way.
// Object members are visited in document order and array items by index.
func Extract(v Value, file string) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		walk(v, file, yield)
	}
}

// walk returns false once the consumer stops the iteration.
func walk(v Value, file string, yield func(Candidate, error) bool) bool {
	switch v.Kind {
	case KindObject:
		for _, m := range v.Members {
			if m.Key == ReservedKey && m.Value.Kind == KindString {
				if !visitURL(m.Value.Text, file, yield) {
					return false
				}
				continue
			}
			if !walk(m.Value, file, yield) {
				return false
			}
		}
	case KindArray:
		for _, item := range v.Items {
			if !walk(item, file, yield) {
				return false
			}
		}
	}
	return true
}

func visitURL(raw, file string, yield func(Candidate, error) bool) bool {
	if err := urlutil.Validate(raw); err != nil {
		return yield(Candidate{}, &MalformedURLError{File: file, Value: raw, Err: err})
	}
	return yield(Candidate{URL: raw, File: file}, nil)
}
