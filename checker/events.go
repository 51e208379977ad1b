package checker

import "github.com/lukemcguire/linkbadger/result"

// Event reports progress for a single checked candidate.
type Event struct {
	File    string
	URL     string
	Kind    result.Kind
	Checked int // outcomes collected so far
	Total   int // candidates known so far
	Failed  int // broken plus exception outcomes so far
}
