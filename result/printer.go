package result

import (
	"fmt"
	"io"
)

// PrintResults writes failure details and a summary to w.
func PrintResults(w io.Writer, s *Summary) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if len(s.Failures) == 0 {
		writef("No broken links found!\n")
	} else {
		writef("Broken Links:\n")
		for i, o := range s.Failures {
			writef("  URL: %s\n", o.URL)
			if o.Kind == KindException {
				writef("  Error: %s\n", o.Error)
			} else {
				writef("  Status: %d\n", o.StatusCode)
			}
			writef("  File: %s\n", o.File)
			if i < len(s.Failures)-1 {
				writef("\n")
			}
		}
	}
	writef("Checked %d URLs in %d files, found %d broken links (%d skipped)\n",
		s.Stats.Checked, s.Stats.Documents, s.FailureCount(), s.Stats.Skipped)
	if s.Stats.ParseErrors > 0 || s.Stats.MalformedURLs > 0 {
		writef("%d files failed to load, %d malformed URLs\n", s.Stats.ParseErrors, s.Stats.MalformedURLs)
	}
}
