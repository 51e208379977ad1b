package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the outcomes as a formatted JSON array to the writer.
// Uses flat array format (not wrapped with metadata) for simpler CI integration.
func WriteJSON(w io.Writer, outcomes []Outcome) error {
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes the outcomes as CSV to the writer.
// Always includes a header row, even if there are no outcomes.
// Column order: file, url, kind, status_code, error_type, error
func WriteCSV(w io.Writer, outcomes []Outcome) error {
	cw := csv.NewWriter(w)

	header := []string{"file", "url", "kind", "status_code", "error_type", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, o := range outcomes {
		record := []string{
			o.File,
			o.URL,
			string(o.Kind),
			statusCodeStr(o.StatusCode),
			string(o.ErrorCategory),
			o.Error,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", o.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
