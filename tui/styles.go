package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/linkbadger/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	cellStyle        = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// categoryOrder defines the display order for error categories (most to least actionable).
var categoryOrder = []result.ErrorCategory{
	result.Category4xx,
	result.Category5xx,
	result.CategoryTimeout,
	result.CategoryDNSFailure,
	result.CategoryConnectionRefused,
	result.CategoryTLS,
	result.CategoryRedirectLoop,
	result.CategoryUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of a run.
func RenderSummary(sum *result.Summary) string {
	if sum == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder
	st := sum.Stats

	if len(sum.Failures) == 0 {
		builder.WriteString(successStyle.Render("No broken links found!"))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Checked %d URLs in %d files (%d skipped) in %s",
			st.Checked, st.Documents, st.Skipped, st.Duration.Round(time.Millisecond),
		)))
		builder.WriteString("\n")
		writeProblems(&builder, st)
		return builder.String()
	}

	grouped := make(map[result.ErrorCategory][]result.Outcome)
	for _, o := range sum.Failures {
		cat := o.ErrorCategory
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], o)
	}

	for _, cat := range categoryOrder {
		outcomes := grouped[cat]
		if len(outcomes) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(outcomes))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(outcomes))
		for _, o := range outcomes {
			status := fmt.Sprintf("%d", o.StatusCode)
			if o.Error != "" {
				status = o.Error
			}
			rows = append(rows, []string{o.URL, status, o.File})
		}

		catTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("URL", "Status", "File").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 {
					return statusErrorStyle
				}
				return cellStyle
			}).
			Rows(rows...)

		builder.WriteString(catTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Found %d broken links out of %d URLs checked in %d files (%s)",
		sum.FailureCount(), st.Checked, st.Documents, st.Duration.Round(time.Millisecond),
	)))
	builder.WriteString("\n")
	writeProblems(&builder, st)

	return builder.String()
}

func writeProblems(b *strings.Builder, st result.Stats) {
	if st.ParseErrors == 0 && st.MalformedURLs == 0 && st.TaskErrors == 0 {
		return
	}
	b.WriteString(errorStyle.Render(fmt.Sprintf(
		"%d unreadable files, %d malformed URLs, %d task errors (see log)",
		st.ParseErrors, st.MalformedURLs, st.TaskErrors,
	)))
	b.WriteString("\n")
}
