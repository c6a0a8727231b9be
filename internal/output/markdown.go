package output

import (
	"fmt"
	"strings"

	"github.com/picoyplaca/picoyplaca/internal/core"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// FormatBatch renders a batch result as Markdown.
func (f *MarkdownFormatter) FormatBatch(result *core.BatchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("## Pico y placa\n\n")
	sb.WriteString("| Plate | Date | Time | Weekday | Status | Notes |\n")
	sb.WriteString("|-------|------|------|---------|--------|-------|\n")
	for _, e := range result.Entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(e.Query.Plate),
			escapeMarkdownCell(e.Query.Date),
			escapeMarkdownCell(e.Query.Time),
			weekdayCell(e),
			entryStatus(e),
			escapeMarkdownCell(entryNotes(e)),
		))
	}
	if result.Total > 1 {
		sb.WriteString(fmt.Sprintf("\n**Summary**: %s\n", summaryLine(result)))
	}
	return sb.String(), nil
}

// FormatSchedule renders the schedule as Markdown.
func (f *MarkdownFormatter) FormatSchedule(view ScheduleView) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Restricted hours\n\n")
	for _, w := range view.Windows {
		sb.WriteString(fmt.Sprintf("- %s to %s\n", w.Begin, w.End))
	}
	sb.WriteString("\n## Restricted digits\n\n")
	sb.WriteString("| Day | Digits |\n")
	sb.WriteString("|-----|--------|\n")
	for _, d := range view.Days {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", d.Day, digitsCell(d.Digits)))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
