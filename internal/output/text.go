package output

import (
	"fmt"
	"strings"

	"github.com/picoyplaca/picoyplaca/internal/core"
)

// TextFormatter prints one verdict line per query, labelled with the query.
// With Bare set, entries print the verdict message alone, as the
// interactive check does.
type TextFormatter struct {
	Color bool
	Bare  bool
}

// FormatBatch renders verdict lines.
func (f *TextFormatter) FormatBatch(result *core.BatchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	lines := make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		message := e.Error
		if e.Decision != nil {
			message = f.verdict(e.Decision.Permitted)
		}
		if f.Bare {
			lines = append(lines, message)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s: %s", e.Query.Plate, e.Query.Date, e.Query.Time, message))
	}
	return strings.Join(lines, "\n"), nil
}

// FormatSchedule renders the schedule in a few plain lines.
func (f *TextFormatter) FormatSchedule(view ScheduleView) (string, error) {
	var sb strings.Builder
	windows := make([]string, len(view.Windows))
	for i, w := range view.Windows {
		windows[i] = w.String()
	}
	sb.WriteString("Restricted hours: " + strings.Join(windows, ", ") + "\n")
	for _, d := range view.Days {
		sb.WriteString(fmt.Sprintf("%-9s %s\n", d.Day.String()+":", digitsCell(d.Digits)))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (f *TextFormatter) verdict(permitted bool) string {
	if f.Color {
		return ColoredVerdict(permitted)
	}
	return Verdict(permitted)
}
