package output

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/picoyplaca/picoyplaca/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatBatch renders a batch result as a table.
func (f *TableFormatter) FormatBatch(result *core.BatchResult) (string, error) {
	if result == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Plate", "Date", "Time", "Weekday", "Status", "Notes"})

	for _, e := range result.Entries {
		t.AppendRow(table.Row{
			e.Query.Plate,
			e.Query.Date,
			e.Query.Time,
			weekdayCell(e),
			entryStatus(e),
			entryNotes(e),
		})
	}

	rendered := t.Render()
	if result.Total > 1 {
		rendered += "\n" + summaryLine(result)
	}
	return rendered, nil
}

// FormatSchedule renders the schedule as two tables: windows and digits.
func (f *TableFormatter) FormatSchedule(view ScheduleView) (string, error) {
	windows := table.NewWriter()
	windows.SetStyle(table.StyleRounded)
	windows.AppendHeader(table.Row{"Window", "From", "To"})
	for i, w := range view.Windows {
		windows.AppendRow(table.Row{i + 1, w.Begin.String(), w.End.String()})
	}

	days := table.NewWriter()
	days.SetStyle(table.StyleRounded)
	days.AppendHeader(table.Row{"Day", "Restricted digits"})
	for _, d := range view.Days {
		days.AppendRow(table.Row{d.Day.String(), digitsCell(d.Digits)})
	}

	return windows.Render() + "\n" + days.Render(), nil
}
