package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/picoyplaca/picoyplaca/internal/core"
	"github.com/picoyplaca/picoyplaca/internal/core/restriction"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// Messages printed for a single verdict.
const (
	AllowedMessage    = "Car IS allowed to be on the road!"
	RestrictedMessage = "Car IS NOT allowed to be on the road!"
)

// Formatter renders evaluation results and the schedule.
type Formatter interface {
	FormatBatch(result *core.BatchResult) (string, error)
	FormatSchedule(view ScheduleView) (string, error)
}

// ParseFormat validates and normalizes a format string. An empty value
// selects fallback.
func ParseFormat(value string, fallback Format) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "":
		return fallback, nil
	case string(FormatText), string(FormatTable), string(FormatJSON), string(FormatMarkdown), string(FormatYAML):
		return Format(normalized), nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format, colored bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatText:
		return &TextFormatter{Color: colored}
	default:
		return &TableFormatter{}
	}
}

// Verdict returns the message for a permitted or restricted car.
func Verdict(permitted bool) string {
	if permitted {
		return AllowedMessage
	}
	return RestrictedMessage
}

// ColoredVerdict is Verdict in green or red. fatih/color drops the escape
// codes itself when stdout is not a terminal or NO_COLOR is set.
func ColoredVerdict(permitted bool) string {
	if permitted {
		return color.New(color.FgGreen, color.Bold).Sprint(AllowedMessage)
	}
	return color.New(color.FgRed, color.Bold).Sprint(RestrictedMessage)
}

// ScheduleView is the printable form of a restriction schedule.
type ScheduleView struct {
	Windows []restriction.Window `json:"windows" yaml:"windows"`
	Days    []DayDigits          `json:"days" yaml:"days"`
}

// DayDigits lists the digits restricted on one weekday.
type DayDigits struct {
	Day    restriction.Weekday `json:"day" yaml:"day"`
	Digits []int               `json:"digits" yaml:"digits,flow"`
}

// NewScheduleView flattens s, weekends included with no digits.
func NewScheduleView(s restriction.Schedule) ScheduleView {
	view := ScheduleView{Windows: s.Windows()}
	for day := restriction.Monday; day <= restriction.Sunday; day++ {
		digits, _ := s.Digits(day)
		if digits == nil {
			digits = []int{}
		}
		view.Days = append(view.Days, DayDigits{Day: day, Digits: digits})
	}
	return view
}

func entryStatus(e core.BatchEntry) string {
	switch e.Outcome {
	case core.OutcomePermitted:
		return "allowed"
	case core.OutcomeRestricted:
		return "NOT allowed"
	default:
		return "error"
	}
}

func entryNotes(e core.BatchEntry) string {
	if e.Error != "" {
		return e.Error
	}
	d := e.Decision
	if d == nil {
		return ""
	}
	switch {
	case !d.RestrictedDay:
		return "no restriction on " + d.Weekday.String()
	case !d.PlateOnRestrictedDay:
		return fmt.Sprintf("digit %d not restricted on %s", d.Digit, d.Weekday)
	case !d.RestrictedTime:
		return "outside restricted hours"
	default:
		return fmt.Sprintf("digit %d restricted on %s at %s", d.Digit, d.Weekday, d.Time)
	}
}

func weekdayCell(e core.BatchEntry) string {
	if e.Decision == nil {
		return ""
	}
	return e.Decision.Weekday.String()
}

func summaryLine(result *core.BatchResult) string {
	summary := fmt.Sprintf("%d allowed, %d not allowed", result.Permitted, result.Restricted)
	if result.Failed > 0 {
		summary += fmt.Sprintf(", %d failed", result.Failed)
	}
	return summary
}

func digitsCell(digits []int) string {
	if len(digits) == 0 {
		return "-"
	}
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ", ")
}
