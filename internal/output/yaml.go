package output

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/picoyplaca/picoyplaca/internal/core"
)

// YAMLFormatter renders results as YAML.
type YAMLFormatter struct{}

// FormatBatch renders a batch result as YAML.
func (f *YAMLFormatter) FormatBatch(result *core.BatchResult) (string, error) {
	if result == nil {
		return "", nil
	}
	return marshalYAML(result)
}

// FormatSchedule renders the schedule as YAML.
func (f *YAMLFormatter) FormatSchedule(view ScheduleView) (string, error) {
	return marshalYAML(view)
}

func marshalYAML(v any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
