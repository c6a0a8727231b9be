package restriction

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Evaluation input errors. Returned errors wrap one of these together with
// the offending value; test with errors.Is.
var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidPlate = errors.New("invalid plate")
	ErrInvalidTime  = errors.New("invalid time")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a zero-padded 24-hour "HH:MM" value.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if len(value) != len(timeLayout) {
		return 0, fmt.Errorf("%w: %q is not in HH:MM form", ErrInvalidTime, value)
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTime, value, err)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalText renders the time as "HH:MM".
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses an "HH:MM" value.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WeekdayOf returns the weekday of a "YYYY-MM-DD" date. Dates that do not
// exist on the calendar (month 18, February 30) are rejected rather than
// normalized.
func WeekdayOf(date string) (Weekday, error) {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDate, date, err)
	}
	// time.Weekday counts from Sunday=0.
	return Weekday((int(parsed.Weekday()) + 6) % 7), nil
}

// LastDigit returns the plate's final character as a decimal digit.
func LastDigit(plate string) (int, error) {
	if plate == "" {
		return 0, fmt.Errorf("%w: plate is empty", ErrInvalidPlate)
	}
	last, _ := utf8.DecodeLastRuneInString(plate)
	if last < '0' || last > '9' {
		return 0, fmt.Errorf("%w: %q does not end in a digit", ErrInvalidPlate, plate)
	}
	return int(last - '0'), nil
}
