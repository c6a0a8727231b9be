// Package restriction decides whether a plate may circulate under the
// "Pico y placa" weekday/last-digit scheme.
//
// The schedule is a fixed value: two daily windows and a Monday–Friday
// mapping from weekday to the pair of restricted last digits. Every
// operation is a pure function of the schedule and its inputs.
package restriction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Weekday indexes days of the week starting at Monday=0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalText renders the weekday by name.
func (d Weekday) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts a weekday name in any case.
func (d *Weekday) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, candidate := range weekdayNames {
		if candidate == name {
			*d = Weekday(i)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", string(text))
}

// Window is an inclusive time-of-day range.
type Window struct {
	Begin TimeOfDay `json:"begin" yaml:"begin"`
	End   TimeOfDay `json:"end" yaml:"end"`
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t TimeOfDay) bool {
	return w.Begin <= t && t <= w.End
}

func (w Window) String() string {
	return w.Begin.String() + "-" + w.End.String()
}

const (
	morningBegin   = TimeOfDay(7 * 60)
	morningEnd     = TimeOfDay(9*60 + 30)
	afternoonBegin = TimeOfDay(16 * 60)
	afternoonEnd   = TimeOfDay(19*60 + 30)
)

// Schedule holds the restriction windows and the weekday to digit pairs.
// Fields are unexported so a Schedule cannot be altered once built;
// accessors return copies.
type Schedule struct {
	morning   Window
	afternoon Window
	days      map[Weekday][]int
}

// DefaultSchedule returns the fixed schedule:
// mornings 07:00-09:30 and afternoons 16:00-19:30, Monday {1,2},
// Tuesday {3,4}, Wednesday {5,6}, Thursday {7,8}, Friday {9,0}.
// Weekends are unrestricted.
func DefaultSchedule() Schedule {
	return Schedule{
		morning:   Window{Begin: morningBegin, End: morningEnd},
		afternoon: Window{Begin: afternoonBegin, End: afternoonEnd},
		days: map[Weekday][]int{
			Monday:    {1, 2},
			Tuesday:   {3, 4},
			Wednesday: {5, 6},
			Thursday:  {7, 8},
			Friday:    {9, 0},
		},
	}
}

// Morning returns the morning restriction window.
func (s Schedule) Morning() Window { return s.morning }

// Afternoon returns the afternoon restriction window.
func (s Schedule) Afternoon() Window { return s.afternoon }

// Windows returns both restriction windows in chronological order.
func (s Schedule) Windows() []Window {
	return []Window{s.morning, s.afternoon}
}

// Digits returns a copy of the digits restricted on day, and false when the
// day carries no restriction.
func (s Schedule) Digits(day Weekday) ([]int, bool) {
	digits, ok := s.days[day]
	if !ok {
		return nil, false
	}
	return append([]int(nil), digits...), true
}

// RestrictedDays lists the weekdays that carry a digit pair, Monday first.
func (s Schedule) RestrictedDays() []Weekday {
	days := lo.Keys(s.days)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Validate checks that every restricted day maps to exactly two distinct
// digits and that no digit is restricted on more than one day.
func (s Schedule) Validate() error {
	if s.morning.Begin > s.morning.End {
		return fmt.Errorf("morning window %s is inverted", s.morning)
	}
	if s.afternoon.Begin > s.afternoon.End {
		return fmt.Errorf("afternoon window %s is inverted", s.afternoon)
	}

	owner := make(map[int]Weekday, 10)
	for _, day := range s.RestrictedDays() {
		if day < Monday || day > Sunday {
			return fmt.Errorf("restricted day %s is out of range", day)
		}
		digits := s.days[day]
		if len(digits) != 2 || len(lo.Uniq(digits)) != 2 {
			return fmt.Errorf("%s must restrict exactly two distinct digits, got %v", day, digits)
		}
		for _, digit := range digits {
			if digit < 0 || digit > 9 {
				return fmt.Errorf("%s restricts non-digit value %d", day, digit)
			}
			if prev, taken := owner[digit]; taken {
				return fmt.Errorf("digit %d is restricted on both %s and %s", digit, prev, day)
			}
			owner[digit] = day
		}
	}
	return nil
}

func (s Schedule) restrictedDay(day Weekday) bool {
	_, ok := s.days[day]
	return ok
}

func (s Schedule) plateBelongsToDay(day Weekday, digit int) bool {
	digits, ok := s.days[day]
	return ok && lo.Contains(digits, digit)
}

func (s Schedule) restrictedTime(t TimeOfDay) bool {
	return s.morning.Contains(t) || s.afternoon.Contains(t)
}
