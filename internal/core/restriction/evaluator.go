package restriction

// Query is one evaluation request.
type Query struct {
	Plate string `json:"plate"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Decision records how a query was evaluated.
type Decision struct {
	Query
	Weekday          Weekday `json:"weekday"`
	Digit            int     `json:"digit"`
	RestrictedDigits []int   `json:"restricted_digits,omitempty"`

	PlateOnRestrictedDay bool `json:"plate_on_restricted_day"`
	RestrictedDay        bool `json:"restricted_day"`
	RestrictedTime       bool `json:"restricted_time"`
	Permitted            bool `json:"permitted"`
}

// IsRestrictedDay reports whether date falls on a day with a digit pair.
func (s Schedule) IsRestrictedDay(date string) (bool, error) {
	day, err := WeekdayOf(date)
	if err != nil {
		return false, err
	}
	return s.restrictedDay(day), nil
}

// PlateBelongsToRestrictedDay reports whether the plate's last digit is
// restricted on the weekday of date. Weekends always yield false.
func (s Schedule) PlateBelongsToRestrictedDay(plate, date string) (bool, error) {
	day, err := WeekdayOf(date)
	if err != nil {
		return false, err
	}
	digit, err := LastDigit(plate)
	if err != nil {
		return false, err
	}
	return s.plateBelongsToDay(day, digit), nil
}

// IsRestrictedTime reports whether clock falls in either window.
func (s Schedule) IsRestrictedTime(clock string) (bool, error) {
	t, err := ParseTimeOfDay(clock)
	if err != nil {
		return false, err
	}
	return s.restrictedTime(t), nil
}

// IsPermitted reports whether a car with plate may be on the road at the
// given date and time. Errors mean the query could not be evaluated; they
// are neither permission nor denial.
func (s Schedule) IsPermitted(plate, date, clock string) (bool, error) {
	d, err := s.Evaluate(Query{Plate: plate, Date: date, Time: clock})
	if err != nil {
		return false, err
	}
	return d.Permitted, nil
}

// Evaluate runs the three predicates for q and combines them. The date is
// checked before the plate, and both before the time.
func (s Schedule) Evaluate(q Query) (Decision, error) {
	day, err := WeekdayOf(q.Date)
	if err != nil {
		return Decision{}, err
	}
	digit, err := LastDigit(q.Plate)
	if err != nil {
		return Decision{}, err
	}
	clock, err := ParseTimeOfDay(q.Time)
	if err != nil {
		return Decision{}, err
	}

	pbtd := s.plateBelongsToDay(day, digit)
	dair := s.restrictedDay(day)
	tir := s.restrictedTime(clock)

	digits, _ := s.Digits(day)
	return Decision{
		Query:                q,
		Weekday:              day,
		Digit:                digit,
		RestrictedDigits:     digits,
		PlateOnRestrictedDay: pbtd,
		RestrictedDay:        dair,
		RestrictedTime:       tir,
		// pbtd implies dair, so this reduces to !pbtd || !tir.
		Permitted: (pbtd && (!dair || !tir)) || !pbtd,
	}, nil
}

var defaultSchedule = DefaultSchedule()

// IsPermitted evaluates against the default schedule.
func IsPermitted(plate, date, clock string) (bool, error) {
	return defaultSchedule.IsPermitted(plate, date, clock)
}

// Evaluate evaluates q against the default schedule.
func Evaluate(q Query) (Decision, error) {
	return defaultSchedule.Evaluate(q)
}
