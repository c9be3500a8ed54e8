package calendar

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (this IS a deadline system)
// =============================================================================

// Date is a calendar date with no time component. All statutory deadlines are
// whole days; every Date is normalized to UTC midnight so that comparisons and
// day arithmetic can never be shifted by timezones or daylight saving.
type Date struct {
	t time.Time
}

// NewDate builds a Date for the given year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf normalizes an arbitrary time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// DaysBetween returns the whole number of days from one date to another.
// Both operands are already UTC midnights, so the division is exact and a
// fractional-hour offset can never move an event across a day boundary.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// DaysUntil returns how many days remain from the reference day to the event
// day. 0 means the event is due today; negative values mean it is overdue.
func DaysUntil(reference, event Date) int {
	return DaysBetween(reference, event)
}

// =============================================================================
// HOLIDAY CALENDAR - Statutory non-business days
// =============================================================================

// holidaySet is the set of statutory holidays for one fiscal year. The
// official filing calendar schedules consecutive taxpayer groups on
// consecutive business days, so due-date resolution must know which days
// do not count.
type holidaySet map[Date]struct{}

func holidays(dates ...Date) holidaySet {
	set := make(holidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// IsBusinessDay reports whether a date is neither a weekend nor a holiday.
func (h holidaySet) IsBusinessDay(d Date) bool {
	if d.IsWeekend() {
		return false
	}
	_, holiday := h[d]
	return !holiday
}

// nextBusinessDay returns d itself when it is a business day, otherwise the
// first business day after it.
func (h holidaySet) nextBusinessDay(d Date) Date {
	for !h.IsBusinessDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// advanceBusinessDays moves forward n business days from an anchor. The
// anchor is first rolled onto a business day; n == 0 returns that day.
func (h holidaySet) advanceBusinessDays(anchor Date, n int) Date {
	d := h.nextBusinessDay(anchor)
	for i := 0; i < n; i++ {
		d = h.nextBusinessDay(d.AddDays(1))
	}
	return d
}
