/*
query.go - Pure filtering and sorting over computed event sequences

PURPOSE:
  Small, side-effect-free operations over an already-computed []TaxEvent.
  Every comparison is day-granular against a caller-supplied reference date,
  never the wall clock, so callers and tests fully control time.

SEE ALSO:
  - date.go: DaysUntil semantics
  - engine.go: produces the sequences these functions consume
*/
package calendar

import "sort"

// ByType returns the events of one type, preserving the original order.
func ByType(events []TaxEvent, t EventType) []TaxEvent {
	out := make([]TaxEvent, 0)
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Upcoming returns the events due in [reference, reference+horizonDays],
// both ends inclusive, sorted ascending by date.
func Upcoming(events []TaxEvent, reference Date, horizonDays int) []TaxEvent {
	limit := reference.AddDays(horizonDays)
	out := make([]TaxEvent, 0)
	for _, e := range events {
		if e.Date.AfterOrEqual(reference) && e.Date.BeforeOrEqual(limit) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Overdue returns the events strictly before the reference date, preserving
// the original order.
func Overdue(events []TaxEvent, reference Date) []TaxEvent {
	out := make([]TaxEvent, 0)
	for _, e := range events {
		if e.Date.Before(reference) {
			out = append(out, e)
		}
	}
	return out
}
