/*
tables.go - Versioned per-year deadline tables

PURPOSE:
  Encodes the authoritative due-date lookup for each obligation type as a
  function of the NIT digit group and, where applicable, the regime and
  periodicity axis. Pure data plus date resolution; no applicability logic
  (that lives in engine.go).

HOW THE OFFICIAL CALENDAR WORKS:
  For each obligation and recurrence the authority publishes an anchor date;
  taxpayers are then scheduled on consecutive BUSINESS days in NIT order:
  last digit 1 files first, then 2, 3, ... 9, and digit 0 files last.
  Obligations that split taxpayers more finely use the last TWO digits,
  grouped in pairs (01-02 first, ..., 99-00 last), spread over ~50 business
  days. Weekends and statutory holidays never carry a deadline, which is why
  every year table also embeds that year's holiday set.

VERSIONING:
  One immutable YearTable per supported fiscal year. A lookup for a year with
  no table is an explicit UnsupportedYearError - never a silent fallback to
  an adjacent year's dates.

SEE ALSO:
  - date.go: business-day stepping
  - engine.go: consumes these tables
*/
package calendar

import (
	"sort"
	"time"
)

// =============================================================================
// YEAR TABLE
// =============================================================================

// YearTable holds the anchor dates for every obligation family in one fiscal
// year. Anchors are the due date of the FIRST digit group; later groups are
// resolved by stepping forward over business days.
type YearTable struct {
	Year     int
	holidays holidaySet

	// Income tax (ordinary regime), one anchor per installment.
	incomeTaxLarge    []Date // large taxpayers: installment 1, return + installment 2, installment 3
	incomeTaxEntities []Date // legal entities: return + installment 1, installment 2
	incomeTaxNaturals Date   // natural persons: anchor for two-digit pair groups

	// Simple regime (RST).
	simpleAnnual   Date
	simpleAdvances []Date // bimonthly advances

	// VAT.
	vatBimonthly   []Date // six filings
	vatFourMonthly []Date // three filings

	// Monthly transactional taxes.
	withholding []Date // twelve filings
	gmf         []Date // twelve filings

	// Exogenous information reports.
	exogenousEntities Date // large taxpayers and legal entities, by last digit
	exogenousNaturals Date // natural persons, by two-digit pair groups

	// Net-worth tax: return + first installment, then second installment.
	netWorth []Date

	// Recently introduced levies.
	carbon   []Date // bimonthly
	sugary   []Date // bimonthly
	fuel     []Date // monthly
	plastics Date   // annual, by last digit

	// Reporting obligations.
	ownershipRegistry Date // fixed date, no digit spread
	transferPricing   Date // by last digit
	countryReport     Date // by last digit
	specialRegime     Date // fixed date: special-regime qualification update
}

// tables holds every supported fiscal year, keyed by year.
var tables = map[int]*YearTable{
	2025: table2025(),
	2026: table2026(),
}

// TableForYear returns the deadline table for a fiscal year.
func TableForYear(year int) (*YearTable, error) {
	t, ok := tables[year]
	if !ok {
		return nil, &UnsupportedYearError{Year: year}
	}
	return t, nil
}

// SupportedYears lists the fiscal years with published tables, ascending.
func SupportedYears() []int {
	years := make([]int, 0, len(tables))
	for y := range tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// =============================================================================
// DIGIT-GROUP RESOLUTION
// =============================================================================

// digitStep maps a last digit to its position in the filing sequence.
// The official order is 1, 2, ..., 9 and finally 0.
func digitStep(digit int) int {
	if digit == 0 {
		return 9
	}
	return digit - 1
}

// pairStep maps a last-two-digit group (00-99) to its position in the filing
// sequence. Pairs file together: 01-02 first, 03-04 next, ..., 99-00 last.
func pairStep(pair int) int {
	if pair == 0 {
		return 49
	}
	return (pair - 1) / 2
}

// dueByDigit resolves a due date for one recurrence of a digit-keyed
// obligation. The table must be total over digits 0-9 and over the declared
// recurrence count; anything else is a hard RuleLookupError so that a legal
// obligation is never silently omitted.
func (t *YearTable) dueByDigit(obl EventType, anchors []Date, recurrence, digit int) (Date, error) {
	if digit < 0 || digit > 9 || recurrence < 0 || recurrence >= len(anchors) || anchors[recurrence].IsZero() {
		return Date{}, &RuleLookupError{Year: t.Year, Obligation: obl, DigitGroup: digit}
	}
	return t.holidays.advanceBusinessDays(anchors[recurrence], digitStep(digit)), nil
}

// dueByPair resolves a due date for a two-digit-keyed obligation.
func (t *YearTable) dueByPair(obl EventType, anchor Date, pair int) (Date, error) {
	if pair < 0 || pair > 99 || anchor.IsZero() {
		return Date{}, &RuleLookupError{Year: t.Year, Obligation: obl, DigitGroup: pair}
	}
	return t.holidays.advanceBusinessDays(anchor, pairStep(pair)), nil
}

// dueFixed resolves a fixed-date obligation, rolled onto the next business
// day when the published date falls on a weekend or holiday.
func (t *YearTable) dueFixed(anchor Date) Date {
	return t.holidays.nextBusinessDay(anchor)
}

// =============================================================================
// FISCAL YEAR 2025
// =============================================================================

func table2025() *YearTable {
	d := func(m time.Month, day int) Date { return NewDate(2025, m, day) }
	return &YearTable{
		Year: 2025,
		holidays: holidays(
			d(time.January, 1), d(time.January, 6), d(time.March, 24),
			d(time.April, 17), d(time.April, 18), d(time.May, 1),
			d(time.June, 2), d(time.June, 23), d(time.June, 30),
			d(time.August, 7), d(time.August, 18), d(time.October, 13),
			d(time.November, 3), d(time.November, 17), d(time.December, 8),
			d(time.December, 25),
		),

		incomeTaxLarge:    []Date{d(time.February, 11), d(time.April, 9), d(time.June, 11)},
		incomeTaxEntities: []Date{d(time.May, 12), d(time.July, 9)},
		incomeTaxNaturals: d(time.August, 12),

		simpleAnnual: d(time.April, 15),
		simpleAdvances: []Date{
			d(time.March, 11), d(time.May, 13), d(time.July, 8),
			d(time.September, 9), d(time.November, 12), d(time.December, 10),
		},

		vatBimonthly: []Date{
			d(time.January, 14), d(time.March, 11), d(time.May, 13),
			d(time.July, 8), d(time.September, 9), d(time.November, 12),
		},
		vatFourMonthly: []Date{d(time.January, 14), d(time.May, 13), d(time.September, 9)},

		withholding: []Date{
			d(time.January, 14), d(time.February, 11), d(time.March, 11),
			d(time.April, 9), d(time.May, 13), d(time.June, 11),
			d(time.July, 8), d(time.August, 12), d(time.September, 9),
			d(time.October, 14), d(time.November, 12), d(time.December, 10),
		},
		gmf: []Date{
			d(time.January, 21), d(time.February, 18), d(time.March, 18),
			d(time.April, 22), d(time.May, 20), d(time.June, 17),
			d(time.July, 22), d(time.August, 19), d(time.September, 16),
			d(time.October, 21), d(time.November, 18), d(time.December, 16),
		},

		exogenousEntities: d(time.April, 28),
		exogenousNaturals: d(time.May, 26),

		netWorth: []Date{d(time.May, 12), d(time.September, 9)},

		carbon: []Date{
			d(time.February, 18), d(time.April, 22), d(time.June, 17),
			d(time.August, 19), d(time.October, 21), d(time.December, 16),
		},
		sugary: []Date{
			d(time.February, 20), d(time.April, 24), d(time.June, 19),
			d(time.August, 21), d(time.October, 23), d(time.December, 18),
		},
		fuel: []Date{
			d(time.January, 17), d(time.February, 14), d(time.March, 14),
			d(time.April, 15), d(time.May, 16), d(time.June, 18),
			d(time.July, 16), d(time.August, 15), d(time.September, 12),
			d(time.October, 16), d(time.November, 14), d(time.December, 12),
		},
		plastics: d(time.February, 20),

		ownershipRegistry: d(time.July, 31),
		transferPricing:   d(time.September, 9),
		countryReport:     d(time.December, 10),
		specialRegime:     d(time.March, 31),
	}
}

// =============================================================================
// FISCAL YEAR 2026
// =============================================================================

func table2026() *YearTable {
	d := func(m time.Month, day int) Date { return NewDate(2026, m, day) }
	return &YearTable{
		Year: 2026,
		holidays: holidays(
			d(time.January, 1), d(time.January, 12), d(time.March, 23),
			d(time.April, 2), d(time.April, 3), d(time.May, 1),
			d(time.May, 18), d(time.June, 8), d(time.June, 15),
			d(time.June, 29), d(time.July, 20), d(time.August, 7),
			d(time.August, 17), d(time.October, 12), d(time.November, 2),
			d(time.November, 16), d(time.December, 8), d(time.December, 25),
		),

		incomeTaxLarge:    []Date{d(time.February, 10), d(time.April, 14), d(time.June, 10)},
		incomeTaxEntities: []Date{d(time.May, 11), d(time.July, 8)},
		incomeTaxNaturals: d(time.August, 11),

		simpleAnnual: d(time.April, 14),
		simpleAdvances: []Date{
			d(time.March, 10), d(time.May, 12), d(time.July, 7),
			d(time.September, 8), d(time.November, 10), d(time.December, 9),
		},

		vatBimonthly: []Date{
			d(time.January, 13), d(time.March, 10), d(time.May, 12),
			d(time.July, 7), d(time.September, 8), d(time.November, 10),
		},
		vatFourMonthly: []Date{d(time.January, 13), d(time.May, 12), d(time.September, 8)},

		withholding: []Date{
			d(time.January, 13), d(time.February, 10), d(time.March, 10),
			d(time.April, 14), d(time.May, 12), d(time.June, 10),
			d(time.July, 7), d(time.August, 11), d(time.September, 8),
			d(time.October, 13), d(time.November, 10), d(time.December, 9),
		},
		gmf: []Date{
			d(time.January, 20), d(time.February, 17), d(time.March, 17),
			d(time.April, 21), d(time.May, 19), d(time.June, 16),
			d(time.July, 21), d(time.August, 18), d(time.September, 15),
			d(time.October, 20), d(time.November, 17), d(time.December, 15),
		},

		exogenousEntities: d(time.April, 27),
		exogenousNaturals: d(time.May, 25),

		netWorth: []Date{d(time.May, 11), d(time.September, 8)},

		carbon: []Date{
			d(time.February, 17), d(time.April, 21), d(time.June, 16),
			d(time.August, 18), d(time.October, 20), d(time.December, 15),
		},
		sugary: []Date{
			d(time.February, 19), d(time.April, 23), d(time.June, 18),
			d(time.August, 20), d(time.October, 22), d(time.December, 17),
		},
		fuel: []Date{
			d(time.January, 16), d(time.February, 13), d(time.March, 13),
			d(time.April, 15), d(time.May, 15), d(time.June, 17),
			d(time.July, 15), d(time.August, 14), d(time.September, 11),
			d(time.October, 16), d(time.November, 13), d(time.December, 11),
		},
		plastics: d(time.February, 19),

		ownershipRegistry: d(time.July, 31),
		transferPricing:   d(time.September, 8),
		countryReport:     d(time.December, 9),
		specialRegime:     d(time.March, 31),
	}
}
