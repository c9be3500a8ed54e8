package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// DAY ARITHMETIC
// =============================================================================

func TestDaysUntil_WholeDayOffsets(t *testing.T) {
	ref := NewDate(2026, time.March, 1)

	assert.Equal(t, 15, DaysUntil(ref, NewDate(2026, time.March, 16)))
	assert.Equal(t, 1, DaysUntil(ref, NewDate(2026, time.March, 2)))
	assert.Equal(t, 0, DaysUntil(ref, ref))
	assert.Equal(t, -1, DaysUntil(ref, NewDate(2026, time.February, 28)))
}

func TestDaysUntil_AcrossDSTBoundary(t *testing.T) {
	// GIVEN: a reference built from a zoned timestamp near a DST switch
	// WHEN: normalized through DateOf
	// THEN: day arithmetic is unaffected by the hour shift

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 is the US spring-forward date; 23-hour local day.
	ref := DateOf(time.Date(2026, time.March, 7, 23, 30, 0, 0, loc))
	event := NewDate(2026, time.March, 9)

	assert.Equal(t, 2, DaysUntil(ref, event))
}

func TestDate_ComparisonsAreDayGranular(t *testing.T) {
	a := DateOf(time.Date(2026, time.May, 10, 23, 59, 59, 0, time.UTC))
	b := NewDate(2026, time.May, 10)

	assert.True(t, a.Equal(b))
	assert.True(t, a.BeforeOrEqual(b))
	assert.True(t, a.AfterOrEqual(b))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.November, 10)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2026-11-10"`, string(b))

	var parsed Date
	require.NoError(t, parsed.UnmarshalJSON(b))
	assert.True(t, d.Equal(parsed))
}

// =============================================================================
// BUSINESS-DAY STEPPING
// =============================================================================

func TestAdvanceBusinessDays_SkipsWeekendsAndHolidays(t *testing.T) {
	// GIVEN: a holiday on the Monday after the anchor week
	hs := holidays(NewDate(2026, time.January, 12))

	// Friday 2026-01-09; one business day ahead must skip Sat, Sun and the
	// Monday holiday, landing on Tuesday 2026-01-13.
	anchor := NewDate(2026, time.January, 9)

	assert.Equal(t, "2026-01-09", hs.advanceBusinessDays(anchor, 0).String())
	assert.Equal(t, "2026-01-13", hs.advanceBusinessDays(anchor, 1).String())
	assert.Equal(t, "2026-01-14", hs.advanceBusinessDays(anchor, 2).String())
}

func TestAdvanceBusinessDays_RollsAnchorForward(t *testing.T) {
	hs := holidays()

	// Saturday anchor rolls to Monday before stepping.
	saturday := NewDate(2026, time.January, 10)
	assert.Equal(t, "2026-01-12", hs.advanceBusinessDays(saturday, 0).String())
}
