package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/tax-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func baselineEntity() calendar.TaxProfile {
	return calendar.TaxProfile{
		NIT:            "900123451",
		Classification: calendar.ClassLegalEntity,
		Regime:         calendar.RegimeOrdinary,
		VATPeriodicity: calendar.PeriodicityBimonthly,
	}
}

func typesOf(events []calendar.TaxEvent) map[calendar.EventType]int {
	out := map[calendar.EventType]int{}
	for _, e := range events {
		out[e.Type]++
	}
	return out
}

// =============================================================================
// DETERMINISM AND ORDERING
// =============================================================================

func TestComputeObligations_Deterministic(t *testing.T) {
	profile := baselineEntity()
	profile.Flags.WithholdingAgent = true
	profile.Flags.ExogenousInfo = true

	first, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)
	second, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must yield identical ordered output")
}

func TestComputeObligations_SortedAscendingWithStableTieBreak(t *testing.T) {
	profile := calendar.TaxProfile{
		NIT:            "8005554449",
		Classification: calendar.ClassLargeTaxpayer,
		Regime:         calendar.RegimeOrdinary,
		VATPeriodicity: calendar.PeriodicityBimonthly,
		Flags: calendar.ObligationFlags{
			WithholdingAgent:  true,
			GMF:               true,
			NetWorthTax:       true,
			CarbonTax:         true,
			SugaryBeverages:   true,
			FuelTax:           true,
			SingleUsePlastics: true,
			ExogenousInfo:     true,
			OwnershipRegistry: true,
			TransferPricing:   true,
			CountryReport:     true,
		},
	}

	events, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		assert.True(t, prev.Date.BeforeOrEqual(cur.Date),
			"events must be date-ascending: %s (%s) before %s (%s)",
			prev.Title, prev.Date, cur.Title, cur.Date)
	}
}

// =============================================================================
// APPLICABILITY PREDICATES
// =============================================================================

func TestComputeObligations_BaselineProfileOnlyMandatoryFamilies(t *testing.T) {
	// GIVEN: every optional flag false, ordinary regime
	// THEN: only income tax and periodicity-driven VAT appear

	events, err := calendar.ComputeObligations(baselineEntity(), 2026)
	require.NoError(t, err)

	counts := typesOf(events)
	assert.Equal(t, 2, counts[calendar.EventIncomeTax], "legal entity files return + second installment")
	assert.Equal(t, 6, counts[calendar.EventVAT], "bimonthly periodicity means six VAT filings")
	assert.Len(t, counts, 2, "no other obligation family may appear: %v", counts)
}

func TestComputeObligations_PeriodicityNoneSuppressesVAT(t *testing.T) {
	profile := baselineEntity()
	profile.VATPeriodicity = calendar.PeriodicityNone
	profile.Flags.WithholdingAgent = true
	profile.Flags.NetWorthTax = true

	events, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	assert.Empty(t, calendar.ByType(events, calendar.EventVAT),
		"periodicity NINGUNA must yield zero VAT events whatever the flags")
	assert.NotEmpty(t, calendar.ByType(events, calendar.EventWithholding))
}

func TestComputeObligations_FourMonthlyVAT(t *testing.T) {
	profile := baselineEntity()
	profile.VATPeriodicity = calendar.PeriodicityFourMonthly

	events, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	assert.Len(t, calendar.ByType(events, calendar.EventVAT), 3)
}

func TestComputeObligations_SimpleRegimeSwapsIncomeTaxFamily(t *testing.T) {
	profile := baselineEntity()
	profile.Regime = calendar.RegimeSimple

	events, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	counts := typesOf(events)
	assert.Zero(t, counts[calendar.EventIncomeTax], "SIMPLE regime must not file the ordinary return")
	assert.Equal(t, 7, counts[calendar.EventSimpleRegime], "annual consolidated return plus six advances")
	assert.Equal(t, 6, counts[calendar.EventVAT], "VAT still follows periodicity")
}

func TestComputeObligations_SpecialRegimeAddsQualificationUpdate(t *testing.T) {
	profile := baselineEntity()
	profile.Regime = calendar.RegimeSpecial

	events, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	assert.Len(t, calendar.ByType(events, calendar.EventSpecialRegime), 1)
	assert.Len(t, calendar.ByType(events, calendar.EventIncomeTax), 2,
		"special regime files income tax like a legal entity")
}

func TestComputeObligations_NaturalPersonUsesTwoDigitGroups(t *testing.T) {
	early := calendar.TaxProfile{
		NIT:            "1000000001", // pair 01: first group
		Classification: calendar.ClassNaturalPerson,
		Regime:         calendar.RegimeOrdinary,
		VATPeriodicity: calendar.PeriodicityNone,
	}
	late := early
	late.NIT = "1000000000" // pair 00: last group

	earlyEvents, err := calendar.ComputeObligations(early, 2026)
	require.NoError(t, err)
	lateEvents, err := calendar.ComputeObligations(late, 2026)
	require.NoError(t, err)

	earlyReturn := calendar.ByType(earlyEvents, calendar.EventIncomeTax)
	lateReturn := calendar.ByType(lateEvents, calendar.EventIncomeTax)
	require.Len(t, earlyReturn, 1)
	require.Len(t, lateReturn, 1)

	assert.True(t, earlyReturn[0].Date.Before(lateReturn[0].Date),
		"pair 01 files before pair 00: %s vs %s", earlyReturn[0].Date, lateReturn[0].Date)
}

// =============================================================================
// HARD FAILURES
// =============================================================================

func TestComputeObligations_UnknownClassificationFails(t *testing.T) {
	profile := baselineEntity()
	profile.Classification = "COOPERATIVA"

	_, err := calendar.ComputeObligations(profile, 2026)
	assert.ErrorIs(t, err, calendar.ErrUnknownClassification)
	assert.True(t, calendar.IsProfileError(err))
}

func TestComputeObligations_UnknownRegimeFails(t *testing.T) {
	profile := baselineEntity()
	profile.Regime = "PREFERENCIAL"

	_, err := calendar.ComputeObligations(profile, 2026)
	assert.ErrorIs(t, err, calendar.ErrUnknownRegime)
}

func TestComputeObligations_UnsupportedYearFails(t *testing.T) {
	_, err := calendar.ComputeObligations(baselineEntity(), 2019)

	var yearErr *calendar.UnsupportedYearError
	require.ErrorAs(t, err, &yearErr)
	assert.Equal(t, 2019, yearErr.Year)
}

// =============================================================================
// CROSS-YEAR STRUCTURE
// =============================================================================

func TestComputeObligations_SameCompositionAcrossYears(t *testing.T) {
	// GIVEN: the same profile evaluated for two supported years
	// THEN: dates differ but the obligation-type composition is identical

	profile := baselineEntity()
	profile.Flags.WithholdingAgent = true

	of2025, err := calendar.ComputeObligations(profile, 2025)
	require.NoError(t, err)
	of2026, err := calendar.ComputeObligations(profile, 2026)
	require.NoError(t, err)

	assert.Equal(t, typesOf(of2025), typesOf(of2026))

	for _, e := range of2025 {
		assert.Equal(t, 2025, e.Date.Year())
	}
	for _, e := range of2026 {
		assert.Equal(t, 2026, e.Date.Year())
	}
}

// =============================================================================
// DIGIT EXTRACTION
// =============================================================================

func TestTaxProfile_DigitExtraction(t *testing.T) {
	tests := []struct {
		name     string
		nit      string
		digit    int
		twoDigit int
	}{
		{"plain", "9001234561", 1, 61},
		{"formatted", "900.123.456-1", 1, 61},
		{"single digit", "7", 7, 7},
		{"no digits", "N/A", 0, 0},
		{"empty", "", 0, 0},
		{"trailing zero", "8000550", 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := calendar.TaxProfile{NIT: tt.nit}
			assert.Equal(t, tt.digit, p.LastDigit())
			assert.Equal(t, tt.twoDigit, p.LastTwoDigits())
		})
	}
}

// Sanity-check a concrete resolved date so table regressions are visible:
// digit 1 is the first group, so its bimonthly VAT deadline falls on the
// anchor itself when that is a business day.
func TestComputeObligations_KnownDueDate(t *testing.T) {
	events, err := calendar.ComputeObligations(baselineEntity(), 2026)
	require.NoError(t, err)

	vat := calendar.ByType(events, calendar.EventVAT)
	require.Len(t, vat, 6)
	assert.Equal(t, calendar.NewDate(2026, time.March, 10).String(), vat[1].Date.String())
}
