package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/store/sqlite"
)

func record() sqlite.ClientRecord {
	return sqlite.ClientRecord{
		ID:             "cli-1",
		Name:           "Comercializadora Andina SAS",
		NIT:            "900123451",
		Classification: "PERSONA_JURIDICA",
		Regime:         "ORDINARIO",
		VATPeriodicity: "BIMESTRAL",
		Emails:         []string{"contabilidad@andina.example.com"},
	}
}

// =============================================================================
// DEFAULTS - every optional field's fallback lives here and only here
// =============================================================================

func TestBuildProfile_Defaults(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.Regime = ""
	rec.VATPeriodicity = ""
	rec.FlagsJSON = ""

	profile, err := f.BuildProfile(rec)
	require.NoError(t, err)

	assert.Equal(t, calendar.RegimeOrdinary, profile.Regime, "unset regime defaults to ORDINARIO")
	assert.Equal(t, calendar.PeriodicityNone, profile.VATPeriodicity, "unset periodicity defaults to NINGUNA")
	assert.Equal(t, calendar.ObligationFlags{}, profile.Flags, "unset flags default to false")
}

func TestBuildProfile_NormalizesCaseAndWhitespace(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.Classification = "  persona_juridica "
	rec.Regime = "ordinario"

	profile, err := f.BuildProfile(rec)
	require.NoError(t, err)
	assert.Equal(t, calendar.ClassLegalEntity, profile.Classification)
	assert.Equal(t, calendar.RegimeOrdinary, profile.Regime)
}

func TestBuildProfile_ParsesFlags(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.FlagsJSON = `{"agente_retencion": true, "impuesto_carbono": true, "desconocido": true}`

	profile, err := f.BuildProfile(rec)
	require.NoError(t, err)
	assert.True(t, profile.Flags.WithholdingAgent)
	assert.True(t, profile.Flags.CarbonTax)
	assert.False(t, profile.Flags.NetWorthTax)
}

// =============================================================================
// VALIDATION - unknown values are rejected at the boundary
// =============================================================================

func TestBuildProfile_Rejections(t *testing.T) {
	f := NewProfileFactory()

	tests := []struct {
		name   string
		mutate func(*sqlite.ClientRecord)
		want   error
	}{
		{"unknown classification", func(r *sqlite.ClientRecord) { r.Classification = "SUCURSAL" }, calendar.ErrUnknownClassification},
		{"empty classification", func(r *sqlite.ClientRecord) { r.Classification = "" }, calendar.ErrUnknownClassification},
		{"unknown regime", func(r *sqlite.ClientRecord) { r.Regime = "PREFERENCIAL" }, calendar.ErrUnknownRegime},
		{"unknown periodicity", func(r *sqlite.ClientRecord) { r.VATPeriodicity = "MENSUAL" }, calendar.ErrUnknownPeriodicity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record()
			tt.mutate(&rec)
			_, err := f.BuildProfile(rec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildProfile_MalformedFlagsJSON(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.FlagsJSON = `{"agente_retencion": `

	_, err := f.BuildProfile(rec)
	assert.Error(t, err)
}

// =============================================================================
// ALERT CONFIG
// =============================================================================

func TestBuildAlertConfig_DefaultLadder(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.AlertDays = nil

	cfg := f.BuildAlertConfig(rec)
	assert.Equal(t, []int{15, 7, 1}, cfg.Days, "absent alert days take the documented default")
	assert.Equal(t, rec.Emails, cfg.Emails)
}

func TestBuildAlertConfig_ExplicitEmptyListPreserved(t *testing.T) {
	f := NewProfileFactory()

	rec := record()
	rec.AlertDays = []int{}

	cfg := f.BuildAlertConfig(rec)
	assert.Empty(t, cfg.Days, "an explicit empty list means no reminders, not the default")
}

func TestBuildAlertConfig_CustomDefaultLadder(t *testing.T) {
	f := NewProfileFactoryWithDefaults([]int{30, 5})

	rec := record()
	rec.AlertDays = nil
	assert.Equal(t, []int{30, 5}, f.BuildAlertConfig(rec).Days)

	rec.AlertDays = []int{2}
	assert.Equal(t, []int{2}, f.BuildAlertConfig(rec).Days)
}
