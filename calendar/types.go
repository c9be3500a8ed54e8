/*
Package calendar computes the statutory tax-filing calendar for a client.

PURPOSE:
  Given a client's tax profile (legal classification, regime, VAT periodicity,
  NIT and a set of applicability flags), this package resolves every filing
  obligation for a fiscal year to a concrete due date using the versioned
  deadline tables published for that year.

KEY CONCEPTS IN THIS FILE (types.go):
  - TaxProfile: Immutable input describing one client's tax situation
  - TaxEvent: One dated obligation (title, due date, type)
  - Classification / Regime / Periodicity: Closed enumerations
  - ObligationFlags: Independent booleans, each gating one optional obligation

DESIGN PRINCIPLES:
  1. Purity: ComputeObligations is deterministic; no clocks, no I/O
  2. Day granularity: all dates are whole days (see date.go)
  3. Fail loudly: unknown classifications/regimes and unsupported years are
     hard errors, never silent defaults (defaults belong at the boundary,
     see the factory package)

SEE ALSO:
  - tables.go: per-year due-date tables and digit-group resolution
  - engine.go: obligation catalog and applicability predicates
  - query.go: filtering over computed event sequences
*/
package calendar

// =============================================================================
// CLOSED ENUMERATIONS
// =============================================================================

// Classification is the legal classification of a taxpayer.
type Classification string

const (
	ClassNaturalPerson Classification = "PERSONA_NATURAL"
	ClassLegalEntity   Classification = "PERSONA_JURIDICA"
	ClassLargeTaxpayer Classification = "GRAN_CONTRIBUYENTE"
)

// Regime is the income-tax regime a client files under.
type Regime string

const (
	RegimeOrdinary Regime = "ORDINARIO"
	RegimeSimple   Regime = "SIMPLE"
	RegimeSpecial  Regime = "ESPECIAL"
)

// Periodicity is how often recurring VAT filings are due within a year.
type Periodicity string

const (
	PeriodicityBimonthly   Periodicity = "BIMESTRAL"
	PeriodicityFourMonthly Periodicity = "CUATRIMESTRAL"
	PeriodicityNone        Periodicity = "NINGUNA"
)

// EventType is a closed category of statutory filing.
type EventType string

const (
	EventIncomeTax       EventType = "RENTA"
	EventSimpleRegime    EventType = "REGIMEN_SIMPLE"
	EventVAT             EventType = "IVA"
	EventWithholding     EventType = "RETENCION"
	EventGMF             EventType = "GMF"
	EventNetWorthTax     EventType = "PATRIMONIO"
	EventCarbonTax       EventType = "CARBONO"
	EventSugaryBeverages EventType = "BEBIDAS_AZUCARADAS"
	EventFuelTax         EventType = "COMBUSTIBLES"
	EventPlasticsTax     EventType = "PLASTICOS"
	EventExogenousInfo   EventType = "EXOGENA"
	EventOwnershipReg    EventType = "RUB"
	EventTransferPricing EventType = "PRECIOS_TRANSFERENCIA"
	EventCountryReport   EventType = "INFORME_PAIS_POR_PAIS"
	EventSpecialRegime   EventType = "ACTUALIZACION_RTE"
)

// typePriority fixes the tie-break order among events due the same day:
// income-tax filings first, then transactional taxes, levies, and finally
// informational filings. Unknown types sort last.
var typePriority = map[EventType]int{
	EventIncomeTax:       0,
	EventSimpleRegime:    1,
	EventVAT:             2,
	EventWithholding:     3,
	EventGMF:             4,
	EventNetWorthTax:     5,
	EventCarbonTax:       6,
	EventSugaryBeverages: 7,
	EventFuelTax:         8,
	EventPlasticsTax:     9,
	EventSpecialRegime:   10,
	EventExogenousInfo:   11,
	EventOwnershipReg:    12,
	EventTransferPricing: 13,
	EventCountryReport:   14,
}

// =============================================================================
// OBLIGATION FLAGS - Independent booleans, one per optional obligation
// =============================================================================

// ObligationFlags gates the optional obligation families. Each flag is
// evaluated independently; no flag implies or excludes another. The JSON tags
// match the keys stored on client records.
type ObligationFlags struct {
	WithholdingAgent  bool `json:"agente_retencion"`
	GMF               bool `json:"gmf"`
	ExogenousInfo     bool `json:"informacion_exogena"`
	NetWorthTax       bool `json:"impuesto_patrimonio"`
	CarbonTax         bool `json:"impuesto_carbono"`
	SugaryBeverages   bool `json:"impuesto_bebidas_azucaradas"`
	FuelTax           bool `json:"impuesto_combustibles"`
	SingleUsePlastics bool `json:"impuesto_plasticos"`
	OwnershipRegistry bool `json:"registro_beneficiarios"`
	TransferPricing   bool `json:"precios_transferencia"`
	CountryReport     bool `json:"informe_pais_por_pais"`
}

// =============================================================================
// TAX PROFILE - Immutable evaluation input
// =============================================================================

// TaxProfile describes one client's tax situation for a single evaluation.
// It is built once at the boundary (factory package) and never mutated.
type TaxProfile struct {
	NIT            string
	Classification Classification
	Regime         Regime
	VATPeriodicity Periodicity
	Flags          ObligationFlags
}

// LastDigit returns the last digit of the NIT after stripping every
// non-digit character. A NIT with no digits resolves to group 0: the engine
// must always produce a best-effort calendar rather than fail on a
// badly-entered identifier.
func (p TaxProfile) LastDigit() int {
	digits := extractDigits(p.NIT)
	if len(digits) == 0 {
		return 0
	}
	return int(digits[len(digits)-1] - '0')
}

// LastTwoDigits returns the last two digits of the NIT (00-99), used by
// obligations that split taxpayers more finely. Falls back to group 0 the
// same way LastDigit does.
func (p TaxProfile) LastTwoDigits() int {
	digits := extractDigits(p.NIT)
	switch len(digits) {
	case 0:
		return 0
	case 1:
		return int(digits[0] - '0')
	default:
		tail := digits[len(digits)-2:]
		return int(tail[0]-'0')*10 + int(tail[1]-'0')
	}
}

func extractDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// =============================================================================
// TAX EVENT - One dated obligation
// =============================================================================

// TaxEvent is a single statutory obligation resolved to a concrete due date.
// Events have no lifecycle: they are recomputed fresh on every engine
// invocation and are never the unit of truth (the profile is).
type TaxEvent struct {
	Title string    `json:"title"`
	Date  Date      `json:"date"`
	Type  EventType `json:"type"`
}
