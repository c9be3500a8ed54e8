/*
engine.go - Deadline rule engine

PURPOSE:
  Maps a TaxProfile to the concrete, dated list of statutory obligations for
  one fiscal year. For each obligation family in a fixed catalog the engine
  evaluates an applicability predicate against the profile, then resolves
  every recurrence to a due date through the year's deadline table.

DETERMINISM:
  Pure function of (profile, year). Events are sorted by due date ascending;
  same-day ties break on a fixed type-priority order (income tax before VAT
  before informational filings) and finally lexicographically by title, so
  repeated calls yield identical ordered sequences.

APPLICABILITY RULES:
  - VAT periodicity NINGUNA suppresses all VAT events, whatever the flags say
  - SIMPLE regime swaps the ordinary income-tax family for the RST family
  - ESPECIAL regime files income tax like a legal entity and additionally
    must refresh its special-regime qualification
  - Every boolean flag gates exactly one obligation family, independently
  - Unknown classification, regime or periodicity is a hard failure; there
    are no defaults inside the engine (see the factory package for defaults)

SEE ALSO:
  - tables.go: due-date resolution
  - query.go: filtering over the computed sequence
*/
package calendar

import (
	"fmt"
	"sort"
)

// ComputeObligations computes the full, dated obligation calendar for one
// profile and fiscal year. The result is sorted ascending by date with a
// deterministic tie-break; identical inputs always yield identical output.
func ComputeObligations(profile TaxProfile, year int) ([]TaxEvent, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	table, err := TableForYear(year)
	if err != nil {
		return nil, err
	}

	b := &calendarBuilder{table: table, profile: profile}

	b.incomeTax()
	b.vat()
	b.withholding()
	b.gmf()
	b.netWorth()
	b.levies()
	b.exogenous()
	b.reports()

	if b.err != nil {
		return nil, b.err
	}

	sort.SliceStable(b.events, func(i, j int) bool {
		a, c := b.events[i], b.events[j]
		if !a.Date.Equal(c.Date) {
			return a.Date.Before(c.Date)
		}
		if typePriority[a.Type] != typePriority[c.Type] {
			return typePriority[a.Type] < typePriority[c.Type]
		}
		return a.Title < c.Title
	})
	return b.events, nil
}

func validateProfile(p TaxProfile) error {
	switch p.Classification {
	case ClassNaturalPerson, ClassLegalEntity, ClassLargeTaxpayer:
	default:
		return &UnknownClassificationError{Classification: p.Classification}
	}
	switch p.Regime {
	case RegimeOrdinary, RegimeSimple, RegimeSpecial:
	default:
		return &UnknownRegimeError{Regime: p.Regime}
	}
	switch p.VATPeriodicity {
	case PeriodicityBimonthly, PeriodicityFourMonthly, PeriodicityNone:
	default:
		return &UnknownPeriodicityError{Periodicity: p.VATPeriodicity}
	}
	return nil
}

// =============================================================================
// CALENDAR BUILDER
// =============================================================================

// calendarBuilder accumulates events for one evaluation. The first table
// lookup failure stops further emission and surfaces as the engine error:
// a partially resolved calendar must never be mistaken for a complete one.
type calendarBuilder struct {
	table   *YearTable
	profile TaxProfile
	events  []TaxEvent
	err     error
}

func (b *calendarBuilder) addByDigit(obl EventType, title string, anchors []Date, recurrence int) {
	if b.err != nil {
		return
	}
	date, err := b.table.dueByDigit(obl, anchors, recurrence, b.profile.LastDigit())
	if err != nil {
		b.err = err
		return
	}
	b.events = append(b.events, TaxEvent{Title: title, Date: date, Type: obl})
}

func (b *calendarBuilder) addByPair(obl EventType, title string, anchor Date) {
	if b.err != nil {
		return
	}
	date, err := b.table.dueByPair(obl, anchor, b.profile.LastTwoDigits())
	if err != nil {
		b.err = err
		return
	}
	b.events = append(b.events, TaxEvent{Title: title, Date: date, Type: obl})
}

func (b *calendarBuilder) addFixed(obl EventType, title string, anchor Date) {
	if b.err != nil {
		return
	}
	b.events = append(b.events, TaxEvent{Title: title, Date: b.table.dueFixed(anchor), Type: obl})
}

// eachRecurrence emits one event per anchor with a 1-based ordinal title.
func (b *calendarBuilder) eachRecurrence(obl EventType, format string, anchors []Date) {
	for i := range anchors {
		b.addByDigit(obl, fmt.Sprintf(format, i+1, len(anchors)), anchors, i)
	}
}

// =============================================================================
// OBLIGATION FAMILIES
// =============================================================================

// incomeTax emits the annual income-tax family. Classification and regime
// jointly select the installment structure; SIMPLE regime clients file the
// consolidated RST return instead of the ordinary return.
func (b *calendarBuilder) incomeTax() {
	t := b.table
	if b.profile.Regime == RegimeSimple {
		b.addByDigit(EventSimpleRegime, "Regimen Simple: declaracion anual consolidada", []Date{t.simpleAnnual}, 0)
		b.eachRecurrence(EventSimpleRegime, "Regimen Simple: anticipo bimestral %d de %d", t.simpleAdvances)
		return
	}

	switch b.profile.Classification {
	case ClassLargeTaxpayer:
		b.addByDigit(EventIncomeTax, "Renta grandes contribuyentes: pago 1a cuota", t.incomeTaxLarge, 0)
		b.addByDigit(EventIncomeTax, "Renta grandes contribuyentes: declaracion y 2a cuota", t.incomeTaxLarge, 1)
		b.addByDigit(EventIncomeTax, "Renta grandes contribuyentes: pago 3a cuota", t.incomeTaxLarge, 2)
	case ClassLegalEntity:
		b.addByDigit(EventIncomeTax, "Renta personas juridicas: declaracion y 1a cuota", t.incomeTaxEntities, 0)
		b.addByDigit(EventIncomeTax, "Renta personas juridicas: pago 2a cuota", t.incomeTaxEntities, 1)
	case ClassNaturalPerson:
		b.addByPair(EventIncomeTax, "Renta personas naturales: declaracion anual", t.incomeTaxNaturals)
	}

	if b.profile.Regime == RegimeSpecial {
		b.addFixed(EventSpecialRegime, "Actualizacion registro web regimen tributario especial", t.specialRegime)
	}
}

// vat emits recurring VAT filings per the profile's periodicity. Periodicity
// NINGUNA yields no VAT events regardless of any other profile field.
func (b *calendarBuilder) vat() {
	switch b.profile.VATPeriodicity {
	case PeriodicityBimonthly:
		b.eachRecurrence(EventVAT, "IVA: declaracion bimestral %d de %d", b.table.vatBimonthly)
	case PeriodicityFourMonthly:
		b.eachRecurrence(EventVAT, "IVA: declaracion cuatrimestral %d de %d", b.table.vatFourMonthly)
	}
}

func (b *calendarBuilder) withholding() {
	if !b.profile.Flags.WithholdingAgent {
		return
	}
	b.eachRecurrence(EventWithholding, "Retencion en la fuente: periodo %d de %d", b.table.withholding)
}

func (b *calendarBuilder) gmf() {
	if !b.profile.Flags.GMF {
		return
	}
	b.eachRecurrence(EventGMF, "GMF: declaracion periodo %d de %d", b.table.gmf)
}

func (b *calendarBuilder) netWorth() {
	if !b.profile.Flags.NetWorthTax {
		return
	}
	b.addByDigit(EventNetWorthTax, "Impuesto al patrimonio: declaracion y 1a cuota", b.table.netWorth, 0)
	b.addByDigit(EventNetWorthTax, "Impuesto al patrimonio: pago 2a cuota", b.table.netWorth, 1)
}

func (b *calendarBuilder) levies() {
	f := b.profile.Flags
	if f.CarbonTax {
		b.eachRecurrence(EventCarbonTax, "Impuesto nacional al carbono: bimestre %d de %d", b.table.carbon)
	}
	if f.SugaryBeverages {
		b.eachRecurrence(EventSugaryBeverages, "Impuesto a bebidas azucaradas: bimestre %d de %d", b.table.sugary)
	}
	if f.FuelTax {
		b.eachRecurrence(EventFuelTax, "Impuesto a combustibles: periodo %d de %d", b.table.fuel)
	}
	if f.SingleUsePlastics {
		b.addByDigit(EventPlasticsTax, "Impuesto a plasticos de un solo uso: declaracion anual", []Date{b.table.plastics}, 0)
	}
}

// exogenous emits the information-report deadline. Natural persons are
// scheduled by two-digit pair groups; everyone else by last digit.
func (b *calendarBuilder) exogenous() {
	if !b.profile.Flags.ExogenousInfo {
		return
	}
	if b.profile.Classification == ClassNaturalPerson {
		b.addByPair(EventExogenousInfo, "Informacion exogena: presentacion anual", b.table.exogenousNaturals)
		return
	}
	b.addByDigit(EventExogenousInfo, "Informacion exogena: presentacion anual", []Date{b.table.exogenousEntities}, 0)
}

func (b *calendarBuilder) reports() {
	f := b.profile.Flags
	if f.OwnershipRegistry {
		b.addFixed(EventOwnershipReg, "Actualizacion registro unico de beneficiarios finales (RUB)", b.table.ownershipRegistry)
	}
	if f.TransferPricing {
		b.addByDigit(EventTransferPricing, "Precios de transferencia: declaracion informativa", []Date{b.table.transferPricing}, 0)
	}
	if f.CountryReport {
		b.addByDigit(EventCountryReport, "Informe pais por pais", []Date{b.table.countryReport}, 0)
	}
}
