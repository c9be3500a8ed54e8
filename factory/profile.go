/*
Package factory converts raw client records into strongly-typed profiles.

PURPOSE:
  Client records come out of the store loosely typed: enum fields are plain
  strings that may be empty, the flag set is a JSON object with missing keys,
  alert days may be absent. This is the ONE place where those records are
  validated and every optional field's default is made explicit:

    unset regime            -> ORDINARIO
    unset VAT periodicity   -> NINGUNA (no VAT filings)
    missing obligation flag -> false (obligation does not apply)
    unset alert-day list    -> {15, 7, 1}

  Call sites never default anything themselves; the calendar engine refuses
  out-of-set values outright.

SEE ALSO:
  - calendar/types.go: the strongly-typed target
  - alert/scheduler.go: main consumer
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/store/sqlite"
)

// DefaultAlertDays is the alert-day fallback for clients without an explicit
// configuration: reminders 15, 7 and 1 days before each due date.
var DefaultAlertDays = []int{15, 7, 1}

// AlertConfig is a client's resolved alerting configuration.
type AlertConfig struct {
	Days   []int
	Emails []string
}

// ProfileFactory builds TaxProfile and AlertConfig values from stored
// client records.
type ProfileFactory struct {
	defaultAlertDays []int
}

// NewProfileFactory creates a factory with the standard defaults.
func NewProfileFactory() *ProfileFactory {
	return &ProfileFactory{defaultAlertDays: DefaultAlertDays}
}

// NewProfileFactoryWithDefaults overrides the alert-day fallback (used when
// the deployment configures a different reminder ladder).
func NewProfileFactoryWithDefaults(alertDays []int) *ProfileFactory {
	if len(alertDays) == 0 {
		alertDays = DefaultAlertDays
	}
	return &ProfileFactory{defaultAlertDays: alertDays}
}

// BuildProfile validates and converts one record into a TaxProfile.
// Classification is mandatory; regime and periodicity take their documented
// defaults when unset but are rejected when set to an unknown value.
func (f *ProfileFactory) BuildProfile(rec sqlite.ClientRecord) (calendar.TaxProfile, error) {
	var profile calendar.TaxProfile

	classification := calendar.Classification(normalize(rec.Classification))
	switch classification {
	case calendar.ClassNaturalPerson, calendar.ClassLegalEntity, calendar.ClassLargeTaxpayer:
	default:
		return profile, &calendar.UnknownClassificationError{Classification: classification}
	}

	regime := calendar.Regime(normalize(rec.Regime))
	if regime == "" {
		regime = calendar.RegimeOrdinary
	}
	switch regime {
	case calendar.RegimeOrdinary, calendar.RegimeSimple, calendar.RegimeSpecial:
	default:
		return profile, &calendar.UnknownRegimeError{Regime: regime}
	}

	periodicity := calendar.Periodicity(normalize(rec.VATPeriodicity))
	if periodicity == "" {
		periodicity = calendar.PeriodicityNone
	}
	switch periodicity {
	case calendar.PeriodicityBimonthly, calendar.PeriodicityFourMonthly, calendar.PeriodicityNone:
	default:
		return profile, &calendar.UnknownPeriodicityError{Periodicity: periodicity}
	}

	flags, err := parseFlags(rec.FlagsJSON)
	if err != nil {
		return profile, fmt.Errorf("client %s: %w", rec.ID, err)
	}

	return calendar.TaxProfile{
		NIT:            rec.NIT,
		Classification: classification,
		Regime:         regime,
		VATPeriodicity: periodicity,
		Flags:          flags,
	}, nil
}

// BuildAlertConfig resolves a record's alerting configuration. An absent
// alert-day list (nil) falls back to the default ladder; an explicit empty
// list is preserved as-is and simply never matches.
func (f *ProfileFactory) BuildAlertConfig(rec sqlite.ClientRecord) AlertConfig {
	days := rec.AlertDays
	if days == nil {
		days = f.defaultAlertDays
	}
	return AlertConfig{Days: days, Emails: rec.Emails}
}

// parseFlags decodes the stored flag object. Missing keys default to false
// through zero values; unknown keys are ignored so that old binaries keep
// working when a new flag is introduced upstream first.
func parseFlags(raw string) (calendar.ObligationFlags, error) {
	var flags calendar.ObligationFlags
	if strings.TrimSpace(raw) == "" {
		return flags, nil
	}
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return flags, fmt.Errorf("malformed obligation flags: %w", err)
	}
	return flags, nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
