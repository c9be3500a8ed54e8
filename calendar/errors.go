/*
errors.go - Centralized error types for the calendar engine

PURPOSE:
  All configuration/data errors raised during calendar computation live here.
  These errors are fatal for a single profile's evaluation but must never
  crash a batch run; the alert scheduler absorbs them per client.

ERROR CATEGORIES:
  1. Table errors  - Unsupported year, missing rule entry
  2. Profile errors - Unknown classification or regime

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, calendar.ErrUnsupportedYear) { ... }

SEE ALSO:
  - tables.go: Raises table errors
  - engine.go: Raises profile errors
*/
package calendar

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnsupportedYear is returned when no deadline table exists for the
	// requested fiscal year. There is no fallback to an adjacent year: an
	// obligation dated by the wrong calendar is worse than a loud failure.
	ErrUnsupportedYear = errors.New("no deadline table for year")

	// ErrUnknownClassification is returned for a classification outside the
	// closed set. The engine never defaults a classification.
	ErrUnknownClassification = errors.New("unknown taxpayer classification")

	// ErrUnknownRegime is returned for a regime outside the closed set.
	ErrUnknownRegime = errors.New("unknown tax regime")

	// ErrUnknownPeriodicity is returned for a VAT periodicity outside the
	// closed set. Treating it as "none" would silently drop VAT filings.
	ErrUnknownPeriodicity = errors.New("unknown VAT periodicity")

	// ErrRuleLookup is returned when a digit group has no entry in a table
	// that should be total over its domain. Omitting a legal obligation
	// silently is never acceptable.
	ErrRuleLookup = errors.New("no rule entry for digit group")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnsupportedYearError reports which year had no table.
type UnsupportedYearError struct {
	Year int
}

func (e *UnsupportedYearError) Error() string {
	return fmt.Sprintf("no deadline table for year %d", e.Year)
}

func (e *UnsupportedYearError) Unwrap() error { return ErrUnsupportedYear }

// UnknownClassificationError reports the offending classification value.
type UnknownClassificationError struct {
	Classification Classification
}

func (e *UnknownClassificationError) Error() string {
	return fmt.Sprintf("unknown taxpayer classification %q", string(e.Classification))
}

func (e *UnknownClassificationError) Unwrap() error { return ErrUnknownClassification }

// UnknownRegimeError reports the offending regime value.
type UnknownRegimeError struct {
	Regime Regime
}

func (e *UnknownRegimeError) Error() string {
	return fmt.Sprintf("unknown tax regime %q", string(e.Regime))
}

func (e *UnknownRegimeError) Unwrap() error { return ErrUnknownRegime }

// UnknownPeriodicityError reports the offending periodicity value.
type UnknownPeriodicityError struct {
	Periodicity Periodicity
}

func (e *UnknownPeriodicityError) Error() string {
	return fmt.Sprintf("unknown VAT periodicity %q", string(e.Periodicity))
}

func (e *UnknownPeriodicityError) Unwrap() error { return ErrUnknownPeriodicity }

// RuleLookupError reports which obligation and digit group missed the table.
type RuleLookupError struct {
	Year       int
	Obligation EventType
	DigitGroup int
}

func (e *RuleLookupError) Error() string {
	return fmt.Sprintf("year %d: no %s rule entry for digit group %d",
		e.Year, e.Obligation, e.DigitGroup)
}

func (e *RuleLookupError) Unwrap() error { return ErrRuleLookup }

// IsProfileError reports whether an error is fatal for a single profile's
// evaluation (as opposed to an infrastructure failure).
func IsProfileError(err error) bool {
	return errors.Is(err, ErrUnsupportedYear) ||
		errors.Is(err, ErrUnknownClassification) ||
		errors.Is(err, ErrUnknownRegime) ||
		errors.Is(err, ErrUnknownPeriodicity) ||
		errors.Is(err, ErrRuleLookup)
}
