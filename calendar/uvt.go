/*
uvt.go - Tax value unit (UVT) table and minimum-penalty estimates

PURPOSE:
  The authority expresses penalties in UVT, a unit re-valued every year.
  Alert notifications quote the statutory minimum late-filing penalty (10
  UVT, rounded to the nearest thousand pesos) next to each deadline, which
  is why this table is versioned alongside the deadline tables.

PRECISION:
  Amounts use decimal.Decimal; peso amounts must never pick up binary
  floating-point noise.
*/
package calendar

import "github.com/shopspring/decimal"

// uvtValues holds the peso value of one UVT per fiscal year.
var uvtValues = map[int]decimal.Decimal{
	2025: decimal.NewFromInt(49799),
	2026: decimal.NewFromInt(52374),
}

// minPenaltyUVT is the statutory minimum penalty for a late filing.
var minPenaltyUVT = decimal.NewFromInt(10)

// UVTValue returns the peso value of one UVT for a fiscal year.
func UVTValue(year int) (decimal.Decimal, error) {
	v, ok := uvtValues[year]
	if !ok {
		return decimal.Zero, &UnsupportedYearError{Year: year}
	}
	return v, nil
}

// MinimumPenalty returns the minimum late-filing penalty in pesos for a
// fiscal year, rounded to the nearest thousand as published.
func MinimumPenalty(year int) (decimal.Decimal, error) {
	uvt, err := UVTValue(year)
	if err != nil {
		return decimal.Zero, err
	}
	thousand := decimal.NewFromInt(1000)
	return uvt.Mul(minPenaltyUVT).Div(thousand).Round(0).Mul(thousand), nil
}
