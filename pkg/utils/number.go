package utils

import "math"

// RoundWithTwoDecimalPlace rounds a float to two decimal places.
func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// RoundMetric applies the display rounding used by report tables: values at or
// above 100 in magnitude are rounded to the integer, smaller ones keep two
// decimals. Deterministic and never changes sign or order of magnitude.
func RoundMetric(f float64) float64 {
	if math.Abs(f) >= 100 {
		return math.Round(f)
	}
	return RoundWithTwoDecimalPlace(f)
}

// SafeDiv divides a by b, returning 0 when the denominator is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Percentage returns part/total as a rounded percentage, 0 when total is 0.
func Percentage(part, total float64) float64 {
	return RoundWithTwoDecimalPlace(SafeDiv(part, total) * 100)
}
