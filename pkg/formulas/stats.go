package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalculateReturns converts a price series to period-over-period percentage returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
//
// A return is NaN when either price is missing (NaN) or the base price is zero,
// so gaps in the input survive into the output instead of silently becoming 0.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		curr := prices[i]
		if math.IsNaN(prev) || math.IsNaN(curr) || prev == 0 {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (curr - prev) / prev
	}

	return returns
}

// Correlation calculates the Pearson correlation coefficient between two series.
// Mismatched or too-short inputs yield NaN, as does a zero-variance series
// (gonum returns NaN for those), so callers can treat NaN uniformly as
// "correlation undefined".
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
