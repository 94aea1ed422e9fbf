package utils

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile of values (0 ≤ p ≤ 1) using linear
// interpolation of the empirical CDF. Returns false for empty input.
func Quantile(p float64, values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil), true
}

// Median returns the middle value, averaging the two central elements for
// even-length input. Returns false for empty input.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

// Mean returns the arithmetic mean of values. Returns false for empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}
