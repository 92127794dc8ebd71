// Package stats provides the robust statistics primitives used by the
// scoring engine. Every function degrades to a defined sentinel on
// insufficient data rather than returning an error.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator) of xs,
// or 0 for fewer than 2 values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// CoefficientOfVariation returns stddev/mean, a scale-free measure of
// variability. Returns 0 when the mean is 0 or there are fewer than 2 values.
func CoefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	if mean == 0 {
		return 0
	}
	return StdDev(xs) / mean
}

// Median returns the sorted middle value of xs (average of the two middle
// values for even counts), or 0 for empty input. The input slice is not
// modified.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MAD returns the median absolute deviation of xs: the median of
// |x - median(xs)|. Returns 0 for fewer than 2 values.
func MAD(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	med := Median(xs)
	devs := make([]float64, len(xs))
	for i, x := range xs {
		devs[i] = math.Abs(x - med)
	}
	return Median(devs)
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Weighted is one (value, weight) pair for a weighted mean reduction.
type Weighted struct {
	Value  float64
	Weight float64
}

// WeightedMean reduces a list of (value, weight) pairs to their weighted
// mean. Returns fallback when the pairs are empty or the weights sum to 0.
func WeightedMean(pairs []Weighted, fallback float64) float64 {
	var sum, weightSum float64
	for _, p := range pairs {
		sum += p.Value * p.Weight
		weightSum += p.Weight
	}
	if weightSum == 0 {
		return fallback
	}
	return sum / weightSum
}
