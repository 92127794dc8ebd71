// Package scoring implements the four pillar scorers: median-anchored MAD
// scoring against peer cohorts for the relative pillars, and graduated
// linear decay of per-case timing deltas for the absolute pillars.
package scoring

import (
	"math"

	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/stats"
)

// ClampScore rounds v to the nearest integer and clamps it into the valid
// pillar score range.
func ClampScore(v float64) int {
	return int(stats.Clamp(math.Round(v), constants.MinPillarScore, constants.MaxPillarScore))
}

// MADScore scores a value against a peer cohort using median-anchored MAD
// normalization. The effective spread is floored at MinMADPercent of the
// cohort median and at absoluteMinMAD, so tightly clustered cohorts do not
// amplify noise. One effective MAD moves the score 50/MADBand points from
// the neutral 50; MADBand effective MADs reach the clamped extremes.
//
// Fallbacks: an empty cohort scores the neutral 50; a single peer scores by
// ratio scaling; a degenerate cohort (zero effective spread) interpolates
// across the cohort's min/max range.
func MADScore(value float64, cohortValues []float64, higherIsBetter bool, absoluteMinMAD float64) int {
	switch len(cohortValues) {
	case 0:
		return constants.NeutralScore
	case 1:
		return singlePeerScore(value, cohortValues[0], higherIsBetter)
	}

	median := stats.Median(cohortValues)
	spread := stats.MAD(cohortValues)
	spread = math.Max(spread, math.Abs(median)*constants.MinMADPercent)
	spread = math.Max(spread, absoluteMinMAD)
	if spread == 0 {
		return rangeInterpolate(value, cohortValues, higherIsBetter)
	}

	normalized := (value - median) / spread
	if !higherIsBetter {
		normalized = -normalized
	}
	return ClampScore(float64(constants.NeutralScore) + normalized*(50/constants.MADBand))
}

// singlePeerScore scales relative to the lone peer value: matching the peer
// scores 50, and each percentage point of difference moves the score one
// point. A peer value of 0 leaves the ratio undefined and scores neutral.
func singlePeerScore(value, peer float64, higherIsBetter bool) int {
	if peer == 0 {
		return constants.NeutralScore
	}
	delta := (value/peer - 1) * 100
	if !higherIsBetter {
		delta = -delta
	}
	return ClampScore(float64(constants.NeutralScore) + delta)
}

// rangeInterpolate maps the value linearly across the cohort's min/max range
// onto the pillar score range. Used only when the effective spread collapses
// to zero, which implies a cohort centered on zero with identical values or
// symmetric outliers.
func rangeInterpolate(value float64, cohortValues []float64, higherIsBetter bool) int {
	lo, hi := cohortValues[0], cohortValues[0]
	for _, v := range cohortValues[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return constants.NeutralScore
	}
	normalized := stats.Clamp((value-lo)/(hi-lo), 0, 1)
	if !higherIsBetter {
		normalized = 1 - normalized
	}
	span := float64(constants.MaxPillarScore - constants.MinPillarScore)
	return ClampScore(constants.MinPillarScore + normalized*span)
}
