package scoring

import (
	"fmt"
	"math"

	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/pkg/cohort"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/stats"
	"go.uber.org/zap"
)

// CohortDiagnostic captures how one procedure-type cohort contributed to a
// relative pillar, or why it was skipped.
type CohortDiagnostic struct {
	ProcedureTypeID   string  `json:"procedureTypeId"`
	ProcedureTypeName string  `json:"procedureTypeName"`
	CaseCount         int     `json:"caseCount"`
	ValidCount        int     `json:"validCount"`
	SurgeonValue      float64 `json:"surgeonValue"`
	PeerMedian        float64 `json:"peerMedian"`
	PeerCount         int     `json:"peerCount"`
	Score             int     `json:"score"`
	Skipped           bool    `json:"skipped"`
	Reason            string  `json:"reason,omitempty"`
}

// RelativeScorer computes the Profitability and Consistency pillars by
// scoring a surgeon's per-procedure summary statistics against peer cohorts
// and volume-weighting the per-cohort scores into one pillar value.
type RelativeScorer struct {
	logger            *zap.Logger
	minProcedureCases int
}

// NewRelativeScorer constructs a RelativeScorer. A nil logger is replaced
// with a no-op logger.
func NewRelativeScorer(logger *zap.Logger, minProcedureCases int) *RelativeScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelativeScorer{logger: logger, minProcedureCases: minProcedureCases}
}

// Profitability scores the surgeon's median margin-per-OR-minute per
// procedure type against the facility peer cohort for that procedure type,
// then blends across procedure types by case-count volume weighting.
// Returns the neutral score when no cohort qualifies.
func (s *RelativeScorer) Profitability(surgeonCases, allCases []records.Case, financials map[string]*records.Financial) (int, []CohortDiagnostic) {
	return s.scoreCohorts(surgeonCases, relativeCohortSpec{
		metric:         "margin per OR minute",
		higherIsBetter: true,
		absoluteMinMAD: 0,
		values: func(cases []records.Case) []float64 {
			var mpms []float64
			for i := range cases {
				if mpm, ok := records.MPM(&cases[i], financials[cases[i].ID]); ok {
					mpms = append(mpms, mpm)
				}
			}
			return mpms
		},
		summarize: stats.Median,
		peers: func(procedureTypeID string) []float64 {
			return cohort.PeerMedianMPMs(allCases, financials, procedureTypeID, s.minProcedureCases)
		},
	})
}

// Consistency scores the coefficient of variation of the surgeon's case
// durations per procedure type against peer CVs. Lower variability is
// better, and CV cohorts cluster tightly enough that an absolute spread
// floor replaces the percentage floor.
func (s *RelativeScorer) Consistency(surgeonCases, allCases []records.Case) (int, []CohortDiagnostic) {
	return s.scoreCohorts(surgeonCases, relativeCohortSpec{
		metric:         "duration variability",
		higherIsBetter: false,
		absoluteMinMAD: constants.MinAbsoluteMADCV,
		values: func(cases []records.Case) []float64 {
			var durations []float64
			for i := range cases {
				if d, ok := cases[i].Duration(); ok {
					durations = append(durations, d)
				}
			}
			return durations
		},
		summarize: stats.CoefficientOfVariation,
		peers: func(procedureTypeID string) []float64 {
			return cohort.PeerCVs(allCases, procedureTypeID, s.minProcedureCases)
		},
	})
}

// relativeCohortSpec parameterizes the shared cohort loop of the two
// relative pillars: extract valid data points, summarize them to one value,
// and fetch the peer population for the same procedure type.
type relativeCohortSpec struct {
	metric         string
	higherIsBetter bool
	absoluteMinMAD float64
	values         func([]records.Case) []float64
	summarize      func([]float64) float64
	peers          func(procedureTypeID string) []float64
}

func (s *RelativeScorer) scoreCohorts(surgeonCases []records.Case, spec relativeCohortSpec) (int, []CohortDiagnostic) {
	groups := cohort.GroupByProcedure(surgeonCases)
	var pairs []stats.Weighted
	diagnostics := make([]CohortDiagnostic, 0, len(groups))

	for _, group := range groups {
		diag := CohortDiagnostic{
			ProcedureTypeID:   group.ProcedureTypeID,
			ProcedureTypeName: group.ProcedureTypeName,
			CaseCount:         len(group.Cases),
		}

		values := spec.values(group.Cases)
		diag.ValidCount = len(values)
		if len(values) < s.minProcedureCases {
			diag.Skipped = true
			diag.Reason = fmt.Sprintf("only %d of %d cases have measurable %s data (minimum %d)",
				len(values), len(group.Cases), spec.metric, s.minProcedureCases)
			s.logger.Debug("skipping procedure cohort",
				zap.String("op", "scoring.RelativeScorer"),
				zap.String("procedureType", group.ProcedureTypeID),
				zap.String("reason", diag.Reason),
			)
			diagnostics = append(diagnostics, diag)
			continue
		}

		peerValues := spec.peers(group.ProcedureTypeID)
		diag.SurgeonValue = spec.summarize(values)
		diag.PeerMedian = stats.Median(peerValues)
		diag.PeerCount = len(peerValues)
		diag.Score = MADScore(diag.SurgeonValue, peerValues, spec.higherIsBetter, spec.absoluteMinMAD)
		diagnostics = append(diagnostics, diag)

		pairs = append(pairs, stats.Weighted{
			Value:  float64(diag.Score),
			Weight: float64(len(group.Cases)),
		})
	}

	blended := stats.WeightedMean(pairs, constants.NeutralScore)
	return ClampScore(math.Round(blended)), diagnostics
}
