package scoring

import (
	"math"
	"time"

	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/datetime"
	"github.com/orbithealth/orbit-scorecard/pkg/stats"
	"go.uber.org/zap"
)

// GraduatedCaseScore maps minutes beyond a grace window to a per-case score:
// 1.0 at or inside the window, 0.0 at or beyond floorMinutes over it, and
// linear in between.
func GraduatedCaseScore(minutesOver, floorMinutes float64) float64 {
	if minutesOver <= 0 {
		return 1.0
	}
	if minutesOver >= floorMinutes {
		return 0.0
	}
	return 1 - minutesOver/floorMinutes
}

// AdherenceDiagnostic summarizes the schedule adherence pillar inputs.
type AdherenceDiagnostic struct {
	ScoreableCases int     `json:"scoreableCases"`
	AvgMinutesLate float64 `json:"avgMinutesLate"`
	AvgMinutesOver float64 `json:"avgMinutesOver"`
	OnTimePct      float64 `json:"onTimePct"`
	Score          int     `json:"score"`
}

// AvailabilityDiagnostic summarizes the two availability sub-metrics.
type AvailabilityDiagnostic struct {
	GapCases      int     `json:"gapCases"`
	AvgGapMinutes float64 `json:"avgGapMinutes"`
	AvgGapOver    float64 `json:"avgGapOver"`
	GapScore      int     `json:"gapScore"`
	DelayedCases  int     `json:"delayedCases"`
	DelayRatePct  float64 `json:"delayRatePct"`
	DelayScore    int     `json:"delayScore"`
	Score         int     `json:"score"`
}

// AbsoluteConfig carries the grace/floor windows and start milestone for the
// absolute pillars.
type AbsoluteConfig struct {
	Milestone           records.Milestone
	StartGraceMinutes   float64
	StartFloorMinutes   float64
	WaitingGraceMinutes float64
	WaitingFloorMinutes float64
}

// AbsoluteScorer computes the Schedule Adherence and Availability pillars by
// graduated decay of per-case timing deltas. No peer comparison is involved;
// the decay curve already yields an interpretable absolute percentage.
type AbsoluteScorer struct {
	logger *zap.Logger
	cfg    AbsoluteConfig
	loc    *time.Location
}

// NewAbsoluteScorer constructs an AbsoluteScorer for one facility location.
// A nil logger is replaced with a no-op logger; a nil location defaults to
// UTC.
func NewAbsoluteScorer(logger *zap.Logger, cfg AbsoluteConfig, loc *time.Location) *AbsoluteScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AbsoluteScorer{logger: logger, cfg: cfg, loc: loc}
}

// ScheduleAdherence scores how closely cases started to their scheduled
// start. Cases missing either the scheduled start or the configured start
// milestone are filtered out; with no scoreable case the pillar defaults to
// the neutral score.
func (s *AbsoluteScorer) ScheduleAdherence(cases []records.Case) (int, AdherenceDiagnostic) {
	var caseScores, deltas, overs []float64
	onTime := 0

	for i := range cases {
		c := &cases[i]
		if c.ScheduledStartMinutes == nil {
			continue
		}
		actual := c.StartTime(s.cfg.Milestone)
		if actual == nil {
			continue
		}
		actualMinutes := datetime.LocalMinutesOfDay(*actual, s.loc)
		delta := actualMinutes - float64(*c.ScheduledStartMinutes)
		minutesOver := math.Max(0, delta-s.cfg.StartGraceMinutes)

		caseScores = append(caseScores, GraduatedCaseScore(minutesOver, s.cfg.StartFloorMinutes))
		deltas = append(deltas, delta)
		overs = append(overs, minutesOver)
		if minutesOver == 0 {
			onTime++
		}
	}

	if len(caseScores) == 0 {
		return constants.NeutralScore, AdherenceDiagnostic{Score: constants.NeutralScore}
	}

	score := ClampScore(stats.Mean(caseScores) * 100)
	diag := AdherenceDiagnostic{
		ScoreableCases: len(caseScores),
		AvgMinutesLate: stats.Mean(deltas),
		AvgMinutesOver: stats.Mean(overs),
		OnTimePct:      float64(onTime) / float64(len(caseScores)) * 100,
		Score:          score,
	}
	return score, diag
}

// Availability blends two sub-metrics: the prep-to-incision gap decayed
// against the waiting-on-surgeon window, and the rate of cases carrying a
// delay flag. The gap sub-metric needs at least MinGapCases scoreable cases
// or it defaults to the neutral score.
func (s *AbsoluteScorer) Availability(cases []records.Case, delayFlagged map[string]bool) (int, AvailabilityDiagnostic) {
	var gapScores, gaps, overs []float64
	for i := range cases {
		gap, ok := cases[i].PrepToIncisionGap()
		if !ok {
			continue
		}
		minutesOver := math.Max(0, gap-s.cfg.WaitingGraceMinutes)
		gapScores = append(gapScores, GraduatedCaseScore(minutesOver, s.cfg.WaitingFloorMinutes))
		gaps = append(gaps, gap)
		overs = append(overs, minutesOver)
	}

	gapScore := constants.NeutralScore
	if len(gapScores) >= constants.MinGapCases {
		gapScore = ClampScore(stats.Mean(gapScores) * 100)
	}

	delayed := 0
	for i := range cases {
		if delayFlagged[cases[i].ID] {
			delayed++
		}
	}
	delayRate := 0.0
	if len(cases) > 0 {
		delayRate = float64(delayed) / float64(len(cases)) * 100
	}
	delayScore := ClampScore(100 - delayRate*constants.DelayRateMultiplier)

	score := ClampScore(float64(gapScore)*constants.GapScoreWeight +
		float64(delayScore)*(1-constants.GapScoreWeight))

	diag := AvailabilityDiagnostic{
		GapCases:      len(gapScores),
		AvgGapMinutes: stats.Mean(gaps),
		AvgGapOver:    stats.Mean(overs),
		GapScore:      gapScore,
		DelayedCases:  delayed,
		DelayRatePct:  delayRate,
		DelayScore:    delayScore,
		Score:         score,
	}
	return score, diag
}
