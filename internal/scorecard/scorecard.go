// Package scorecard orchestrates the scoring pipeline: cohort grouping,
// pillar scoring, composite/grade/trend derivation, and ordering of the
// resulting scorecards. The engine is a pure function of its inputs; no
// state persists between invocations.
package scorecard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/orbithealth/orbit-scorecard/internal/config"
	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/pkg/cohort"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/scoring"
	"go.uber.org/zap"
)

// Trend is the direction of a surgeon's composite versus the prior period.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Input is the full contract for one scoring run: pre-fetched, normalized
// records for the scoring period, facility settings and timezone, and
// optional prior-period records for trend computation.
type Input struct {
	Cases      []records.Case
	Financials []records.Financial
	Flags      []records.Flag

	Settings config.Settings

	PeriodStart time.Time
	PeriodEnd   time.Time
	Timezone    string

	PriorCases      []records.Case
	PriorFinancials []records.Financial
	PriorFlags      []records.Flag

	IncludeDiagnostics bool
}

// PillarScores holds the four weighted sub-scores, each an integer in the
// valid pillar range.
type PillarScores struct {
	Profitability  int `json:"profitability"`
	Consistency    int `json:"consistency"`
	SchedAdherence int `json:"schedAdherence"`
	Availability   int `json:"availability"`
}

// Grade is the letter grade with its display label.
type Grade struct {
	Letter string `json:"letter"`
	Label  string `json:"label"`
}

// Diagnostics is the optional per-pillar side channel. Its presence never
// alters scoring values; scorers always compute it and the engine attaches
// it only when requested.
type Diagnostics struct {
	Profitability  []scoring.CohortDiagnostic     `json:"profitability"`
	Consistency    []scoring.CohortDiagnostic     `json:"consistency"`
	SchedAdherence scoring.AdherenceDiagnostic    `json:"schedAdherence"`
	Availability   scoring.AvailabilityDiagnostic `json:"availability"`
}

// Scorecard is one surgeon's result for one scoring period.
type Scorecard struct {
	SurgeonID         string         `json:"surgeonId"`
	SurgeonName       string         `json:"surgeonName"`
	CaseCount         int            `json:"caseCount"`
	ProcedureMix      map[string]int `json:"procedureMix"`
	FlipRooms         bool           `json:"flipRooms"`
	Pillars           PillarScores   `json:"pillars"`
	Composite         int            `json:"composite"`
	Grade             Grade          `json:"grade"`
	Trend             Trend          `json:"trend"`
	PreviousComposite *int           `json:"previousComposite,omitempty"`
	Diagnostics       *Diagnostics   `json:"diagnostics,omitempty"`
}

// Composite reduces the four pillars to the weighted composite score.
func Composite(p PillarScores) int {
	weighted := float64(p.Profitability)*constants.WeightProfitability +
		float64(p.Consistency)*constants.WeightConsistency +
		float64(p.SchedAdherence)*constants.WeightSchedAdherence +
		float64(p.Availability)*constants.WeightAvailability
	return int(math.Round(weighted))
}

// GradeFor maps a composite score to its letter grade. Thresholds are
// inclusive.
func GradeFor(composite int) Grade {
	switch {
	case composite >= constants.GradeAThreshold:
		return Grade{Letter: "A", Label: "Elite"}
	case composite >= constants.GradeBThreshold:
		return Grade{Letter: "B", Label: "Strong"}
	case composite >= constants.GradeCThreshold:
		return Grade{Letter: "C", Label: "Developing"}
	default:
		return Grade{Letter: "D", Label: "Needs Improvement"}
	}
}

// TrendFor compares the current composite with the prior period's. With no
// prior data, or equal composites, the trend is stable.
func TrendFor(current int, previous *int) Trend {
	if previous == nil || current == *previous {
		return TrendStable
	}
	if current > *previous {
		return TrendUp
	}
	return TrendDown
}

// BuildScorecards runs the full pipeline and returns one scorecard per
// surgeon meeting the minimum case threshold, sorted by composite
// descending. The only hard failure is an unresolvable facility timezone.
func BuildScorecards(logger *zap.Logger, input Input) ([]Scorecard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.UTC
	if input.Timezone != "" {
		resolved, err := time.LoadLocation(input.Timezone)
		if err != nil {
			return nil, fmt.Errorf("unknown facility timezone %q: %v", input.Timezone, err)
		}
		loc = resolved
	}

	settings := input.Settings
	settings.ApplyDefaults()

	cards := buildPeriod(logger, periodRecords{
		cases:      input.Cases,
		financials: input.Financials,
		flags:      input.Flags,
	}, settings, loc, input.IncludeDiagnostics)

	if len(input.PriorCases) > 0 {
		priorCards := buildPeriod(logger, periodRecords{
			cases:      input.PriorCases,
			financials: input.PriorFinancials,
			flags:      input.PriorFlags,
		}, settings, loc, false)

		priorComposites := make(map[string]int, len(priorCards))
		for _, card := range priorCards {
			priorComposites[card.SurgeonID] = card.Composite
		}
		for i := range cards {
			if previous, present := priorComposites[cards[i].SurgeonID]; present {
				p := previous
				cards[i].PreviousComposite = &p
			}
			cards[i].Trend = TrendFor(cards[i].Composite, cards[i].PreviousComposite)
		}
	}

	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Composite != cards[j].Composite {
			return cards[i].Composite > cards[j].Composite
		}
		return cards[i].SurgeonID < cards[j].SurgeonID
	})

	logger.Debug(fmt.Sprintf("scored %d of %d surgeons", len(cards), countSurgeons(input.Cases)),
		zap.String("op", "scorecard.BuildScorecards"),
	)

	return cards, nil
}

type periodRecords struct {
	cases      []records.Case
	financials []records.Financial
	flags      []records.Flag
}

func buildPeriod(logger *zap.Logger, period periodRecords, settings config.Settings, loc *time.Location, includeDiagnostics bool) []Scorecard {
	financialsByCase := records.FinancialsByCase(period.financials)
	delayFlagged := records.DelayFlaggedCases(period.flags)

	relative := scoring.NewRelativeScorer(logger, settings.MinProcedureCases)
	absolute := scoring.NewAbsoluteScorer(logger, scoring.AbsoluteConfig{
		Milestone:           records.Milestone(settings.StartMilestone),
		StartGraceMinutes:   settings.StartTimeGraceMinutes,
		StartFloorMinutes:   settings.StartTimeFloorMinutes,
		WaitingGraceMinutes: settings.WaitingOnSurgeonMinutes,
		WaitingFloorMinutes: settings.WaitingOnSurgeonFloorMinutes,
	}, loc)

	surgeonOrder, casesBySurgeon := cohort.GroupBySurgeon(period.cases)

	var cards []Scorecard
	for _, surgeonID := range surgeonOrder {
		surgeonCases := casesBySurgeon[surgeonID]
		if len(surgeonCases) < constants.MinCaseThreshold {
			logger.Debug(fmt.Sprintf("skipping surgeon %s with %d cases (minimum %d)",
				surgeonID, len(surgeonCases), constants.MinCaseThreshold),
				zap.String("op", "scorecard.buildPeriod"),
			)
			continue
		}

		profitability, profitabilityDiags := relative.Profitability(surgeonCases, period.cases, financialsByCase)
		consistency, consistencyDiags := relative.Consistency(surgeonCases, period.cases)
		adherence, adherenceDiag := absolute.ScheduleAdherence(surgeonCases)
		availability, availabilityDiag := absolute.Availability(surgeonCases, delayFlagged)

		pillars := PillarScores{
			Profitability:  profitability,
			Consistency:    consistency,
			SchedAdherence: adherence,
			Availability:   availability,
		}

		card := Scorecard{
			SurgeonID:    surgeonID,
			SurgeonName:  surgeonCases[0].SurgeonName,
			CaseCount:    len(surgeonCases),
			ProcedureMix: procedureMix(surgeonCases),
			FlipRooms:    cohort.DetectFlipRooms(surgeonCases),
			Pillars:      pillars,
			Composite:    Composite(pillars),
			Trend:        TrendStable,
		}
		card.Grade = GradeFor(card.Composite)

		if includeDiagnostics {
			card.Diagnostics = &Diagnostics{
				Profitability:  profitabilityDiags,
				Consistency:    consistencyDiags,
				SchedAdherence: adherenceDiag,
				Availability:   availabilityDiag,
			}
		}

		cards = append(cards, card)
	}

	return cards
}

func procedureMix(cases []records.Case) map[string]int {
	mix := make(map[string]int)
	for i := range cases {
		name := cases[i].ProcedureTypeName
		if name == "" {
			name = cases[i].ProcedureTypeID
		}
		mix[name]++
	}
	return mix
}

func countSurgeons(cases []records.Case) int {
	seen := make(map[string]bool)
	for i := range cases {
		seen[cases[i].SurgeonID] = true
	}
	return len(seen)
}
