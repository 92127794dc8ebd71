// Package plan inverts the scoring function: it inspects per-pillar
// diagnostics, finds the weakest contributing cohort or sub-metric for each
// underperforming pillar, and emits targeted recommendations with projected
// annual time and dollar impact.
package plan

import (
	"fmt"
	"math"
	"sort"

	"github.com/orbithealth/orbit-scorecard/internal/scorecard"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/format"
	"github.com/orbithealth/orbit-scorecard/pkg/scoring"
	"go.uber.org/zap"
)

// avgCaseMinutes is the assumed average case length used by the impact
// heuristics. The projections are directional, not a unified cost model.
const avgCaseMinutes = 90.0

// stretchTarget is the target score for pillars already within reach of the
// improvement threshold; pillars further below target the threshold itself.
const (
	stretchTarget       = 75
	stretchFloor        = 55
	severeScore         = 40
	topTierStrength     = 85
	strongStrength      = 75
	strengthTopTierNote = "%s is a top-tier strength at %d; protect the habits behind it."
	strengthStrongNote  = "%s is a strong pillar at %d."
	strengthBaseNote    = "%s is holding above the improvement threshold at %d."
)

// Config carries the improvement plan knobs.
type Config struct {
	ORCostPerMinute      float64
	AnnualCaseMultiplier float64
	ImprovementThreshold int
}

// ApplyDefaults fills unset knobs with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.ORCostPerMinute == 0 {
		c.ORCostPerMinute = constants.DefaultORCostPerMinute
	}
	if c.AnnualCaseMultiplier == 0 {
		c.AnnualCaseMultiplier = constants.DefaultAnnualCaseMultiplier
	}
	if c.ImprovementThreshold == 0 {
		c.ImprovementThreshold = constants.DefaultImprovementThreshold
	}
}

// Recommendation is one targeted, quantified improvement for one pillar.
type Recommendation struct {
	Priority        int      `json:"priority"`
	Pillar          string   `json:"pillar"`
	PillarLabel     string   `json:"pillarLabel"`
	CurrentScore    int      `json:"currentScore"`
	TargetScore     int      `json:"targetScore"`
	CompositeImpact int      `json:"compositeImpact"`
	Insight         string   `json:"insight"`
	Actions         []string `json:"actions"`
	AnnualMinutes   float64  `json:"annualMinutes"`
	AnnualHours     float64  `json:"annualHours"`
	AnnualDollars   float64  `json:"annualDollars"`
}

// Plan aggregates a surgeon's recommendations with the composite that would
// result if every recommended pillar reached its target.
type Plan struct {
	SurgeonID          string           `json:"surgeonId"`
	SurgeonName        string           `json:"surgeonName"`
	CurrentComposite   int              `json:"currentComposite"`
	ProjectedComposite int              `json:"projectedComposite"`
	Strengths          []string         `json:"strengths"`
	Recommendations    []Recommendation `json:"recommendations"`
	TotalAnnualHours   float64          `json:"totalAnnualHours"`
	TotalAnnualDollars float64          `json:"totalAnnualDollars"`
}

// Generator produces improvement plans from diagnostic-bearing scorecards.
type Generator struct {
	logger *zap.Logger
	cfg    Config
}

// NewGenerator constructs a Generator. A nil logger is replaced with a no-op
// logger; zero config knobs take their documented defaults.
func NewGenerator(logger *zap.Logger, cfg Config) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Generator{logger: logger, cfg: cfg}
}

type pillarView struct {
	key    string
	label  string
	score  int
	weight float64
}

// Generate builds the improvement plan for one scorecard. The scorecard
// must carry diagnostics.
func (g *Generator) Generate(card scorecard.Scorecard) (*Plan, error) {
	if card.Diagnostics == nil {
		return nil, fmt.Errorf("scorecard for surgeon %s has no diagnostics; rerun scoring with diagnostics enabled", card.SurgeonID)
	}

	pillars := []pillarView{
		{"profitability", "Profitability", card.Pillars.Profitability, constants.WeightProfitability},
		{"consistency", "Consistency", card.Pillars.Consistency, constants.WeightConsistency},
		{"schedAdherence", "Schedule Adherence", card.Pillars.SchedAdherence, constants.WeightSchedAdherence},
		{"availability", "Availability", card.Pillars.Availability, constants.WeightAvailability},
	}

	result := &Plan{
		SurgeonID:        card.SurgeonID,
		SurgeonName:      card.SurgeonName,
		CurrentComposite: card.Composite,
	}

	for _, pillar := range pillars {
		if pillar.score >= g.cfg.ImprovementThreshold {
			result.Strengths = append(result.Strengths, strengthNote(pillar))
			continue
		}
		rec := g.buildRecommendation(pillar, card)
		result.Recommendations = append(result.Recommendations, rec)
	}

	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return result.Recommendations[i].CompositeImpact > result.Recommendations[j].CompositeImpact
	})
	for i := range result.Recommendations {
		result.Recommendations[i].Priority = i + 1
		result.TotalAnnualHours += result.Recommendations[i].AnnualHours
		result.TotalAnnualDollars += result.Recommendations[i].AnnualDollars
	}

	result.ProjectedComposite = projectedComposite(card.Pillars, result.Recommendations)

	g.logger.Debug(fmt.Sprintf("generated %d recommendations for surgeon %s", len(result.Recommendations), card.SurgeonID),
		zap.String("op", "plan.Generate"),
		zap.Int("currentComposite", result.CurrentComposite),
		zap.Int("projectedComposite", result.ProjectedComposite),
	)

	return result, nil
}

func strengthNote(pillar pillarView) string {
	switch {
	case pillar.score >= topTierStrength:
		return fmt.Sprintf(strengthTopTierNote, pillar.label, pillar.score)
	case pillar.score >= strongStrength:
		return fmt.Sprintf(strengthStrongNote, pillar.label, pillar.score)
	default:
		return fmt.Sprintf(strengthBaseNote, pillar.label, pillar.score)
	}
}

func (g *Generator) buildRecommendation(pillar pillarView, card scorecard.Scorecard) Recommendation {
	target := g.cfg.ImprovementThreshold
	if pillar.score >= stretchFloor {
		target = stretchTarget
	}
	severe := pillar.score < severeScore

	var minutes float64
	var insight string
	var actions []string

	switch pillar.key {
	case "profitability":
		minutes, insight, actions = g.profitabilityRec(card.Diagnostics.Profitability, severe)
	case "consistency":
		minutes, insight, actions = g.consistencyRec(card.Diagnostics.Consistency, severe)
	case "schedAdherence":
		minutes, insight, actions = g.adherenceRec(card.Diagnostics.SchedAdherence, card.CaseCount, severe)
	case "availability":
		minutes, insight, actions = g.availabilityRec(card.Diagnostics.Availability, card, severe)
	}

	return Recommendation{
		Pillar:          pillar.key,
		PillarLabel:     pillar.label,
		CurrentScore:    pillar.score,
		TargetScore:     target,
		CompositeImpact: int(math.Round(float64(target-pillar.score) * pillar.weight)),
		Insight:         insight,
		Actions:         actions,
		AnnualMinutes:   minutes,
		AnnualHours:     math.Round(minutes/60*10) / 10,
		AnnualDollars:   math.Round(minutes * g.cfg.ORCostPerMinute),
	}
}

// worstCohort returns the lowest-scoring cohort that actually contributed to
// the pillar, or nil when every cohort was skipped.
func worstCohort(diags []scoring.CohortDiagnostic) *scoring.CohortDiagnostic {
	var worst *scoring.CohortDiagnostic
	for i := range diags {
		if diags[i].Skipped {
			continue
		}
		if worst == nil || diags[i].Score < worst.Score {
			worst = &diags[i]
		}
	}
	return worst
}

func (g *Generator) profitabilityRec(diags []scoring.CohortDiagnostic, severe bool) (float64, string, []string) {
	worst := worstCohort(diags)
	if worst == nil {
		insight := "Margin data is too sparse to benchmark against peers; no procedure cohort met the minimum case floor."
		return 0, insight, []string{
			"Confirm profit and timing capture for every completed case",
			"Work with the data team to backfill missing financial records",
		}
	}

	gap := math.Max(0, worst.PeerMedian-worst.SurgeonValue)
	annualCases := float64(worst.CaseCount) * g.cfg.AnnualCaseMultiplier
	// Half the margin-per-minute gap, priced over the assumed average case
	// length and annualized case volume, converted to OR minutes.
	minutes := math.Round(gap * 0.5 * avgCaseMinutes * annualCases / g.cfg.ORCostPerMinute)

	insight := fmt.Sprintf("%s margin runs %s below the peer median; closing half the gap across ~%.0f annual cases is the target.",
		worst.ProcedureTypeName, format.CurrencyPerMinute(gap), annualCases)

	actions := []string{
		fmt.Sprintf("Review supply and implant selection for %s against peer preference cards", worst.ProcedureTypeName),
		"Standardize high-cost consumables where clinically equivalent options exist",
		fmt.Sprintf("Audit reimbursement coding on recent %s cases for missed charge capture", worst.ProcedureTypeName),
	}
	if severe {
		actions = append(actions, "Schedule a service-line margin review with the OR business manager")
	}
	return minutes, insight, actions
}

func (g *Generator) consistencyRec(diags []scoring.CohortDiagnostic, severe bool) (float64, string, []string) {
	worst := worstCohort(diags)
	if worst == nil {
		insight := "Too few measurable case durations to benchmark variability against peers."
		return 0, insight, []string{
			"Verify patient-in and patient-out capture on every case",
			"Ask the OR desk to flag cases recorded without room timestamps",
		}
	}

	excess := math.Max(0, worst.SurgeonValue-worst.PeerMedian)
	annualCases := float64(worst.CaseCount) * g.cfg.AnnualCaseMultiplier
	// Excess duration spread over peers, halved, across annualized cohort
	// volume.
	minutes := math.Round(excess * avgCaseMinutes * 0.5 * annualCases)

	insight := fmt.Sprintf("%s case lengths vary with a CV of %.2f against a peer median of %.2f; tightening the spread recovers roughly half the excess minutes.",
		worst.ProcedureTypeName, worst.SurgeonValue, worst.PeerMedian)

	actions := []string{
		fmt.Sprintf("Template the operative plan for %s to cut step-order variation", worst.ProcedureTypeName),
		"Walk the team through expected phase timings at the pre-op huddle",
		"Track intra-operative milestones for a month to isolate the variable phase",
	}
	if severe {
		actions = append(actions, "Pair with a high-consistency colleague for case observation")
	}
	return minutes, insight, actions
}

func (g *Generator) adherenceRec(diag scoring.AdherenceDiagnostic, caseCount int, severe bool) (float64, string, []string) {
	if diag.ScoreableCases == 0 {
		insight := "No cases had both a scheduled start and a captured start milestone, so adherence could not be measured."
		return 0, insight, []string{
			"Confirm scheduled start times flow through from the booking system",
			"Verify the start milestone timestamp is captured in the OR record",
		}
	}

	annualCases := float64(caseCount) * g.cfg.AnnualCaseMultiplier
	// Minutes-late reduction across annualized case volume.
	minutes := math.Round(diag.AvgMinutesOver * annualCases)

	insight := fmt.Sprintf("Starts run an average %.0f minutes past the grace window with %.0f%% of cases on time; bringing every start inside the window saves the projected minutes.",
		diag.AvgMinutesOver, diag.OnTimePct)

	actions := []string{
		"Arrive in the OR suite ten minutes ahead of the scheduled start",
		"Shift consent verification and site marking to the prior day",
		"Flag chronic first-case conflicts to the scheduling office",
	}
	if severe {
		actions = append(actions, "Review the week's first-start record with the OR charge nurse every Friday")
	}
	return minutes, insight, actions
}

func (g *Generator) availabilityRec(diag scoring.AvailabilityDiagnostic, card scorecard.Scorecard, severe bool) (float64, string, []string) {
	annualCases := float64(card.CaseCount) * g.cfg.AnnualCaseMultiplier
	// Prep-to-incision gap beyond grace across annualized case volume.
	minutes := math.Round(diag.AvgGapOver * annualCases)

	var insight string
	if diag.DelayScore < diag.GapScore {
		insight = fmt.Sprintf("%.0f%% of cases carry a delay flag; prep-to-incision gaps average %.0f minutes on top of that.",
			diag.DelayRatePct, diag.AvgGapMinutes)
	} else {
		insight = fmt.Sprintf("Teams wait an average %.0f minutes between prep completion and incision, %.0f past the grace window.",
			diag.AvgGapMinutes, diag.AvgGapOver)
	}

	actions := []string{
		"Be scrubbed and available when prep and draping complete",
		"Ask the charge desk to page at drape completion rather than patient-in",
	}
	if card.FlipRooms {
		actions = append(actions, "Stage between flip rooms only when the next room is fully set")
	}
	if severe {
		actions = append(actions, "Audit a week of delay flags with the OR manager to confirm attribution")
	}
	return minutes, insight, actions
}

// projectedComposite substitutes each recommended pillar's target score and
// recomputes the composite.
func projectedComposite(pillars scorecard.PillarScores, recs []Recommendation) int {
	projected := pillars
	for _, rec := range recs {
		switch rec.Pillar {
		case "profitability":
			projected.Profitability = rec.TargetScore
		case "consistency":
			projected.Consistency = rec.TargetScore
		case "schedAdherence":
			projected.SchedAdherence = rec.TargetScore
		case "availability":
			projected.Availability = rec.TargetScore
		}
	}
	return scorecard.Composite(projected)
}
