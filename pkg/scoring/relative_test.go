package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/orbithealth/orbit-scorecard/internal/records"
	"go.uber.org/zap"
)

// marginCase builds a case with a fixed duration for one surgeon/procedure.
func marginCase(id, surgeonID, procedureTypeID string, durationMinutes float64) records.Case {
	patientIn := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	patientOut := patientIn.Add(time.Duration(durationMinutes * float64(time.Minute)))
	return records.Case{
		ID:                id,
		SurgeonID:         surgeonID,
		ProcedureTypeID:   procedureTypeID,
		ProcedureTypeName: procedureTypeID,
		PatientInAt:       &patientIn,
		PatientOutAt:      &patientOut,
	}
}

// marginCohort appends n cases with identical duration and profit for one
// surgeon/procedure and registers the financials.
func marginCohort(cases *[]records.Case, financials map[string]*records.Financial, surgeonID, procedureTypeID string, n int, durationMinutes, profit float64) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%s-%d", surgeonID, procedureTypeID, i)
		c := marginCase(id, surgeonID, procedureTypeID, durationMinutes)
		*cases = append(*cases, c)
		p := profit
		financials[id] = &records.Financial{CaseID: id, Profit: &p}
	}
}

func TestProfitabilityVolumeWeightedBlend(t *testing.T) {
	var all []records.Case
	financials := make(map[string]*records.Financial)

	// Surgeon s1: MPM 6 on proc-a (10 cases), MPM 4 on proc-b (5 cases).
	marginCohort(&all, financials, "s1", "proc-a", 10, 100, 600)
	marginCohort(&all, financials, "s1", "proc-b", 5, 100, 400)
	// Surgeon s2 fills out both peer cohorts with the opposite profile.
	marginCohort(&all, financials, "s2", "proc-a", 5, 100, 400)
	marginCohort(&all, financials, "s2", "proc-b", 5, 100, 600)

	var s1Cases []records.Case
	for _, c := range all {
		if c.SurgeonID == "s1" {
			s1Cases = append(s1Cases, c)
		}
	}

	scorer := NewRelativeScorer(zap.NewNop(), 5)
	score, diags := scorer.Profitability(s1Cases, all, financials)

	// Peers for each cohort are [6, 4] and [4, 6]: median 5, MAD 1.
	// s1 scores one MAD above on proc-a (67) and one below on proc-b (33);
	// blended (67*10 + 33*5) / 15 = 55.67 rounds to 56.
	if score != 56 {
		t.Errorf("profitability = %d, expected 56", score)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 cohort diagnostics, got %d", len(diags))
	}
	if diags[0].Score != 67 || diags[1].Score != 33 {
		t.Errorf("cohort scores = %d, %d, expected 67 and 33", diags[0].Score, diags[1].Score)
	}
	if diags[0].PeerCount != 2 {
		t.Errorf("peer count = %d, expected 2 (self-inclusive)", diags[0].PeerCount)
	}
}

func TestProfitabilitySkipsSparseCohorts(t *testing.T) {
	var all []records.Case
	financials := make(map[string]*records.Financial)

	marginCohort(&all, financials, "s1", "proc-a", 3, 100, 500)

	scorer := NewRelativeScorer(zap.NewNop(), 5)
	score, diags := scorer.Profitability(all, all, financials)

	if score != 50 {
		t.Errorf("profitability = %d, expected neutral 50 with no qualifying cohort", score)
	}
	if len(diags) != 1 || !diags[0].Skipped {
		t.Fatalf("expected one skipped diagnostic, got %+v", diags)
	}
	if diags[0].Reason == "" {
		t.Error("skipped cohort should carry a reason")
	}
}

func TestProfitabilityProfitNullVersusZero(t *testing.T) {
	var all []records.Case
	financials := make(map[string]*records.Financial)

	// Five cases with profit 0 are valid break-even data points.
	marginCohort(&all, financials, "s1", "proc-a", 5, 100, 0)
	// A sixth case with a missing profit is excluded, not treated as zero.
	c := marginCase("s1-missing", "s1", "proc-a", 100)
	all = append(all, c)
	financials["s1-missing"] = &records.Financial{CaseID: "s1-missing", Profit: nil}

	scorer := NewRelativeScorer(zap.NewNop(), 5)
	_, diags := scorer.Profitability(all, all, financials)

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].CaseCount != 6 {
		t.Errorf("case count = %d, expected 6", diags[0].CaseCount)
	}
	if diags[0].ValidCount != 5 {
		t.Errorf("valid count = %d, expected 5 (null profit excluded, zero included)", diags[0].ValidCount)
	}
	if diags[0].Skipped {
		t.Error("cohort with 5 valid points should not be skipped at floor 5")
	}
	if diags[0].SurgeonValue != 0 {
		t.Errorf("surgeon MPM = %v, expected 0 for break-even cases", diags[0].SurgeonValue)
	}
}

func TestConsistencyUniformDurationsScoreNeutral(t *testing.T) {
	var all []records.Case
	financials := make(map[string]*records.Financial)

	// Three surgeons with perfectly uniform durations: every CV is 0 and
	// the absolute spread floor keeps the cohort from degenerating.
	for _, surgeonID := range []string{"s1", "s2", "s3"} {
		marginCohort(&all, financials, surgeonID, "proc-a", 6, 100, 500)
	}

	var s1Cases []records.Case
	for _, c := range all {
		if c.SurgeonID == "s1" {
			s1Cases = append(s1Cases, c)
		}
	}

	scorer := NewRelativeScorer(zap.NewNop(), 5)
	score, diags := scorer.Consistency(s1Cases, all)

	if score != 50 {
		t.Errorf("consistency = %d, expected 50", score)
	}
	if len(diags) != 1 || diags[0].Skipped {
		t.Fatalf("expected one contributing diagnostic, got %+v", diags)
	}
	if diags[0].PeerCount != 3 {
		t.Errorf("peer count = %d, expected 3", diags[0].PeerCount)
	}
}

func TestConsistencyPenalizesVariability(t *testing.T) {
	var all []records.Case
	financials := make(map[string]*records.Financial)

	// Two steady peers.
	marginCohort(&all, financials, "s2", "proc-a", 6, 100, 500)
	marginCohort(&all, financials, "s3", "proc-a", 6, 100, 500)

	// s1 swings between 60 and 140 minute cases.
	var s1Cases []records.Case
	for i := 0; i < 6; i++ {
		duration := 60.0
		if i%2 == 0 {
			duration = 140.0
		}
		c := marginCase(fmt.Sprintf("s1-%d", i), "s1", "proc-a", duration)
		s1Cases = append(s1Cases, c)
		all = append(all, c)
	}

	scorer := NewRelativeScorer(zap.NewNop(), 5)
	score, _ := scorer.Consistency(s1Cases, all)

	if score != 10 {
		t.Errorf("consistency = %d, expected 10 for a high-variability outlier", score)
	}
}
