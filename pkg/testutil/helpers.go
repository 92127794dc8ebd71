// Package testutil provides common utility functions and synthetic record
// builders for testing.
package testutil

import (
	"fmt"
	"time"

	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/internal/scorecard"
)

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// FindScorecard finds a scorecard by surgeon id in the results slice.
// Returns a pointer to the scorecard if found, nil otherwise.
func FindScorecard(cards []scorecard.Scorecard, surgeonID string) *scorecard.Scorecard {
	for i := range cards {
		if cards[i].SurgeonID == surgeonID {
			return &cards[i]
		}
	}
	return nil
}

// CaseOpts controls one synthetic case. Timestamps are generated in UTC, so
// tests using these fixtures should score with the UTC timezone.
type CaseOpts struct {
	ID                string
	SurgeonID         string
	SurgeonName       string
	ProcedureTypeID   string
	ProcedureTypeName string
	RoomID            string

	// Day is the scheduled date (YYYY-MM-DD).
	Day string

	// ScheduledStartMinutes is the scheduled start in minutes past
	// midnight; a negative value leaves the case unscheduled.
	ScheduledStartMinutes int

	// StartDelayMinutes offsets patient-in from the scheduled start.
	StartDelayMinutes float64

	// DurationMinutes is patient-in to patient-out; a non-positive value
	// omits the room timestamps entirely.
	DurationMinutes float64

	// PrepGapMinutes is prep-complete to incision; a negative value omits
	// the prep and incision timestamps.
	PrepGapMinutes float64
}

// BuildCase constructs one synthetic case record from the options.
func BuildCase(opts CaseOpts) records.Case {
	c := records.Case{
		ID:                opts.ID,
		SurgeonID:         opts.SurgeonID,
		SurgeonName:       opts.SurgeonName,
		ProcedureTypeID:   opts.ProcedureTypeID,
		ProcedureTypeName: opts.ProcedureTypeName,
		RoomID:            opts.RoomID,
		ScheduledDate:     opts.Day,
	}

	if opts.ScheduledStartMinutes >= 0 {
		c.ScheduledStartMinutes = IntPtr(opts.ScheduledStartMinutes)
	}

	if opts.DurationMinutes <= 0 {
		return c
	}

	day, err := time.Parse("2006-01-02", opts.Day)
	if err != nil {
		panic(err)
	}

	scheduled := opts.ScheduledStartMinutes
	if scheduled < 0 {
		scheduled = 7 * 60
	}
	patientIn := day.Add(minutes(float64(scheduled) + opts.StartDelayMinutes))
	patientOut := patientIn.Add(minutes(opts.DurationMinutes))
	c.PatientInAt = TimePtr(patientIn)
	c.PatientOutAt = TimePtr(patientOut)

	if opts.PrepGapMinutes >= 0 {
		prepComplete := patientIn.Add(minutes(10))
		incision := prepComplete.Add(minutes(opts.PrepGapMinutes))
		c.PrepCompleteAt = TimePtr(prepComplete)
		c.IncisionAt = TimePtr(incision)
	}

	return c
}

// FinancialFor builds a financial record for one case. A nil profit models a
// missing value.
func FinancialFor(caseID string, profit *float64) records.Financial {
	return records.Financial{CaseID: caseID, Profit: profit}
}

// UniformFacility builds a facility of identical surgeons: each performs
// casesPerSurgeon cases of one procedure type with uniform durations, prompt
// starts, no prep gap, and identical profit per OR minute. Useful for
// degenerate-cohort scenarios where every peer summary statistic is equal.
func UniformFacility(surgeonCount, casesPerSurgeon int, procedureTypeID string, durationMinutes, profitPerMinute float64) ([]records.Case, []records.Financial) {
	var cases []records.Case
	var financials []records.Financial
	for s := 0; s < surgeonCount; s++ {
		surgeonID := fmt.Sprintf("surg-%02d", s+1)
		for i := 0; i < casesPerSurgeon; i++ {
			caseID := fmt.Sprintf("%s-c%03d", surgeonID, i+1)
			day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
			cases = append(cases, BuildCase(CaseOpts{
				ID:                    caseID,
				SurgeonID:             surgeonID,
				SurgeonName:           fmt.Sprintf("Surgeon %02d", s+1),
				ProcedureTypeID:       procedureTypeID,
				ProcedureTypeName:     procedureTypeID,
				RoomID:                "or-1",
				Day:                   day.Format("2006-01-02"),
				ScheduledStartMinutes: 7 * 60,
				StartDelayMinutes:     0,
				DurationMinutes:       durationMinutes,
				PrepGapMinutes:        0,
			}))
			financials = append(financials, FinancialFor(caseID, FloatPtr(profitPerMinute*durationMinutes)))
		}
	}
	return cases, financials
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
