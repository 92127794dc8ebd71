// Package records defines the normalized input record types the scoring
// engine consumes. Records are caller-supplied, already joined and filtered
// to completed, data-validated cases; the engine never mutates them.
package records

import "time"

// Milestone identifies which timestamp counts as the actual start of a case
// for schedule adherence scoring.
type Milestone string

const (
	// MilestonePatientIn scores adherence from the patient-in-room timestamp.
	MilestonePatientIn Milestone = "patient_in"

	// MilestoneIncision scores adherence from the incision timestamp.
	MilestoneIncision Milestone = "incision"
)

// FlagTypeDelay is the only flag type the availability pillar scores.
const FlagTypeDelay = "delay"

// Case identifies one completed procedure. The five milestone timestamps are
// optional; a nil timestamp means the milestone was not captured and the
// case is filtered out of any computation that needs it.
type Case struct {
	ID                string
	SurgeonID         string
	SurgeonName       string
	ProcedureTypeID   string
	ProcedureTypeName string
	RoomID            string

	// ScheduledDate is the facility-local calendar date (YYYY-MM-DD).
	ScheduledDate string

	// ScheduledStartMinutes is the scheduled start expressed as
	// facility-local minutes past midnight, nil when unscheduled.
	ScheduledStartMinutes *int

	PatientInAt    *time.Time
	IncisionAt     *time.Time
	PrepCompleteAt *time.Time
	ClosingAt      *time.Time
	PatientOutAt   *time.Time
}

// Financial carries the financial outcome for one case. Profit is nullable:
// nil means the value is missing and the case is excluded from profitability
// scoring, while 0 is valid break-even data and is included.
type Financial struct {
	CaseID        string
	Profit        *float64
	Reimbursement float64
	ORTimeCost    float64
}

// Flag records one delay/issue event raised against a case.
type Flag struct {
	CaseID       string
	FlagType     string
	Severity     string
	AttributedTo string
}

// Duration returns the case duration in minutes (patient-in to patient-out).
// The second return is false when either timestamp is missing or the
// computed duration is not positive.
func (c *Case) Duration() (float64, bool) {
	if c.PatientInAt == nil || c.PatientOutAt == nil {
		return 0, false
	}
	minutes := c.PatientOutAt.Sub(*c.PatientInAt).Minutes()
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

// PrepToIncisionGap returns the minutes between prep/drape completion and
// incision. The second return is false when either timestamp is missing or
// the gap is negative.
func (c *Case) PrepToIncisionGap() (float64, bool) {
	if c.PrepCompleteAt == nil || c.IncisionAt == nil {
		return 0, false
	}
	minutes := c.IncisionAt.Sub(*c.PrepCompleteAt).Minutes()
	if minutes < 0 {
		return 0, false
	}
	return minutes, true
}

// StartTime returns the timestamp for the configured start milestone, or nil
// when it was not captured.
func (c *Case) StartTime(milestone Milestone) *time.Time {
	if milestone == MilestoneIncision {
		return c.IncisionAt
	}
	return c.PatientInAt
}

// FinancialsByCase indexes financial records by case id. When duplicates
// exist the first record wins.
func FinancialsByCase(financials []Financial) map[string]*Financial {
	indexed := make(map[string]*Financial, len(financials))
	for i := range financials {
		f := &financials[i]
		if _, present := indexed[f.CaseID]; !present {
			indexed[f.CaseID] = f
		}
	}
	return indexed
}

// DelayFlaggedCases returns the set of case ids carrying at least one
// "delay" flag.
func DelayFlaggedCases(flags []Flag) map[string]bool {
	flagged := make(map[string]bool)
	for _, f := range flags {
		if f.FlagType == FlagTypeDelay {
			flagged[f.CaseID] = true
		}
	}
	return flagged
}

// MPM returns the margin per OR minute for a case given its financial
// record: profit divided by duration. The second return is false when the
// financial record or profit is missing or the duration is unmeasurable.
func MPM(c *Case, f *Financial) (float64, bool) {
	if f == nil || f.Profit == nil {
		return 0, false
	}
	duration, valid := c.Duration()
	if !valid {
		return 0, false
	}
	return *f.Profit / duration, true
}
