// Package adapters converts the wire-format records payload produced by the
// upstream data-fetch layer into the engine's record types. Timestamps are
// parsed leniently: an unparseable or missing timestamp contributes a nil
// field rather than an error, matching the engine's null-filtering rules.
package adapters

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/orbithealth/orbit-scorecard/internal/config"
	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/internal/scorecard"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/datetime"
)

// Period is the scoring date range in YYYY-MM-DD.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CaseRow is one case record on the wire. Timestamps are RFC 3339;
// scheduledStart is an HH:MM facility-local clock value.
type CaseRow struct {
	ID                string `json:"id"`
	SurgeonID         string `json:"surgeonId"`
	SurgeonName       string `json:"surgeonName"`
	ProcedureTypeID   string `json:"procedureTypeId"`
	ProcedureTypeName string `json:"procedureTypeName"`
	RoomID            string `json:"roomId"`
	ScheduledDate     string `json:"scheduledDate"`
	ScheduledStart    string `json:"scheduledStart,omitempty"`
	PatientInAt       string `json:"patientInAt,omitempty"`
	IncisionAt        string `json:"incisionAt,omitempty"`
	PrepCompleteAt    string `json:"prepCompleteAt,omitempty"`
	ClosingAt         string `json:"closingAt,omitempty"`
	PatientOutAt      string `json:"patientOutAt,omitempty"`
}

// FinancialRow is one financial record on the wire. Profit stays a pointer:
// JSON null means missing, 0 is valid break-even data.
type FinancialRow struct {
	CaseID        string   `json:"caseId"`
	Profit        *float64 `json:"profit"`
	Reimbursement float64  `json:"reimbursement"`
	ORTimeCost    float64  `json:"orTimeCost"`
}

// FlagRow is one delay/issue flag on the wire.
type FlagRow struct {
	CaseID       string `json:"caseId"`
	FlagType     string `json:"flagType"`
	Severity     string `json:"severity"`
	AttributedTo string `json:"attributedTo"`
}

// Payload is the full records payload for one scoring run.
type Payload struct {
	Timezone        string         `json:"timezone"`
	Period          Period         `json:"period"`
	Cases           []CaseRow      `json:"cases"`
	Financials      []FinancialRow `json:"financials"`
	Flags           []FlagRow      `json:"flags"`
	PriorCases      []CaseRow      `json:"priorCases,omitempty"`
	PriorFinancials []FinancialRow `json:"priorFinancials,omitempty"`
	PriorFlags      []FlagRow      `json:"priorFlags,omitempty"`
}

// ParsePayload decodes a records payload from JSON.
func ParsePayload(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unable to decode records payload, %s", err)
	}
	return &payload, nil
}

// ToInput converts the payload into a scoring input using the given
// settings. The fallback timezone is used when the payload carries none.
func (p *Payload) ToInput(settings config.Settings, fallbackTimezone string, includeDiagnostics bool) (scorecard.Input, error) {
	timezone := p.Timezone
	if timezone == "" {
		timezone = fallbackTimezone
	}

	periodStart, err := parsePeriodDate(p.Period.Start)
	if err != nil {
		return scorecard.Input{}, fmt.Errorf("invalid period start: %v", err)
	}
	periodEnd, err := parsePeriodDate(p.Period.End)
	if err != nil {
		return scorecard.Input{}, fmt.Errorf("invalid period end: %v", err)
	}

	return scorecard.Input{
		Cases:              CasesFromRows(p.Cases),
		Financials:         FinancialsFromRows(p.Financials),
		Flags:              FlagsFromRows(p.Flags),
		Settings:           settings,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		Timezone:           timezone,
		PriorCases:         CasesFromRows(p.PriorCases),
		PriorFinancials:    FinancialsFromRows(p.PriorFinancials),
		PriorFlags:         FlagsFromRows(p.PriorFlags),
		IncludeDiagnostics: includeDiagnostics,
	}, nil
}

// CasesFromRows converts wire case rows to case records.
func CasesFromRows(rows []CaseRow) []records.Case {
	if len(rows) == 0 {
		return nil
	}
	cases := make([]records.Case, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, records.Case{
			ID:                    row.ID,
			SurgeonID:             row.SurgeonID,
			SurgeonName:           row.SurgeonName,
			ProcedureTypeID:       row.ProcedureTypeID,
			ProcedureTypeName:     row.ProcedureTypeName,
			RoomID:                row.RoomID,
			ScheduledDate:         row.ScheduledDate,
			ScheduledStartMinutes: parseClock(row.ScheduledStart),
			PatientInAt:           parseTimestamp(row.PatientInAt),
			IncisionAt:            parseTimestamp(row.IncisionAt),
			PrepCompleteAt:        parseTimestamp(row.PrepCompleteAt),
			ClosingAt:             parseTimestamp(row.ClosingAt),
			PatientOutAt:          parseTimestamp(row.PatientOutAt),
		})
	}
	return cases
}

// FinancialsFromRows converts wire financial rows to financial records.
func FinancialsFromRows(rows []FinancialRow) []records.Financial {
	if len(rows) == 0 {
		return nil
	}
	financials := make([]records.Financial, 0, len(rows))
	for _, row := range rows {
		financials = append(financials, records.Financial{
			CaseID:        row.CaseID,
			Profit:        row.Profit,
			Reimbursement: row.Reimbursement,
			ORTimeCost:    row.ORTimeCost,
		})
	}
	return financials
}

// FlagsFromRows converts wire flag rows to flag records.
func FlagsFromRows(rows []FlagRow) []records.Flag {
	if len(rows) == 0 {
		return nil
	}
	flags := make([]records.Flag, 0, len(rows))
	for _, row := range rows {
		flags = append(flags, records.Flag{
			CaseID:       row.CaseID,
			FlagType:     row.FlagType,
			Severity:     row.Severity,
			AttributedTo: row.AttributedTo,
		})
	}
	return flags
}

func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

func parseClock(value string) *int {
	if value == "" {
		return nil
	}
	minutes, err := datetime.ParseClockMinutes(value)
	if err != nil {
		return nil
	}
	return &minutes
}

func parsePeriodDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(constants.ScheduledDateLayout, value)
}
