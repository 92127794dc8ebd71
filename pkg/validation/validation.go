// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/orbithealth/orbit-scorecard/internal/config"
	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s, or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateSettings performs general validation of the scoring settings and
// returns warnings. Suspect settings never abort a run; the engine degrades
// gracefully, but the caller should know.
func ValidateSettings(s config.Settings) []string {
	var warnings []string

	switch records.Milestone(s.StartMilestone) {
	case records.MilestonePatientIn, records.MilestoneIncision:
	default:
		warnings = append(warnings, fmt.Sprintf(
			"unknown start milestone %q; falling back to %q", s.StartMilestone, records.MilestonePatientIn))
	}

	if s.StartTimeFloorMinutes <= 0 {
		warnings = append(warnings, "startTimeFloorMinutes should be positive; any late start will score zero")
	}
	if s.StartTimeGraceMinutes < 0 {
		warnings = append(warnings, "startTimeGraceMinutes is negative; on-time starts will be penalized")
	}
	if s.WaitingOnSurgeonFloorMinutes <= 0 {
		warnings = append(warnings, "waitingOnSurgeonFloorMinutes should be positive; any gap past grace will score zero")
	}
	if s.WaitingOnSurgeonMinutes < 0 {
		warnings = append(warnings, "waitingOnSurgeonMinutes is negative; normal prep gaps will be penalized")
	}
	if s.MinProcedureCases < 1 {
		warnings = append(warnings, "minProcedureCases below 1; single-case cohorts will be benchmarked against peers")
	}

	return warnings
}
