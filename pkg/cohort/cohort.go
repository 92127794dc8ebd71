// Package cohort groups case records into the comparison populations the
// relative scoring pillars need: a surgeon's per-procedure cohorts and the
// facility-wide peer populations for each procedure type.
package cohort

import (
	"github.com/orbithealth/orbit-scorecard/internal/records"
	"github.com/orbithealth/orbit-scorecard/pkg/stats"
)

// ProcedureGroup holds one surgeon's cases for a single procedure type.
type ProcedureGroup struct {
	ProcedureTypeID   string
	ProcedureTypeName string
	Cases             []records.Case
}

// GroupByProcedure partitions a surgeon's cases by procedure type id,
// preserving first-appearance order.
func GroupByProcedure(cases []records.Case) []ProcedureGroup {
	index := make(map[string]int)
	var groups []ProcedureGroup
	for _, c := range cases {
		i, present := index[c.ProcedureTypeID]
		if !present {
			i = len(groups)
			index[c.ProcedureTypeID] = i
			groups = append(groups, ProcedureGroup{
				ProcedureTypeID:   c.ProcedureTypeID,
				ProcedureTypeName: c.ProcedureTypeName,
			})
		}
		groups[i].Cases = append(groups[i].Cases, c)
	}
	return groups
}

// GroupBySurgeon partitions cases by surgeon id, preserving first-appearance
// order of surgeons.
func GroupBySurgeon(cases []records.Case) ([]string, map[string][]records.Case) {
	var order []string
	grouped := make(map[string][]records.Case)
	for _, c := range cases {
		if _, present := grouped[c.SurgeonID]; !present {
			order = append(order, c.SurgeonID)
		}
		grouped[c.SurgeonID] = append(grouped[c.SurgeonID], c)
	}
	return order, grouped
}

// DetectFlipRooms reports whether the surgeon ran more than one room on any
// single scheduled date.
func DetectFlipRooms(cases []records.Case) bool {
	roomsByDate := make(map[string]map[string]bool)
	for _, c := range cases {
		if c.ScheduledDate == "" || c.RoomID == "" {
			continue
		}
		rooms := roomsByDate[c.ScheduledDate]
		if rooms == nil {
			rooms = make(map[string]bool)
			roomsByDate[c.ScheduledDate] = rooms
		}
		rooms[c.RoomID] = true
		if len(rooms) > 1 {
			return true
		}
	}
	return false
}

// PeerMedianMPMs scans all facility cases for one procedure type, groups
// them by surgeon, keeps surgeons with at least minCases valid
// margin-per-minute data points, and reduces each to their median MPM.
// The surgeon being scored is not excluded from the result; self-inclusion
// is negligible at typical cohort sizes and is preserved as-is.
func PeerMedianMPMs(allCases []records.Case, financials map[string]*records.Financial, procedureTypeID string, minCases int) []float64 {
	bySurgeon := collectProcedureValues(allCases, procedureTypeID, func(c *records.Case) (float64, bool) {
		return records.MPM(c, financials[c.ID])
	})
	var medians []float64
	for _, surgeonID := range bySurgeon.order {
		values := bySurgeon.values[surgeonID]
		if len(values) >= minCases {
			medians = append(medians, stats.Median(values))
		}
	}
	return medians
}

// PeerCVs scans all facility cases for one procedure type, groups them by
// surgeon, keeps surgeons with at least minCases measurable durations, and
// reduces each to the coefficient of variation of their case durations.
// As with PeerMedianMPMs, the scored surgeon stays in their own peer
// population.
func PeerCVs(allCases []records.Case, procedureTypeID string, minCases int) []float64 {
	bySurgeon := collectProcedureValues(allCases, procedureTypeID, func(c *records.Case) (float64, bool) {
		return c.Duration()
	})
	var cvs []float64
	for _, surgeonID := range bySurgeon.order {
		values := bySurgeon.values[surgeonID]
		if len(values) >= minCases {
			cvs = append(cvs, stats.CoefficientOfVariation(values))
		}
	}
	return cvs
}

type surgeonValues struct {
	order  []string
	values map[string][]float64
}

func collectProcedureValues(allCases []records.Case, procedureTypeID string, extract func(*records.Case) (float64, bool)) surgeonValues {
	collected := surgeonValues{values: make(map[string][]float64)}
	for i := range allCases {
		c := &allCases[i]
		if c.ProcedureTypeID != procedureTypeID {
			continue
		}
		value, ok := extract(c)
		if !ok {
			continue
		}
		if _, present := collected.values[c.SurgeonID]; !present {
			collected.order = append(collected.order, c.SurgeonID)
		}
		collected.values[c.SurgeonID] = append(collected.values[c.SurgeonID], value)
	}
	return collected
}
