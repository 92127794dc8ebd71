// Package output provides utilities for formatting and displaying scoring
// results.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/orbithealth/orbit-scorecard/internal/plan"
	"github.com/orbithealth/orbit-scorecard/internal/scorecard"
	"github.com/orbithealth/orbit-scorecard/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report pairs the scorecards with their improvement plans for JSON output.
type Report struct {
	Scorecards []scorecard.Scorecard `json:"scorecards"`
	Plans      []*plan.Plan          `json:"plans,omitempty"`
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(cards []scorecard.Scorecard) {
	p := message.NewPrinter(language.English)
	fmt.Printf("Surgeon                    | Cases | Prof | Cons | Adhr | Avail | Composite | Grade | Trend\n")
	fmt.Printf("_______                    | _____ | ____ | ____ | ____ | _____ | _________ | _____ | _____\n")
	for _, card := range cards {
		name := card.SurgeonName
		if name == "" {
			name = card.SurgeonID
		}
		flip := ""
		if card.FlipRooms {
			flip = " (flip)"
		}
		_, _ = p.Printf("%-26s | %5d | %4d | %4d | %4d | %5d | %9d | %s (%s) | %s\n",
			name+flip, card.CaseCount,
			card.Pillars.Profitability, card.Pillars.Consistency,
			card.Pillars.SchedAdherence, card.Pillars.Availability,
			card.Composite, card.Grade.Letter, card.Grade.Label, card.Trend)
	}
}

// PrettyPlans outputs improvement plans in a human-readable layout.
func PrettyPlans(plans []*plan.Plan) {
	for _, p := range plans {
		if p == nil {
			continue
		}
		name := p.SurgeonName
		if name == "" {
			name = p.SurgeonID
		}
		fmt.Printf("\n--- Improvement plan for %s ---\n", name)
		fmt.Printf("Composite %d -> projected %d if all targets are reached\n", p.CurrentComposite, p.ProjectedComposite)
		for _, strength := range p.Strengths {
			fmt.Printf("  + %s\n", strength)
		}
		for _, rec := range p.Recommendations {
			fmt.Printf("  %d. %s: %d -> %d (composite +%d)\n",
				rec.Priority, rec.PillarLabel, rec.CurrentScore, rec.TargetScore, rec.CompositeImpact)
			fmt.Printf("     %s\n", rec.Insight)
			for _, action := range rec.Actions {
				fmt.Printf("     - %s\n", action)
			}
			fmt.Printf("     Projected impact: %s / %s annually\n",
				format.Hours(rec.AnnualHours), format.Currency(rec.AnnualDollars))
		}
		if len(p.Recommendations) > 0 {
			fmt.Printf("  Total projected impact: %s / %s annually\n",
				format.Hours(p.TotalAnnualHours), format.Currency(p.TotalAnnualDollars))
		}
	}
}

// CsvFormat outputs scorecards in comma-separated value format.
func CsvFormat(cards []scorecard.Scorecard) {
	fmt.Printf(`"surgeonId","surgeonName","cases","procedureMix","flipRooms","profitability","consistency","schedAdherence","availability","composite","grade","trend"`)
	fmt.Printf("\n")
	for _, card := range cards {
		fmt.Printf(`"%s","%s","%d","%s","%t","%d","%d","%d","%d","%d","%s","%s"`,
			card.SurgeonID, card.SurgeonName, card.CaseCount, mixString(card.ProcedureMix),
			card.FlipRooms,
			card.Pillars.Profitability, card.Pillars.Consistency,
			card.Pillars.SchedAdherence, card.Pillars.Availability,
			card.Composite, card.Grade.Letter, card.Trend)
		fmt.Printf("\n")
	}
}

// JSONFormat outputs the full report as indented JSON.
func JSONFormat(report Report) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func mixString(mix map[string]int) string {
	names := make([]string, 0, len(mix))
	for name := range mix {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, mix[name]))
	}
	return strings.Join(parts, ";")
}
