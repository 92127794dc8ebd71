// Package constants provides shared constants for the orbit-scorecard engine.
package constants

// ScheduledDateLayout is the format expected for scheduled case dates.
const ScheduledDateLayout = "2006-01-02"

// Scoring thresholds
const (
	// MinCaseThreshold is the minimum number of cases a surgeon needs in the
	// scoring period to receive a scorecard at all.
	MinCaseThreshold = 15

	// MinPillarScore is the lowest value any pillar score may take.
	MinPillarScore = 10

	// MaxPillarScore is the highest value any pillar score may take.
	MaxPillarScore = 100

	// NeutralScore is returned whenever there is not enough data to score.
	NeutralScore = 50

	// MinGapCases is the minimum number of scoreable prep-to-incision gaps
	// required before the availability gap sub-metric contributes.
	MinGapCases = 3
)

// MAD scoring constants
const (
	// MADBand is the number of effective MADs between the cohort median and
	// the score extremes; 1 MAD moves the score by 50/MADBand points.
	MADBand = 3.0

	// MinMADPercent floors the effective spread at this fraction of the
	// cohort median so tightly clustered cohorts do not amplify noise.
	MinMADPercent = 0.05

	// MinAbsoluteMADCV is the absolute spread floor for coefficient-of-
	// variation cohorts, where a percentage of the median is too small to
	// matter.
	MinAbsoluteMADCV = 0.01
)

// Pillar weights for the composite score. They must sum to 1.0.
const (
	WeightProfitability  = 0.30
	WeightConsistency    = 0.25
	WeightSchedAdherence = 0.25
	WeightAvailability   = 0.20
)

// Grade thresholds (inclusive lower bounds on the composite).
const (
	GradeAThreshold = 80
	GradeBThreshold = 65
	GradeCThreshold = 50
)

// Availability constants
const (
	// DelayRateMultiplier converts a delay-rate percentage into score points.
	DelayRateMultiplier = 2.0

	// GapScoreWeight is the share of the availability pillar carried by the
	// prep-to-incision gap sub-metric; the delay-rate sub-metric carries the
	// remainder.
	GapScoreWeight = 0.5
)

// Improvement plan defaults
const (
	// DefaultORCostPerMinute is the assumed fully loaded OR cost in dollars
	// per minute when the caller does not supply one.
	DefaultORCostPerMinute = 60.0

	// DefaultAnnualCaseMultiplier annualizes a period's case count; the
	// default assumes quarterly scoring periods.
	DefaultAnnualCaseMultiplier = 4.0

	// DefaultImprovementThreshold is the pillar score below which a
	// recommendation is generated.
	DefaultImprovementThreshold = 65
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)
