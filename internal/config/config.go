// Package config defines the data structures related to configuration and
// includes functions for loading and defaulting the config.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings defaults, applied wherever the facility settings lookup leaves a
// value unset.
const (
	DefaultStartMilestone               = "patient_in"
	DefaultStartTimeGraceMinutes        = 5.0
	DefaultStartTimeFloorMinutes        = 30.0
	DefaultWaitingOnSurgeonMinutes      = 15.0
	DefaultWaitingOnSurgeonFloorMinutes = 45.0
	DefaultMinProcedureCases            = 5
)

// Settings holds the facility scoring configuration.
type Settings struct {
	// StartMilestone selects which timestamp counts as the actual case
	// start for schedule adherence: "patient_in" or "incision".
	StartMilestone string `yaml:"startMilestone,omitempty"`

	// StartTimeGraceMinutes is forgiven before a late start begins to decay
	// the adherence score; StartTimeFloorMinutes past the grace window the
	// per-case score reaches zero.
	StartTimeGraceMinutes float64 `yaml:"startTimeGraceMinutes,omitempty"`
	StartTimeFloorMinutes float64 `yaml:"startTimeFloorMinutes,omitempty"`

	// WaitingOnSurgeonMinutes and WaitingOnSurgeonFloorMinutes are the
	// grace/floor pair for the prep-to-incision gap sub-metric.
	WaitingOnSurgeonMinutes      float64 `yaml:"waitingOnSurgeonMinutes,omitempty"`
	WaitingOnSurgeonFloorMinutes float64 `yaml:"waitingOnSurgeonFloorMinutes,omitempty"`

	// MinProcedureCases is the minimum number of valid data points a
	// surgeon needs in a procedure cohort before it contributes to the
	// relative pillars.
	MinProcedureCases int `yaml:"minProcedureCases,omitempty"`
}

// PlanConfig holds the improvement plan knobs.
type PlanConfig struct {
	ORCostPerMinute      float64 `yaml:"orCostPerMinute,omitempty"`
	AnnualCaseMultiplier float64 `yaml:"annualCaseMultiplier,omitempty"`
	ImprovementThreshold int     `yaml:"improvementThreshold,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Configuration holds all configuration for orbit-scorecard.
type Configuration struct {
	// Timezone is the fallback facility timezone when the input payload
	// does not carry one.
	Timezone string        `yaml:"timezone,omitempty"`
	Scoring  Settings      `yaml:"scoring,omitempty"`
	Plan     PlanConfig    `yaml:"plan,omitempty"`
	Logging  LoggingConfig `yaml:"logging,omitempty"`
	Output   OutputConfig  `yaml:"output,omitempty"`
}

// DefaultSettings returns the documented facility settings defaults.
func DefaultSettings() Settings {
	return Settings{
		StartMilestone:               DefaultStartMilestone,
		StartTimeGraceMinutes:        DefaultStartTimeGraceMinutes,
		StartTimeFloorMinutes:        DefaultStartTimeFloorMinutes,
		WaitingOnSurgeonMinutes:      DefaultWaitingOnSurgeonMinutes,
		WaitingOnSurgeonFloorMinutes: DefaultWaitingOnSurgeonFloorMinutes,
		MinProcedureCases:            DefaultMinProcedureCases,
	}
}

// ApplyDefaults fills unset settings fields with the documented defaults.
func (s *Settings) ApplyDefaults() {
	if s.StartMilestone == "" {
		s.StartMilestone = DefaultStartMilestone
	}
	if s.StartTimeGraceMinutes == 0 {
		s.StartTimeGraceMinutes = DefaultStartTimeGraceMinutes
	}
	if s.StartTimeFloorMinutes == 0 {
		s.StartTimeFloorMinutes = DefaultStartTimeFloorMinutes
	}
	if s.WaitingOnSurgeonMinutes == 0 {
		s.WaitingOnSurgeonMinutes = DefaultWaitingOnSurgeonMinutes
	}
	if s.WaitingOnSurgeonFloorMinutes == 0 {
		s.WaitingOnSurgeonFloorMinutes = DefaultWaitingOnSurgeonFloorMinutes
	}
	if s.MinProcedureCases == 0 {
		s.MinProcedureCases = DefaultMinProcedureCases
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Scoring.ApplyDefaults()

	return &configuration, nil
}
