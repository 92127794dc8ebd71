package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbithealth/orbit-scorecard/internal/config"
	"github.com/orbithealth/orbit-scorecard/internal/plan"
	"github.com/orbithealth/orbit-scorecard/internal/scorecard"
	"github.com/orbithealth/orbit-scorecard/pkg/adapters"
	"github.com/orbithealth/orbit-scorecard/pkg/constants"
	"github.com/orbithealth/orbit-scorecard/pkg/output"
	"github.com/orbithealth/orbit-scorecard/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	inputLocation := flag.String("input", "", "path to the pre-fetched records payload (JSON)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	withPlans := flag.Bool("plan", false, "generate an improvement plan per scorecard")
	withDiagnostics := flag.Bool("diagnostics", false, "include per-pillar diagnostics in the output")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *inputLocation == "" {
		logger.Fatal("no records payload given; use -input",
			zap.String("op", "main"),
		)
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate scoring settings and display any warnings
	warnings := validation.ValidateSettings(conf.Scoring)
	for _, warning := range warnings {
		logger.Warn("Settings warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Load and decode the pre-fetched records payload.
	data, err := os.ReadFile(*inputLocation)
	if err != nil {
		logger.Fatal("failed to read records payload",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	payload, err := adapters.ParsePayload(data)
	if err != nil {
		logger.Fatal("failed to decode records payload",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	input, err := payload.ToInput(conf.Scoring, conf.Timezone, *withDiagnostics || *withPlans)
	if err != nil {
		logger.Fatal("failed to prepare scoring input",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the scoring pipeline.
	cards, err := scorecard.BuildScorecards(logger, input)
	if err != nil {
		logger.Fatal("failed to compute scorecards",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Generate improvement plans on demand.
	var plans []*plan.Plan
	if *withPlans {
		generator := plan.NewGenerator(logger, plan.Config{
			ORCostPerMinute:      conf.Plan.ORCostPerMinute,
			AnnualCaseMultiplier: conf.Plan.AnnualCaseMultiplier,
			ImprovementThreshold: conf.Plan.ImprovementThreshold,
		})
		for _, card := range cards {
			surgeonPlan, planErr := generator.Generate(card)
			if planErr != nil {
				logger.Fatal("failed to generate improvement plan",
					zap.String("op", "main"),
					zap.Error(planErr),
				)
			}
			plans = append(plans, surgeonPlan)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(cards)
		if *withPlans {
			output.PrettyPlans(plans)
		}
	case constants.OutputFormatCSV:
		output.CsvFormat(cards)
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(output.Report{Scorecards: cards, Plans: plans}); err != nil {
			logger.Fatal("failed to encode report",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
