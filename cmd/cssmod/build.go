package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/cssmod"
	"github.com/yacobolo/cssmod/internal/report"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Scope CSS module files and write the manifest",
	Long: `Transform every matching CSS file under --source into --output-dir,
keeping relative paths, and write a JSON manifest of class names.
Files that fail are reported with their position; the others are still written.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	builder, log, err := newBuilder()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	result, buildErr := builder.Build(cmd.Context())
	if result == nil {
		return fmt.Errorf("build failed: %w", buildErr)
	}

	if err := writeResult(cmd, result); err != nil {
		return err
	}
	if buildErr != nil {
		log.Debug("Build finished with failures", zap.Error(buildErr))
		return &exitError{code: 1}
	}
	return nil
}

// newBuilder creates the builder and logger from the loaded configuration
func newBuilder() (*cssmod.Builder, *zap.Logger, error) {
	config, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	log := newLogger(
		logLevel(getBoolWithFallback("verbose", "verbose", false), getBoolWithFallback("quiet", "quiet", false)),
		report.ShouldUseColors(getBoolWithFallback("color", "color", false)),
	)

	builder, err := cssmod.NewBuilder(config, log)
	if err != nil {
		return nil, nil, err
	}
	return builder, log, nil
}

// writeResult prints result in the configured output format
func writeResult(cmd *cobra.Command, result *cssmod.BuildResult) error {
	formatFlag, printLines := buildReportOptions()
	format := report.DetermineOutputFormat(formatFlag, getBoolWithFallback("quiet", "quiet", false))

	return report.WriteOutput(cmd.OutOrStdout(), result, format, reportOptions(printLines))
}

func reportOptions(printLines bool) report.Options {
	return report.Options{
		UseColors:      getBoolWithFallback("color", "color", false),
		PrintLines:     printLines,
		PrintStageName: true,
	}
}
