package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cssmod",
	Short: "CSS modules scoping and utility class extraction",
	Long: `Rewrite CSS files so class names, keyframes and :root variables are scoped per file,
and optionally decompose single-class rules into shared atomic utility classes.
A JSON manifest maps every original class to the names to use in markup.`,
	// Default behavior: run build when no subcommand is given.
	// We must call loadConfig here because PreRunE of buildCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runBuild(cmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.Bool("quiet", false, "Suppress all output except failures")
	pf.Bool("color", false, "Force color output")
	pf.String("config", ".cssmod.yaml", "Config file path")
	pf.String("mode", "", "Build mode: development|production (picks the default utility naming)")

	// Build flags are shared by the root command, build and watch
	pf.String("source", "web/styles", "Source CSS directory")
	pf.String("output-dir", "dist/styles", "Output directory for transformed CSS and the manifest")
	pf.StringSlice("include", nil, "Glob patterns for CSS files to include (default **/*.module.css)")
	pf.StringSlice("exclude", nil, "Glob patterns, relative to --source, for files to skip")
	pf.String("manifest", "modules.json", "Manifest file name inside --output-dir")
	pf.Int("concurrency", 0, "Files transformed at once (0 = number of CPUs)")
	pf.Int("cache-size", 256, "Transformed files kept in memory")
	pf.Bool("dry-run", false, "Transform without writing any file")
	pf.String("output-format", "text", "Output format: text|full|json")
	pf.Bool("print-lines", false, "Print offending source lines under diagnostics")

	// Transformation flags
	pf.Bool("modules", true, "Scope class names and keyframes")
	pf.Int("scope-length", 8, "Length of the per-file scope suffix")
	pf.String("css-variables", "", "Scope :root custom properties: true, false or a key seeding the suffix")
	pf.Bool("utility", false, "Extract single-class rules into atomic utility classes")
	pf.String("utility-mode", "", "Utility naming: readable|semireadable|encoded (default from --mode)")
	pf.Bool("media", false, "Extract declarations nested in @media blocks")
	pf.Bool("container", false, "Extract declarations nested in @container blocks")
	pf.Bool("utility-output", true, "Append utility rules to the transformed CSS")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
