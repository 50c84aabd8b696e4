package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/yacobolo/cssmod"
	"github.com/yacobolo/cssmod/internal/report"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Build, then rebuild CSS module files as they change",
	Long: `Run a full build, then watch --source and rebuild each file that is
created or modified. Removed files are dropped from the manifest.
Stops on Ctrl+C.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", cssmod.DefaultDebounce, "Wait this long after the last change before rebuilding")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	builder, log, err := newBuilder()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	result, buildErr := builder.Build(ctx)
	if result == nil {
		return fmt.Errorf("build failed: %w", buildErr)
	}
	if err := writeResult(cmd, result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, printLines := buildReportOptions()
	reporter := report.NewReporter(out, reportOptions(printLines))
	quiet := getBoolWithFallback("quiet", "quiet", false)

	// OnBuild runs on debounce timers, one goroutine per file
	var mu sync.Mutex
	watcher, err := cssmod.NewWatcher(builder, cssmod.WatchOptions{
		Debounce: getDurationWithFallback("debounce", "watch.debounce", cssmod.DefaultDebounce),
		OnBuild: func(path string, fr *cssmod.FileResult, err error) {
			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				reporter.PrintDiagnostics([]cssmod.Diagnostic{cssmod.NewDiagnostic(path, err)})
			case quiet:
			case fr != nil:
				reporter.PrintFiles([]*cssmod.FileResult{fr})
			default:
				fmt.Fprintf(out, "%s %s\n", report.RenderStyle(report.StyleGray, "removed", reporter.UseColors()), cssmod.GetRelativePath(path))
			}
		},
	}, log)
	if err != nil {
		return err
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	if !quiet {
		fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", builder.Config().SourceDir)
	}
	<-ctx.Done()
	return nil
}
