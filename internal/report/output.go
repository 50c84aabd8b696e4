package report

import (
	"io"

	"github.com/yacobolo/cssmod"
)

// OutputFormat selects how build results are written
type OutputFormat string

// Output formats
const (
	OutputText  OutputFormat = "text"  // diagnostics and summary
	OutputFull  OutputFormat = "full"  // diagnostics, every built file and summary
	OutputJSON  OutputFormat = "json"  // machine-readable result
	OutputQuiet OutputFormat = "quiet" // diagnostics only
)

// DetermineOutputFormat selects the output format based on flags
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	// Explicit -quiet flag wins
	if quiet {
		return OutputQuiet
	}

	switch formatFlag {
	case "text":
		return OutputText
	case "full":
		return OutputFull
	case "json":
		return OutputJSON
	}
	return OutputText
}

// WriteOutput writes the build result in the specified format
func WriteOutput(w io.Writer, result *cssmod.BuildResult, format OutputFormat, opts Options) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, result)

	case OutputQuiet:
		NewReporter(w, opts).PrintDiagnostics(result.Diagnostics)

	case OutputFull:
		opts.PrintFiles = true
		reporter := NewReporter(w, opts)
		reporter.PrintDiagnostics(result.Diagnostics)
		reporter.PrintSummary(result)

	default:
		reporter := NewReporter(w, opts)
		reporter.PrintDiagnostics(result.Diagnostics)
		reporter.PrintSummary(result)
	}
	return nil
}
