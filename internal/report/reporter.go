// Package report prints build results for humans and machines.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/yacobolo/cssmod"
)

// Options configures a Reporter
type Options struct {
	UseColors      bool // force colors on
	PrintFiles     bool // list every built file
	PrintLines     bool // print source lines with a caret under diagnostics
	PrintStageName bool // append "(parse)" and friends to diagnostics
}

// Reporter handles formatting and outputting build results
type Reporter struct {
	w              io.Writer
	useColors      bool
	printFiles     bool
	printLines     bool
	printStageName bool
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, opts Options) *Reporter {
	return &Reporter{
		w:              w,
		useColors:      ShouldUseColors(opts.UseColors),
		printFiles:     opts.PrintFiles,
		printLines:     opts.PrintLines,
		printStageName: opts.PrintStageName,
	}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}

	// Respect https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// PrintDiagnostics outputs diagnostics as file:line:col: message
func (r *Reporter) PrintDiagnostics(diags []cssmod.Diagnostic) {
	sorted := append([]cssmod.Diagnostic(nil), diags...)
	cssmod.SortDiagnostics(sorted)

	for _, d := range sorted {
		r.printDiagnostic(d)
	}
}

func (r *Reporter) printDiagnostic(d cssmod.Diagnostic) {
	location := d.Pos.Filename + ":"
	if d.Pos.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d:", d.Pos.Filename, d.Pos.Line, d.Pos.Column)
	}

	stageSuffix := ""
	if r.printStageName {
		stageSuffix = fmt.Sprintf(" (%s)", d.Stage)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		RenderStyle(StyleCyan, location, r.useColors),
		d.Text,
		RenderStyle(StyleGray, stageSuffix, r.useColors))

	if r.printLines && len(d.SourceLines) > 0 {
		for _, line := range d.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}
		caret := r.buildCaretIndicator(d.SourceLines[0], d.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator creates the "^" indicator aligned with the column,
// keeping tabs from the source line so the caret lines up.
func (r *Reporter) buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// PrintFiles lists built files with their class and utility counts
func (r *Reporter) PrintFiles(files []*cssmod.FileResult) {
	for _, fr := range files {
		target := fr.OutputPath
		if target == "" {
			target = "(dry run)"
		}

		note := ""
		if fr.Cached {
			note = RenderStyle(StyleGray, " cached", r.useColors)
		}

		fmt.Fprintf(r.w, "%s %s -> %s (%s, %s)%s\n",
			RenderStyle(StyleGreen, "✓", r.useColors),
			fr.RelPath,
			target,
			pluralizeCount(fr.Modules.Classes.Len(), "class", "classes"),
			pluralizeCount(fr.Modules.Utilities.Len(), "utility", "utilities"),
			note)
	}
}

// PrintSummary outputs the build summary
func (r *Reporter) PrintSummary(result *cssmod.BuildResult) {
	if r.printFiles {
		r.PrintFiles(result.Files)
	}

	failed := len(result.Diagnostics)
	built := len(result.Files)

	if failed > 0 {
		if built > 0 || r.printFiles {
			fmt.Fprintln(r.w, "")
		}
		fmt.Fprintln(r.w, RenderStyle(StyleRed,
			fmt.Sprintf("Build failed: %s", pluralizeCount(failed, "file", "files")), r.useColors))
	}

	fmt.Fprintf(r.w, "Built %s (%d cached, %d skipped): %s, %s in %s\n",
		pluralizeCount(built, "file", "files"),
		result.FilesCached,
		result.FilesSkipped,
		pluralizeCount(result.ClassesScoped, "class", "classes"),
		pluralizeCount(result.UtilitiesGenerated, "utility", "utilities"),
		result.Duration.Round(time.Millisecond))

	if result.ManifestPath != "" {
		fmt.Fprintf(r.w, "%s %s\n",
			RenderStyle(StyleGray, "Manifest:", r.useColors),
			result.ManifestPath)
	}

	if failed > 0 && !r.printLines {
		fmt.Fprintln(r.w, RenderStyle(StyleGray, "Hint: Run with --print-lines to see the offending source lines", r.useColors))
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
