package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yacobolo/cssmod"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version     string           `json:"version"`
	Timestamp   string           `json:"timestamp"`
	Summary     JSONSummary      `json:"summary"`
	Files       []JSONFile       `json:"files"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Manifest    string           `json:"manifest,omitempty"`
}

// JSONSummary contains high-level build counts
type JSONSummary struct {
	FilesDiscovered    int   `json:"files_discovered"`
	FilesScanned       int   `json:"files_scanned"`
	FilesSkipped       int   `json:"files_skipped"`
	FilesBuilt         int   `json:"files_built"`
	FilesCached        int   `json:"files_cached"`
	FilesFailed        int   `json:"files_failed"`
	ClassesScoped      int   `json:"classes_scoped"`
	UtilitiesGenerated int   `json:"utilities_generated"`
	DurationMs         int64 `json:"duration_ms"`
}

// JSONFile describes one built file
type JSONFile struct {
	Source    string `json:"source"`
	Output    string `json:"output,omitempty"`
	Classes   int    `json:"classes"`
	Keyframes int    `json:"keyframes"`
	Variables int    `json:"variables"`
	Utilities int    `json:"utilities"`
	Cached    bool   `json:"cached"`
}

// JSONDiagnostic represents a single failed file
type JSONDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Stage    string `json:"stage"`
	Source   string `json:"source,omitempty"` // Optional source line
}

// WriteJSON writes the build result as JSON
func WriteJSON(w io.Writer, result *cssmod.BuildResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSONOutput(result))
}

// buildJSONOutput converts BuildResult to JSONOutput
func buildJSONOutput(result *cssmod.BuildResult) JSONOutput {
	files := make([]JSONFile, len(result.Files))
	for i, fr := range result.Files {
		files[i] = JSONFile{
			Source:    fr.RelPath,
			Output:    fr.OutputPath,
			Classes:   fr.Modules.Classes.Len(),
			Keyframes: fr.Modules.Keyframes.Len(),
			Variables: fr.Modules.Variables.Len(),
			Utilities: fr.Modules.Utilities.Len(),
			Cached:    fr.Cached,
		}
	}

	diagnostics := make([]JSONDiagnostic, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		source := ""
		if len(d.SourceLines) > 0 {
			source = d.SourceLines[0]
		}
		diagnostics[i] = JSONDiagnostic{
			File:     d.Pos.Filename,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
			Severity: d.Severity,
			Message:  d.Text,
			Stage:    d.Stage,
			Source:   source,
		}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: time.Now().Format(time.RFC3339),
		Summary: JSONSummary{
			FilesDiscovered:    result.FilesDiscovered,
			FilesScanned:       result.FilesScanned,
			FilesSkipped:       result.FilesSkipped,
			FilesBuilt:         len(result.Files),
			FilesCached:        result.FilesCached,
			FilesFailed:        len(result.Diagnostics),
			ClassesScoped:      result.ClassesScoped,
			UtilitiesGenerated: result.UtilitiesGenerated,
			DurationMs:         result.Duration.Milliseconds(),
		},
		Files:       files,
		Diagnostics: diagnostics,
		Manifest:    result.ManifestPath,
	}
}
