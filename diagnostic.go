package cssmod

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yacobolo/cssmod/internal/ast"
)

// Diagnostic describes a file that could not be built
type Diagnostic struct {
	Stage       string        `json:"stage"`                  // "read", "parse", "transform", "write"
	Text        string        `json:"text"`                   // "unknown word \"color red\""
	Severity    string        `json:"severity"`               // "error", "warning"
	Pos         DiagnosticPos `json:"pos"`                    // File location
	SourceLines []string      `json:"source_lines,omitempty"` // Offending line, if positioned
}

// DiagnosticPos specifies where a diagnostic applies
type DiagnosticPos struct {
	Filename string `json:"filename"`
	Line     int    `json:"line,omitempty"`   // 0 when the failure is not tied to a position
	Column   int    `json:"column,omitempty"` // 1-based
}

// Severity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Build stages a file can fail in
const (
	StageRead      = "read"
	StageParse     = "parse"
	StageTransform = "transform"
	StageWrite     = "write"
)

// FileError wraps a failure while building one file
type FileError struct {
	Path  string
	Stage string
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewDiagnostic converts a build error into a diagnostic. Syntax errors keep
// their source position.
func NewDiagnostic(path string, err error) Diagnostic {
	d := Diagnostic{
		Stage:    StageTransform,
		Text:     err.Error(),
		Severity: SeverityError,
		Pos:      DiagnosticPos{Filename: path},
	}

	var fileErr *FileError
	if errors.As(err, &fileErr) {
		d.Stage = fileErr.Stage
		d.Text = fileErr.Err.Error()
	}

	var syntaxErr *ast.SyntaxError
	if errors.As(err, &syntaxErr) {
		d.Stage = StageParse
		d.Text = syntaxErr.Msg
		d.Pos.Line = syntaxErr.Line
		d.Pos.Column = syntaxErr.Column
	}

	return d
}

// sourceLine returns line n (1-based) of the file at path
func sourceLine(path string, n int) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil || n <= 0 {
		return "", false
	}
	lines := strings.Split(string(data), "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// SortDiagnostics orders diagnostics by file, then line, then column
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Pos.Filename != diags[j].Pos.Filename {
			return diags[i].Pos.Filename < diags[j].Pos.Filename
		}
		if diags[i].Pos.Line != diags[j].Pos.Line {
			return diags[i].Pos.Line < diags[j].Pos.Line
		}
		return diags[i].Pos.Column < diags[j].Pos.Column
	})
}
