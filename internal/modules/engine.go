package modules

import (
	"context"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/scope"
)

// UnknownFile replaces an empty file path in results and reports.
const UnknownFile = "unknown"

// Result holds the rename maps and utility table produced for one file.
// Maps keep insertion order and marshal to ordered JSON objects.
type Result struct {
	FilePath  string                                 `json:"-"`
	Classes   *orderedmap.OrderedMap[string, string] `json:"classes"`
	Keyframes *orderedmap.OrderedMap[string, string] `json:"keyframes"`
	Variables *orderedmap.OrderedMap[string, string] `json:"variables"`
	Utilities *orderedmap.OrderedMap[string, string] `json:"utilities"`
}

func newResult(filePath string) *Result {
	return &Result{
		FilePath:  filePath,
		Classes:   orderedmap.New[string, string](),
		Keyframes: orderedmap.New[string, string](),
		Variables: orderedmap.New[string, string](),
		Utilities: orderedmap.New[string, string](),
	}
}

// Engine rewrites parsed stylesheets. It holds no per-file state, so one
// Engine can process many files concurrently.
type Engine struct {
	opts *Resolved
	log  *zap.Logger
}

// NewEngine creates an engine for resolved options. A nil logger disables logging.
func NewEngine(opts *Resolved, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{opts: opts, log: log.Named("engine")}
}

// Process rewrites root in place and reports the resulting maps.
func (e *Engine) Process(ctx context.Context, root *ast.Root, filePath string) (*Result, error) {
	if filePath == "" {
		filePath = UnknownFile
	}
	if !e.opts.Enabled() {
		return newResult(filePath), nil
	}

	log := e.log.With(zap.String("file", filePath))
	suffix := scope.Suffix(e.opts.ScopeLength, root.String())
	c := newFileContext(e.opts, log, filePath, suffix)

	ast.WalkRules(root, c.rewriteRule)
	ast.WalkAtRules(root, c.rewriteAtRule)

	if e.opts.Utility != nil {
		c.planUtilities()
	}

	result := &Result{
		FilePath:  filePath,
		Classes:   c.classes,
		Keyframes: c.keyframes,
		Variables: c.variables,
		Utilities: orderedmap.New[string, string](),
	}
	for pair := c.utilities.Oldest(); pair != nil; pair = pair.Next() {
		result.Utilities.Set(pair.Key, ast.String(pair.Value))
	}

	log.Debug("Processed stylesheet",
		zap.String("suffix", suffix),
		zap.Int("classes", result.Classes.Len()),
		zap.Int("keyframes", result.Keyframes.Len()),
		zap.Int("variables", result.Variables.Len()),
		zap.Int("utilities", result.Utilities.Len()))

	if utility := e.opts.Utility; utility != nil && utility.Output {
		for pair := c.utilities.Oldest(); pair != nil; pair = pair.Next() {
			root.Append(pair.Value)
		}
	}

	if err := e.Report(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Report hands the utility table and the class map of result to the
// configured callbacks. Process calls it once per file; callers holding a
// previously computed Result call it to replay the reports.
func (e *Engine) Report(ctx context.Context, result *Result) error {
	if utility := e.opts.Utility; utility != nil && utility.Report != nil {
		if err := utility.Report(ctx, result.FilePath, ToMap(result.Utilities)); err != nil {
			return fmt.Errorf("report utilities for %s: %w", result.FilePath, err)
		}
	}

	if (e.opts.Modules || e.opts.Utility != nil) && e.opts.Report != nil {
		if err := e.opts.Report(ctx, result.FilePath, ToMap(result.Classes)); err != nil {
			return fmt.Errorf("report classes for %s: %w", result.FilePath, err)
		}
	}
	return nil
}

// ToMap copies an ordered map into a plain map.
func ToMap(m *orderedmap.OrderedMap[string, string]) map[string]string {
	out := make(map[string]string, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}
