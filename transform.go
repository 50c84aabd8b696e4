package cssmod

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/modules"
)

// TransformResult is a transformed stylesheet with its rename maps
type TransformResult struct {
	CSS     string
	Modules *modules.Result
}

// Transform parses src, applies opts and prints the rewritten stylesheet.
// Parse failures are returned as *ast.SyntaxError.
func Transform(ctx context.Context, src []byte, filePath string, opts modules.Options, log *zap.Logger) (*TransformResult, error) {
	resolved, err := modules.Resolve(opts)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return transform(ctx, ast.NewParser(log), modules.NewEngine(resolved, log), src, filePath)
}

func transform(ctx context.Context, parser *ast.Parser, engine *modules.Engine, src []byte, filePath string) (*TransformResult, error) {
	root, err := parser.Parse(src, filePath)
	if err != nil {
		return nil, err
	}

	result, err := engine.Process(ctx, root, filePath)
	if err != nil {
		return nil, err
	}

	return &TransformResult{CSS: root.String(), Modules: result}, nil
}
