package cssmod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/modules"
)

// Builder transforms the stylesheets of a source directory. It is safe for
// concurrent use; report callbacks in Config.Options must be as well.
type Builder struct {
	config Config
	parser *ast.Parser
	engine *modules.Engine
	cache  *fileCache
	log    *zap.Logger

	mu       sync.Mutex
	manifest map[string]*modules.Result // keyed by RelPath
}

// NewBuilder validates config, applies defaults and resolves the transform
// options. A nil logger disables logging.
func NewBuilder(config Config, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("builder")

	if config.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if config.OutputDir == "" && !config.DryRun {
		return nil, fmt.Errorf("output directory is required")
	}
	if len(config.Includes) == 0 {
		config.Includes = []string{DefaultInclude}
	}
	if config.Manifest == "" {
		config.Manifest = DefaultManifest
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.GOMAXPROCS(0)
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}

	resolved, err := modules.Resolve(config.Options)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	cache, err := newFileCache(config.CacheSize, log)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Builder{
		config:   config,
		parser:   ast.NewParser(log),
		engine:   modules.NewEngine(resolved, log),
		cache:    cache,
		log:      log,
		manifest: make(map[string]*modules.Result),
	}, nil
}

// Config returns the configuration with defaults applied.
func (b *Builder) Config() Config {
	return b.config
}

// Build transforms every matching file and writes the manifest. Files that
// fail are reported as diagnostics and the returned error aggregates them;
// the result is still returned in that case.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{}

	// 1. Scan CSS files
	files, stats, err := scanCSSFiles(b.config.SourceDir, b.config.Includes, b.config.Excludes)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	result.FilesDiscovered = stats.FilesDiscovered
	result.FilesScanned = stats.FilesScanned
	result.FilesSkipped = stats.FilesSkipped
	b.log.Debug("Found CSS files",
		zap.Int("files", stats.FilesScanned),
		zap.Int("skipped", stats.FilesSkipped))

	// 2. Transform concurrently
	var (
		mu       sync.Mutex
		failures error
	)
	fileResults := make([]*FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fr, err := b.BuildFile(gctx, file)
			if err != nil {
				diag := NewDiagnostic(file, err)
				if line, ok := sourceLine(file, diag.Pos.Line); ok {
					diag.SourceLines = []string{line}
				}

				mu.Lock()
				failures = multierr.Append(failures, err)
				result.Diagnostics = append(result.Diagnostics, diag)
				mu.Unlock()
				return nil
			}
			fileResults[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build canceled: %w", err)
	}

	// 3. Collect stats in discovery order
	for _, fr := range fileResults {
		if fr == nil {
			continue
		}
		result.Files = append(result.Files, fr)
		if fr.OutputPath != "" {
			result.FilesWritten++
		}
		if fr.Cached {
			result.FilesCached++
		}
		result.ClassesScoped += fr.Modules.Classes.Len()
		result.UtilitiesGenerated += fr.Modules.Utilities.Len()
	}
	SortDiagnostics(result.Diagnostics)

	// 4. Write manifest
	if !b.config.DryRun {
		path, err := b.WriteManifest()
		if err != nil {
			failures = multierr.Append(failures, err)
		}
		result.ManifestPath = path
	}

	result.Duration = time.Since(start)
	b.log.Info("Build finished",
		zap.Int("files", len(result.Files)),
		zap.Int("failed", len(result.Diagnostics)),
		zap.Int("cached", result.FilesCached),
		zap.Duration("duration", result.Duration))

	if failures != nil {
		return result, fmt.Errorf("%d of %d files failed: %w",
			len(multierr.Errors(failures)), len(files), failures)
	}
	return result, nil
}

// BuildFile transforms a single file and writes its output. Errors are
// *FileError values.
func (b *Builder) BuildFile(ctx context.Context, path string) (*FileResult, error) {
	rel := b.relPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Stage: StageRead, Err: err}
	}

	var out string
	if !b.config.DryRun {
		out = filepath.Join(b.config.OutputDir, filepath.FromSlash(rel))
	}

	key := contentKey(rel, data)
	fr, ok := b.cache.get(key)
	if ok {
		b.log.Debug("Serving cached file", zap.String("file", rel))
		fr.OutputPath = out
		if err := b.engine.Report(ctx, fr.Modules); err != nil {
			return nil, &FileError{Path: path, Stage: StageTransform, Err: err}
		}
	} else {
		transformed, err := transform(ctx, b.parser, b.engine, data, rel)
		if err != nil {
			stage := StageTransform
			var syntaxErr *ast.SyntaxError
			if errors.As(err, &syntaxErr) {
				stage = StageParse
			}
			return nil, &FileError{Path: path, Stage: stage, Err: err}
		}

		fr = &FileResult{
			Path:       path,
			RelPath:    rel,
			OutputPath: out,
			CSS:        transformed.CSS,
			Modules:    transformed.Modules,
		}
		b.cache.add(key, fr)
	}

	if out != "" {
		if err := writeFile(out, []byte(fr.CSS)); err != nil {
			return nil, &FileError{Path: path, Stage: StageWrite, Err: err}
		}
	}

	b.mu.Lock()
	b.manifest[rel] = fr.Modules
	b.mu.Unlock()

	return fr, nil
}

// Forget drops a source file from the manifest and removes its output.
func (b *Builder) Forget(path string) error {
	rel := b.relPath(path)

	b.mu.Lock()
	delete(b.manifest, rel)
	b.mu.Unlock()

	if b.config.DryRun {
		return nil
	}
	out := filepath.Join(b.config.OutputDir, filepath.FromSlash(rel))
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", out, err)
	}
	return nil
}

// Manifest returns the module maps of every built file, sorted by path.
func (b *Builder) Manifest() *Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return newManifest(b.manifest)
}

// WriteManifest writes the manifest under the output directory and returns its path.
func (b *Builder) WriteManifest() (string, error) {
	path := filepath.Join(b.config.OutputDir, b.config.Manifest)

	f, err := createFile(path)
	if err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := WriteManifest(f, b.Manifest()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// relPath returns path relative to the source directory, slash-separated
func (b *Builder) relPath(path string) string {
	rel, err := filepath.Rel(b.config.SourceDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
