package cssmod

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yacobolo/cssmod/internal/modules"
)

func newTestBuilder(t *testing.T, files map[string]string, mutate ...func(*Config)) (*Builder, string, string) {
	t.Helper()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(src, 0o755))
	writeTree(t, src, files)

	config := Config{
		SourceDir: src,
		OutputDir: out,
		Options: modules.Options{
			Modules: true,
			Utility: &modules.UtilityOptions{Mode: modules.ModeReadable, Output: true},
		},
	}
	for _, fn := range mutate {
		fn(&config)
	}

	builder, err := NewBuilder(config, zaptest.NewLogger(t))
	require.NoError(t, err)
	return builder, src, out
}

func TestNewBuilderDefaults(t *testing.T) {
	builder, err := NewBuilder(Config{SourceDir: "web", OutputDir: "dist"}, nil)
	require.NoError(t, err)

	config := builder.Config()
	assert.Equal(t, []string{DefaultInclude}, config.Includes)
	assert.Equal(t, DefaultManifest, config.Manifest)
	assert.Equal(t, DefaultCacheSize, config.CacheSize)
	assert.Positive(t, config.Concurrency)
}

func TestNewBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "missing source", config: Config{OutputDir: "dist"}, wantErr: "source directory is required"},
		{name: "missing output", config: Config{SourceDir: "web"}, wantErr: "output directory is required"},
		{
			name: "bad utility mode",
			config: Config{
				SourceDir: "web",
				OutputDir: "dist",
				Options:   modules.Options{Utility: &modules.UtilityOptions{Mode: "tiny"}},
			},
			wantErr: "invalid options",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(tt.config, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	builder, src, out := newTestBuilder(t, map[string]string{
		"button.module.css":          ".btn { color: red; }",
		"components/card.module.css": ".card { color: red; padding: 0; }",
		"broken.module.css":          ".a { color: red; ",
		"global.css":                 ".ignored { color: red; }",
	})

	result, err := builder.Build(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Contains(t, err.Error(), "1 of 3 files failed")

	assert.Equal(t, 3, result.FilesScanned)
	assert.Equal(t, 2, result.FilesWritten)
	assert.Equal(t, 0, result.FilesCached)
	assert.Equal(t, 2, result.ClassesScoped)
	assert.Equal(t, 3, result.UtilitiesGenerated)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "button.module.css", result.Files[0].RelPath)
	assert.Equal(t, "components/card.module.css", result.Files[1].RelPath)

	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	assert.Equal(t, StageParse, diag.Stage)
	assert.Equal(t, "unclosed block", diag.Text)
	assert.Equal(t, SeverityError, diag.Severity)
	assert.Equal(t, DiagnosticPos{Filename: filepath.Join(src, "broken.module.css"), Line: 1, Column: 4}, diag.Pos)

	card, err := os.ReadFile(filepath.Join(out, "components", "card.module.css"))
	require.NoError(t, err)
	assert.Contains(t, string(card), ".padding\\[_0\\] {\n  padding: 0;\n}")

	assert.NoFileExists(t, filepath.Join(out, "broken.module.css"))
	assert.NoFileExists(t, filepath.Join(out, "global.css"))

	// Manifest lists built files sorted by path
	require.Equal(t, filepath.Join(out, DefaultManifest), result.ManifestPath)
	f, err := os.Open(result.ManifestPath)
	require.NoError(t, err)
	defer f.Close()

	manifest, err := ReadManifest(f)
	require.NoError(t, err)

	var paths []string
	for pair := manifest.Files.Oldest(); pair != nil; pair = pair.Next() {
		paths = append(paths, pair.Key)
	}
	assert.Equal(t, []string{"button.module.css", "components/card.module.css"}, paths)

	entry, ok := manifest.Files.Get("button.module.css")
	require.True(t, ok)
	btn, ok := entry.Classes.Get("btn")
	require.True(t, ok)
	assert.Regexp(t, `^btn_[0-9A-Za-z]{8} color\[_red\]$`, btn)
}

func TestBuildUsesCache(t *testing.T) {
	builder, src, _ := newTestBuilder(t, map[string]string{
		"a.module.css": ".a { color: red; }",
		"b.module.css": ".b { color: blue; }",
	})

	first, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.FilesCached)

	writeTree(t, src, map[string]string{"b.module.css": ".b { color: green; }"})

	second, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.FilesCached)
	assert.True(t, second.Files[0].Cached)
	assert.False(t, second.Files[1].Cached)
	assert.Contains(t, second.Files[1].CSS, "color: green;")
}

func TestBuildReportsCachedFiles(t *testing.T) {
	var (
		mu        sync.Mutex
		classes   = map[string][]map[string]string{}
		utilities = map[string]int{}
	)
	builder, _, _ := newTestBuilder(t, map[string]string{
		"a.module.css": ".a { color: red; }",
	}, func(c *Config) {
		c.Options.Report = func(_ context.Context, filePath string, m map[string]string) error {
			mu.Lock()
			defer mu.Unlock()
			classes[filePath] = append(classes[filePath], m)
			return nil
		}
		c.Options.Utility.Report = func(_ context.Context, filePath string, _ map[string]string) error {
			mu.Lock()
			defer mu.Unlock()
			utilities[filePath]++
			return nil
		}
	})

	_, err := builder.Build(context.Background())
	require.NoError(t, err)
	second, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.True(t, second.Files[0].Cached)

	// The cached build reports the same maps again
	require.Len(t, classes["a.module.css"], 2)
	assert.Equal(t, classes["a.module.css"][0], classes["a.module.css"][1])
	assert.Equal(t, 2, utilities["a.module.css"])
}

func TestBuildCachedReportError(t *testing.T) {
	calls := 0
	builder, src, _ := newTestBuilder(t, map[string]string{
		"a.module.css": ".a { color: red; }",
	}, func(c *Config) {
		c.Concurrency = 1
		c.Options.Report = func(context.Context, string, map[string]string) error {
			calls++
			if calls > 1 {
				return errors.New("boom")
			}
			return nil
		}
	})

	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	_, err = builder.BuildFile(context.Background(), filepath.Join(src, "a.module.css"))
	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, StageTransform, fileErr.Stage)
	assert.EqualError(t, fileErr.Err, "report classes for a.module.css: boom")
}

func TestBuildDryRun(t *testing.T) {
	builder, _, out := newTestBuilder(t, map[string]string{
		"a.module.css": ".a { color: red; }",
	}, func(c *Config) { c.DryRun = true })

	result, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Empty(t, result.Files[0].OutputPath)
	assert.Empty(t, result.ManifestPath)
	assert.NoDirExists(t, out)
}

func TestBuildExcludes(t *testing.T) {
	builder, _, _ := newTestBuilder(t, map[string]string{
		"a.module.css":        ".a {}",
		"vendor/b.module.css": ".b {}",
	}, func(c *Config) { c.Excludes = []string{"vendor/**"} })

	result, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesDiscovered)
	assert.Equal(t, 1, result.FilesScanned)
	assert.Equal(t, 1, result.FilesSkipped)
}

func TestBuildCanceled(t *testing.T) {
	builder, _, _ := newTestBuilder(t, map[string]string{
		"a.module.css": ".a {}",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := builder.Build(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildFileErrors(t *testing.T) {
	builder, src, _ := newTestBuilder(t, nil)

	_, err := builder.BuildFile(context.Background(), filepath.Join(src, "missing.module.css"))
	require.Error(t, err)

	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, StageRead, fileErr.Stage)

	diag := NewDiagnostic(fileErr.Path, err)
	assert.Equal(t, StageRead, diag.Stage)
	assert.Zero(t, diag.Pos.Line)
}

func TestForget(t *testing.T) {
	builder, src, out := newTestBuilder(t, map[string]string{
		"a.module.css": ".a {}",
		"b.module.css": ".b {}",
	})

	_, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(out, "a.module.css"))

	require.NoError(t, builder.Forget(filepath.Join(src, "a.module.css")))
	assert.NoFileExists(t, filepath.Join(out, "a.module.css"))

	manifest := builder.Manifest()
	assert.Equal(t, 1, manifest.Files.Len())
	_, ok := manifest.Files.Get("b.module.css")
	assert.True(t, ok)

	// Forgetting twice is harmless
	require.NoError(t, builder.Forget(filepath.Join(src, "a.module.css")))
}
