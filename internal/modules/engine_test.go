package modules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/scope"
)

// run parses src, processes it with opts and returns the result, the mutated
// tree and the file suffix the engine derived from the original text.
func run(t *testing.T, src string, opts Options) (*Result, *ast.Root, string) {
	t.Helper()

	root, err := ast.Parse(src)
	require.NoError(t, err)
	suffix := scope.Suffix(scope.DefaultLength, root.String())

	resolved, err := Resolve(opts)
	require.NoError(t, err)

	result, err := NewEngine(resolved, nil).Process(context.Background(), root, "test.module.css")
	require.NoError(t, err)
	return result, root, suffix
}

func readable(media, container bool) *UtilityOptions {
	return &UtilityOptions{Mode: ModeReadable, Media: media, Container: container, Output: true}
}

func TestProcessDisabled(t *testing.T) {
	src := `:root { --x: 1; } .a { color: var(--x); animation: spin 1s; } @keyframes spin {}`

	result, root, _ := run(t, src, Options{})

	parsed, err := ast.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, parsed.String(), root.String())
	assert.Zero(t, result.Classes.Len())
	assert.Zero(t, result.Keyframes.Len())
	assert.Zero(t, result.Variables.Len())
	assert.Zero(t, result.Utilities.Len())
}

func TestProcessDeterminism(t *testing.T) {
	src := `.btn { color: red; } .btn:hover .icon { color: blue; }`
	opts := Options{Modules: true}

	first, firstRoot, _ := run(t, src, opts)
	second, secondRoot, _ := run(t, src, opts)

	assert.Equal(t, firstRoot.String(), secondRoot.String())
	assert.Equal(t, ToMap(first.Classes), ToMap(second.Classes))

	other, _, _ := run(t, `.btn { color: green; }`, opts)
	btn, _ := first.Classes.Get("btn")
	otherBtn, _ := other.Classes.Get("btn")
	assert.NotEqual(t, btn, otherBtn, "different content must produce a different scope")
}

func TestProcessReports(t *testing.T) {
	t.Run("class map reported for modules", func(t *testing.T) {
		var gotPath string
		var gotClasses map[string]string
		opts := Options{
			Modules: true,
			Report: func(_ context.Context, filePath string, classes map[string]string) error {
				gotPath, gotClasses = filePath, classes
				return nil
			},
		}

		result, _, suffix := run(t, `.a {}`, opts)
		assert.Equal(t, "test.module.css", gotPath)
		assert.Equal(t, map[string]string{"a": "a" + suffix}, gotClasses)
		assert.Equal(t, "test.module.css", result.FilePath)
	})

	t.Run("class map not reported for variables only", func(t *testing.T) {
		called := false
		opts := Options{
			CSSVariables: Variables{Enabled: true},
			Report: func(context.Context, string, map[string]string) error {
				called = true
				return nil
			},
		}

		run(t, `:root { --x: 1; }`, opts)
		assert.False(t, called)
	})

	t.Run("utility table reported without output", func(t *testing.T) {
		var gotUtilities, gotClasses map[string]string
		utility := readable(false, false)
		utility.Output = false
		utility.Report = func(_ context.Context, _ string, utilities map[string]string) error {
			gotUtilities = utilities
			return nil
		}
		opts := Options{
			Utility: utility,
			Report: func(_ context.Context, _ string, classes map[string]string) error {
				gotClasses = classes
				return nil
			},
		}

		_, root, _ := run(t, `.a { color: red; }`, opts)
		assert.Equal(t, map[string]string{"color[_red]": ".color\\[_red\\] {\n  color: red;\n}"}, gotUtilities)
		assert.Equal(t, map[string]string{"a": "a color[_red]"}, gotClasses)
		assert.Empty(t, root.String(), "decomposed rule is removed and utilities are not appended")
	})

	t.Run("empty file path", func(t *testing.T) {
		var gotPath string
		resolved, err := Resolve(Options{
			Modules: true,
			Report: func(_ context.Context, filePath string, _ map[string]string) error {
				gotPath = filePath
				return nil
			},
		})
		require.NoError(t, err)

		root, err := ast.Parse(`.a {}`)
		require.NoError(t, err)

		result, err := NewEngine(resolved, nil).Process(context.Background(), root, "")
		require.NoError(t, err)
		assert.Equal(t, UnknownFile, gotPath)
		assert.Equal(t, UnknownFile, result.FilePath)
	})
}

func TestProcessReportErrors(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		opts    Options
		wantMsg string
	}{
		{
			name: "class report",
			opts: Options{
				Modules: true,
				Report: func(context.Context, string, map[string]string) error {
					return errBoom
				},
			},
			wantMsg: "report classes for test.module.css: boom",
		},
		{
			name: "utility report",
			opts: Options{
				Utility: &UtilityOptions{
					Report: func(context.Context, string, map[string]string) error {
						return errBoom
					},
				},
			},
			wantMsg: "report utilities for test.module.css: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ast.Parse(`.a { color: red; }`)
			require.NoError(t, err)
			resolved, err := Resolve(tt.opts)
			require.NoError(t, err)

			_, err = NewEngine(resolved, nil).Process(context.Background(), root, "test.module.css")
			require.Error(t, err)
			assert.ErrorIs(t, err, errBoom)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestProcessPanelFixture(t *testing.T) {
	src := `.panel {
  background-color: white;

  .panel-box {
    padding: 1em;
    font-size: 1em;
  }

  .panel-header {
    background-color: grey;
  }

  .panel-footer {
    background-color: lightgrey;
  }

  .panel-header .panel-box {
    padding: 0.5em;
  }

  .panel-footer .panel-box {
    padding: 0.3em;
  }
}`

	result, root, _ := run(t, src, Options{Utility: readable(false, false)})

	want := `.panel {
  .panel-header .panel-box {
    padding: 0.5em;
  }
  .panel-footer .panel-box {
    padding: 0.3em;
  }
}

.background-color\[_lightgrey\] {
  background-color: lightgrey;
}

.background-color\[_grey\] {
  background-color: grey;
}

.padding\[_1em\] {
  padding: 1em;
}

.font-size\[_1em\] {
  font-size: 1em;
}

.background-color\[_white\] {
  background-color: white;
}
`
	assert.Equal(t, want, root.String())

	var keys []string
	for pair := result.Classes.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"panel-footer", "panel-header", "panel-box", "panel"}, keys)
	assert.Equal(t, map[string]string{
		"panel-footer": "panel-footer background-color[_lightgrey]",
		"panel-header": "panel-header background-color[_grey]",
		"panel-box":    "panel-box padding[_1em] font-size[_1em]",
		"panel":        "panel background-color[_white]",
	}, ToMap(result.Classes))
	assert.Equal(t, 5, result.Utilities.Len())
}

func TestProcessModulesWithUtilities(t *testing.T) {
	src := `.card { color: red; } .card:hover { color: blue; }`

	result, root, suffix := run(t, src, Options{Modules: true, Utility: readable(false, false)})

	card, ok := result.Classes.Get("card")
	require.True(t, ok)
	assert.Equal(t, "card"+suffix+" color[_red]", card)

	// pseudo-class rules are scoped but never decomposed
	assert.Contains(t, root.String(), ".card"+suffix+":hover {\n  color: blue;\n}")
	assert.NotContains(t, root.String(), ".card"+suffix+" {")
}
