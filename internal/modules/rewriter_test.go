package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/scope"
)

func firstRule(t *testing.T, root *ast.Root) *ast.Rule {
	t.Helper()
	for _, n := range root.Children() {
		if rule, ok := n.(*ast.Rule); ok {
			return rule
		}
	}
	t.Fatal("no rule in stylesheet")
	return nil
}

func TestScopeSelectors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want func(suffix string) string
	}{
		{
			name: "single class",
			src:  `.btn {}`,
			want: func(s string) string { return ".btn" + s },
		},
		{
			name: "compound and pseudo",
			src:  `.btn.active:hover > .icon::before {}`,
			want: func(s string) string { return ".btn" + s + ".active" + s + ":hover > .icon" + s + "::before" },
		},
		{
			name: "selector list",
			src:  `.a, div .b {}`,
			want: func(s string) string { return ".a" + s + ", div .b" + s },
		},
		{
			name: "global marker stripped",
			src:  `:global(.theme-dark) .btn {}`,
			want: func(s string) string { return ".theme-dark .btn" + s },
		},
		{
			name: "local marker scoped",
			src:  `:local(.btn) .x {}`,
			want: func(s string) string { return ".btn" + s + " .x" + s },
		},
		{
			name: "attribute selector untouched",
			src:  `a[class=".x"] .y {}`,
			want: func(s string) string { return `a[class=".x"] .y` + s },
		},
		{
			name: "escaped identifier",
			src:  `.sm\:p-2 {}`,
			want: func(s string) string { return `.sm\:p-2` + s },
		},
		{
			name: "no classes",
			src:  `div > span {}`,
			want: func(string) string { return "div > span" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root, suffix := run(t, tt.src, Options{Modules: true})
			assert.Equal(t, tt.want(suffix), firstRule(t, root).Selector)
		})
	}
}

func TestClassConsistency(t *testing.T) {
	src := `.btn { color: red; }
.toolbar .btn { margin: 0; }
:global(.btn) { color: blue; }`

	result, root, suffix := run(t, src, Options{Modules: true})

	var selectors []string
	ast.WalkRules(root, func(r *ast.Rule) { selectors = append(selectors, r.Selector) })

	assert.Equal(t, []string{
		".btn" + suffix,
		".toolbar" + suffix + " .btn" + suffix,
		".btn",
	}, selectors)
	assert.Equal(t, map[string]string{
		"btn":     "btn" + suffix,
		"toolbar": "toolbar" + suffix,
	}, ToMap(result.Classes))
	assert.NotContains(t, root.String(), ":global")
}

func TestAnimationScoping(t *testing.T) {
	src := `.a { animation: spin 1s linear infinite, global(fade) 2s; }
.b { animation-name: spin, pulse; }
.c { animation: none; }
@keyframes spin { from { opacity: 0; } to { opacity: 1; } }
@-webkit-keyframes pulse {}
@keyframes fade {}`

	result, root, suffix := run(t, src, Options{Modules: true})

	assert.Equal(t, map[string]string{
		"spin":  "spin" + suffix,
		"pulse": "pulse" + suffix,
	}, ToMap(result.Keyframes))

	values := map[string]string{}
	walkDecls(root, func(d *ast.Declaration) {
		if d.Prop == "animation" || d.Prop == "animation-name" {
			values[d.Parent().(*ast.Rule).Selector] = d.Value
		}
	})
	assert.Equal(t, "spin"+suffix+" 1s linear infinite, fade 2s", values[".a"+suffix])
	assert.Equal(t, "spin"+suffix+", pulse"+suffix, values[".b"+suffix])
	assert.Equal(t, "none", values[".c"+suffix])

	var params []string
	ast.WalkAtRules(root, func(a *ast.AtRule) { params = append(params, a.Params) })
	assert.Equal(t, []string{"spin" + suffix, "pulse" + suffix, "fade"}, params)
}

func TestAnimationFirstWriterWins(t *testing.T) {
	src := `.a { animation-name: spin; } .b { animation: 2s spin; }`

	result, root, suffix := run(t, src, Options{Modules: true})

	assert.Equal(t, 1, result.Keyframes.Len())
	assert.Contains(t, root.String(), "animation: 2s spin"+suffix+";")
}

func TestKeyframesWithoutAnimation(t *testing.T) {
	_, root, _ := run(t, `@keyframes spin {} .a { color: red; }`, Options{Modules: true})

	var params []string
	ast.WalkAtRules(root, func(a *ast.AtRule) { params = append(params, a.Params) })
	assert.Equal(t, []string{"spin"}, params)
}

func TestAnimationNeedsModuleScoping(t *testing.T) {
	src := `:root { --d: 1s; } .a { animation: spin var(--d); } @keyframes spin {}`

	result, root, _ := run(t, src, Options{CSSVariables: Variables{Enabled: true}})

	varSuffix := scope.Suffix(scope.DefaultLength, DefaultVariablesKey)
	assert.Zero(t, result.Keyframes.Len())

	var animation string
	walkDecls(root, func(d *ast.Declaration) {
		if d.Prop == "animation" {
			animation = d.Value
		}
	})
	assert.Equal(t, "spin var(--d"+varSuffix+")", animation)
	assert.Contains(t, root.String(), "@keyframes spin")
}

func TestVariableScoping(t *testing.T) {
	varSuffix := scope.Suffix(scope.DefaultLength, DefaultVariablesKey)

	tests := []struct {
		name      string
		src       string
		opts      Options
		wantVars  map[string]string
		wantColor string
	}{
		{
			name:      "declaration and reference",
			src:       `:root { --x: 1; } a { color: var(--x); }`,
			opts:      Options{CSSVariables: Variables{Enabled: true}},
			wantVars:  map[string]string{"--x": "--x" + varSuffix},
			wantColor: "var(--x" + varSuffix + ")",
		},
		{
			name:      "fallback value",
			src:       `:root { --x: red; } a { color: var(--x, blue); }`,
			opts:      Options{CSSVariables: Variables{Enabled: true}},
			wantVars:  map[string]string{"--x": "--x" + varSuffix},
			wantColor: "var(--x" + varSuffix + ", blue)",
		},
		{
			name:      "unknown variable untouched",
			src:       `:root { --x: red; } a { color: var(--y); }`,
			opts:      Options{CSSVariables: Variables{Enabled: true}},
			wantVars:  map[string]string{"--x": "--x" + varSuffix},
			wantColor: "var(--y)",
		},
		{
			// Variables used before :root is seen keep their original name.
			name:      "forward reference stays unscoped",
			src:       `a { color: var(--x); } :root { --x: 1; }`,
			opts:      Options{CSSVariables: Variables{Enabled: true}},
			wantVars:  map[string]string{"--x": "--x" + varSuffix},
			wantColor: "var(--x)",
		},
		{
			name:      "custom key",
			src:       `:root { --x: 1; } a { color: var(--x); }`,
			opts:      Options{CSSVariables: Variables{Key: "theme"}},
			wantVars:  map[string]string{"--x": "--x" + scope.Suffix(scope.DefaultLength, "theme")},
			wantColor: "var(--x" + scope.Suffix(scope.DefaultLength, "theme") + ")",
		},
		{
			name:      "disabled",
			src:       `:root { --x: 1; } a { color: var(--x); }`,
			opts:      Options{Modules: true},
			wantVars:  map[string]string{},
			wantColor: "var(--x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, root, _ := run(t, tt.src, tt.opts)
			assert.Equal(t, tt.wantVars, ToMap(result.Variables))

			var color string
			walkDecls(root, func(d *ast.Declaration) {
				if d.Prop == "color" {
					color = d.Value
				}
			})
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestRootVariablesReferenceEarlierOnes(t *testing.T) {
	varSuffix := scope.Suffix(scope.DefaultLength, DefaultVariablesKey)

	_, root, _ := run(t, `:root { --base: 4px; --gap: calc(var(--base) * 2); }`,
		Options{CSSVariables: Variables{Enabled: true}})

	decls := ast.Declarations(firstRule(t, root))
	require.Len(t, decls, 2)
	assert.Equal(t, "--gap"+varSuffix, decls[1].Prop)
	assert.Equal(t, "calc(var(--base"+varSuffix+") * 2)", decls[1].Value)
}

func TestAnimationNameIndex(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		nameOnly bool
		want     int
	}{
		{name: "name first", value: "spin 1s linear", want: 0},
		{name: "name after timing", value: "1s ease-in 200ms spin", want: 3},
		{name: "timing function call", value: "cubic-bezier(0.1, 0.7, 1, 0.1) 2s bounce", want: 2},
		{name: "keywords only", value: "1s infinite alternate", want: -1},
		{name: "global marker", value: "2s global(fade)", want: 1},
		{name: "animation-name none", value: "none", nameOnly: true, want: -1},
		{name: "animation-name", value: "spin", nameOnly: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, animationNameIndex(splitComponents(tt.value), tt.nameOnly))
		})
	}
}

// walkDecls visits every declaration below root
func walkDecls(root *ast.Root, fn func(*ast.Declaration)) {
	ast.Walk(root, func(n ast.Node) bool {
		if d, ok := n.(*ast.Declaration); ok {
			fn(d)
		}
		return true
	})
}
