package modules

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/scope"
)

// fileContext is the mutable state of one file-processing pass. It is created
// by Engine.Process and never shared between files.
type fileContext struct {
	opts     *Resolved
	log      *zap.Logger
	filePath string
	suffix   string

	classes   *orderedmap.OrderedMap[string, string]
	originals map[string]string // scoped class name -> original class name
	keyframes *orderedmap.OrderedMap[string, string]
	variables *orderedmap.OrderedMap[string, string]

	varsActive   bool
	sawAnimation bool

	candidates  *orderedmap.OrderedMap[string, []candidate]
	utilities   *orderedmap.OrderedMap[string, ast.Node]
	utilityKeys map[string]string // utility name -> prop, value and context it was built from
}

// candidate is a rule or at-rule collected for utility extraction
type candidate struct {
	depth int
	node  ast.Container
}

func newFileContext(opts *Resolved, log *zap.Logger, filePath, suffix string) *fileContext {
	return &fileContext{
		opts:        opts,
		log:         log,
		filePath:    filePath,
		suffix:      suffix,
		classes:     orderedmap.New[string, string](),
		originals:   make(map[string]string),
		keyframes:   orderedmap.New[string, string](),
		variables:   orderedmap.New[string, string](),
		candidates:  orderedmap.New[string, []candidate](),
		utilities:   orderedmap.New[string, ast.Node](),
		utilityKeys: make(map[string]string),
	}
}

// setIfAbsent stores value under key unless key is already present, and
// returns the value that ends up stored. The first writer wins.
func setIfAbsent(m *orderedmap.OrderedMap[string, string], key, value string) string {
	if existing, ok := m.Get(key); ok {
		return existing
	}
	m.Set(key, value)
	return value
}

// rewriteRule applies variable, animation and class scoping to one style rule
// and records it as a utility candidate.
func (c *fileContext) rewriteRule(rule *ast.Rule) {
	if rule.Selector == ":root" && c.opts.Variables {
		c.scopeRootVariables(rule)
		c.varsActive = true
		return
	}

	if c.opts.Modules || c.varsActive {
		for _, decl := range ownDeclarations(rule) {
			if c.opts.Modules && (decl.Prop == "animation" || decl.Prop == "animation-name") {
				c.rewriteAnimation(decl)
			}
			if c.varsActive {
				c.rewriteVarReferences(decl)
			}
		}
	}

	if c.opts.Modules {
		selectors := rule.Selectors()
		for i, sel := range selectors {
			selectors[i] = c.scopeSelector(sel)
		}
		rule.SetSelectors(selectors)
	}

	if c.opts.Utility != nil && strings.HasPrefix(rule.Selector, ".") {
		c.addCandidate(rule.Selector, rule)
	}
}

// scopeRootVariables suffixes every custom property declared in a :root rule
func (c *fileContext) scopeRootVariables(rule *ast.Rule) {
	suffix := scope.Suffix(c.opts.ScopeLength, c.opts.VariablesKey)

	for _, decl := range ownDeclarations(rule) {
		if strings.HasPrefix(decl.Prop, "--") {
			scoped := setIfAbsent(c.variables, decl.Prop, decl.Prop+suffix)
			decl.Prop = scoped
		}
		// Values may reference variables declared earlier in the same block
		c.rewriteVarReferences(decl)
	}
}

// rewriteVarReferences replaces var(--name) with the scoped name when known.
// Variables declared after their first use stay unscoped.
func (c *fileContext) rewriteVarReferences(decl *ast.Declaration) {
	if !strings.Contains(decl.Value, "var(") {
		return
	}
	decl.Value = replaceSubmatches(varPattern, decl.Value, func(groups []string) string {
		scoped, ok := c.variables.Get(groups[1])
		if !ok {
			return groups[0]
		}
		return strings.Replace(groups[0], groups[1], scoped, 1)
	})
}

// rewriteAnimation scopes the animation names referenced by animation and
// animation-name, stripping global() markers.
func (c *fileContext) rewriteAnimation(decl *ast.Declaration) {
	nameOnly := decl.Prop == "animation-name"
	items := splitList(decl.Value)

	for i, item := range items {
		components := splitComponents(item)
		idx := animationNameIndex(components, nameOnly)
		if idx < 0 {
			continue
		}

		name := components[idx]
		if m := globalAnimationPattern.FindStringSubmatch(name); m != nil {
			components[idx] = m[1]
		} else {
			components[idx] = setIfAbsent(c.keyframes, name, name+c.suffix)
		}
		items[i] = strings.Join(components, " ")
	}

	decl.Value = strings.Join(items, ", ")
	c.sawAnimation = true
}

// animationNameIndex finds the component holding the animation name
func animationNameIndex(components []string, nameOnly bool) int {
	for i, comp := range components {
		if globalAnimationPattern.MatchString(comp) {
			return i
		}
		if animationKeywords[strings.ToLower(comp)] {
			if nameOnly {
				return -1
			}
			continue
		}
		if identOnlyPattern.MatchString(comp) {
			return i
		}
		if nameOnly {
			return -1
		}
		// numbers, times and timing functions are skipped
	}
	return -1
}

// scopeSelector rewrites the class selectors of one selector
func (c *fileContext) scopeSelector(selector string) string {
	return replaceSubmatches(classSelectorPattern, selector, func(groups []string) string {
		switch {
		case groups[1] == "global":
			return groups[2]
		case groups[1] == "local":
			return c.scopeSelector(groups[2])
		case groups[3] != "":
			return "." + c.scopeClass(groups[3])
		}
		// attribute selectors and strings stay as written
		return groups[0]
	})
}

// scopeClass returns the scoped name of a class, assigning one on first sight
func (c *fileContext) scopeClass(name string) string {
	if scoped, ok := c.classes.Get(name); ok {
		return scoped
	}
	scoped := name + c.suffix
	c.classes.Set(name, scoped)
	c.originals[scoped] = name
	return scoped
}

func (c *fileContext) addCandidate(key string, node ast.Container) {
	group, _ := c.candidates.Get(key)
	c.candidates.Set(key, append(group, candidate{depth: ast.Depth(node), node: node}))
}

// ownDeclarations returns the declarations that belong to c itself: direct
// children and those inside nested at-rules, but not those of nested rules.
func ownDeclarations(c ast.Container) []*ast.Declaration {
	var decls []*ast.Declaration
	for _, n := range c.Children() {
		switch n := n.(type) {
		case *ast.Declaration:
			decls = append(decls, n)
		case *ast.AtRule:
			decls = append(decls, ownDeclarations(n)...)
		}
	}
	return decls
}
