package modules

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yacobolo/cssmod/internal/ast"
	"github.com/yacobolo/cssmod/internal/scope"
)

const collisionHashLength = 4

// planUtilities decomposes the collected candidates into utility rules.
// Keys are handled in reverse discovery order; within a key only the
// shallowest candidates are decomposed.
func (c *fileContext) planUtilities() {
	keys := make([]string, 0, c.candidates.Len())
	for pair := c.candidates.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	for i := len(keys) - 1; i >= 0; i-- {
		group, _ := c.candidates.Get(keys[i])
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].depth < group[b].depth
		})

		lowest := group[0].depth
		for _, cand := range group {
			if cand.depth > lowest {
				if c.log.Core().Enabled(zap.DebugLevel) {
					c.log.Debug("Skipping deeper duplicate",
						zap.String("key", keys[i]),
						zap.Int("depth", cand.depth),
						zap.Int("selected_depth", lowest))
				}
				continue
			}
			c.extract(cand.node)
		}
	}
}

// extract moves the declarations of node into utility rules and composes the
// generated names into the owning class entry.
func (c *fileContext) extract(node ast.Container) {
	owner, ok := owningClass(node)
	if !ok {
		return
	}

	wrappers := enclosingAtRules(node)
	context := atRuleContext(wrappers)

	var names []string
	for _, decl := range ast.Declarations(node) {
		value := decl.Value
		if decl.Important {
			value += " !important"
		}

		name := c.utilityName(decl.Prop, value, context)
		if _, exists := c.utilities.Get(name); !exists {
			c.utilities.Set(name, buildUtility(name, decl, wrappers))
		}
		names = appendUnique(names, name)
		ast.Remove(decl)
	}

	if len(names) > 0 {
		c.compose(owner, names)
	}
	prune(node)
}

// utilityName names one (prop, value, context) triple. A name already taken by
// a different triple gets a hash suffix, so only identical pairs share a rule.
func (c *fileContext) utilityName(prop, value, context string) string {
	key := prop + "\x00" + value + "\x00" + context
	name := UtilityName(prop, value, context, c.opts.Utility.Mode)
	for {
		owner, taken := c.utilityKeys[name]
		if !taken {
			c.utilityKeys[name] = key
			return name
		}
		if owner == key {
			return name
		}
		name += "_" + scope.Hash(collisionHashLength, key, name)
	}
}

// compose adds utility names to the class list of owner, keeping the name
// already assigned to it (scoped or original).
func (c *fileContext) compose(owner string, names []string) {
	original, ok := c.originals[owner]
	if !ok {
		original = owner
	}
	current, ok := c.classes.Get(original)
	if !ok {
		current = owner
	}

	classes := strings.Fields(current)
	for _, name := range names {
		classes = appendUnique(classes, name)
	}
	c.classes.Set(original, strings.Join(classes, " "))
}

// owningClass returns the class a candidate's declarations belong to: the
// rule's own selector, or the nearest enclosing rule for at-rules. Only
// single-class selectors qualify.
func owningClass(node ast.Container) (string, bool) {
	var selector string
	switch n := node.(type) {
	case *ast.Rule:
		selector = n.Selector
	case *ast.AtRule:
		rule := nearestRule(n)
		if rule == nil {
			return "", false
		}
		selector = rule.Selector
	default:
		return "", false
	}

	m := singleClassPattern.FindStringSubmatch(strings.TrimSpace(selector))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func nearestRule(n ast.Node) *ast.Rule {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if rule, ok := p.(*ast.Rule); ok {
			return rule
		}
	}
	return nil
}

// enclosingAtRules lists the at-rules around node, outermost first, including
// node itself when it is an at-rule.
func enclosingAtRules(node ast.Container) []*ast.AtRule {
	var chain []*ast.AtRule
	for n := ast.Node(node); n != nil; n = n.Parent() {
		if at, ok := n.(*ast.AtRule); ok {
			chain = append([]*ast.AtRule{at}, chain...)
		}
	}
	return chain
}

func atRuleContext(wrappers []*ast.AtRule) string {
	parts := make([]string, 0, len(wrappers))
	for _, at := range wrappers {
		parts = append(parts, strings.TrimSpace(at.Name+" "+at.Params))
	}
	return strings.Join(parts, " ")
}

// buildUtility creates the single-declaration rule for a utility, wrapped in
// copies of the at-rules it was declared under.
func buildUtility(name string, decl *ast.Declaration, wrappers []*ast.AtRule) ast.Node {
	var node ast.Node = ast.NewRule("."+EscapeIdent(name), decl.Clone())
	for i := len(wrappers) - 1; i >= 0; i-- {
		node = ast.NewAtRule(wrappers[i].Name, wrappers[i].Params, node)
	}
	return node
}

// prune removes node when it has nothing left, then walks up removing
// ancestors that became empty.
func prune(node ast.Container) {
	for node != nil {
		if ast.HasContent(node) {
			return
		}
		parent := node.Parent()
		ast.Remove(node)

		switch p := parent.(type) {
		case *ast.Rule:
			node = p
		case *ast.AtRule:
			node = p
		default:
			return
		}
	}
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
