// Package ast holds the mutable CSS tree that cssmod rewrites in place.
//
// The tree mirrors what a CSS-AST processor exposes to plugins: a Root with
// rules, at-rules, declarations and comments, each node knowing its parent.
// Engine code only mutates string fields (selectors, params, props, values)
// and moves or removes whole nodes.
package ast

import "strings"

// Node is a single element of a stylesheet tree.
type Node interface {
	// Parent returns the enclosing container, or nil for a detached node or the Root.
	Parent() Container
	setParent(p Container)
}

// Container is a node that owns child nodes (Root, Rule, AtRule).
type Container interface {
	Node
	Children() []Node
	setChildren(nodes []Node)
}

// Root is the top of a parsed stylesheet.
type Root struct {
	nodes []Node
}

// Rule is a style rule: a selector list followed by a block.
type Rule struct {
	Selector string
	nodes    []Node
	parent   Container
}

// AtRule is an @-rule, with or without a block.
type AtRule struct {
	Name   string // without the leading "@"
	Params string
	Block  bool
	nodes  []Node
	parent Container
}

// Declaration is a single "prop: value" pair.
type Declaration struct {
	Prop      string
	Value     string
	Important bool
	parent    Container
}

// Comment is a /* ... */ comment kept between statements.
type Comment struct {
	Text   string // inner text, without delimiters
	parent Container
}

// NewRoot returns an empty stylesheet.
func NewRoot() *Root { return &Root{} }

// NewRule returns a detached rule holding the given nodes.
func NewRule(selector string, nodes ...Node) *Rule {
	r := &Rule{Selector: selector}
	Append(r, nodes...)
	return r
}

// NewAtRule returns a detached at-rule with a block holding the given nodes.
func NewAtRule(name, params string, nodes ...Node) *AtRule {
	a := &AtRule{Name: name, Params: params, Block: true}
	Append(a, nodes...)
	return a
}

// NewDeclaration returns a detached declaration.
func NewDeclaration(prop, value string) *Declaration {
	return &Declaration{Prop: prop, Value: value}
}

func (r *Root) Parent() Container        { return nil }
func (r *Root) setParent(Container)      {}
func (r *Root) Children() []Node         { return r.nodes }
func (r *Root) setChildren(nodes []Node) { r.nodes = nodes }

func (r *Rule) Parent() Container        { return r.parent }
func (r *Rule) setParent(p Container)    { r.parent = p }
func (r *Rule) Children() []Node         { return r.nodes }
func (r *Rule) setChildren(nodes []Node) { r.nodes = nodes }

func (a *AtRule) Parent() Container        { return a.parent }
func (a *AtRule) setParent(p Container)    { a.parent = p }
func (a *AtRule) Children() []Node         { return a.nodes }
func (a *AtRule) setChildren(nodes []Node) { a.nodes = nodes }

func (d *Declaration) Parent() Container     { return d.parent }
func (d *Declaration) setParent(p Container) { d.parent = p }

func (c *Comment) Parent() Container     { return c.parent }
func (c *Comment) setParent(p Container) { c.parent = p }

// Append attaches nodes to the end of c, detaching them from any previous parent.
func Append(c Container, nodes ...Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Parent() != nil {
			Remove(n)
		}
		n.setParent(c)
		c.setChildren(append(c.Children(), n))
	}
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func Remove(n Node) {
	p := n.Parent()
	if p == nil {
		return
	}
	children := p.Children()
	for i, child := range children {
		if child == n {
			kept := make([]Node, 0, len(children)-1)
			kept = append(kept, children[:i]...)
			kept = append(kept, children[i+1:]...)
			p.setChildren(kept)
			break
		}
	}
	n.setParent(nil)
}

// Append attaches nodes to the end of the stylesheet.
func (r *Root) Append(nodes ...Node) { Append(r, nodes...) }

// Selectors splits the selector list on top-level commas.
func (r *Rule) Selectors() []string {
	var (
		out   []string
		depth int
		quote rune
		start int
	)
	sel := r.Selector
	for i := 0; i < len(sel); i++ {
		ch := rune(sel[i])
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\\':
			i++
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			if depth > 0 {
				depth--
			}
		case ch == ',' && depth == 0:
			out = append(out, strings.TrimSpace(sel[start:i]))
			start = i + 1
		}
	}
	if last := strings.TrimSpace(sel[start:]); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}

// SetSelectors replaces the selector list.
func (r *Rule) SetSelectors(selectors []string) {
	r.Selector = strings.Join(selectors, ", ")
}

// Clone returns a detached copy of the declaration.
func (d *Declaration) Clone() *Declaration {
	return &Declaration{Prop: d.Prop, Value: d.Value, Important: d.Important}
}

// HasContent reports whether c holds anything other than comments.
func HasContent(c Container) bool {
	for _, n := range c.Children() {
		if _, ok := n.(*Comment); !ok {
			return true
		}
	}
	return false
}

// Depth returns the number of enclosing rules and at-rules of n.
func Depth(n Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *Rule, *AtRule:
			depth++
		}
	}
	return depth
}
