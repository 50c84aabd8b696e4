package ast

// Walk visits every descendant of c depth-first in document order. Children
// are skipped when fn returns false. Each level iterates over a snapshot, so
// fn may mutate node fields or detach the visited node.
func Walk(c Container, fn func(Node) bool) {
	children := make([]Node, len(c.Children()))
	copy(children, c.Children())

	for _, n := range children {
		if !fn(n) {
			continue
		}
		if child, ok := n.(Container); ok {
			Walk(child, fn)
		}
	}
}

// WalkRules visits every style rule below c.
func WalkRules(c Container, fn func(*Rule)) {
	Walk(c, func(n Node) bool {
		if r, ok := n.(*Rule); ok {
			fn(r)
		}
		return true
	})
}

// WalkAtRules visits every at-rule below c.
func WalkAtRules(c Container, fn func(*AtRule)) {
	Walk(c, func(n Node) bool {
		if a, ok := n.(*AtRule); ok {
			fn(a)
		}
		return true
	})
}

// Declarations returns the direct declaration children of c.
func Declarations(c Container) []*Declaration {
	var decls []*Declaration
	for _, n := range c.Children() {
		if d, ok := n.(*Declaration); ok {
			decls = append(decls, d)
		}
	}
	return decls
}
