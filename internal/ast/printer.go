package ast

import (
	"io"
	"strings"
)

const indentUnit = "  "

// String returns the CSS text of the stylesheet.
func (r *Root) String() string {
	var b strings.Builder
	for i, n := range r.nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeNode(&b, n, 0)
		if needsSemicolon(n) {
			b.WriteByte(';')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo.
func (r *Root) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// String returns the CSS text of the rule and its block.
func (r *Rule) String() string { return String(r) }

// String returns the CSS text of the at-rule.
func (a *AtRule) String() string { return String(a) }

// String returns "prop: value", with the !important flag when set.
func (d *Declaration) String() string { return String(d) }

// String returns the comment with its delimiters.
func (c *Comment) String() string { return String(c) }

// String prints any node at the top indentation level.
func String(n Node) string {
	if r, ok := n.(*Root); ok {
		return r.String()
	}
	var b strings.Builder
	writeNode(&b, n, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n Node, level int) {
	switch n := n.(type) {
	case *Rule:
		b.WriteString(n.Selector)
		writeBlock(b, n.nodes, level)
	case *AtRule:
		b.WriteByte('@')
		b.WriteString(n.Name)
		if n.Params != "" {
			b.WriteByte(' ')
			b.WriteString(n.Params)
		}
		if n.Block {
			writeBlock(b, n.nodes, level)
		}
	case *Declaration:
		b.WriteString(n.Prop)
		b.WriteString(": ")
		b.WriteString(n.Value)
		if n.Important {
			b.WriteString(" !important")
		}
	case *Comment:
		b.WriteString("/*")
		b.WriteString(n.Text)
		b.WriteString("*/")
	}
}

func writeBlock(b *strings.Builder, nodes []Node, level int) {
	if len(nodes) == 0 {
		b.WriteString(" {}")
		return
	}
	b.WriteString(" {\n")
	inner := strings.Repeat(indentUnit, level+1)
	for _, child := range nodes {
		b.WriteString(inner)
		writeNode(b, child, level+1)
		if needsSemicolon(child) {
			b.WriteByte(';')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(indentUnit, level))
	b.WriteByte('}')
}

func needsSemicolon(n Node) bool {
	switch n := n.(type) {
	case *Declaration:
		return true
	case *AtRule:
		return !n.Block
	}
	return false
}
