package modules

import (
	"strings"

	"github.com/yacobolo/cssmod/internal/ast"
)

// isKeyframes matches @keyframes and its vendor-prefixed forms
func isKeyframes(name string) bool {
	switch strings.ToLower(name) {
	case "keyframes", "-webkit-keyframes", "-moz-keyframes", "-o-keyframes":
		return true
	}
	return false
}

// rewriteAtRule renames @keyframes to their scoped names and records nested
// @media/@container blocks as utility candidates.
func (c *fileContext) rewriteAtRule(at *ast.AtRule) {
	if c.opts.Modules && c.sawAnimation && isKeyframes(at.Name) {
		if scoped, ok := c.keyframes.Get(strings.TrimSpace(at.Params)); ok {
			at.Params = scoped
		}
		return
	}

	if c.opts.targets(strings.ToLower(at.Name)) {
		// at-rules at the document root have no owning class
		if ast.Depth(at) == 0 {
			return
		}
		c.addCandidate(at.Params, at)
	}
}
