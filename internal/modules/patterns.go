package modules

import (
	"regexp"
	"strings"
)

// identPattern matches a CSS identifier, including escaped characters (sm\:p-2)
const identPattern = `(?:--|-?(?:[_a-zA-Z]|[^\x00-\x7F]|\\[^\r\n\f]))(?:[_a-zA-Z0-9-]|[^\x00-\x7F]|\\[^\r\n\f])*`

var (
	// classSelectorPattern recognizes, in order: tokens left untouched
	// (attribute selectors, quoted strings), :global(...) and :local(...)
	// markers, and plain class selectors.
	classSelectorPattern = regexp.MustCompile(
		`\[(?:[^\]"']|"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')*\]` +
			`|"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'` +
			`|:(global|local)\(\s*((?:[^()]|\([^()]*\))*?)\s*\)` +
			`|\.(` + identPattern + `)`)

	// singleClassPattern matches a selector made of exactly one class
	singleClassPattern = regexp.MustCompile(`^\.(` + identPattern + `)$`)

	identOnlyPattern = regexp.MustCompile(`^` + identPattern + `$`)

	// globalAnimationPattern matches an animation name opted out of scoping
	globalAnimationPattern = regexp.MustCompile(`^global\(\s*(` + identPattern + `)\s*\)$`)

	// varPattern matches the custom property referenced by var()
	varPattern = regexp.MustCompile(`var\(\s*(--[A-Za-z0-9_-]+)`)
)

// animationKeywords are shorthand components that are never animation names
var animationKeywords = map[string]bool{
	"none": true, "initial": true, "inherit": true, "unset": true, "revert": true, "revert-layer": true,
	"ease": true, "ease-in": true, "ease-out": true, "ease-in-out": true, "linear": true,
	"step-start": true, "step-end": true, "infinite": true,
	"normal": true, "reverse": true, "alternate": true, "alternate-reverse": true,
	"forwards": true, "backwards": true, "both": true,
	"running": true, "paused": true,
	"auto": true, "replace": true, "add": true, "accumulate": true,
}

// splitTopLevel splits s on sep, ignoring separators inside parentheses or quotes
func splitTopLevel(s string, sep func(byte) bool) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
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
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep(ch):
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// splitList splits a comma-separated value list
func splitList(value string) []string {
	items := splitTopLevel(value, func(ch byte) bool { return ch == ',' })
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

// splitComponents splits one list item into whitespace-separated components
func splitComponents(item string) []string {
	var out []string
	for _, part := range splitTopLevel(item, isSpace) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

// replaceSubmatches is ReplaceAllStringFunc with access to capture groups.
// Unmatched groups are passed as empty strings.
func replaceSubmatches(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
