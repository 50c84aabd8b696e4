package modules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2/css"

	"github.com/yacobolo/cssmod/internal/scope"
)

const (
	semiReadableHashLength = 6
	encodedHashLength      = 8
)

// UtilityName derives the class name of one (property, value) pair. context
// names the enclosing at-rules and is empty for unconditional utilities. The
// result is a pure function of its arguments.
func UtilityName(prop, value, context string, mode UtilityMode) string {
	switch mode {
	case ModeReadable:
		name := prop + "[_" + readableText(value) + "]"
		if context != "" {
			name += "@" + readableText(context)
		}
		return name
	case ModeSemiReadable:
		return prop + "_" + scope.Hash(semiReadableHashLength, value, "\x00", context)
	default:
		return "_" + scope.Hash(encodedHashLength, prop, "\x00", value, "\x00", context)
	}
}

// readableText spells s for a readable name. Every space becomes "_". A literal
// "_", "[", "]", "@" or backslash gets a backslash prefix and other whitespace
// is written as \uXXXX, so two different texts never share a spelling.
func readableText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r == '_' || r == '\\' || r == '[' || r == ']' || r == '@':
			b.WriteByte('\\')
			b.WriteRune(r)
		case unicode.IsSpace(r):
			fmt.Fprintf(&b, "\\u%04x", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeIdent escapes name for use as a class selector, following the CSS
// identifier serialization rules.
func EscapeIdent(name string) string {
	if name != "" && css.IsIdent([]byte(name)) {
		return name
	}

	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune(unicode.ReplacementChar)
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f,
			i == 0 && r >= '0' && r <= '9',
			i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
