package ast

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// SyntaxError reports a structural problem in the CSS source.
type SyntaxError struct {
	Source string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Msg)
}

var importantPattern = regexp.MustCompile(`(?i)\s*!\s*important\s*$`)

// Parser turns CSS text into a Root. Nested rules (CSS nesting) are supported.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a parser. A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse is a shorthand for NewParser(nil).Parse.
func Parse(src string) (*Root, error) {
	return NewParser(nil).Parse([]byte(src))
}

type token struct {
	tt     css.TokenType
	text   string
	line   int
	column int
}

// parserState maintains context while building the tree
type parserState struct {
	source string
	stack  []Container
	opened []token // opening brace of every open block, for unclosed-block errors
	buf    []token
	parens int
	line   int
	column int
}

// Parse parses CSS text into a Root.
// The optional source parameter names the input in errors and debug logs.
func (p *Parser) Parse(data []byte, source ...string) (*Root, error) {
	name := "<input>"
	if len(source) > 0 && source[0] != "" {
		name = source[0]
	}
	p.log.Debug("Parsing CSS", zap.String("source", name), zap.Int("bytes", len(data)))

	root := NewRoot()
	state := &parserState{
		source: name,
		stack:  []Container{root},
		line:   1,
		column: 1,
	}

	lexer := css.NewLexer(parse.NewInputString(string(data)))
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, state.errorf(state.line, state.column, "%v", err)
			}
			break
		}

		tok := token{tt: tt, text: string(text), line: state.line, column: state.column}
		state.advance(tok.text)

		if err := state.handle(tok); err != nil {
			return nil, err
		}
	}

	if err := state.flush(); err != nil {
		return nil, err
	}
	if len(state.stack) > 1 {
		open := state.opened[len(state.opened)-1]
		return nil, state.errorf(open.line, open.column, "unclosed block")
	}

	return root, nil
}

// handle routes one token: structural tokens build nodes, everything else is buffered
func (s *parserState) handle(tok token) error {
	switch tok.tt {
	case css.CommentToken:
		// Comments between statements become nodes; inside a prelude or value they are dropped
		if s.bufferEmpty() {
			text := strings.TrimSuffix(strings.TrimPrefix(tok.text, "/*"), "*/")
			Append(s.current(), &Comment{Text: text})
		}
		return nil
	case css.CDOToken, css.CDCToken:
		return nil
	case css.FunctionToken, css.LeftParenthesisToken:
		s.parens++
	case css.RightParenthesisToken:
		if s.parens > 0 {
			s.parens--
		}
	case css.LeftBraceToken:
		if s.parens == 0 {
			return s.open(tok)
		}
	case css.SemicolonToken:
		if s.parens == 0 {
			return s.flush()
		}
	case css.RightBraceToken:
		s.parens = 0
		if err := s.flush(); err != nil {
			return err
		}
		return s.close(tok)
	}

	s.buf = append(s.buf, tok)
	return nil
}

// open starts a rule or an at-rule block from the buffered prelude
func (s *parserState) open(brace token) error {
	prelude := s.take()
	if len(prelude) == 0 {
		return s.errorf(brace.line, brace.column, "missing selector before {")
	}

	var node Container
	if prelude[0].tt == css.AtKeywordToken {
		node = &AtRule{
			Name:   strings.TrimPrefix(prelude[0].text, "@"),
			Params: joinTokens(prelude[1:]),
			Block:  true,
		}
	} else {
		node = &Rule{Selector: joinTokens(prelude)}
	}

	Append(s.current(), node)
	s.stack = append(s.stack, node)
	s.opened = append(s.opened, brace)
	return nil
}

// close ends the innermost block
func (s *parserState) close(brace token) error {
	if len(s.stack) == 1 {
		return s.errorf(brace.line, brace.column, "unexpected }")
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.opened = s.opened[:len(s.opened)-1]
	return nil
}

// flush turns the buffered statement into a declaration or a block-less at-rule
func (s *parserState) flush() error {
	stmt := s.take()
	if len(stmt) == 0 {
		return nil
	}

	if stmt[0].tt == css.AtKeywordToken {
		Append(s.current(), &AtRule{
			Name:   strings.TrimPrefix(stmt[0].text, "@"),
			Params: joinTokens(stmt[1:]),
		})
		return nil
	}

	colon := -1
	for i, tok := range stmt {
		if tok.tt == css.ColonToken {
			colon = i
			break
		}
	}
	if colon <= 0 {
		return s.errorf(stmt[0].line, stmt[0].column, "unknown word %q", joinTokens(stmt))
	}

	decl := &Declaration{
		Prop:  joinTokens(stmt[:colon]),
		Value: joinTokens(stmt[colon+1:]),
	}
	if loc := importantPattern.FindStringIndex(decl.Value); loc != nil {
		decl.Value = strings.TrimSpace(decl.Value[:loc[0]])
		decl.Important = true
	}

	Append(s.current(), decl)
	return nil
}

// take returns the buffered tokens without surrounding whitespace and resets the buffer
func (s *parserState) take() []token {
	toks := s.buf
	s.buf = nil

	for len(toks) > 0 && toks[0].tt == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].tt == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func (s *parserState) bufferEmpty() bool {
	for _, tok := range s.buf {
		if tok.tt != css.WhitespaceToken {
			return false
		}
	}
	return true
}

func (s *parserState) current() Container {
	return s.stack[len(s.stack)-1]
}

// advance moves the line/column cursor past text
func (s *parserState) advance(text string) {
	for _, r := range text {
		if r == '\n' {
			s.line++
			s.column = 1
		} else {
			s.column++
		}
	}
}

func (s *parserState) errorf(line, column int, format string, args ...any) error {
	return &SyntaxError{
		Source: s.source,
		Line:   line,
		Column: column,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// joinTokens rebuilds source text, collapsing whitespace runs to a single space
func joinTokens(toks []token) string {
	var b strings.Builder
	space := false
	for _, tok := range toks {
		if tok.tt == css.WhitespaceToken {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(tok.text)
	}
	return strings.TrimSpace(b.String())
}
