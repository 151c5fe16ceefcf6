// Package lexer splits TOML source into syntax tokens. It is total: every
// byte of any input ends up in some token, unmatched input becoming ERROR
// tokens one scalar at a time.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

// Token is a lexed token with its text.
type Token struct {
	Kind syntax.Kind
	Span syntax.Span
	Text string
}

// Lex matches the next token at the start of input. It reports false when no
// rule matches; callers then consume ErrorLen(input) bytes as an ERROR token.
func Lex(input string) (syntax.Kind, int, bool) {
	return lex(input, false)
}

// LexKey is Lex for key positions: a bare run of key characters, glob
// characters included, is a single IDENT or IDENT_WITH_GLOB, so keys such as
// "true_value", "1234" or "2024-01-01" are one token.
func LexKey(input string) (syntax.Kind, int, bool) {
	return lex(input, true)
}

// ErrorLen is the number of bytes an ERROR token covers at the start of a
// non-empty input: one UTF-8 encoded scalar, or one byte of an invalid
// sequence.
func ErrorLen(input string) int {
	_, n := utf8.DecodeRuneInString(input)
	if n == 0 && len(input) > 0 {
		n = 1
	}
	return n
}

func lex(input string, key bool) (syntax.Kind, int, bool) {
	if len(input) == 0 {
		return syntax.Error, 0, false
	}
	first := input[0]

	switch first {
	case '.':
		return syntax.Period, 1, true
	case ',':
		return syntax.Comma, 1, true
	case '=':
		return syntax.Eq, 1, true
	case '[':
		return syntax.BracketStart, 1, true
	case ']':
		return syntax.BracketEnd, 1, true
	case '{':
		return syntax.BraceStart, 1, true
	case '}':
		return syntax.BraceEnd, 1, true
	}

	if isWhitespace(first) {
		return syntax.Whitespace, countWhile(input, isWhitespace), true
	}

	if first == '\n' {
		return syntax.Newline, countWhile(input, func(b byte) bool { return b == '\n' }), true
	}
	if first == '\r' {
		n := 0
		for n+1 < len(input) && input[n] == '\r' && input[n+1] == '\n' {
			n += 2
		}
		if n > 0 {
			return syntax.Newline, n, true
		}
	}

	if first == '#' {
		return syntax.Comment, countWhile(input, func(b byte) bool { return b != '\n' && b != '\r' }), true
	}

	if strings.HasPrefix(input, `"""`) {
		if n, ok := lexMultiLineString(input[3:], '"'); ok {
			return syntax.MultiLineString, 3 + n, true
		}
	}
	if strings.HasPrefix(input, `'''`) {
		if n, ok := lexMultiLineString(input[3:], '\''); ok {
			return syntax.MultiLineStringLiteral, 3 + n, true
		}
	}

	if first == '"' {
		if n, ok := lexString(input[1:]); ok {
			return syntax.String, 1 + n, true
		}
	}
	if first == '\'' {
		if n, ok := lexStringLiteral(input[1:]); ok {
			return syntax.StringLiteral, 1 + n, true
		}
	}

	if key {
		if isKeyChar(first) {
			n := countWhile(input, isKeyChar)
			if strings.ContainsAny(input[:n], "*?") {
				return syntax.IdentWithGlob, n, true
			}
			return syntax.Ident, n, true
		}
		return syntax.Error, 0, false
	}

	if strings.HasPrefix(input, "true") {
		return syntax.Bool, 4, true
	}
	if strings.HasPrefix(input, "false") {
		return syntax.Bool, 5, true
	}

	if isDigit(first) || first == '+' || first == '-' {
		if kind, n, ok := lexNumeric(input); ok {
			return kind, n, true
		}
	}

	if isIdentChar(first) {
		return syntax.Ident, countWhile(input, isIdentChar), true
	}

	if first == '*' || first == '?' {
		return syntax.IdentWithGlob, countWhile(input, isKeyChar), true
	}

	return syntax.Error, 0, false
}

// =========================
// Cursor
// =========================

// Lexer walks a source token by token.
type Lexer struct {
	source string
	pos    int
	span   syntax.Span
}

func New(source string) *Lexer {
	return &Lexer{source: source}
}

// Next returns the next token, or false at the end of input.
func (l *Lexer) Next() (Token, bool) {
	if l.pos >= len(l.source) {
		return Token{}, false
	}
	rest := l.source[l.pos:]
	kind, n, ok := Lex(rest)
	if !ok {
		kind, n = syntax.Error, ErrorLen(rest)
	}
	l.span = syntax.Span{Start: l.pos, End: l.pos + n}
	l.pos += n
	return Token{Kind: kind, Span: l.span, Text: l.source[l.span.Start:l.span.End]}, true
}

// Span is the span of the token last returned by Next.
func (l *Lexer) Span() syntax.Span { return l.span }

// Slice is the text of the token last returned by Next.
func (l *Lexer) Slice() string { return l.source[l.span.Start:l.span.End] }

// Remainder is the unconsumed input.
func (l *Lexer) Remainder() string { return l.source[l.pos:] }

// Tokenize lexes the whole source.
func Tokenize(source string) []Token {
	var out []Token
	l := New(source)
	for {
		tok, ok := l.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}

// =========================
// Character classes
// =========================

func isWhitespace(b byte) bool { return b == ' ' || b == '\t' }

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

func isIdentChar(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || isDigit(b) || b == '_' || b == '-'
}

func isKeyChar(b byte) bool {
	return isIdentChar(b) || b == '*' || b == '?'
}

func countWhile(s string, f func(byte) bool) int {
	n := 0
	for n < len(s) && f(s[n]) {
		n++
	}
	return n
}
