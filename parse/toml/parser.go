package toml

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dzjyyds666/tomlfmt/parse/lexer"
	"github.com/dzjyyds666/tomlfmt/parse/syntax"
	"github.com/dzjyyds666/tomlfmt/parse/validate"
)

// =========================
// Public API
// =========================

// Diagnostic is a recoverable syntax error.
type Diagnostic struct {
	Span    syntax.Span
	Message string
}

// Offset is the byte position the diagnostic points at.
func (d Diagnostic) Offset() int { return d.Span.Start }

func (d Diagnostic) Error() string {
	return fmt.Sprintf("toml:%d: %s", d.Span.Start, d.Message)
}

// LineCol converts a byte offset into a 1-based line and a 1-based column
// counted in characters.
func LineCol(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	before := source[:offset]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}

// Result is the outcome of a parse. Tree is never nil, even when the source
// is not valid TOML.
type Result struct {
	Tree        *syntax.Tree
	Diagnostics []Diagnostic
}

// OK reports whether the source parsed without diagnostics.
func (r *Result) OK() bool { return len(r.Diagnostics) == 0 }

// Err joins the diagnostics into one error, or returns nil.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i := range r.Diagnostics {
		errs[i] = r.Diagnostics[i]
	}
	return errors.Join(errs...)
}

// Parse parses source with default options.
func Parse(source string) *Result {
	return ParseWithOptions(source, Options{})
}

// ParseWithOptions parses source into a lossless syntax tree. It never
// fails: problems are reported as diagnostics and the offending text is kept
// in ERROR nodes.
func ParseWithOptions(source string, opts Options) *Result {
	p := &parser{
		src:    source,
		b:      syntax.NewBuilder(source),
		opts:   opts,
		legacy: opts.legacy(),
	}
	p.root()
	return &Result{Tree: p.b.Finish(), Diagnostics: p.diags}
}

// =========================
// Parser Implementation
// =========================

// maxDepth bounds nesting of arrays and inline tables.
const maxDepth = 256

// eof is returned by the lookahead at the end of the source.
const eof = syntax.Kind(^uint16(0))

type mode uint8

const (
	valueMode mode = iota
	keyMode
)

var (
	lineStops   = []syntax.Kind{syntax.Newline}
	arrayStops  = []syntax.Kind{syntax.Comma, syntax.BracketEnd, syntax.Newline, syntax.Comment}
	inlineStops = []syntax.Kind{syntax.Comma, syntax.BraceEnd, syntax.Newline, syntax.Comment}
)

type parser struct {
	src    string
	pos    int
	b      *syntax.Builder
	diags  []Diagnostic
	opts   Options
	legacy bool
	depth  int
}

func (p *parser) lexAt(at int, m mode) (syntax.Kind, int) {
	if at >= len(p.src) {
		return eof, 0
	}
	rest := p.src[at:]
	var kind syntax.Kind
	var n int
	var ok bool
	if m == keyMode {
		kind, n, ok = lexer.LexKey(rest)
	} else {
		kind, n, ok = lexer.Lex(rest)
	}
	if !ok {
		return syntax.Error, lexer.ErrorLen(rest)
	}
	return kind, n
}

func (p *parser) peek(m mode) syntax.Kind {
	kind, _ := p.lexAt(p.pos, m)
	return kind
}

// peekNonWhitespace looks past a whitespace token without consuming it.
func (p *parser) peekNonWhitespace(m mode) syntax.Kind {
	kind, n := p.lexAt(p.pos, m)
	if kind == syntax.Whitespace {
		kind, _ = p.lexAt(p.pos+n, m)
	}
	return kind
}

func (p *parser) bump(m mode) (syntax.Kind, string, int) {
	kind, n := p.lexAt(p.pos, m)
	return p.bumpAs(kind, n)
}

func (p *parser) bumpAs(kind syntax.Kind, n int) (syntax.Kind, string, int) {
	start := p.pos
	text := p.src[start : start+n]
	p.b.Token(kind, text)
	p.pos += n
	return kind, text, start
}

func (p *parser) whitespace(m mode) {
	if p.peek(m) == syntax.Whitespace {
		p.bump(m)
	}
}

func (p *parser) errorf(span syntax.Span, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Span: span, Message: fmt.Sprintf(format, args...)})
}

// report turns validator offsets relative to base into diagnostics.
func (p *parser) report(err error, base int) {
	var inv *validate.InvalidError
	if !errors.As(err, &inv) {
		return
	}
	for _, off := range inv.Offsets {
		p.errorf(syntax.Span{Start: base + off, End: base + off + 1}, "%s", inv.What)
	}
}

// unexpected records that the next token is not what the grammar wants.
func (p *parser) unexpected(m mode, want string) {
	kind, n := p.lexAt(p.pos, m)
	span := syntax.Span{Start: p.pos, End: p.pos + n}
	text := p.src[span.Start:span.End]
	switch {
	case kind == eof:
		p.errorf(span, "expected %s, found end of input", want)
	case kind == syntax.Error && (text == `"` || text == `'`):
		p.errorf(span, "unterminated string")
	default:
		p.errorf(span, "expected %s, found %s", want, describe(kind, text))
	}
}

func describe(kind syntax.Kind, text string) string {
	switch kind {
	case syntax.Newline:
		return "newline"
	case syntax.Whitespace:
		return "whitespace"
	case syntax.Comment:
		return "comment"
	}
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	return fmt.Sprintf("%q", text)
}

func isStop(kind syntax.Kind, stops []syntax.Kind) bool {
	if kind == eof {
		return true
	}
	for _, s := range stops {
		if kind == s {
			return true
		}
	}
	return false
}

// skipUntil wraps every token before the next stop in an ERROR node. The
// node is left empty when the stop is already next, so every failed
// construct holds an ERROR node.
func (p *parser) skipUntil(m mode, stops []syntax.Kind) {
	p.b.StartNode(syntax.Error)
	for !isStop(p.peek(m), stops) {
		p.bump(m)
	}
	p.b.FinishNode()
}

// missing marks a construct that ends early with an empty ERROR node.
func (p *parser) missing() {
	p.b.StartNode(syntax.Error)
	p.b.FinishNode()
}

// errorToken wraps exactly the next token in an ERROR node.
func (p *parser) errorToken(m mode) {
	p.b.StartNode(syntax.Error)
	p.bump(m)
	p.b.FinishNode()
}

func isKeyStart(kind syntax.Kind) bool {
	switch kind {
	case syntax.Ident, syntax.IdentWithGlob, syntax.String, syntax.StringLiteral,
		syntax.MultiLineString, syntax.MultiLineStringLiteral:
		return true
	}
	return false
}

// =========================
// Grammar
// =========================

func (p *parser) root() {
	p.b.StartNode(syntax.Root)
	for {
		switch kind := p.peek(keyMode); {
		case kind == eof:
			p.b.FinishNode()
			return
		case kind == syntax.Whitespace || kind == syntax.Newline:
			p.bump(keyMode)
		case kind == syntax.Comment:
			p.comment()
		case kind == syntax.BracketStart:
			p.header()
			p.lineEnd()
		case isKeyStart(kind):
			p.entry(lineStops)
			p.lineEnd()
		default:
			p.unexpected(keyMode, "a key or a table header")
			p.skipUntil(keyMode, lineStops)
		}
	}
}

func (p *parser) comment() {
	_, text, start := p.bump(valueMode)
	p.report(validate.Comment(text), start)
}

// lineEnd accepts trailing whitespace and a comment, then requires a line
// break or the end of input.
func (p *parser) lineEnd() {
	p.whitespace(valueMode)
	if p.peek(valueMode) == syntax.Comment {
		p.comment()
	}
	if isStop(p.peek(valueMode), lineStops) {
		return
	}
	p.unexpected(valueMode, "a newline")
	p.skipUntil(valueMode, lineStops)
}

func (p *parser) header() {
	kind := syntax.TableHeader
	if next, _ := p.lexAt(p.pos+1, keyMode); next == syntax.BracketStart {
		kind = syntax.TableArrayHeader
	}
	p.b.StartNode(kind)
	defer p.b.FinishNode()

	p.bump(keyMode)
	if kind == syntax.TableArrayHeader {
		p.bump(keyMode)
	}
	p.whitespace(keyMode)
	if !p.key() {
		p.skipUntil(keyMode, []syntax.Kind{syntax.BracketEnd, syntax.Newline})
	}
	p.whitespace(keyMode)

	if p.peek(keyMode) != syntax.BracketEnd {
		p.unexpected(keyMode, "']'")
		p.skipUntil(keyMode, lineStops)
		return
	}
	p.bump(keyMode)
	if kind == syntax.TableArrayHeader {
		if p.peek(keyMode) != syntax.BracketEnd {
			p.unexpected(keyMode, "']]' to close the array of tables header")
			p.skipUntil(keyMode, lineStops)
			return
		}
		p.bump(keyMode)
	}
}

// key parses a possibly dotted key. It reports false, without consuming
// anything, when no key starts here.
func (p *parser) key() bool {
	if !isKeyStart(p.peek(keyMode)) {
		p.unexpected(keyMode, "a key")
		return false
	}
	p.b.StartNode(syntax.Key)
	for {
		p.keyPart()
		if p.peekNonWhitespace(keyMode) != syntax.Period {
			break
		}
		p.whitespace(keyMode)
		p.bump(keyMode)
		p.whitespace(keyMode)
		if !isKeyStart(p.peek(keyMode)) {
			p.unexpected(keyMode, "a key after '.'")
			p.missing()
			break
		}
	}
	p.b.FinishNode()
	return true
}

func (p *parser) keyPart() {
	kind, text, start := p.bump(keyMode)
	switch kind {
	case syntax.MultiLineString, syntax.MultiLineStringLiteral:
		p.errorf(syntax.Span{Start: start, End: start + len(text)}, "multi-line strings cannot be used as keys")
	case syntax.IdentWithGlob:
		if p.opts.DisallowGlobKeys {
			p.errorf(syntax.Span{Start: start, End: start + len(text)}, "glob patterns are not allowed in keys")
		}
	default:
		p.checkLiteral(kind, text, start)
	}
}

// entry parses `key = value`. On error the rest of the entry, up to one of
// the stop tokens, is kept in an ERROR node inside the entry.
func (p *parser) entry(stops []syntax.Kind) {
	p.b.StartNode(syntax.Entry)
	defer p.b.FinishNode()

	p.key()
	p.whitespace(keyMode)
	if p.peek(keyMode) != syntax.Eq {
		p.unexpected(keyMode, "'=' after the key")
		p.skipUntil(valueMode, stops)
		return
	}
	p.bump(keyMode)
	p.whitespace(valueMode)
	p.value(stops)
}

func (p *parser) value(stops []syntax.Kind) bool {
	kind, n := p.lexAt(p.pos, valueMode)
	text := p.src[p.pos : p.pos+n]

	switch {
	case kind.IsScalar():
		p.b.StartNode(syntax.Value)
		_, _, start := p.bumpAs(kind, n)
		p.checkLiteral(kind, text, start)
		p.b.FinishNode()
		return true

	case kind == syntax.Ident && (text == "inf" || text == "nan"):
		p.b.StartNode(syntax.Value)
		p.bumpAs(syntax.Float, n)
		p.b.FinishNode()
		return true

	case kind == syntax.BracketStart || kind == syntax.BraceStart:
		if p.depth >= maxDepth {
			p.errorf(syntax.Span{Start: p.pos, End: p.pos + n}, "nesting deeper than %d levels", maxDepth)
			p.errorToken(valueMode)
			return false
		}
		p.depth++
		p.b.StartNode(syntax.Value)
		if kind == syntax.BracketStart {
			p.array()
		} else {
			p.inlineTable()
		}
		p.b.FinishNode()
		p.depth--
		return true
	}

	p.unexpected(valueMode, "a value")
	p.skipUntil(valueMode, stops)
	return false
}

func (p *parser) array() {
	p.b.StartNode(syntax.Array)
	defer p.b.FinishNode()
	p.bump(valueMode)

	needValue := true
	for {
		switch kind := p.peek(valueMode); {
		case kind == eof:
			p.unexpected(valueMode, "']' to close the array")
			p.missing()
			return
		case kind == syntax.Whitespace || kind == syntax.Newline:
			p.bump(valueMode)
		case kind == syntax.Comment:
			p.comment()
		case kind == syntax.BracketEnd:
			p.bump(valueMode)
			return
		case kind == syntax.Comma:
			if needValue {
				p.unexpected(valueMode, "a value")
				p.errorToken(valueMode)
				continue
			}
			p.bump(valueMode)
			needValue = true
		case !needValue:
			p.unexpected(valueMode, "',' or ']'")
			p.skipUntil(valueMode, arrayStops)
		default:
			if p.value(arrayStops) {
				needValue = false
			}
		}
	}
}

func (p *parser) inlineTable() {
	p.b.StartNode(syntax.InlineTable)
	defer p.b.FinishNode()
	p.bump(keyMode)

	needEntry := true
	var trailingComma syntax.Span
	for {
		kind, n := p.lexAt(p.pos, keyMode)
		span := syntax.Span{Start: p.pos, End: p.pos + n}
		switch {
		case kind == eof:
			p.unexpected(keyMode, "'}' to close the inline table")
			p.missing()
			return
		case kind == syntax.Whitespace:
			p.bump(keyMode)
		case kind == syntax.Newline || kind == syntax.Comment:
			if p.legacy {
				p.errorf(span, "inline tables must stay on one line before TOML 1.1")
			}
			if kind == syntax.Comment {
				p.comment()
			} else {
				p.bump(keyMode)
			}
		case kind == syntax.BraceEnd:
			if p.legacy && !trailingComma.IsEmpty() {
				p.errorf(trailingComma, "trailing comma in inline table before TOML 1.1")
			}
			p.bump(keyMode)
			return
		case kind == syntax.Comma:
			if needEntry {
				p.unexpected(keyMode, "a key")
				p.errorToken(keyMode)
				continue
			}
			p.bump(keyMode)
			needEntry = true
			trailingComma = span
		case isKeyStart(kind) && needEntry:
			p.entry(inlineStops)
			needEntry = false
			trailingComma = syntax.Span{}
		case isKeyStart(kind):
			p.unexpected(keyMode, "',' or '}'")
			p.skipUntil(keyMode, inlineStops)
		default:
			p.unexpected(keyMode, "a key")
			p.skipUntil(keyMode, inlineStops)
		}
	}
}

// =========================
// Literal checks
// =========================

func (p *parser) checkLiteral(kind syntax.Kind, text string, start int) {
	switch kind {
	case syntax.String:
		body := text[1 : len(text)-1]
		p.report(validate.String(body), start+1)
		p.report(validate.CheckEscape(body), start+1)
	case syntax.MultiLineString:
		body := text[3 : len(text)-3]
		p.report(validate.MultiLineString(body), start+3)
		p.report(validate.CheckEscape(body), start+3)
	case syntax.StringLiteral:
		p.report(validate.StringLiteral(text[1:len(text)-1]), start+1)
	case syntax.MultiLineStringLiteral:
		p.report(validate.MultiLineStringLiteral(text[3:len(text)-3]), start+3)
	case syntax.Integer, syntax.IntegerHex, syntax.IntegerOct, syntax.IntegerBin, syntax.Float:
		if msg := checkNumber(kind, text); msg != "" {
			p.errorf(syntax.Span{Start: start, End: start + len(text)}, "%s", msg)
		}
	}
}

func trimSign(s string) string {
	return strings.TrimLeft(s, "+-")
}
