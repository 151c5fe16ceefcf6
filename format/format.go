// Package format re-emits TOML documents in a normalized layout. Literal
// text (keys, strings, numbers, dates and comments) is copied as is; only
// the whitespace between tokens changes. Lines holding syntax errors are
// kept verbatim.
package format

import (
	"strings"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
	"github.com/dzjyyds666/tomlfmt/parse/toml"
)

// Format parses source and formats the resulting tree.
func Format(source string, opts Options) string {
	return FormatTree(toml.Parse(source).Tree, opts)
}

// FormatTree formats a parsed tree. Trees with errors are formatted around
// the broken parts.
func FormatTree(tree *syntax.Tree, opts Options) string {
	f := &formatter{
		src:  tree.Source(),
		opts: opts,
		nl:   newlineStyle(tree.Source()),
	}
	f.w = &writer{nl: f.nl, maxNewlines: opts.maxNewlines()}
	f.root(tree.Root())
	return f.w.finish(!opts.OmitFinalNewline)
}

// newlineStyle picks the line ending of the first line break.
func newlineStyle(src string) string {
	if i := strings.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

type formatter struct {
	src  string
	opts Options
	nl   string
	w    *writer

	// indentation levels of headers and of the lines that follow them
	headerLevel int
	entryLevel  int
}

func (f *formatter) indent(level int) string {
	return strings.Repeat(f.opts.indent(), level)
}

func (f *formatter) root(root *syntax.Node) {
	lineStart := true
	pendingSpace := ""

	// lead writes what goes before a formatted element on the current line.
	lead := func(level int) {
		if lineStart {
			f.w.WriteString(f.indent(level))
		} else {
			f.w.WriteString(" ")
		}
	}

	for _, c := range root.Children() {
		kind := c.Kind()
		text := c.Text(f.src)
		switch kind {
		case syntax.Whitespace:
			pendingSpace = text
			continue
		case syntax.Newline:
			f.w.Newlines(strings.Count(text, "\n"))
			lineStart = true
			pendingSpace = ""
			continue
		}

		n, _ := c.(*syntax.Node)
		switch {
		case kind == syntax.Comment:
			lead(f.entryLevel)
			f.w.WriteString(trimComment(text))
		case kind == syntax.Entry && !broken(n):
			lead(f.entryLevel)
			f.w.WriteString(f.entry(n, f.indent(f.entryLevel)))
		case (kind == syntax.TableHeader || kind == syntax.TableArrayHeader) && !broken(n):
			f.enterTable(n)
			lead(f.headerLevel)
			f.w.WriteString(f.header(n))
		default:
			// broken lines keep their original spacing
			f.w.WriteString(pendingSpace)
			f.w.WriteString(text)
		}
		lineStart = false
		pendingSpace = ""
	}
}

func (f *formatter) enterTable(header *syntax.Node) {
	f.headerLevel = 0
	if f.opts.IndentTables {
		if key := header.FindNode(syntax.Key); key != nil {
			f.headerLevel = len(keyParts(key)) - 1
		}
	}
	f.entryLevel = f.headerLevel
	if f.opts.IndentEntries {
		f.entryLevel++
	}
}

func (f *formatter) header(n *syntax.Node) string {
	key := f.key(n.FindNode(syntax.Key))
	if n.Kind() == syntax.TableArrayHeader {
		return "[[" + key + "]]"
	}
	return "[" + key + "]"
}

func (f *formatter) key(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range n.Children() {
		if c.Kind() != syntax.Whitespace {
			b.WriteString(c.Text(f.src))
		}
	}
	return b.String()
}

func keyParts(n *syntax.Node) []*syntax.Token {
	var parts []*syntax.Token
	for _, c := range n.Children() {
		if t, ok := c.(*syntax.Token); ok && t.Kind() != syntax.Whitespace && t.Kind() != syntax.Period {
			parts = append(parts, t)
		}
	}
	return parts
}

// entry formats `key = value`; indent is the indentation of the line the
// entry starts on.
func (f *formatter) entry(n *syntax.Node, indent string) string {
	return f.key(n.FindNode(syntax.Key)) + f.opts.entrySeparator() + f.value(n.FindNode(syntax.Value), indent)
}

func (f *formatter) value(n *syntax.Node, indent string) string {
	if n == nil {
		return ""
	}
	for _, c := range n.Children() {
		switch c.Kind() {
		case syntax.Array:
			return f.array(c.(*syntax.Node), indent)
		case syntax.InlineTable:
			return f.inlineTable(c.(*syntax.Node), indent)
		default:
			return c.Text(f.src)
		}
	}
	return ""
}

func isMultiLine(n *syntax.Node) bool {
	return n.Has(syntax.Newline) || n.Has(syntax.Comment)
}

func (f *formatter) array(n *syntax.Node, indent string) string {
	if isMultiLine(n) {
		return f.multiLineArray(n, indent)
	}

	var elems, seps []string
	for c := range n.ChildNodes() {
		seps = append(seps, f.separatorAfter(c))
		elems = append(elems, f.value(c, indent))
	}
	if len(elems) == 0 {
		return "[]"
	}
	pad := ""
	if f.opts.PadArrays {
		pad = " "
	}
	return "[" + pad + join(elems, seps) + pad + "]"
}

// multiLineArray keeps the line structure of the array: one line per line
// of input with blank lines removed, elements one level deeper than the
// line the array starts on and the closing bracket on its own line.
func (f *formatter) multiLineArray(n *syntax.Node, indent string) string {
	inner := indent + f.opts.indent()
	children := n.Children()

	last := -1
	for i, c := range children {
		if c.Kind() == syntax.Value {
			last = i
		}
	}
	commaAfterLast := false
	for _, c := range children[last+1:] {
		if c.Kind() == syntax.Comma {
			commaAfterLast = true
		}
	}

	var b strings.Builder
	lineStart := false
	afterComma := false
	sep := f.opts.commaSeparator()
	for i, c := range children {
		switch c.Kind() {
		case syntax.BracketStart:
			b.WriteString("[")
		case syntax.BracketEnd:
			if !lineStart {
				b.WriteString(f.nl)
			}
			b.WriteString(indent + "]")
		case syntax.Whitespace:
		case syntax.Newline:
			if !lineStart {
				b.WriteString(f.nl)
				lineStart = true
			}
		case syntax.Comment:
			if lineStart {
				b.WriteString(inner)
			} else {
				b.WriteString(" ")
			}
			b.WriteString(trimComment(c.Text(f.src)))
			lineStart = false
		case syntax.Comma:
			if lineStart {
				b.WriteString(inner)
			}
			b.WriteString(",")
			lineStart = false
			afterComma = true
		case syntax.Value:
			switch {
			case lineStart:
				b.WriteString(inner)
			case afterComma:
				b.WriteString(strings.TrimPrefix(sep, ","))
			}
			b.WriteString(f.value(c.(*syntax.Node), inner))
			if i == last && !commaAfterLast && !f.opts.OmitArrayTrailingComma {
				b.WriteString(",")
			}
			lineStart = false
			afterComma = false
			sep = f.separatorAfter(c.(*syntax.Node))
		}
	}
	return b.String()
}

func (f *formatter) inlineTable(n *syntax.Node, indent string) string {
	if isMultiLine(n) {
		return n.Text(f.src)
	}
	var entries, seps []string
	for c := range n.ChildNodes() {
		seps = append(seps, f.separatorAfter(c))
		entries = append(entries, f.entry(c, indent))
	}
	if len(entries) == 0 {
		return "{}"
	}
	pad := " "
	if f.opts.CompactInlineTables {
		pad = ""
	}
	return "{" + pad + join(entries, seps) + pad + "}"
}

func trimComment(s string) string {
	return strings.TrimRight(s, " \t")
}

// separatorAfter is the comma separator to write after n. A comma directly
// followed by a digit continues the fractional seconds of a time, so values
// ending in a time always keep the space.
func (f *formatter) separatorAfter(n *syntax.Node) string {
	sep := f.opts.commaSeparator()
	if sep != "," {
		return sep
	}
	var last syntax.Kind
	for tok := range n.Tokens() {
		if !tok.Kind().IsTrivia() {
			last = tok.Kind()
		}
	}
	if last == syntax.Time || last == syntax.DateTimeLocal {
		return ", "
	}
	return sep
}

// join writes parts[i] after the separator chosen for parts[i-1].
func join(parts, seps []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		b.WriteString(p)
	}
	return b.String()
}

// broken reports whether n must be copied verbatim: it holds an ERROR node
// or one of its parts is missing.
func broken(n *syntax.Node) bool {
	if incomplete(n) {
		return true
	}
	for e := range n.Descendants() {
		if e.Kind() == syntax.Error {
			return true
		}
		if c, ok := e.(*syntax.Node); ok && incomplete(c) {
			return true
		}
	}
	return false
}

func incomplete(n *syntax.Node) bool {
	switch n.Kind() {
	case syntax.Entry:
		return n.FindNode(syntax.Key) == nil || n.FindNode(syntax.Value) == nil
	case syntax.TableHeader:
		return n.FindNode(syntax.Key) == nil || count(n, syntax.BracketEnd) != 1
	case syntax.TableArrayHeader:
		return n.FindNode(syntax.Key) == nil || count(n, syntax.BracketEnd) != 2
	case syntax.Array:
		return !n.Has(syntax.BracketEnd)
	case syntax.InlineTable:
		return !n.Has(syntax.BraceEnd)
	case syntax.Value:
		return len(n.Children()) == 0
	}
	return false
}

func count(n *syntax.Node, kind syntax.Kind) int {
	c := 0
	for _, e := range n.Children() {
		if e.Kind() == kind {
			c++
		}
	}
	return c
}
