package toml

// The value layer turns an error-free syntax tree into tables, arrays and
// typed values. Unlike the parser it applies semantic rules: duplicate keys,
// redefined tables and key/table conflicts are reported here.

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

// =========================
// Value Model
// =========================

type ValueKind string

var tomlValueKinds = struct {
	ValueString        ValueKind
	ValueInt           ValueKind
	ValueFloat         ValueKind
	ValueBool          ValueKind
	ValueDatetime      ValueKind
	ValueLocalDate     ValueKind
	ValueLocalTime     ValueKind
	ValueLocalDatetime ValueKind
	ValueTable         ValueKind
	ValueArray         ValueKind
}{
	ValueString:        "string",
	ValueInt:           "int",
	ValueFloat:         "float",
	ValueBool:          "bool",
	ValueDatetime:      "datetime",
	ValueLocalDate:     "local_date",
	ValueLocalTime:     "local_time",
	ValueLocalDatetime: "local_datetime",
	ValueTable:         "table",
	ValueArray:         "array",
}

type Node interface {
	Kind() ValueKind
	Value() any
}

// -------- Table --------

type Table struct {
	Items map[string]Node
}

func NewTable() *Table {
	return &Table{Items: make(map[string]Node)}
}

func (*Table) Kind() ValueKind { return tomlValueKinds.ValueTable }

func (*Table) Value() any { return nil }

// -------- Array --------

type Array struct {
	Elems []Node
}

func (v *Array) Kind() ValueKind { return tomlValueKinds.ValueArray }

func (v *Array) Value() any { return v.Elems }

// -------- Value --------

type Value struct {
	Type ValueKind
	V    any
}

func (v *Value) Kind() ValueKind { return v.Type }

func (v *Value) Value() any { return v.V }

// =========================
// Public API
// =========================

// Decode reads a whole document from r and decodes it. Syntax errors are
// returned joined, one per diagnostic.
func Decode(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeString(string(data))
}

// DecodeString parses and decodes source.
func DecodeString(source string) (*Table, error) {
	res := Parse(source)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return DecodeTree(res.Tree)
}

// DecodeTree decodes a parsed tree. Trees holding ERROR nodes are rejected.
func DecodeTree(tree *syntax.Tree) (*Table, error) {
	d := &decoder{
		src:         tree.Source(),
		root:        NewTable(),
		defined:     make(map[*Table]bool),
		sealed:      make(map[*Table]bool),
		tableArrays: make(map[*Array]bool),
	}
	d.cur = d.root

	for _, c := range tree.Root().Children() {
		var err error
		switch c.Kind() {
		case syntax.Entry:
			err = d.entry(d.cur, c.(*syntax.Node))
		case syntax.TableHeader:
			err = d.tableHeader(c.(*syntax.Node))
		case syntax.TableArrayHeader:
			err = d.arrayHeader(c.(*syntax.Node))
		case syntax.Error:
			err = d.errf(c.Span(), "syntax error")
		}
		if err != nil {
			return nil, err
		}
	}
	return d.root, nil
}

// =========================
// Decoder Implementation
// =========================

type decoder struct {
	src  string
	root *Table
	cur  *Table

	// defined holds tables opened by a [header]; sealed holds inline tables,
	// which cannot be extended afterwards; tableArrays holds arrays created
	// by [[header]], the only arrays a header may append to.
	defined     map[*Table]bool
	sealed      map[*Table]bool
	tableArrays map[*Array]bool
}

// errf reports a semantic error as a Diagnostic so callers can recover its
// position with errors.As.
func (d *decoder) errf(at syntax.Span, format string, args ...any) error {
	return Diagnostic{Span: at, Message: fmt.Sprintf(format, args...)}
}

// descend returns the table stored under part, creating it when missing.
// Headers may walk through an array of tables into its last element.
func (d *decoder) descend(t *Table, part string, at syntax.Span, header bool) (*Table, error) {
	n, ok := t.Items[part]
	if !ok {
		next := NewTable()
		t.Items[part] = next
		return next, nil
	}
	switch v := n.(type) {
	case *Table:
		if d.sealed[v] {
			return nil, d.errf(at, "inline table %q cannot be extended", part)
		}
		return v, nil
	case *Array:
		if header && d.tableArrays[v] && len(v.Elems) > 0 {
			return v.Elems[len(v.Elems)-1].(*Table), nil
		}
	}
	return nil, d.errf(at, "key %q already defined and is not a table", part)
}

func (d *decoder) tableHeader(n *syntax.Node) error {
	key := n.FindNode(syntax.Key)
	if key == nil || n.Has(syntax.Error) {
		return d.errf(n.Span(), "invalid table header")
	}
	parts, err := d.keyParts(key)
	if err != nil {
		return err
	}

	t := d.root
	for _, part := range parts[:len(parts)-1] {
		if t, err = d.descend(t, part, key.Span(), true); err != nil {
			return err
		}
	}
	last := parts[len(parts)-1]
	if existing, ok := t.Items[last].(*Table); ok && d.defined[existing] {
		return d.errf(key.Span(), "table %q already defined", key.Text(d.src))
	}
	if t, err = d.descend(t, last, key.Span(), false); err != nil {
		return err
	}
	d.defined[t] = true
	d.cur = t
	return nil
}

func (d *decoder) arrayHeader(n *syntax.Node) error {
	key := n.FindNode(syntax.Key)
	if key == nil || n.Has(syntax.Error) {
		return d.errf(n.Span(), "invalid array-of-table header")
	}
	parts, err := d.keyParts(key)
	if err != nil {
		return err
	}

	parent := d.root
	for _, part := range parts[:len(parts)-1] {
		if parent, err = d.descend(parent, part, key.Span(), true); err != nil {
			return err
		}
	}
	last := parts[len(parts)-1]
	var arr *Array
	switch existing := parent.Items[last].(type) {
	case nil:
		arr = &Array{Elems: make([]Node, 0)}
		d.tableArrays[arr] = true
		parent.Items[last] = arr
	case *Array:
		if !d.tableArrays[existing] {
			return d.errf(key.Span(), "key %q is a static array", last)
		}
		arr = existing
	default:
		return d.errf(key.Span(), "key %q already defined and is not an array", last)
	}
	newTbl := NewTable()
	arr.Elems = append(arr.Elems, newTbl)
	d.cur = newTbl
	return nil
}

func (d *decoder) entry(t *Table, n *syntax.Node) error {
	key := n.FindNode(syntax.Key)
	val := n.FindNode(syntax.Value)
	if key == nil || val == nil || n.Has(syntax.Error) {
		return d.errf(n.Span(), "invalid entry")
	}
	parts, err := d.keyParts(key)
	if err != nil {
		return err
	}

	for _, part := range parts[:len(parts)-1] {
		if t, err = d.descend(t, part, key.Span(), false); err != nil {
			return err
		}
	}
	last := parts[len(parts)-1]
	if _, exists := t.Items[last]; exists {
		return d.errf(key.Span(), "duplicate key %q", key.Text(d.src))
	}
	v, err := d.value(val)
	if err != nil {
		return err
	}
	t.Items[last] = v
	return nil
}

func (d *decoder) keyParts(key *syntax.Node) ([]string, error) {
	var parts []string
	for _, c := range key.Children() {
		tok, ok := c.(*syntax.Token)
		if !ok {
			return nil, d.errf(c.Span(), "invalid key")
		}
		text := tok.Text(d.src)
		switch tok.Kind() {
		case syntax.Ident, syntax.IdentWithGlob:
			parts = append(parts, text)
		case syntax.String:
			s, err := decodeBasicString(text[1:len(text)-1], false)
			if err != nil {
				return nil, d.errf(tok.Span(), "%v", err)
			}
			parts = append(parts, s)
		case syntax.StringLiteral:
			parts = append(parts, text[1:len(text)-1])
		case syntax.Whitespace, syntax.Period:
		default:
			return nil, d.errf(tok.Span(), "invalid key part %q", text)
		}
	}
	if len(parts) == 0 {
		return nil, d.errf(key.Span(), "empty key")
	}
	return parts, nil
}

func (d *decoder) value(n *syntax.Node) (Node, error) {
	for _, c := range n.Children() {
		switch e := c.(type) {
		case *syntax.Token:
			return d.scalar(e)
		case *syntax.Node:
			switch e.Kind() {
			case syntax.Array:
				return d.array(e)
			case syntax.InlineTable:
				return d.inlineTable(e)
			}
		}
	}
	return nil, d.errf(n.Span(), "empty value")
}

func (d *decoder) array(n *syntax.Node) (*Array, error) {
	arr := &Array{Elems: make([]Node, 0)}
	for c := range n.ChildNodes() {
		switch c.Kind() {
		case syntax.Value:
			v, err := d.value(c)
			if err != nil {
				return nil, err
			}
			arr.Elems = append(arr.Elems, v)
		case syntax.Error:
			return nil, d.errf(c.Span(), "invalid array")
		}
	}
	return arr, nil
}

func (d *decoder) inlineTable(n *syntax.Node) (*Table, error) {
	t := NewTable()
	for c := range n.ChildNodes() {
		switch c.Kind() {
		case syntax.Entry:
			if err := d.entry(t, c); err != nil {
				return nil, err
			}
		case syntax.Error:
			return nil, d.errf(c.Span(), "invalid inline table")
		}
	}
	d.sealed[t] = true
	return t, nil
}

func (d *decoder) scalar(tok *syntax.Token) (Node, error) {
	text := tok.Text(d.src)
	str := func(s string) Node { return &Value{Type: tomlValueKinds.ValueString, V: s} }

	switch tok.Kind() {
	case syntax.String:
		s, err := decodeBasicString(text[1:len(text)-1], false)
		if err != nil {
			return nil, d.errf(tok.Span(), "%v", err)
		}
		return str(s), nil
	case syntax.MultiLineString:
		s, err := decodeBasicString(trimFirstNewline(text[3:len(text)-3]), true)
		if err != nil {
			return nil, d.errf(tok.Span(), "%v", err)
		}
		return str(s), nil
	case syntax.StringLiteral:
		return str(text[1 : len(text)-1]), nil
	case syntax.MultiLineStringLiteral:
		return str(trimFirstNewline(text[3 : len(text)-3])), nil

	case syntax.Bool:
		return &Value{Type: tomlValueKinds.ValueBool, V: text == "true"}, nil

	case syntax.Integer, syntax.IntegerHex, syntax.IntegerOct, syntax.IntegerBin:
		i, err := parseIntToken(text)
		if err != nil {
			return nil, d.errf(tok.Span(), "invalid integer %q", text)
		}
		return &Value{Type: tomlValueKinds.ValueInt, V: i}, nil

	case syntax.Float:
		f, err := parseFloatToken(text)
		if err != nil {
			return nil, d.errf(tok.Span(), "invalid float %q", text)
		}
		return &Value{Type: tomlValueKinds.ValueFloat, V: f}, nil

	case syntax.DateTimeOffset:
		t, err := time.Parse(time.RFC3339Nano, normalizeDateTime(text))
		if err != nil {
			return nil, d.errf(tok.Span(), "invalid date-time %q", text)
		}
		return &Value{Type: tomlValueKinds.ValueDatetime, V: t}, nil

	case syntax.DateTimeLocal, syntax.Date, syntax.Time:
		if v, ok := parseLocalDateTimeVariants(normalizeDateTime(text)); ok {
			return v, nil
		}
		return nil, d.errf(tok.Span(), "invalid date or time %q", text)
	}
	return nil, d.errf(tok.Span(), "unsupported value %q", text)
}

// =========================
// Literal decoding
// =========================

// trimFirstNewline drops the line break directly after an opening
// multi-line delimiter.
func trimFirstNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}

func decodeBasicString(s string, multiline bool) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			out.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			return "", errors.New("invalid escape")
		}
		if multiline {
			if next, ok := lineContinuation(s, i+1); ok {
				i = next - 1
				continue
			}
		}
		i++
		switch s[i] {
		case 'b':
			out.WriteByte('\b')
		case 't':
			out.WriteByte('\t')
		case 'n':
			out.WriteByte('\n')
		case 'f':
			out.WriteByte('\f')
		case 'r':
			out.WriteByte('\r')
		case '"':
			out.WriteByte('"')
		case '\\':
			out.WriteByte('\\')
		case 'u':
			if i+4 >= len(s) {
				return "", errors.New("invalid unicode escape")
			}
			r, err := parseHexRune(s[i+1 : i+5])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += 4
		case 'U':
			if i+8 >= len(s) {
				return "", errors.New("invalid unicode escape")
			}
			r, err := parseHexRune(s[i+1 : i+9])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += 8
		default:
			return "", errors.New("unsupported escape")
		}
	}
	return out.String(), nil
}

// lineContinuation matches the rest of a line-ending backslash starting at
// i, the byte after the backslash. It returns the index of the first byte
// that is neither whitespace nor a line break.
func lineContinuation(s string, i int) (int, bool) {
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	switch {
	case strings.HasPrefix(s[j:], "\n"):
		j++
	case strings.HasPrefix(s[j:], "\r\n"):
		j += 2
	default:
		return 0, false
	}
	for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
		j++
	}
	return j, true
}

func parseHexRune(h string) (rune, error) {
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, err
	}
	if !utf8.ValidRune(rune(v)) {
		return 0, fmt.Errorf("escape \\u%s is not a unicode scalar value", h)
	}
	return rune(v), nil
}

// normalizeDateTime rewrites the separators TOML allows into the forms the
// time layouts expect.
func normalizeDateTime(s string) string {
	b := []byte(s)
	if len(b) > 10 && (b[10] == ' ' || b[10] == 't') {
		b[10] = 'T'
	}
	for i := range b {
		switch b[i] {
		case 'z':
			b[i] = 'Z'
		case ',':
			b[i] = '.'
		}
	}
	return string(b)
}

func parseLocalDateTimeVariants(s string) (Node, bool) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return &Value{Type: tomlValueKinds.ValueLocalDatetime, V: t}, true
		}
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return &Value{Type: tomlValueKinds.ValueLocalDate, V: d}, true
	}
	timeLayouts := []string{
		"15:04:05",
		"15:04:05.999999999",
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return &Value{Type: tomlValueKinds.ValueLocalTime, V: t}, true
		}
	}
	return nil, false
}

// parseIntToken handles signs, underscores and the 0x, 0o and 0b prefixes.
func parseIntToken(s string) (int64, error) {
	if len(s) > 2 && s[0] == '0' && strings.IndexByte("xob", s[1]) >= 0 {
		return strconv.ParseInt(s, 0, 64)
	}
	return strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
}

func parseFloatToken(s string) (float64, error) {
	switch s {
	case "inf", "+inf":
		return math.Inf(+1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "+nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
}

// =========================
// Comparison
// =========================

// Equal reports whether two decoded nodes hold the same data. NaN equals
// NaN and times are compared as instants.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Table:
		y, ok := b.(*Table)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for k, xv := range x.Items {
			yv, ok := y.Items[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Value:
		y, ok := b.(*Value)
		if !ok || x.Type != y.Type {
			return false
		}
		switch xv := x.V.(type) {
		case float64:
			yv := y.V.(float64)
			return xv == yv || math.IsNaN(xv) && math.IsNaN(yv)
		case time.Time:
			return xv.Equal(y.V.(time.Time))
		}
		return x.V == y.V
	}
	return a == nil && b == nil
}

// =========================
// Safe Access Helpers
// =========================

func Get(root *Table, path ...string) (Node, bool) {
	var cur Node = root
	for _, p := range path {
		if len(p) == 0 {
			continue
		}
		t, ok := cur.(*Table)
		if !ok {
			return nil, false
		}
		cur, ok = t.Items[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func GetUntyped(root *Table, path ...string) (any, bool) {
	n, ok := Get(root, path...)
	if !ok {
		return nil, false
	}
	return ToUntyped(n), true
}

func ToUntyped(n Node) any {
	return ToUntypedWith(n, nil)
}

// ToUntypedWith is ToUntyped with scalar deciding what each value becomes.
// A nil scalar keeps the decoded Go value.
func ToUntypedWith(n Node, scalar func(*Value) any) any {
	switch v := n.(type) {
	case *Value:
		if scalar == nil {
			return v.V
		}
		return scalar(v)
	case *Array:
		out := make([]any, len(v.Elems))
		for i := range v.Elems {
			out[i] = ToUntypedWith(v.Elems[i], scalar)
		}
		return out
	case *Table:
		m := make(map[string]any, len(v.Items))
		for k, child := range v.Items {
			m[k] = ToUntypedWith(child, scalar)
		}
		return m
	default:
		return nil
	}
}

func MustString(n Node) string {
	v := n.(*Value)
	return v.V.(string)
}

func MustInt(n Node) int64 {
	v := n.(*Value)
	return v.V.(int64)
}
