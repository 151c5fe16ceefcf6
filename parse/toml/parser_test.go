package toml

import (
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

const validDocument = `# This is a TOML document

title = "TOML Example"
"quoted key" = 'literal'
site."google.com" = true
1234 = "bare numeric key"

[owner]
name = "Tom Preston-Werner"
dob = 1979-05-27T07:32:00-08:00 # First class dates

[database]
enabled = true
ports = [ 8000, 8001, 8002 ]
data = [ ["delta", "phi"], [3.14] ]
temp_targets = { cpu = 79.5, case = 72.0 }
limits = [
  0x10, 0o17, 0b11, # bases
  1_000,
  -inf, nan, +1.5e-3,
]

[servers.*]
role = """
multi "line" \
  text"""
raw = '''C:\Users\'''

[[fruits]]
name = "apple"
when = [1979-05-27, 07:32:00, 1979-05-27 07:32:00.5]

[[fruits]]
name = "banana"
inline = {
  multi = "line",
  allowed = true, # since 1.1
}
`

func leaves(tree *syntax.Tree) string {
	var b strings.Builder
	for tok := range tree.Root().Tokens() {
		b.WriteString(tok.Text(tree.Source()))
	}
	return b.String()
}

func containsError(n *syntax.Node) bool {
	for e := range n.Descendants() {
		if e.Kind() == syntax.Error {
			return true
		}
	}
	return false
}

func messages(res *Result) []string {
	out := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Message
	}
	return out
}

func TestParseValid(t *testing.T) {
	convey.Convey("a representative document parses cleanly", t, func() {
		res := Parse(validDocument)
		convey.So(messages(res), convey.ShouldBeEmpty)
		convey.So(res.OK(), convey.ShouldBeTrue)
		convey.So(res.Err(), convey.ShouldBeNil)
		convey.So(leaves(res.Tree), convey.ShouldEqual, validDocument)

		root, err := DecodeTree(res.Tree)
		convey.So(err, convey.ShouldBeNil)
		fruits, ok := Get(root, "fruits")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(len(fruits.(*Array).Elems), convey.ShouldEqual, 2)
		role, ok := Get(root, "servers", "*", "role")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(MustString(role), convey.ShouldEqual, `multi "line" text`)
	})

	convey.Convey("tree shape of a single entry", t, func() {
		res := Parse("a = 1\n")
		convey.So(res.OK(), convey.ShouldBeTrue)
		convey.So(res.Tree.Dump(), convey.ShouldEqual, `ROOT@0..6
  ENTRY@0..5
    KEY@0..1
      IDENT@0..1 "a"
    WHITESPACE@1..2 " "
    EQ@2..3 "="
    WHITESPACE@3..4 " "
    VALUE@4..5
      INTEGER@4..5 "1"
  NEWLINE@5..6 "\n"
`)
	})

	convey.Convey("headers and dotted keys", t, func() {
		res := Parse("[a.b]\n[[c]]\nx . y = 1\n")
		convey.So(res.OK(), convey.ShouldBeTrue)

		var kinds []syntax.Kind
		for n := range res.Tree.Root().ChildNodes() {
			kinds = append(kinds, n.Kind())
		}
		convey.So(kinds, convey.ShouldResemble, []syntax.Kind{syntax.TableHeader, syntax.TableArrayHeader, syntax.Entry})

		src := res.Tree.Source()
		var keys []string
		for e := range res.Tree.Root().Descendants() {
			if e.Kind() == syntax.Key {
				keys = append(keys, e.Text(src))
			}
		}
		convey.So(keys, convey.ShouldResemble, []string{"a.b", "c", "x . y"})
	})

	convey.Convey("value position inf and nan become floats", t, func() {
		res := Parse("a = inf\nb = nan\n")
		convey.So(res.OK(), convey.ShouldBeTrue)
		var floats int
		for tok := range res.Tree.Root().Tokens() {
			if tok.Kind() == syntax.Float {
				floats++
			}
		}
		convey.So(floats, convey.ShouldEqual, 2)
	})

	convey.Convey("empty and trivia-only input", t, func() {
		for _, src := range []string{"", "\n", "  # only a comment", "\r\n\r\n"} {
			res := Parse(src)
			convey.So(res.OK(), convey.ShouldBeTrue)
			convey.So(leaves(res.Tree), convey.ShouldEqual, src)
			convey.So(res.Tree.Root().Span(), convey.ShouldResemble, syntax.Span{Start: 0, End: len(src)})
		}
	})
}

func TestParseDiagnostics(t *testing.T) {
	cases := []struct {
		src    string
		offset int
		want   string
	}{
		{`a = "abc`, 4, "unterminated string"},
		{"a 1", 2, "expected '=' after the key"},
		{"a = ", 4, "expected a value, found end of input"},
		{"[a", 2, "expected ']'"},
		{"[]", 1, "expected a key"},
		{"a = [1 2]", 7, "expected ',' or ']'"},
		{"a = [,]", 5, "expected a value"},
		{"a = {b = 1", 10, "'}' to close the inline table"},
		{"a = 1 b = 2", 6, "expected a newline"},
		{`a = "\q"`, 5, "invalid escape sequence"},
		{"a = 0123", 4, "leading zeros are not allowed"},
		{"a = 1__0", 4, "underscores in numbers must sit between digits"},
		{"a = 1_", 4, "underscores in numbers must sit between digits"},
		{"# bad \x01", 6, "control character in comment"},
		{"a = 'x\x7f'", 6, "control character in literal string"},
		{`"""k""" = 1`, 0, "multi-line strings cannot be used as keys"},
		{"= 1", 0, "expected a key or a table header"},
		{"a = @\nb = 1\n", 4, `expected a value, found "@"`},
	}
	for _, c := range cases {
		convey.Convey(c.src, t, func() {
			res := Parse(c.src)
			convey.So(res.OK(), convey.ShouldBeFalse)
			convey.So(res.Diagnostics[0].Offset(), convey.ShouldEqual, c.offset)
			convey.So(res.Diagnostics[0].Message, convey.ShouldContainSubstring, c.want)
			convey.So(leaves(res.Tree), convey.ShouldEqual, c.src)
		})
	}

	convey.Convey("diagnostics render with their offset", t, func() {
		res := Parse("a = ")
		convey.So(res.Diagnostics[0].Error(), convey.ShouldEqual, "toml:4: expected a value, found end of input")
		convey.So(res.Err(), convey.ShouldNotBeNil)
	})

	convey.Convey("recovery keeps the following lines", t, func() {
		res := Parse("a = @\nb = 1\n")
		convey.So(len(res.Diagnostics), convey.ShouldEqual, 1)

		var entries []*syntax.Node
		for n := range res.Tree.Root().ChildNodes() {
			entries = append(entries, n)
		}
		convey.So(len(entries), convey.ShouldEqual, 2)
		convey.So(entries[0].Has(syntax.Error), convey.ShouldBeTrue)
		convey.So(entries[1].Has(syntax.Error), convey.ShouldBeFalse)
	})

	convey.Convey("constructs cut short hold an ERROR node", t, func() {
		for _, src := range []string{"1", "nan", "[", "[[", "[a", "a = 1\nb", "a.", "a. = 1", "a = ", "a = [1", "a = {b = 1", "true-2\t"} {
			res := Parse(src)
			convey.So(res.OK(), convey.ShouldBeFalse)
			var broken *syntax.Node
			for n := range res.Tree.Root().ChildNodes() {
				broken = n
			}
			convey.So(broken, convey.ShouldNotBeNil)
			convey.So(containsError(broken), convey.ShouldBeTrue)
			convey.So(leaves(res.Tree), convey.ShouldEqual, src)
		}
	})

	convey.Convey("every invalid escape is reported", t, func() {
		res := Parse(`a = "\q and \x"`)
		convey.So(len(res.Diagnostics), convey.ShouldEqual, 2)
		convey.So(res.Diagnostics[0].Offset(), convey.ShouldEqual, 5)
		convey.So(res.Diagnostics[1].Offset(), convey.ShouldEqual, 12)
	})

	convey.Convey("invalid calendar dates are not dates", t, func() {
		convey.So(Parse("a = 2023-02-29\n").OK(), convey.ShouldBeFalse)
		convey.So(Parse("a = 2024-02-29\n").OK(), convey.ShouldBeTrue)
	})

	convey.Convey("deep nesting is cut off", t, func() {
		src := "a = " + strings.Repeat("[", 300)
		res := Parse(src)
		convey.So(leaves(res.Tree), convey.ShouldEqual, src)
		found := false
		for _, m := range messages(res) {
			if strings.Contains(m, "nesting deeper than 256 levels") {
				found = true
			}
		}
		convey.So(found, convey.ShouldBeTrue)
	})

	convey.Convey("duplicate keys are not a syntax error", t, func() {
		convey.So(Parse("a = 1\na = 2\n[t]\n[t]\n").OK(), convey.ShouldBeTrue)
	})
}

func TestParseOptions(t *testing.T) {
	convey.Convey("glob keys", t, func() {
		src := "[servers.*]\n\"x\".a?c = 1\n"
		convey.So(Parse(src).OK(), convey.ShouldBeTrue)

		res := ParseWithOptions(src, Options{DisallowGlobKeys: true})
		convey.So(messages(res), convey.ShouldResemble, []string{
			"glob patterns are not allowed in keys",
			"glob patterns are not allowed in keys",
		})
		convey.So(res.Diagnostics[0].Offset(), convey.ShouldEqual, 9)
	})

	convey.Convey("inline tables before 1.1", t, func() {
		v10, err := ParseVersion("1.0.0")
		convey.So(err, convey.ShouldBeNil)
		opts := Options{Version: v10}

		multiLine := "a = {\n  b = 1\n}\n"
		convey.So(Parse(multiLine).OK(), convey.ShouldBeTrue)
		convey.So(ParseWithOptions(multiLine, opts).OK(), convey.ShouldBeFalse)

		trailing := "a = { b = 1, }\n"
		convey.So(Parse(trailing).OK(), convey.ShouldBeTrue)
		res := ParseWithOptions(trailing, opts)
		convey.So(messages(res), convey.ShouldResemble, []string{"trailing comma in inline table before TOML 1.1"})
		convey.So(res.Diagnostics[0].Offset(), convey.ShouldEqual, 11)

		convey.So(ParseWithOptions("a = { b = 1, c = 2 }\n", opts).OK(), convey.ShouldBeTrue)
	})

	convey.Convey("version parsing", t, func() {
		v, err := ParseVersion("1.1")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v.String(), convey.ShouldEqual, "1.1.0")

		_, err = ParseVersion("2.0.0")
		convey.So(err, convey.ShouldNotBeNil)
		_, err = ParseVersion("0.5.0")
		convey.So(err, convey.ShouldNotBeNil)
		_, err = ParseVersion("latest")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestLineCol(t *testing.T) {
	convey.Convey("offsets to positions", t, func() {
		src := "ab\ncé\nx"
		line, col := LineCol(src, 0)
		convey.So([]int{line, col}, convey.ShouldResemble, []int{1, 1})
		line, col = LineCol(src, 3)
		convey.So([]int{line, col}, convey.ShouldResemble, []int{2, 1})
		line, col = LineCol(src, 6)
		convey.So([]int{line, col}, convey.ShouldResemble, []int{2, 3})
		line, col = LineCol(src, 100)
		convey.So([]int{line, col}, convey.ShouldResemble, []int{3, 2})
	})
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"",
		validDocument,
		"a = \"open\n[b\n",
		"x = [1, {y = [2, ,]}, '''\n",
		"\xff\xfe = \x00",
		"a = \"\"\"\"\"\"\"\"",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		res := Parse(src)
		if got := leaves(res.Tree); got != src {
			t.Fatalf("leaves %q != source %q", got, src)
		}
		if span := res.Tree.Root().Span(); span.Start != 0 || span.End != len(src) {
			t.Fatalf("root span %v for %d bytes", span, len(src))
		}
	})
}
