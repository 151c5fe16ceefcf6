package lexer

import (
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

func kinds(src string) []syntax.Kind {
	var out []syntax.Kind
	for _, tok := range Tokenize(src) {
		out = append(out, tok.Kind)
	}
	return out
}

func single(src string) (syntax.Kind, int) {
	kind, n, ok := Lex(src)
	if !ok {
		return syntax.Error, 0
	}
	return kind, n
}

func TestPunctuationAndTrivia(t *testing.T) {
	convey.Convey("punctuation", t, func() {
		convey.So(kinds(".,=[]{}"), convey.ShouldResemble, []syntax.Kind{
			syntax.Period, syntax.Comma, syntax.Eq,
			syntax.BracketStart, syntax.BracketEnd, syntax.BraceStart, syntax.BraceEnd,
		})
	})

	convey.Convey("whitespace and newlines group", t, func() {
		toks := Tokenize(" \t \n\n\r\n\r\nx")
		convey.So(len(toks), convey.ShouldEqual, 4)
		convey.So(toks[0].Text, convey.ShouldEqual, " \t ")
		convey.So(toks[1].Kind, convey.ShouldEqual, syntax.Newline)
		convey.So(toks[1].Text, convey.ShouldEqual, "\n\n")
		convey.So(toks[2].Kind, convey.ShouldEqual, syntax.Newline)
		convey.So(toks[2].Text, convey.ShouldEqual, "\r\n\r\n")
		convey.So(toks[3].Kind, convey.ShouldEqual, syntax.Ident)
	})

	convey.Convey("lone carriage return is an error", t, func() {
		convey.So(kinds("\rx"), convey.ShouldResemble, []syntax.Kind{syntax.Error, syntax.Ident})
	})

	convey.Convey("comment stops before the line break", t, func() {
		toks := Tokenize("# hi there\r\nx")
		convey.So(toks[0].Kind, convey.ShouldEqual, syntax.Comment)
		convey.So(toks[0].Text, convey.ShouldEqual, "# hi there")
		convey.So(toks[1].Kind, convey.ShouldEqual, syntax.Newline)
	})
}

func TestStrings(t *testing.T) {
	convey.Convey("basic and literal strings", t, func() {
		convey.So(Tokenize(`"a\"b" x`)[0].Text, convey.ShouldEqual, `"a\"b"`)
		convey.So(Tokenize(`"a\\" x`)[0].Text, convey.ShouldEqual, `"a\\"`)
		convey.So(Tokenize(`'C:\path' x`)[0].Text, convey.ShouldEqual, `'C:\path'`)
		kind, n := single(`'lit'`)
		convey.So(kind, convey.ShouldEqual, syntax.StringLiteral)
		convey.So(n, convey.ShouldEqual, 5)
	})

	convey.Convey("single-line strings do not cross lines", t, func() {
		toks := Tokenize("\"abc\n\"")
		convey.So(toks[0].Kind, convey.ShouldEqual, syntax.Error)
		convey.So(toks[0].Text, convey.ShouldEqual, `"`)
	})

	convey.Convey("multi-line strings", t, func() {
		kind, n := single("\"\"\"a\nb\"\"\" x")
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 9)

		kind, n = single("'''a\nb''' x")
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineStringLiteral)
		convey.So(n, convey.ShouldEqual, 9)

		kind, n = single(`""""""`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 6)
	})

	convey.Convey("closing quote runs", t, func() {
		// four and five quotes: one or two quotes of content, then the closer
		kind, n := single(`"""a""""`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 8)

		kind, n = single(`"""a""""" x`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 9)

		kind, n = single(`'''a''''' x`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineStringLiteral)
		convey.So(n, convey.ShouldEqual, 9)

		// six quotes cannot end a literal
		kind, _ = single(`"""a""""""`)
		convey.So(kind, convey.ShouldNotEqual, syntax.MultiLineString)
		kind, _ = single(`'''a'''''' x`)
		convey.So(kind, convey.ShouldNotEqual, syntax.MultiLineStringLiteral)
	})

	convey.Convey("escaped quotes do not close basic multi-line strings", t, func() {
		kind, n := single(`"""a\"""b""" x`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 12)

		kind, n = single(`"""a\\""" x`)
		convey.So(kind, convey.ShouldEqual, syntax.MultiLineString)
		convey.So(n, convey.ShouldEqual, 9)
	})

	convey.Convey("unterminated multi-line string falls back to errors", t, func() {
		toks := Tokenize(`"""abc`)
		convey.So(toks[0].Kind, convey.ShouldEqual, syntax.String)
		convey.So(toks[0].Text, convey.ShouldEqual, `""`)
	})
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind syntax.Kind
		text string
	}{
		{"42", syntax.Integer, "42"},
		{"+17 ", syntax.Integer, "+17"},
		{"-5_000\n", syntax.Integer, "-5_000"},
		{"3.1415", syntax.Float, "3.1415"},
		{"-0.01", syntax.Float, "-0.01"},
		{"5e+22", syntax.Float, "5e+22"},
		{"6.626e-34,", syntax.Float, "6.626e-34"},
		{"1.", syntax.Integer, "1"},
		{"0xDEAD_beef", syntax.IntegerHex, "0xDEAD_beef"},
		{"0o755", syntax.IntegerOct, "0o755"},
		{"0b1101", syntax.IntegerBin, "0b1101"},
		{"0x", syntax.Integer, "0"},
		{"nan", syntax.Float, "nan"},
		{"+inf", syntax.Float, "+inf"},
		{"-nan]", syntax.Float, "-nan"},
	}
	convey.Convey("numeric tokens", t, func() {
		for _, c := range cases {
			kind, n, ok := lexNumeric(c.src)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(kind, convey.ShouldEqual, c.kind)
			convey.So(c.src[:n], convey.ShouldEqual, c.text)
		}
	})

	convey.Convey("unsigned inf starting a value is an identifier", t, func() {
		kind, n := single("inf")
		convey.So(kind, convey.ShouldEqual, syntax.Ident)
		convey.So(n, convey.ShouldEqual, 3)
	})

	convey.Convey("booleans take priority over identifiers", t, func() {
		convey.So(kinds("true"), convey.ShouldResemble, []syntax.Kind{syntax.Bool})
		convey.So(kinds("falsey"), convey.ShouldResemble, []syntax.Kind{syntax.Bool, syntax.Ident})
	})
}

func TestDates(t *testing.T) {
	cases := []struct {
		src  string
		kind syntax.Kind
		text string
	}{
		{"1979-05-27", syntax.Date, "1979-05-27"},
		{"1979-05-27T07:32:00", syntax.DateTimeLocal, "1979-05-27T07:32:00"},
		{"1979-05-27 07:32:00.999", syntax.DateTimeLocal, "1979-05-27 07:32:00.999"},
		{"1979-05-27t07:32:00z", syntax.DateTimeOffset, "1979-05-27t07:32:00z"},
		{"1979-05-27T00:32:00.999999-07:00", syntax.DateTimeOffset, "1979-05-27T00:32:00.999999-07:00"},
		{"1979-05-27T07:32:00+24:00", syntax.DateTimeLocal, "1979-05-27T07:32:00"},
		{"07:32:00", syntax.Time, "07:32:00"},
		{"00:32:00,5", syntax.Time, "00:32:00,5"},
		{"00:32:00, 1", syntax.Time, "00:32:00"},
		{"1979-05-27T07:32:00,]", syntax.DateTimeLocal, "1979-05-27T07:32:00"},
		{"1979-05-27 # comment", syntax.Date, "1979-05-27"},
		{"2024-02-29", syntax.Date, "2024-02-29"},
		{"2000-02-29", syntax.Date, "2000-02-29"},
	}
	convey.Convey("date and time tokens", t, func() {
		for _, c := range cases {
			toks := Tokenize(c.src)
			convey.So(toks[0].Kind, convey.ShouldEqual, c.kind)
			convey.So(toks[0].Text, convey.ShouldEqual, c.text)
		}
	})

	convey.Convey("invalid calendar values are not dates", t, func() {
		for _, src := range []string{"2023-02-29", "1900-02-29", "2023-99-99", "2023-04-31", "2023-00-10"} {
			toks := Tokenize(src)
			convey.So(toks[0].Kind, convey.ShouldEqual, syntax.Integer)
			convey.So(toks[0].Text, convey.ShouldEqual, src[:4])
		}
	})

	convey.Convey("invalid times are not times", t, func() {
		for _, src := range []string{"24:00:00", "12:60:00", "12:00:60", "12:00:00."} {
			toks := Tokenize(src)
			convey.So(toks[0].Kind, convey.ShouldNotEqual, syntax.Time)
		}
	})
}

func TestKeyMode(t *testing.T) {
	convey.Convey("bare keys lex as one identifier", t, func() {
		for _, src := range []string{"true_value", "1234", "2024-01-01", "-_-", "inf"} {
			kind, n, ok := LexKey(src)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(kind, convey.ShouldEqual, syntax.Ident)
			convey.So(n, convey.ShouldEqual, len(src))
		}
	})

	convey.Convey("glob keys", t, func() {
		kind, n, ok := LexKey("tool.*.x")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kind, convey.ShouldEqual, syntax.Ident)
		convey.So(n, convey.ShouldEqual, 4)

		kind, n, ok = LexKey("*.x")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kind, convey.ShouldEqual, syntax.IdentWithGlob)
		convey.So(n, convey.ShouldEqual, 1)

		kind, n, ok = LexKey("a?b = 1")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kind, convey.ShouldEqual, syntax.IdentWithGlob)
		convey.So(n, convey.ShouldEqual, 3)
	})

	convey.Convey("value mode glob identifiers", t, func() {
		convey.So(kinds("a*b"), convey.ShouldResemble, []syntax.Kind{syntax.Ident, syntax.IdentWithGlob})
	})

	convey.Convey("quoted keys and punctuation", t, func() {
		kind, n, ok := LexKey(`"a.b" = 1`)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kind, convey.ShouldEqual, syntax.String)
		convey.So(n, convey.ShouldEqual, 5)

		_, _, ok = LexKey("+")
		convey.So(ok, convey.ShouldBeFalse)
	})
}

func TestTotality(t *testing.T) {
	convey.Convey("errors consume one scalar", t, func() {
		toks := Tokenize("é€😀\xff@")
		convey.So(len(toks), convey.ShouldEqual, 5)
		convey.So(toks[0].Text, convey.ShouldEqual, "é")
		convey.So(toks[1].Text, convey.ShouldEqual, "€")
		convey.So(toks[2].Text, convey.ShouldEqual, "😀")
		convey.So(toks[3].Text, convey.ShouldEqual, "\xff")
		convey.So(toks[4].Text, convey.ShouldEqual, "@")
		for _, tok := range toks {
			convey.So(tok.Kind, convey.ShouldEqual, syntax.Error)
		}
	})

	convey.Convey("tokens cover the input", t, func() {
		inputs := []string{
			"",
			"a = 1\n[b]\nc = [1, 2, {d = 'e'}]\n",
			"\"\"\"unterminated\n'''also\n\x00\x01\x7f",
			"\xf0\x9f", // truncated scalar
			"key = 1979-05-27T07:32:00Z # c\r\n",
		}
		for _, src := range inputs {
			var b strings.Builder
			l := New(src)
			end := 0
			for {
				tok, ok := l.Next()
				if !ok {
					break
				}
				convey.So(tok.Span.Start, convey.ShouldEqual, end)
				convey.So(tok.Span.Len(), convey.ShouldBeGreaterThan, 0)
				convey.So(l.Slice(), convey.ShouldEqual, tok.Text)
				end = tok.Span.End
				b.WriteString(tok.Text)
			}
			convey.So(b.String(), convey.ShouldEqual, src)
			convey.So(l.Remainder(), convey.ShouldEqual, "")
		}
	})
}
