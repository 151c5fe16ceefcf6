package validate

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func offsets(err error) []int {
	var inv *InvalidError
	if errors.As(err, &inv) {
		return inv.Offsets
	}
	return nil
}

func TestCheckEscape(t *testing.T) {
	convey.Convey("valid escapes", t, func() {
		for _, s := range []string{
			``,
			`plain`,
			`\b\t\n\f\r\"\\`,
			`é and \U0001F600`,
			"line \\\n  continued",
			"line \\  \t\r\n continued",
			"unicode é stays",
		} {
			convey.So(CheckEscape(s), convey.ShouldBeNil)
		}
	})

	convey.Convey("every invalid escape is reported", t, func() {
		err := CheckEscape(`a\qb\x`)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(offsets(err), convey.ShouldResemble, []int{1, 4})
		convey.So(err.Error(), convey.ShouldEqual, "invalid escape sequence at offsets [1 4]")
	})

	convey.Convey("unicode escapes must name scalar values", t, func() {
		convey.So(offsets(CheckEscape(`\uD800`)), convey.ShouldResemble, []int{0})
		convey.So(offsets(CheckEscape(`ok \U00110000`)), convey.ShouldResemble, []int{3})
		convey.So(offsets(CheckEscape(`\u12`)), convey.ShouldResemble, []int{0})
		convey.So(offsets(CheckEscape(`\u12_4`)), convey.ShouldResemble, []int{0})
	})

	convey.Convey("backslash before whitespace without a newline", t, func() {
		convey.So(offsets(CheckEscape(`a\ b`)), convey.ShouldResemble, []int{1})
	})

	convey.Convey("trailing backslash", t, func() {
		convey.So(offsets(CheckEscape(`abc\`)), convey.ShouldResemble, []int{3})
	})

	convey.Convey("unknown escape of a multi-byte character", t, func() {
		convey.So(offsets(CheckEscape(`\é\q`)), convey.ShouldResemble, []int{0, 3})
	})
}

func TestAllowedChars(t *testing.T) {
	convey.Convey("tab is always allowed", t, func() {
		convey.So(Comment("#\tx"), convey.ShouldBeNil)
		convey.So(String("a\tb"), convey.ShouldBeNil)
		convey.So(StringLiteral("a\tb"), convey.ShouldBeNil)
		convey.So(MultiLineString("a\tb"), convey.ShouldBeNil)
		convey.So(MultiLineStringLiteral("a\tb"), convey.ShouldBeNil)
	})

	convey.Convey("line breaks only in multi-line forms", t, func() {
		convey.So(MultiLineString("a\r\nb\n"), convey.ShouldBeNil)
		convey.So(MultiLineStringLiteral("a\r\nb\n"), convey.ShouldBeNil)
		convey.So(offsets(String("a\nb\r")), convey.ShouldResemble, []int{1, 3})
		convey.So(offsets(StringLiteral("a\nb")), convey.ShouldResemble, []int{1})
		convey.So(offsets(Comment("# \r")), convey.ShouldResemble, []int{2})
	})

	convey.Convey("other controls and DEL are reported everywhere", t, func() {
		s := "x\x00y\x1fz\x7f"
		for _, check := range []func(string) error{Comment, String, MultiLineString, StringLiteral, MultiLineStringLiteral} {
			convey.So(offsets(check(s)), convey.ShouldResemble, []int{1, 3, 5})
		}
	})

	convey.Convey("non-ASCII text is fine", t, func() {
		convey.So(String("héllo 世界"), convey.ShouldBeNil)
	})
}
