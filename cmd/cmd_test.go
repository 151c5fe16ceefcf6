package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/dzjyyds666/tomlfmt/format"
	"github.com/dzjyyds666/tomlfmt/parse/toml"
)

func TestCheckSource(t *testing.T) {
	convey.Convey("syntax errors are reported with line and column", t, func() {
		var out bytes.Buffer
		n := checkSource(&out, "a.toml", "a = 1\nb = \"é\" x\n", toml.Options{}, true)
		convey.So(n, convey.ShouldEqual, 1)
		convey.So(out.String(), convey.ShouldStartWith, "a.toml:2:9: ")
	})

	convey.Convey("semantic errors are reported when the syntax is fine", t, func() {
		var out bytes.Buffer
		n := checkSource(&out, "a.toml", "a = 1\na = 2\n", toml.Options{}, true)
		convey.So(n, convey.ShouldEqual, 1)
		convey.So(out.String(), convey.ShouldStartWith, "a.toml:2:1: duplicate key")

		out.Reset()
		convey.So(checkSource(&out, "a.toml", "a = 1\na = 2\n", toml.Options{}, false), convey.ShouldEqual, 0)
		convey.So(out.String(), convey.ShouldBeEmpty)
	})

	convey.Convey("valid documents print nothing", t, func() {
		var out bytes.Buffer
		convey.So(checkSource(&out, "a.toml", "[a]\nb = [1, 2]\n", toml.Options{}, true), convey.ShouldEqual, 0)
		convey.So(out.Len(), convey.ShouldEqual, 0)
	})
}

func TestRender(t *testing.T) {
	root, err := toml.DecodeString(`
s = "text"
f = nan
d = 1979-05-27
lt = 07:32:00.5
odt = 1979-05-27T07:32:00Z
[t]
a = [1, 2]
`)
	if err != nil {
		t.Fatal(err)
	}
	get := func(path ...string) string {
		n, ok := toml.Get(root, path...)
		convey.So(ok, convey.ShouldBeTrue)
		out, err := render(n)
		convey.So(err, convey.ShouldBeNil)
		return out
	}

	convey.Convey("scalars print as is", t, func() {
		convey.So(get("s"), convey.ShouldEqual, "text")
		convey.So(get("f"), convey.ShouldEqual, "nan")
		convey.So(get("d"), convey.ShouldEqual, "1979-05-27")
		convey.So(get("lt"), convey.ShouldEqual, "07:32:00.5")
		convey.So(get("odt"), convey.ShouldEqual, "1979-05-27T07:32:00Z")
	})

	convey.Convey("tables print as JSON", t, func() {
		convey.So(strings.Join(strings.Fields(get("t")), ""), convey.ShouldEqual, `{"a":[1,2]}`)

		whole := strings.Join(strings.Fields(get()), "")
		convey.So(whole, convey.ShouldContainSubstring, `"f":"nan"`)
		convey.So(whole, convey.ShouldContainSubstring, `"d":"1979-05-27"`)
		convey.So(whole, convey.ShouldContainSubstring, `"lt":"07:32:00.5"`)
	})
}

func TestFormatOptionsFromConfig(t *testing.T) {
	convey.Convey("a config file is read", t, func() {
		path := filepath.Join(t.TempDir(), "cfg.toml")
		convey.So(os.WriteFile(path, []byte("[format]\npad_arrays = true\n"), 0o644), convey.ShouldBeNil)
		opts, err := formatOptions(nil, path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(opts.PadArrays, convey.ShouldBeTrue)
	})

	convey.Convey("flags override the config", t, func() {
		path := filepath.Join(t.TempDir(), "cfg.toml")
		convey.So(os.WriteFile(path, []byte("[format]\npad_arrays = true\nmax_blank_lines = 1\n"), 0o644), convey.ShouldBeNil)
		convey.So(fmtCmd.Flags().Set("pad-arrays", "false"), convey.ShouldBeNil)
		defer func() {
			fmtCmd.Flags().Lookup("pad-arrays").Changed = false
		}()

		opts, err := formatOptions(fmtCmd, path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(opts.PadArrays, convey.ShouldBeFalse)
		convey.So(opts.MaxBlankLines, convey.ShouldEqual, 1)
	})

	convey.Convey("without a config the defaults apply", t, func() {
		dir := t.TempDir()
		wd, err := os.Getwd()
		convey.So(err, convey.ShouldBeNil)
		convey.So(os.Chdir(dir), convey.ShouldBeNil)
		defer os.Chdir(wd)

		opts, err := formatOptions(nil, "")
		convey.So(err, convey.ShouldBeNil)
		convey.So(opts, convey.ShouldResemble, format.DefaultOptions())
	})
}
