package format

import (
	"fmt"
	"os"

	"github.com/dzjyyds666/tomlfmt/parse/toml"
)

// ConfigFileName is looked up in the working directory when no config file
// is given.
const ConfigFileName = ".tomlfmt.toml"

// LoadOptions reads the [format] table of a TOML config file, for example
//
//	[format]
//	compact_entries = false
//	indent_string = "    "
//	max_blank_lines = 1
//
// Keys that are missing keep their default.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()

	root, err := toml.Decode(f)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	opts, err := OptionsFromTable(root)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// OptionsFromTable reads the [format] table of a decoded document.
func OptionsFromTable(root *toml.Table) (Options, error) {
	var opts Options
	n, ok := toml.Get(root, "format")
	if !ok {
		return opts, nil
	}
	tbl, ok := n.(*toml.Table)
	if !ok {
		return opts, fmt.Errorf("format: expected a table, got %s", n.Kind())
	}

	bools := map[string]*bool{
		"compact_entries":           &opts.CompactEntries,
		"compact_commas":            &opts.CompactCommas,
		"pad_arrays":                &opts.PadArrays,
		"compact_inline_tables":     &opts.CompactInlineTables,
		"omit_array_trailing_comma": &opts.OmitArrayTrailingComma,
		"indent_tables":             &opts.IndentTables,
		"indent_entries":            &opts.IndentEntries,
		"omit_final_newline":        &opts.OmitFinalNewline,
	}
	for key, item := range tbl.Items {
		v := item.Value()
		switch key {
		case "indent_string":
			s, ok := v.(string)
			if !ok {
				return opts, fmt.Errorf("format.%s: expected a string, got %s", key, item.Kind())
			}
			opts.IndentString = s
		case "max_blank_lines":
			i, ok := v.(int64)
			if !ok {
				return opts, fmt.Errorf("format.%s: expected an integer, got %s", key, item.Kind())
			}
			opts.MaxBlankLines = int(i)
		default:
			field, known := bools[key]
			if !known {
				return opts, fmt.Errorf("format.%s: unknown option", key)
			}
			b, ok := v.(bool)
			if !ok {
				return opts, fmt.Errorf("format.%s: expected a boolean, got %s", key, item.Kind())
			}
			*field = b
		}
	}
	return opts, nil
}
