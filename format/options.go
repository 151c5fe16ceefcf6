package format

// Options controls the layout choices of the formatter. The zero value is
// the default style: one space around '=', one space after commas, no
// padding inside arrays, padded inline tables, trailing commas in multi-line
// arrays, no indentation, at most two blank lines in a row and exactly one
// final newline.
type Options struct {
	// CompactEntries writes `key=value` instead of `key = value`.
	CompactEntries bool
	// CompactCommas drops the space after commas in single-line arrays and
	// inline tables.
	CompactCommas bool
	// PadArrays writes `[ 1, 2 ]` instead of `[1, 2]` for single-line arrays.
	PadArrays bool
	// CompactInlineTables writes `{a = 1}` instead of `{ a = 1 }`.
	CompactInlineTables bool
	// OmitArrayTrailingComma stops adding a comma after the last element of
	// multi-line arrays. Existing commas are kept.
	OmitArrayTrailingComma bool
	// IndentTables indents table headers by their dotted depth, so [a.b] is
	// one level deeper than [a].
	IndentTables bool
	// IndentEntries indents entries and comments one level deeper than the
	// header they follow.
	IndentEntries bool
	// IndentString is one level of indentation. Empty means two spaces.
	IndentString string
	// MaxBlankLines caps consecutive blank lines. Zero means two; a negative
	// value removes blank lines altogether.
	MaxBlankLines int
	// OmitFinalNewline ends the output right after the last token instead
	// of with exactly one newline.
	OmitFinalNewline bool
}

const (
	defaultIndent        = "  "
	defaultMaxBlankLines = 2
)

// DefaultOptions returns the default style with every field spelled out.
func DefaultOptions() Options {
	return Options{
		IndentString:  defaultIndent,
		MaxBlankLines: defaultMaxBlankLines,
	}
}

func (o Options) indent() string {
	if o.IndentString == "" {
		return defaultIndent
	}
	return o.IndentString
}

// maxNewlines is the number of line breaks allowed in a row.
func (o Options) maxNewlines() int {
	switch {
	case o.MaxBlankLines < 0:
		return 1
	case o.MaxBlankLines == 0:
		return defaultMaxBlankLines + 1
	}
	return o.MaxBlankLines + 1
}

func (o Options) entrySeparator() string {
	if o.CompactEntries {
		return "="
	}
	return " = "
}

func (o Options) commaSeparator() string {
	if o.CompactCommas {
		return ","
	}
	return ", "
}
