package syntax

// Kind identifies both leaf tokens and composite nodes of the syntax tree.
type Kind uint16

const (
	Whitespace Kind = iota
	Newline
	Comment
	Ident
	// IdentWithGlob is not part of TOML, it allows glob patterns in keys.
	IdentWithGlob
	Period
	Comma
	Eq
	String
	MultiLineString
	StringLiteral
	MultiLineStringLiteral
	Integer
	IntegerHex
	IntegerOct
	IntegerBin
	Float
	Bool
	DateTimeOffset
	DateTimeLocal
	Date
	Time
	BracketStart
	BracketEnd
	BraceStart
	BraceEnd
	Error

	// composite kinds
	Key              // parent.child
	Value            // "2"
	TableHeader      // [table]
	TableArrayHeader // [[table]]
	Entry            // key = "value"
	Array            // [ 1, 2 ]
	InlineTable      // { key = "value" }

	Root
)

var kindNames = [...]string{
	Whitespace:             "WHITESPACE",
	Newline:                "NEWLINE",
	Comment:                "COMMENT",
	Ident:                  "IDENT",
	IdentWithGlob:          "IDENT_WITH_GLOB",
	Period:                 "PERIOD",
	Comma:                  "COMMA",
	Eq:                     "EQ",
	String:                 "STRING",
	MultiLineString:        "MULTI_LINE_STRING",
	StringLiteral:          "STRING_LITERAL",
	MultiLineStringLiteral: "MULTI_LINE_STRING_LITERAL",
	Integer:                "INTEGER",
	IntegerHex:             "INTEGER_HEX",
	IntegerOct:             "INTEGER_OCT",
	IntegerBin:             "INTEGER_BIN",
	Float:                  "FLOAT",
	Bool:                   "BOOL",
	DateTimeOffset:         "DATE_TIME_OFFSET",
	DateTimeLocal:          "DATE_TIME_LOCAL",
	Date:                   "DATE",
	Time:                   "TIME",
	BracketStart:           "BRACKET_START",
	BracketEnd:             "BRACKET_END",
	BraceStart:             "BRACE_START",
	BraceEnd:               "BRACE_END",
	Error:                  "ERROR",
	Key:                    "KEY",
	Value:                  "VALUE",
	TableHeader:            "TABLE_HEADER",
	TableArrayHeader:       "TABLE_ARRAY_HEADER",
	Entry:                  "ENTRY",
	Array:                  "ARRAY",
	InlineTable:            "INLINE_TABLE",
	Root:                   "ROOT",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsNode reports whether k is a composite kind. Error is both: the lexer
// emits ERROR tokens and the parser wraps unexpected input in ERROR nodes.
func (k Kind) IsNode() bool {
	return k >= Key && k <= Root || k == Error
}

// IsTrivia reports whether k carries layout only.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Newline || k == Comment
}

// IsString reports whether k is one of the four string literal forms.
func (k Kind) IsString() bool {
	switch k {
	case String, MultiLineString, StringLiteral, MultiLineStringLiteral:
		return true
	}
	return false
}

// IsScalar reports whether a token of kind k can stand alone as a value.
func (k Kind) IsScalar() bool {
	switch k {
	case String, MultiLineString, StringLiteral, MultiLineStringLiteral,
		Integer, IntegerHex, IntegerOct, IntegerBin, Float, Bool,
		DateTimeOffset, DateTimeLocal, Date, Time:
		return true
	}
	return false
}
