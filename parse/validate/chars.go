package validate

// Control characters are forbidden in every literal except tab; line breaks
// are additionally allowed in multi-line strings.

func scan(s string, multiLine bool) []int {
	var bad []int
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\t':
		case multiLine && (c == '\n' || c == '\r'):
		case c < 0x20 || c == 0x7f:
			bad = append(bad, i)
		}
	}
	return bad
}

// Comment checks the text of a comment, '#' included.
func Comment(s string) error {
	return result("control character in comment", scan(s, false))
}

// String checks the body of a basic string.
func String(s string) error {
	return result("control character in string", scan(s, false))
}

// MultiLineString checks the body of a multi-line basic string.
func MultiLineString(s string) error {
	return result("control character in multi-line string", scan(s, true))
}

// StringLiteral checks the body of a literal string.
func StringLiteral(s string) error {
	return result("control character in literal string", scan(s, false))
}

// MultiLineStringLiteral checks the body of a multi-line literal string.
func MultiLineStringLiteral(s string) error {
	return result("control character in multi-line literal string", scan(s, true))
}
