package lexer

// lexString scans a basic string body after the opening quote and returns
// the length up to and including the closing quote. Strings end at the line.
func lexString(input string) (int, bool) {
	escaped := false
	for i := 0; i < len(input); i++ {
		b := input[i]
		switch {
		case b == '\n':
			return 0, false
		case b == '\\':
			escaped = !escaped
			continue
		case b == '"' && !escaped:
			return i + 1, true
		}
		escaped = false
	}
	return 0, false
}

// lexStringLiteral scans a literal string body after the opening quote.
func lexStringLiteral(input string) (int, bool) {
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\'':
			return i + 1, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

// maxClosingQuotes is the longest quote run that can end a multi-line
// string: up to two quotes of content followed by the three-quote closer.
const maxClosingQuotes = 5

// lexMultiLineString scans a multi-line string body after the opening
// delimiter. Once three quotes in a row are seen the closer is armed and
// further quotes belong to the run; a run of six or more is not a valid
// ending. Backslash escapes apply to basic strings only.
func lexMultiLineString(input string, quote byte) (int, bool) {
	escapes := quote == '"'
	run := 0
	escaped := false
	armed := false

	for i := 0; i < len(input); i++ {
		b := input[i]
		if armed {
			if b != quote {
				return i, run <= maxClosingQuotes
			}
			run++
			if run > maxClosingQuotes {
				return 0, false
			}
			continue
		}

		if escapes && b == '\\' {
			escaped = !escaped
			run = 0
			continue
		}
		if b == quote && !escaped {
			run++
		} else {
			run = 0
		}
		escaped = false
		if run == 3 {
			armed = true
		}
	}

	if armed {
		return len(input), true
	}
	return 0, false
}
