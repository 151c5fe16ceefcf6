package toml

import (
	"strings"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

// checkNumber returns a message describing what is wrong with a numeric
// literal the lexer accepted, or "" when it is valid.
func checkNumber(kind syntax.Kind, text string) string {
	body := trimSign(text)
	digit := isDecDigit
	switch kind {
	case syntax.IntegerHex, syntax.IntegerOct, syntax.IntegerBin:
		body = text[2:]
		digit = isHexDigit
	case syntax.Float:
		if body == "nan" || body == "inf" {
			return ""
		}
	}

	for i := 0; i < len(body); i++ {
		if body[i] != '_' {
			continue
		}
		if i == 0 || i == len(body)-1 || !digit(body[i-1]) || !digit(body[i+1]) {
			return "underscores in numbers must sit between digits"
		}
	}

	if kind == syntax.Integer || kind == syntax.Float {
		whole := body
		if end := strings.IndexAny(whole, ".eE"); end >= 0 {
			whole = whole[:end]
		}
		if len(whole) > 1 && whole[0] == '0' {
			return "leading zeros are not allowed"
		}
	}
	return ""
}

func isDecDigit(b byte) bool { return '0' <= b && b <= '9' }

func isHexDigit(b byte) bool {
	return isDecDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}
