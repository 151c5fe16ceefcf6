// Package validate checks the contents of string and comment literals
// without parsing a whole document. Every check reports all offending byte
// offsets in one pass.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// InvalidError lists the byte offsets of every violation found in a literal.
type InvalidError struct {
	What    string
	Offsets []int
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s at offsets %v", e.What, e.Offsets)
}

func result(what string, offsets []int) error {
	if len(offsets) == 0 {
		return nil
	}
	return &InvalidError{What: what, Offsets: offsets}
}

type escape uint8

const (
	escapeSimple escape = iota // \b \t \n \f \r \" \\
	escapeLineContinuation
	escapeUnicode
	escapeUnicodeLarge
	escapeUnknown
	unescaped
)

// lexEscape classifies the sequence at the start of a non-empty input.
func lexEscape(input string) (escape, int) {
	if input[0] != '\\' {
		_, n := utf8.DecodeRuneInString(input)
		return unescaped, n
	}
	if len(input) < 2 {
		return escapeUnknown, 1
	}
	switch input[1] {
	case 'b', 't', 'n', 'f', 'r', '"', '\\':
		return escapeSimple, 2
	}

	ws := 1
	for ws < len(input) && (input[ws] == ' ' || input[ws] == '\t') {
		ws++
	}
	if strings.HasPrefix(input[ws:], "\n") {
		return escapeLineContinuation, ws + 1
	}
	if strings.HasPrefix(input[ws:], "\r\n") {
		return escapeLineContinuation, ws + 2
	}

	if input[1] == 'u' && hexRun(input[2:], 4) {
		return escapeUnicode, 6
	}
	if input[1] == 'U' && hexRun(input[2:], 8) {
		return escapeUnicodeLarge, 10
	}

	_, n := utf8.DecodeRuneInString(input[1:])
	return escapeUnknown, 1 + n
}

func hexRun(s string, n int) bool {
	if len(s) < n {
		return false
	}
	for i := 0; i < n; i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// CheckEscape reports the offset of every escape sequence in s that is
// unknown or names something other than a Unicode scalar value.
func CheckEscape(s string) error {
	var invalid []int
	for pos := 0; pos < len(s); {
		kind, n := lexEscape(s[pos:])
		switch kind {
		case escapeUnicode, escapeUnicodeLarge:
			v, err := strconv.ParseUint(s[pos+2:pos+n], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				invalid = append(invalid, pos)
			}
		case escapeUnknown:
			invalid = append(invalid, pos)
		}
		pos += n
	}
	return result("invalid escape sequence", invalid)
}
