package lexer

import (
	"strings"

	"github.com/dzjyyds666/tomlfmt/parse/syntax"
)

// lexNumeric handles everything starting with a digit or a sign: dates and
// times first since they are the most specific, then special floats, then
// prefixed integers, then decimal integers and floats.
func lexNumeric(input string) (syntax.Kind, int, bool) {
	if kind, n, ok := lexDateTime(input); ok {
		return kind, n, true
	}

	unsigned := input
	if input[0] == '+' || input[0] == '-' {
		unsigned = input[1:]
	}
	if strings.HasPrefix(unsigned, "nan") || strings.HasPrefix(unsigned, "inf") {
		return syntax.Float, len(input) - len(unsigned) + 3, true
	}

	if len(input) >= 2 && input[0] == '0' {
		var kind syntax.Kind
		var digit func(byte) bool
		switch input[1] {
		case 'x':
			kind, digit = syntax.IntegerHex, isHexDigit
		case 'o':
			kind, digit = syntax.IntegerOct, func(b byte) bool { return '0' <= b && b <= '7' }
		case 'b':
			kind, digit = syntax.IntegerBin, func(b byte) bool { return b == '0' || b == '1' }
		}
		if digit != nil {
			n := countWhile(input[2:], func(b byte) bool { return digit(b) || b == '_' })
			if n > 0 {
				return kind, 2 + n, true
			}
		}
	}

	return lexDecimal(input)
}

func lexDecimal(input string) (syntax.Kind, int, bool) {
	isDigitOrUnderscore := func(b byte) bool { return isDigit(b) || b == '_' }

	i := 0
	if input[0] == '+' || input[0] == '-' {
		i++
	}
	n := countWhile(input[i:], isDigitOrUnderscore)
	if n == 0 {
		return syntax.Error, 0, false
	}
	i += n

	float := false
	if i+1 < len(input) && input[i] == '.' && isDigit(input[i+1]) {
		float = true
		i++
		i += countWhile(input[i:], isDigitOrUnderscore)
	}

	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		float = true
		i++
		if i < len(input) && (input[i] == '+' || input[i] == '-') {
			i++
		}
		n := countWhile(input[i:], isDigitOrUnderscore)
		if n == 0 {
			return syntax.Error, 0, false
		}
		i += n
	}

	if float {
		return syntax.Float, i, true
	}
	return syntax.Integer, i, true
}

// =========================
// Dates and times
// =========================

func lexDateTime(input string) (syntax.Kind, int, bool) {
	if n, ok := matchTime(input); ok {
		return syntax.Time, n, true
	}

	n, ok := matchDate(input)
	if !ok {
		return syntax.Error, 0, false
	}
	if n < len(input) {
		switch input[n] {
		case 'T', 't', ' ':
			if tn, ok := matchTime(input[n+1:]); ok {
				total := n + 1 + tn
				if total < len(input) {
					if c := input[total]; c == 'Z' || c == 'z' {
						return syntax.DateTimeOffset, total + 1, true
					}
					if zn, ok := matchOffset(input[total:]); ok {
						return syntax.DateTimeOffset, total + zn, true
					}
				}
				return syntax.DateTimeLocal, total, true
			}
		}
	}
	return syntax.Date, n, true
}

// matchDate matches YYYY-MM-DD naming a real calendar day.
func matchDate(s string) (int, bool) {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return 0, false
	}
	year, ok1 := digits(s[0:4])
	month, ok2 := digits(s[5:7])
	day, ok3 := digits(s[8:10])
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	if month < 1 || month > 12 {
		return 0, false
	}
	if day < 1 || day > daysIn(year, month) {
		return 0, false
	}
	return 10, true
}

func daysIn(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && year%100 != 0 || year%400 == 0 {
			return 29
		}
		return 28
	}
	return 31
}

// matchTime matches HH:MM:SS with an optional fraction introduced by '.'
// or ','. A ',' not followed by a digit ends the time, so times can be
// listed in arrays.
func matchTime(s string) (int, bool) {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return 0, false
	}
	hour, ok1 := digits(s[0:2])
	minute, ok2 := digits(s[3:5])
	second, ok3 := digits(s[6:8])
	if !ok1 || !ok2 || !ok3 || hour > 23 || minute > 59 || second > 59 {
		return 0, false
	}
	n := 8
	if n < len(s) && (s[n] == '.' || s[n] == ',') {
		frac := countWhile(s[n+1:], isDigit)
		switch {
		case frac > 0:
			n += 1 + frac
		case s[n] == '.':
			return 0, false
		}
	}
	return n, true
}

// matchOffset matches a +HH:MM or -HH:MM zone offset.
func matchOffset(s string) (int, bool) {
	if len(s) < 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, false
	}
	hour, ok1 := digits(s[1:3])
	minute, ok2 := digits(s[4:6])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return 0, false
	}
	return 6, true
}

func digits(s string) (int, bool) {
	v := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	return v, true
}
