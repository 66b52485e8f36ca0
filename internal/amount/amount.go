// Package amount normalizes money and hour figures typed by humans into
// upstream tools ("$1,250.00", "(300)", "12.5 h").
package amount

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse extracts a number from s. It accepts currency symbols, thousands
// separators, surrounding units and accounting negatives written in
// parentheses. The second result is false when s holds no number.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	seenDigit := false
scan:
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seenDigit = true
		case r == '.':
			b.WriteRune(r)
		case r == '-' && !seenDigit && b.Len() == 0:
			negative = !negative
		case r == ',' || unicode.IsSpace(r) || r == '\'':
			// thousands separators
		case seenDigit:
			// trailing unit such as "h" or "AUD" ends the number
			break scan
		}
	}

	if !seenDigit {
		return 0, false
	}

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
