package tcllist

import (
	"strings"
	"unicode/utf8"
)

// Subst performs Tcl backslash substitution on s, the only substitution
// `subst -nocommands -novariables` performs. A lone trailing backslash is
// kept literally.
func Subst(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		out, n := backslash(s[i+1:])
		b.WriteString(out)
		i += 1 + n
	}
	return b.String()
}

// backslash decodes the sequence following a backslash. It returns the
// replacement text and how many bytes of s were consumed.
func backslash(s string) (string, int) {
	switch c := s[0]; c {
	case 'a':
		return "\a", 1
	case 'b':
		return "\b", 1
	case 'f':
		return "\f", 1
	case 'n':
		return "\n", 1
	case 'r':
		return "\r", 1
	case 't':
		return "\t", 1
	case 'v':
		return "\v", 1
	case '\n':
		n := 1
		for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
			n++
		}
		return " ", n
	case 'x':
		return hexEscape(s, 2, 0xff)
	case 'u':
		return hexEscape(s, 4, 0xffff)
	case 'U':
		return hexEscape(s, 8, utf8.MaxRune)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v, n := 0, 0
		for n < 3 && n < len(s) && s[n] >= '0' && s[n] <= '7' {
			v = v*8 + int(s[n]-'0')
			n++
		}
		return string(rune(v & 0xff)), n
	default:
		_, n := utf8.DecodeRuneInString(s)
		return s[:n], n
	}
}

// hexEscape decodes up to maxDigits hex digits after the escape letter,
// stopping before the value would exceed limit. With no digits the letter
// stands for itself.
func hexEscape(s string, maxDigits int, limit rune) (string, int) {
	var v rune
	n := 0
	for n < maxDigits && 1+n < len(s) {
		d, ok := hexValue(s[1+n])
		if !ok || v*16+d > limit {
			break
		}
		v = v*16 + d
		n++
	}
	if n == 0 {
		return s[:1], 1
	}
	return string(v), 1 + n
}

func hexValue(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}
