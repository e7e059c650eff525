package tcllist

import "strings"

// specialChars force an element to be quoted when formatted.
const specialChars = " \t\n\v\f\r{}[]$;\\\""

// Format serializes elems as a canonical Tcl list, the way Tcl's own `list`
// command would. Elements are brace-quoted when that preserves them
// literally and backslash-escaped otherwise.
func Format(elems ...string) string {
	var b strings.Builder
	for i, elem := range elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatElement(elem, i == 0))
	}
	return b.String()
}

func formatElement(elem string, first bool) string {
	if elem == "" {
		return "{}"
	}
	leadingHash := first && elem[0] == '#'
	if !leadingHash && !strings.ContainsAny(elem, specialChars) {
		return elem
	}
	if canBrace(elem) {
		return "{" + elem + "}"
	}
	return escapeElement(elem, leadingHash)
}

// canBrace reports whether {elem} parses back to elem and stays literal when
// the list is later evaluated as a script word.
func canBrace(elem string) bool {
	if strings.Contains(elem, "\\\n") {
		return false
	}
	depth := 0
	for i := 0; i < len(elem); i++ {
		switch elem[i] {
		case '\\':
			if i+1 >= len(elem) {
				return false
			}
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func escapeElement(elem string, leadingHash bool) string {
	var b strings.Builder
	b.Grow(len(elem) * 2)
	if leadingHash {
		b.WriteByte('\\')
	}
	for i := 0; i < len(elem); i++ {
		switch c := elem[i]; c {
		case '{', '}', '[', ']', '$', ';', '\\', '"', ' ':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
