package tcllist

import "fmt"

// Split parses one level of a Tcl list into its elements.
//
// Braced elements are returned verbatim. Quoted and bare elements have
// backslash sequences substituted. An empty or all-whitespace list yields an
// empty, non-nil slice.
func Split(text string) ([]string, error) {
	s := scanner{text: text}
	elems := []string{}
	for {
		s.skipSpace()
		if s.eof() {
			return elems, nil
		}
		elem, err := s.element()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

// scanner walks a list one element at a time.
type scanner struct {
	text string
	pos  int
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.text)
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.text[s.pos]) {
		s.pos++
	}
}

func (s *scanner) fail(offset int, format string, args ...any) error {
	return &ParseError{
		Text:   s.text,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (s *scanner) element() (string, error) {
	switch s.text[s.pos] {
	case '{':
		return s.braced()
	case '"':
		return s.quoted()
	default:
		return s.bare()
	}
}

// braced scans {...}. Unescaped braces nest; a backslash hides the next
// byte from the depth count but stays in the element.
func (s *scanner) braced() (string, error) {
	start := s.pos
	depth := 0
	for i := start; i < len(s.text); i++ {
		switch s.text[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth > 0 {
				continue
			}
			elem := s.text[start+1 : i]
			s.pos = i + 1
			if err := s.expectSeparator("braces"); err != nil {
				return "", err
			}
			return elem, nil
		}
	}
	return "", s.fail(start, "unmatched open brace in list")
}

// quoted scans "...". Quotes do not nest and braces inside them are plain
// characters.
func (s *scanner) quoted() (string, error) {
	start := s.pos
	for i := start + 1; i < len(s.text); i++ {
		switch s.text[i] {
		case '\\':
			i++
		case '"':
			raw := s.text[start+1 : i]
			s.pos = i + 1
			if err := s.expectSeparator("quotes"); err != nil {
				return "", err
			}
			return Subst(raw), nil
		}
	}
	return "", s.fail(start, "unmatched open quote in list")
}

func (s *scanner) bare() (string, error) {
	start := s.pos
	i := start
	for i < len(s.text) && !isSpace(s.text[i]) {
		if s.text[i] != '\\' {
			i++
			continue
		}
		if i+1 >= len(s.text) {
			return "", s.fail(i, "trailing backslash in list")
		}
		i += 2
		if s.text[i-1] == '\n' {
			// backslash-newline swallows the indentation that follows it
			for i < len(s.text) && (s.text[i] == ' ' || s.text[i] == '\t') {
				i++
			}
		}
	}
	s.pos = i
	return Subst(s.text[start:i]), nil
}

func (s *scanner) expectSeparator(kind string) error {
	if s.eof() || isSpace(s.text[s.pos]) {
		return nil
	}
	end := s.pos
	for end < len(s.text) && !isSpace(s.text[end]) {
		end++
	}
	return s.fail(s.pos, "list element in %s followed by %q instead of space", kind, s.text[s.pos:end])
}
