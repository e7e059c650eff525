package truncate

import (
	"strings"
	"unicode/utf8"
)

// Strategy defines how text is truncated.
type Strategy int

const (
	// FromEnd removes content from the end (default).
	FromEnd Strategy = iota

	// FromMiddle removes content from the middle, keeping start and end.
	FromMiddle

	// FromStart removes content from the start.
	FromStart
)

// DefaultEndSuffix is the default marker for end and start truncation.
const DefaultEndSuffix = "..."

// DefaultMiddleSuffix is the default marker for middle truncation.
const DefaultMiddleSuffix = " ...[truncated]... "

// Truncator clips text to a rune limit.
type Truncator struct {
	strategy Strategy
	suffix   string
}

// New creates a truncator with the given strategy.
func New(strategy Strategy) *Truncator {
	suffix := DefaultEndSuffix
	if strategy == FromMiddle {
		suffix = DefaultMiddleSuffix
	}
	return &Truncator{strategy: strategy, suffix: suffix}
}

// WithSuffix sets the marker inserted where text was removed.
func (t *Truncator) WithSuffix(suffix string) *Truncator {
	t.suffix = suffix
	return t
}

// Strategy returns the truncator's strategy.
func (t *Truncator) Strategy() Strategy {
	return t.strategy
}

// Suffix returns the truncator's marker.
func (t *Truncator) Suffix() string {
	return t.suffix
}

// Truncate reduces text to at most maxRunes runes, marker included, and
// reports whether anything was removed. If the marker alone does not fit,
// the text is hard-cut with no marker.
func (t *Truncator) Truncate(text string, maxRunes int) (string, bool) {
	if maxRunes <= 0 {
		return "", text != ""
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return text, false
	}

	runes := []rune(text)
	keep := maxRunes - utf8.RuneCountInString(t.suffix)
	if keep <= 0 {
		return string(runes[:maxRunes]), true
	}

	switch t.strategy {
	case FromStart:
		return t.suffix + string(runes[len(runes)-keep:]), true
	case FromMiddle:
		head := (keep + 1) / 2
		tail := keep - head
		var sb strings.Builder
		sb.WriteString(string(runes[:head]))
		sb.WriteString(t.suffix)
		sb.WriteString(string(runes[len(runes)-tail:]))
		return sb.String(), true
	default:
		return string(runes[:keep]) + t.suffix, true
	}
}

// ToLength truncates text from the end to at most maxLen runes.
func ToLength(text string, maxLen int) string {
	result, _ := New(FromEnd).Truncate(text, maxLen)
	return result
}

// ToLines truncates text to a maximum number of lines.
func ToLines(text string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}

	return strings.Join(lines[:maxLines], "\n") + "\n..."
}
