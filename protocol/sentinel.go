package protocol

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// DefaultPrefixBase starts every default sentinel prefix.
const DefaultPrefixBase = "_GO_SENTINEL"

// Sentinels are the three markers bracketing one reply.
type Sentinels struct {
	ID     string
	Start  string
	Middle string
	End    string
}

// NewSentinels derives the markers for id.
func NewSentinels(id string) Sentinels {
	return Sentinels{
		ID:     id,
		Start:  id + "_START",
		Middle: id + "_MIDDLE",
		End:    id + "_END",
	}
}

// IDSource yields sentinel identifiers. Identifiers must never repeat for
// the lifetime of a session and must be valid Tcl variable names.
type IDSource interface {
	Next() string
}

// IDFunc adapts a function to IDSource.
type IDFunc func() string

// Next implements IDSource.
func (f IDFunc) Next() string { return f() }

// Counter is the default IDSource: prefix_1, prefix_2, ...
type Counter struct {
	prefix string
	n      atomic.Uint64
}

// NewCounter returns a Counter whose identifiers start with prefix.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next implements IDSource.
func (c *Counter) Next() string {
	return fmt.Sprintf("%s_%d", c.prefix, c.n.Add(1))
}

// DefaultPrefix derives a sentinel prefix from a session id, typically a
// UUID. Only the first eight hex digits are used.
func DefaultPrefix(sessionID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sessionID) {
		if b.Len() == 8 {
			break
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultPrefixBase
	}
	return DefaultPrefixBase + "_" + b.String()
}

// ValidPrefix reports whether prefix can be used in sentinels. Sentinels
// double as Tcl variable names, so only letters, digits and underscores
// are allowed.
func ValidPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
