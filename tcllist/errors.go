package tcllist

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *ParseError.
var ErrSyntax = errors.New("malformed list")

// ParseError reports text that is not a well-formed Tcl list.
type ParseError struct {
	Text   string // The raw text being parsed
	Offset int    // Byte offset of the problem within Text
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("tcllist: %s at offset %d in %q", e.Reason, e.Offset, e.Text)
}

// Unwrap returns ErrSyntax for errors.Is support.
func (e *ParseError) Unwrap() error {
	return ErrSyntax
}
