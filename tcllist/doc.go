// Package tcllist parses and formats Tcl lists.
//
// Tcl serializes structured data as lists: whitespace-separated words where
// braces group literally, double quotes group with backslash substitution,
// and backslashes escape single characters. This package implements that
// grammar without an interpreter. Command and variable substitution ([...]
// and $name) are never evaluated; they are ordinary characters to the list
// grammar.
//
// # Parsing
//
// Split parses one level of a list:
//
//	elems, err := tcllist.Split(`a {b c} "d e" f\ g`)
//	// elems == []string{"a", "b c", "d e", "f g"}
//
// Parse recurses to a fixed depth and returns a Value tree:
//
//	v, err := tcllist.Parse("{1 2} {3 4}", 2)
//	// v.Interface() == []any{[]any{"1", "2"}, []any{"3", "4"}}
//
// Malformed input fails with a *ParseError, which matches ErrSyntax.
//
// # Formatting
//
// Format is the inverse of Split. For any slice xs,
// Split(Format(xs...)) returns xs.
//
//	tcllist.Format("a", "b c", "") // `a {b c} {}`
package tcllist
