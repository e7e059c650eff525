// Package truncate clips text to a maximum number of runes.
//
// Shell traffic can be arbitrarily large (a full report_timing dump, a
// sourced script), so anything destined for a log line is clipped first.
//
// # Strategies
//
//   - FromEnd: Remove content from the end (default)
//   - FromMiddle: Remove content from the middle, keeping start and end
//   - FromStart: Remove content from the start
//
// # Usage
//
//	tr := truncate.New(truncate.FromMiddle)
//	result, clipped := tr.Truncate(text, 200)
//
// For one-off clipping:
//
//	result := truncate.ToLength(text, 500) // at most 500 runes
//	result := truncate.ToLines(text, 50)   // at most 50 lines
//
// Lengths count runes, so multi-byte characters are never split.
package truncate
