package script

import "errors"

// Sentinel errors for script operations.
var (
	// ErrEmpty is returned when the script is empty.
	ErrEmpty = errors.New("script is empty")

	// ErrParse is returned when the script fails to parse.
	ErrParse = errors.New("script parse error")

	// ErrExecute is returned when rendering fails.
	ErrExecute = errors.New("script execution error")

	// ErrVariable is returned when a required variable is missing.
	ErrVariable = errors.New("required variable missing")
)
