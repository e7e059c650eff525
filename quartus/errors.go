package quartus

import (
	"errors"

	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/transport"
)

// Sentinel errors for session operations.
var (
	// ErrClosed is returned by every operation on a closed session.
	ErrClosed = transport.ErrClosed

	// ErrArgCount indicates Eval got a different number of arguments than
	// the command has {} placeholders.
	ErrArgCount = errors.New("placeholder count does not match argument count")

	// ErrEmptyName indicates a Request without a command name.
	ErrEmptyName = errors.New("empty command name")

	// ErrUnknownFormat indicates a config file with an unsupported extension.
	ErrUnknownFormat = errors.New("unknown config file format")
)

// IsEvalError reports whether err is a Tcl error raised by the command.
// The session remains usable after one.
func IsEvalError(err error) bool {
	return errors.Is(err, protocol.ErrEval)
}

// IsFatal reports whether err leaves the session unusable. Fatal errors
// are transport failures, framing corruption, cancellation of an in-flight
// request, and use after Close.
func IsFatal(err error) bool {
	if errors.Is(err, ErrClosed) {
		return true
	}
	var terr *transport.Error
	return errors.As(err, &terr)
}
