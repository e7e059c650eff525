// Package protocol frames requests to a line-oriented Tcl shell and decodes
// the replies.
//
// Each command is wrapped in a single line that prints a start sentinel,
// runs the command under catch, prints a trailer list beginning with the
// middle sentinel, and finally prints the end sentinel:
//
//	<noise from earlier commands>        discarded
//	_GO_SENTINEL_1a2b3c4d_7_START
//	anything the command printed         Response.Output
//	_GO_SENTINEL_1a2b3c4d_7_MIDDLE 0 3   code and result
//	_GO_SENTINEL_1a2b3c4d_7_END
//
// On failure the trailer carries the message, ::errorCode and ::errorInfo
// and Exec returns a *EvalError alongside the Response.
//
// Sentinel identifiers come from an IDSource. The default Counter yields a
// strictly increasing sequence per codec, so a late line from one request
// can never be mistaken for part of the next.
package protocol
