package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for codec operations.
var (
	// ErrFraming indicates the reply did not follow the sentinel protocol.
	// The stream may be out of sync; the session should be recreated.
	ErrFraming = errors.New("malformed reply framing")

	// ErrEval matches every *EvalError via errors.Is.
	ErrEval = errors.New("tcl evaluation failed")
)

// Response is one decoded reply.
type Response struct {
	// Output is everything the command printed to stdout, verbatim.
	Output string

	// Code is the catch return code; 0 means success.
	Code int

	// Result is the command's value when Code is 0.
	Result string

	// Message, ErrorCode and ErrorInfo describe a failure.
	Message   string
	ErrorCode []string
	ErrorInfo string
}

// OK reports whether the command succeeded.
func (r *Response) OK() bool {
	return r.Code == 0
}

// EvalError is a Tcl error raised by a command. The session stays usable.
type EvalError struct {
	Command   string
	Code      int
	Message   string
	ErrorCode []string // e.g. ARITH DIVZERO {divide by zero}
	ErrorInfo string   // stack trace as reported by the shell
	Output    string   // stdout printed before the failure
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if len(e.ErrorCode) > 0 && e.ErrorCode[0] != "NONE" {
		return fmt.Sprintf("tcl error (%s): %s", strings.Join(e.ErrorCode, " "), e.Message)
	}
	return fmt.Sprintf("tcl error: %s", e.Message)
}

// Is makes errors.Is(err, ErrEval) true for any EvalError.
func (e *EvalError) Is(target error) bool {
	return target == ErrEval
}

func newEvalError(cmd string, resp *Response) *EvalError {
	return &EvalError{
		Command:   cmd,
		Code:      resp.Code,
		Message:   resp.Message,
		ErrorCode: resp.ErrorCode,
		ErrorInfo: resp.ErrorInfo,
		Output:    resp.Output,
	}
}
