package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Transport is a half-duplex line channel to a shell.
type Transport interface {
	// Send writes text followed by a newline.
	Send(text string) error

	// ReceiveLine blocks until a full line is available and returns it
	// without its trailing "\n". A "\r" before it is kept, since it may be
	// part of the data.
	ReceiveLine() (string, error)

	// Close releases the shell. It is safe to call more than once.
	Close() error
}

// Sentinel errors for transport operations.
var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("transport closed")

	// ErrProcessExited indicates the shell's output ended before a full
	// line arrived.
	ErrProcessExited = errors.New("process terminated")

	// ErrNoCommand indicates an empty argument list.
	ErrNoCommand = errors.New("no shell command configured")
)

// Error wraps a fatal transport failure with the operation that hit it.
type Error struct {
	Op  string // "start", "send", "receive", "close"
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// readLine reads one line, mapping EOF to ErrProcessExited. A partial line
// at EOF is dropped.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrProcessExited
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
