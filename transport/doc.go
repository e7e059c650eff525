// Package transport owns the line-oriented pipe to a shell subprocess.
//
// A Transport sends one newline-terminated line per Send and blocks in
// ReceiveLine until the shell prints a complete line:
//
//	p, err := transport.Start(transport.Config{Args: []string{"tclsh"}})
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	_ = p.Send("puts hello")
//	line, _ := p.ReceiveLine() // "hello"
//
// # Errors
//
// Failures talking to the process are reported as *Error and are fatal for
// the session: a process whose output closed wraps ErrProcessExited. Any
// call after Close returns ErrClosed. Nothing is retried.
//
// # Implementations
//
//   - Process: a child process launched with os/exec
//   - Pipe: any io.Reader / io.Writer pair
//   - Mock: a scripted double for tests
package transport
