package transport

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"
)

// Pipe is a Transport over an arbitrary reader and writer, such as a
// network connection or a pair of io.Pipes.
type Pipe struct {
	reader *bufio.Reader
	src    io.Reader
	dst    io.Writer

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ Transport = (*Pipe)(nil)

// NewPipe returns a Transport reading lines from r and writing to w. Close
// closes either side that implements io.Closer.
func NewPipe(r io.Reader, w io.Writer) *Pipe {
	return &Pipe{
		reader: bufio.NewReader(r),
		src:    r,
		dst:    w,
	}
}

// Send writes text and a newline.
func (p *Pipe) Send(text string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if _, err := io.WriteString(p.dst, text+"\n"); err != nil {
		if p.closed.Load() {
			return ErrClosed
		}
		return &Error{Op: "send", Err: err}
	}
	return nil
}

// ReceiveLine blocks until a full line is read.
func (p *Pipe) ReceiveLine() (string, error) {
	if p.closed.Load() {
		return "", ErrClosed
	}
	line, err := readLine(p.reader)
	if err != nil {
		if p.closed.Load() {
			return "", ErrClosed
		}
		return "", &Error{Op: "receive", Err: err}
	}
	return line, nil
}

// Close closes both ends.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if c, ok := p.dst.(io.Closer); ok {
			_ = c.Close()
		}
		if c, ok := p.src.(io.Closer); ok {
			_ = c.Close()
		}
	})
	return nil
}
