package transport

import "sync"

// Mock is a scripted test double for Transport.
// Every line passed to Send is handed to a handler whose returned lines are
// queued for ReceiveLine. ReceiveLine never blocks: with nothing queued it
// behaves like a shell that has exited.
type Mock struct {
	mu      sync.Mutex
	handler func(line string) []string
	pending []string
	sendErr error
	closed  bool

	// Sent tracks every line passed to Send for assertions.
	Sent []string

	// Closes counts calls to Close.
	Closes int
}

var _ Transport = (*Mock)(nil)

// NewMock creates a mock that answers each sent line with handler's output.
// A nil handler answers nothing.
func NewMock(handler func(line string) []string) *Mock {
	return &Mock{handler: handler}
}

// WithSendError configures Send to fail with err.
func (m *Mock) WithSendError(err error) *Mock {
	m.sendErr = err
	return m
}

// Queue appends lines to be received before any reply, such as a banner.
func (m *Mock) Queue(lines ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, lines...)
}

// Send implements Transport.
func (m *Mock) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.Sent = append(m.Sent, text)

	if m.sendErr != nil {
		return &Error{Op: "send", Err: m.sendErr}
	}
	if m.handler != nil {
		m.pending = append(m.pending, m.handler(text)...)
	}
	return nil
}

// ReceiveLine implements Transport.
func (m *Mock) ReceiveLine() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrClosed
	}
	if len(m.pending) == 0 {
		return "", &Error{Op: "receive", Err: ErrProcessExited}
	}
	line := m.pending[0]
	m.pending = m.pending[1:]
	return line, nil
}

// Close implements Transport.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.Closes++
	return nil
}

// SentLines returns a copy of the sent lines.
func (m *Mock) SentLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Sent...)
}
