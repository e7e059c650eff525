package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultKillTimeout is how long Close waits for the shell to exit after
// stdin is closed before killing it.
const DefaultKillTimeout = 5 * time.Second

// Config describes how to launch the shell process.
type Config struct {
	// Args is the argv of the shell; Args[0] is resolved through PATH.
	Args []string

	// WorkDir is the working directory of the shell. Empty inherits ours.
	WorkDir string

	// Env is added on top of the current environment.
	Env map[string]string

	// KillTimeout bounds the graceful exit in Close.
	KillTimeout time.Duration

	// Logger receives lifecycle events and the shell's stderr.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// WithDefaults returns a copy of the config with zero values filled in.
func (c Config) WithDefaults() Config {
	if c.KillTimeout <= 0 {
		c.KillTimeout = DefaultKillTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Process is a Transport backed by a child process's stdin and stdout.
type Process struct {
	cfg    Config
	logger *slog.Logger

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	reader     *bufio.Reader
	stderrDone chan struct{}

	closeMu sync.Mutex
	closed  atomic.Bool
	exitErr error
}

var _ Transport = (*Process)(nil)

// Start launches the shell described by cfg.
func Start(cfg Config) (*Process, error) {
	if len(cfg.Args) == 0 {
		return nil, &Error{Op: "start", Err: ErrNoCommand}
	}
	cfg = cfg.WithDefaults()

	cmd := exec.Command(cfg.Args[0], cfg.Args[1:]...)

	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}

	if len(cfg.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &Error{Op: "start", Err: fmt.Errorf("create stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, &Error{Op: "start", Err: fmt.Errorf("create stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return nil, &Error{Op: "start", Err: fmt.Errorf("create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, &Error{Op: "start", Err: err}
	}

	p := &Process{
		cfg:        cfg,
		logger:     cfg.Logger,
		cmd:        cmd,
		stdin:      stdin,
		reader:     bufio.NewReader(stdout),
		stderrDone: make(chan struct{}),
	}

	go p.drainStderr(stderr)

	p.logger.Debug("shell started",
		slog.String("command", cfg.Args[0]),
		slog.Int("pid", cmd.Process.Pid))

	return p, nil
}

// Pid returns the process id of the shell.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Send writes text and a newline to the shell's stdin.
func (p *Process) Send(text string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if _, err := io.WriteString(p.stdin, text+"\n"); err != nil {
		if p.closed.Load() {
			return ErrClosed
		}
		return &Error{Op: "send", Err: err}
	}
	return nil
}

// ReceiveLine blocks until the shell prints a full line.
func (p *Process) ReceiveLine() (string, error) {
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

// Close closes stdin, waits up to KillTimeout for the shell to exit and
// kills it otherwise. Later calls do nothing.
func (p *Process) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()

	if p.closed.Swap(true) {
		return nil
	}

	_ = p.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(p.cfg.KillTimeout):
		p.logger.Warn("shell did not exit after stdin closed, killing",
			slog.Int("pid", p.cmd.Process.Pid),
			slog.Duration("timeout", p.cfg.KillTimeout))
		_ = p.cmd.Process.Kill()
		err = <-done
	}
	<-p.stderrDone

	p.exitErr = err
	p.logger.Debug("shell stopped", slog.Int("pid", p.cmd.Process.Pid), slog.Any("exit", err))

	// A non-zero or signalled exit is expected when the shell is torn down.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return &Error{Op: "close", Err: err}
	}
	return nil
}

// ExitError returns the result of waiting for the shell, once closed.
func (p *Process) ExitError() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	return p.exitErr
}

func (p *Process) drainStderr(r io.Reader) {
	defer close(p.stderrDone)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.logger.Debug("shell stderr", slog.String("output", string(buf[:n])))
		}
		if err != nil {
			return
		}
	}
}
