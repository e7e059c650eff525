package quartus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/quartustcl/metrics"
	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/quote"
	"github.com/randalmurphal/quartustcl/tcllist"
	"github.com/randalmurphal/quartustcl/transport"
)

// Session is one live Tcl shell.
//
// A Session handles one request at a time. Callers sharing it across
// goroutines must serialize access themselves.
type Session struct {
	cfg     Config
	id      string
	logger  *slog.Logger
	metrics *metrics.Collector
	ids     protocol.IDSource
	trace   io.Writer

	t     transport.Transport
	codec *protocol.Codec

	closed    atomic.Bool
	closeOnce sync.Once
}

// Request is a generic command invocation.
type Request struct {
	// Name is the command, sent verbatim.
	Name string

	// Args are positional arguments, each quoted.
	Args []any

	// Kwargs are emitted as -name value after Args.
	Kwargs *Kwargs

	// Depth selects list parsing of the result. 0 uses the session's
	// ParseDepth; a negative depth returns the raw string.
	Depth int
}

// New launches a shell configured by opts on top of DefaultConfig.
func New(opts ...Option) (*Session, error) {
	s := &Session{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s.launch()
}

// NewWithConfig launches a shell configured by cfg. Options apply on top.
func NewWithConfig(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s.launch()
}

// NewWithTransport wraps an already running shell. The session owns t and
// closes it on Close. Args, WorkDir, Env and KillTimeout are unused.
func NewWithTransport(t transport.Transport, opts ...Option) *Session {
	s := &Session{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	s.init()
	if s.cfg.SentinelPrefix != "" && !protocol.ValidPrefix(s.cfg.SentinelPrefix) {
		s.logger.Warn("ignoring invalid sentinel prefix", slog.String("prefix", s.cfg.SentinelPrefix))
		s.cfg.SentinelPrefix = ""
	}
	s.attach(t)
	return s
}

func (s *Session) launch() (*Session, error) {
	s.cfg = s.cfg.WithDefaults()
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s.init()

	t, err := transport.Start(transport.Config{
		Args:        s.cfg.Args,
		WorkDir:     s.cfg.WorkDir,
		Env:         s.cfg.Env,
		KillTimeout: s.cfg.KillTimeout,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("start shell %q: %w", s.cfg.Args[0], err)
	}
	s.attach(t)
	return s, nil
}

func (s *Session) init() {
	s.id = uuid.NewString()
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("session", s.id))
	if s.trace == nil && s.cfg.Debug {
		s.trace = os.Stderr
	}
}

func (s *Session) attach(t transport.Transport) {
	ids := s.ids
	if ids == nil {
		prefix := s.cfg.SentinelPrefix
		if prefix == "" {
			prefix = protocol.DefaultPrefix(s.id)
		}
		ids = protocol.NewCounter(prefix)
	}

	opts := []protocol.Option{
		protocol.WithIDSource(ids),
		protocol.WithLogger(s.logger),
	}
	if s.trace != nil {
		opts = append(opts, protocol.WithTrace(s.trace))
	}
	if s.cfg.LogLimit != 0 {
		opts = append(opts, protocol.WithLogLimit(max(s.cfg.LogLimit, 0)))
	}

	s.t = t
	s.codec = protocol.NewCodec(t, opts...)
	s.metrics.SessionOpened()
	s.logger.Debug("session opened")
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Interact sends one line to the shell and returns the full decoded reply,
// including anything the command printed. A Tcl error returns both the
// Response and a *protocol.EvalError.
func (s *Session) Interact(ctx context.Context, line string) (*protocol.Response, error) {
	return s.exec(ctx, "interact", line)
}

// Eval runs cmd and returns its result. With args, each {} in cmd is
// replaced in order by the quoted argument:
//
//	s.Eval(ctx, "expr {} + {}", 1, 2) // "3"
//
// Without args cmd is sent unchanged, so literal {} is only special when
// arguments are given.
func (s *Session) Eval(ctx context.Context, cmd string, args ...any) (string, error) {
	if len(args) > 0 {
		var err error
		if cmd, err = substitute(cmd, args); err != nil {
			return "", err
		}
	}
	resp, err := s.exec(ctx, "eval", cmd)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// Call runs the command name with quoted positional args followed by
// -key value pairs from kwargs, and returns the raw result.
//
//	s.Call(ctx, "get_device_names", nil, NewKwargs(Kw("hardware_name", "Foo Bar")))
//	// get_device_names -hardware_name {Foo Bar}
func (s *Session) Call(ctx context.Context, name string, args []any, kwargs *Kwargs) (string, error) {
	v, err := s.invoke(ctx, "call", Request{Name: name, Args: args, Kwargs: kwargs, Depth: -1})
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}

// CallList is Call with the result parsed as a flat list.
func (s *Session) CallList(ctx context.Context, name string, args []any, kwargs *Kwargs) ([]string, error) {
	v, err := s.invoke(ctx, "call", Request{Name: name, Args: args, Kwargs: kwargs, Depth: 1})
	if err != nil {
		return nil, err
	}
	return v.Strings(), nil
}

// Invoke is the generic dispatch point: any command name is run as a Tcl
// command and its result parsed to req.Depth.
func (s *Session) Invoke(ctx context.Context, req Request) (tcllist.Value, error) {
	return s.invoke(ctx, "invoke", req)
}

func (s *Session) invoke(ctx context.Context, op string, req Request) (tcllist.Value, error) {
	if req.Name == "" {
		return tcllist.Value{}, ErrEmptyName
	}
	resp, err := s.exec(ctx, op, BuildCommand(req.Name, req.Args, req.Kwargs))
	if err != nil {
		return tcllist.Value{}, err
	}

	depth := req.Depth
	if depth == 0 {
		depth = s.cfg.ParseDepth
	}
	if depth <= 0 {
		return tcllist.Leaf(resp.Result), nil
	}
	return s.Parse(resp.Result, depth)
}

// Parse parses a Tcl list depth levels deep. See tcllist.Parse.
func (s *Session) Parse(text string, depth int) (tcllist.Value, error) {
	if s.closed.Load() {
		return tcllist.Value{}, ErrClosed
	}
	start := time.Now()
	v, err := tcllist.Parse(text, depth)
	s.metrics.Observe("parse", err, time.Since(start))
	if err != nil {
		s.logger.Debug("list parse failed", slog.Int("depth", depth), slog.Any("error", err))
		return tcllist.Value{}, err
	}
	s.logger.Debug("list parsed", slog.Int("depth", depth), slog.Int("items", v.Len()))
	return v, nil
}

// Close shuts the shell down. Later calls do nothing.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.t.Close()
		s.metrics.SessionClosed()
		s.logger.Debug("session closed", slog.Any("error", err))
	})
	return err
}

func (s *Session) exec(ctx context.Context, op, cmd string) (*protocol.Response, error) {
	if s.closed.Load() {
		s.metrics.Observe(op, ErrClosed, 0)
		return nil, ErrClosed
	}
	start := time.Now()
	resp, err := s.codec.Exec(ctx, cmd)
	s.metrics.Observe(op, err, time.Since(start))
	return resp, err
}

// BuildCommand renders name, quoted args and -key value pairs as one
// command line.
func BuildCommand(name string, args []any, kwargs *Kwargs) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote.Quote(Stringify(a)))
	}
	if kwargs != nil {
		for p := kwargs.Oldest(); p != nil; p = p.Next() {
			b.WriteString(" -")
			b.WriteString(p.Key)
			b.WriteByte(' ')
			b.WriteString(quote.Quote(Stringify(p.Value)))
		}
	}
	return b.String()
}

// Stringify converts a Go value to the string a Tcl command receives.
// Strings pass through; []string and []any become Tcl lists; bools become
// 1 or 0; fmt.Stringer is honored; anything else uses fmt.Sprint.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []string:
		return tcllist.Format(x...)
	case []any:
		elems := make([]string, len(x))
		for i, e := range x {
			elems[i] = Stringify(e)
		}
		return tcllist.Format(elems...)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func substitute(cmd string, args []any) (string, error) {
	if n := strings.Count(cmd, "{}"); n != len(args) {
		return "", fmt.Errorf("%w: %d placeholders, %d arguments", ErrArgCount, n, len(args))
	}
	var b strings.Builder
	rest := cmd
	for _, a := range args {
		before, after, _ := strings.Cut(rest, "{}")
		b.WriteString(before)
		b.WriteString(quote.Quote(Stringify(a)))
		rest = after
	}
	b.WriteString(rest)
	return b.String(), nil
}
