package quartus

import (
	"io"
	"log/slog"
	"time"

	"github.com/randalmurphal/quartustcl/metrics"
	"github.com/randalmurphal/quartustcl/protocol"
)

// Option configures a Session.
type Option func(*Session)

// WithArgs sets the shell command line.
func WithArgs(args ...string) Option {
	return func(s *Session) { s.cfg.Args = args }
}

// WithWorkDir sets the working directory for the shell.
func WithWorkDir(dir string) Option {
	return func(s *Session) { s.cfg.WorkDir = dir }
}

// WithEnv adds environment variables for the shell process.
func WithEnv(env map[string]string) Option {
	return func(s *Session) {
		if s.cfg.Env == nil {
			s.cfg.Env = make(map[string]string)
		}
		for k, v := range env {
			s.cfg.Env[k] = v
		}
	}
}

// WithDebug mirrors shell traffic to stderr.
func WithDebug(debug bool) Option {
	return func(s *Session) { s.cfg.Debug = debug }
}

// WithKillTimeout sets how long Close waits before killing the shell.
func WithKillTimeout(d time.Duration) Option {
	return func(s *Session) { s.cfg.KillTimeout = d }
}

// WithSentinelPrefix overrides the sentinel prefix.
func WithSentinelPrefix(prefix string) Option {
	return func(s *Session) { s.cfg.SentinelPrefix = prefix }
}

// WithParseDepth sets the default list depth for Invoke.
func WithParseDepth(depth int) Option {
	return func(s *Session) { s.cfg.ParseDepth = depth }
}

// WithLogLimit caps the runes of shell traffic in debug logs. Negative
// disables clipping.
func WithLogLimit(n int) Option {
	return func(s *Session) { s.cfg.LogLimit = n }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records requests in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// WithIDSource replaces the sentinel identifier generator.
func WithIDSource(ids protocol.IDSource) Option {
	return func(s *Session) { s.ids = ids }
}

// WithTrace mirrors shell traffic to w. It takes precedence over Debug.
func WithTrace(w io.Writer) Option {
	return func(s *Session) { s.trace = w }
}
