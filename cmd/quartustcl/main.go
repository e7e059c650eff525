// Command quartustcl talks to a Quartus Tcl shell from the terminal.
//
// Usage:
//
//	quartustcl [flags] [shell args...]
//
// With -c it runs one command and prints the result. With -script it renders
// a parameterized script file, filling <%name%> from -set name=value, and
// evaluates it. Otherwise it reads
// commands from stdin, one per line, and prints each command's output and
// result. Positional arguments replace the shell command line, so
// `quartustcl tclsh` works without Quartus installed.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/randalmurphal/quartustcl/metrics"
	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/quartus"
	"github.com/randalmurphal/quartustcl/script"
	"github.com/randalmurphal/quartustcl/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	debug       bool
	command     string
	configPath  string
	watchPath   string
	metricsAddr string
	schema      bool
	scriptPath  string
	vars        scriptVars
	shellArgs   []string
}

// scriptVars collects repeated -set name=value flags.
type scriptVars map[string]any

func (v scriptVars) String() string {
	pairs := make([]string, 0, len(v))
	for name, value := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, value))
	}
	return strings.Join(pairs, ",")
}

func (v scriptVars) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = value
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{vars: scriptVars{}}

	fs := flag.NewFlagSet("quartustcl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.debug, "d", false, "Print all shell traffic to stderr")
	fs.StringVar(&opts.command, "c", "", "Run one Tcl command, print its result and exit")
	fs.StringVar(&opts.configPath, "config", "", "Load session config from a .yaml, .toml or .json file")
	fs.StringVar(&opts.watchPath, "watch", "", "Source this Tcl file into the shell whenever it changes")
	fs.StringVar(&opts.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.StringVar(&opts.scriptPath, "script", "", "Render a Tcl script file with -set variables, run it and exit")
	fs.Var(opts.vars, "set", "Set a script variable as name=value (repeatable)")
	fs.BoolVar(&opts.schema, "schema", false, "Print the config JSON Schema and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: quartustcl [flags] [shell args...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.shellArgs = fs.Args()
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.schema {
		schema, err := quartus.ConfigSchema()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(schema))
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if opts.metricsAddr != "" {
		srv, err := serveMetrics(opts.metricsAddr, reg, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer srv.Close()
	}

	sessionOpts := []quartus.Option{
		quartus.WithLogger(logger),
		quartus.WithMetrics(collector),
	}
	if cfg.Debug {
		sessionOpts = append(sessionOpts, quartus.WithTrace(stderr))
	}

	s, err := quartus.NewWithConfig(cfg, sessionOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer s.Close()

	shell := &lockedSession{s: s}

	if opts.command != "" {
		result, err := shell.Eval(ctx, opts.command)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, result)
		return 0
	}

	if opts.scriptPath != "" {
		return runScript(ctx, shell, opts, stdout, stderr)
	}

	if opts.watchPath != "" {
		w, err := watch.New(opts.watchPath, watch.WithLogger(logger))
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		go func() {
			_ = w.Run(ctx, watch.Source(ctx, shell))
		}()
	}

	return repl(ctx, shell, stdin, stdout, stderr)
}

func loadConfig(opts options) (quartus.Config, error) {
	cfg := quartus.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = quartus.LoadConfig(opts.configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	if len(opts.shellArgs) > 0 {
		cfg.Args = opts.shellArgs
	}
	return cfg, nil
}

// runScript renders the script file with the -set variables and evaluates
// it in one round trip.
func runScript(ctx context.Context, s *lockedSession, opts options, stdout, stderr io.Writer) int {
	src, err := os.ReadFile(opts.scriptPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	engine := script.NewEngine()
	required, err := engine.Variables(string(src))
	if err == nil {
		err = script.ValidateVariables(required, opts.vars)
	}
	if err == nil {
		var result string
		if result, err = engine.Run(ctx, s, string(src), opts.vars); err == nil {
			fmt.Fprintln(stdout, result)
			return 0
		}
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

// repl sends each stdin line to the shell until EOF or a fatal error.
func repl(ctx context.Context, s *lockedSession, stdin io.Reader, stdout, stderr io.Writer) int {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		resp, err := s.Interact(ctx, line)
		if resp != nil && resp.Output != "" {
			fmt.Fprint(stdout, resp.Output)
		}
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			if quartus.IsFatal(err) {
				return 1
			}
			continue
		}
		if resp.Result != "" {
			fmt.Fprintln(stdout, resp.Result)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "error: read stdin: %v\n", err)
		return 1
	}
	return 0
}

// lockedSession serializes the REPL and the file watcher on one session.
type lockedSession struct {
	mu sync.Mutex
	s  *quartus.Session
}

func (l *lockedSession) Eval(ctx context.Context, cmd string, args ...any) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Eval(ctx, cmd, args...)
}

func (l *lockedSession) Interact(ctx context.Context, line string) (*protocol.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Interact(ctx, line)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return srv, nil
}
