// Package watch re-runs a callback whenever a script file changes, so a Tcl
// file being edited can be re-sourced into a live session.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce per save.
const DefaultDebounce = 100 * time.Millisecond

// Evaluator runs Tcl commands. *quartus.Session satisfies it.
type Evaluator interface {
	Eval(ctx context.Context, cmd string, args ...any) (string, error)
}

// Watcher reports changes to a single file.
type Watcher struct {
	path     string
	w        *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets the quiet period before the callback runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New starts watching path. The file need not exist yet, but its directory
// must.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors often replace the file rather than
	// write it in place.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		w:        fw,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn after each write to the file until ctx ends. Errors from fn
// are logged and do not stop the loop. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, fn func(path string) error) error {
	defer w.w.Close()

	baseName := filepath.Base(w.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("script changed", slog.String("path", w.path), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := fn(w.path); err != nil {
				w.logger.Warn("reload failed", slog.String("path", w.path), slog.Any("error", err))
			}

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}

// Close stops watching without running the loop.
func (w *Watcher) Close() error {
	return w.w.Close()
}

// Source returns a callback that sources the changed file into e.
func Source(ctx context.Context, e Evaluator) func(path string) error {
	return func(path string) error {
		_, err := e.Eval(ctx, "source {}", filepath.ToSlash(path))
		return err
	}
}
