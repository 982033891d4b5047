// Package fs watches input files on disk and reports changes as core events.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/userkv/pkg/core"
)

// DefaultDebounce coalesces the burst of writes an editor produces on save.
const DefaultDebounce = 100 * time.Millisecond

// WatchConfig configures Watch.
type WatchConfig struct {
	// Patterns are file paths or doublestar globs ("data/**/*.txt").
	Patterns []string

	// Debounce is the quiet period before pending events are delivered.
	// Zero means DefaultDebounce.
	Debounce time.Duration

	Logger *slog.Logger

	// ErrorHandler receives watcher errors and panics of the watch loop.
	ErrorHandler func(error)
}

type watcher struct {
	config   WatchConfig
	patterns []string
	fsw      *fsnotify.Watcher
	out      chan core.Event
}

// Watch reports creations and writes of files matching cfg.Patterns until
// ctx is canceled, after which the returned channel is closed. Events for
// the same path within the debounce window are merged, and each batch is
// delivered in path order.
//
// The directories holding the patterns are watched rather than the files,
// so files replaced by rename are still seen. With "**" the existing
// subdirectories are watched as well.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan core.Event, error) {
	if len(cfg.Patterns) == 0 {
		return nil, errors.New("watch: no patterns")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &watcher{config: cfg, out: make(chan core.Event)}
	for _, p := range cfg.Patterns {
		clean := filepath.ToSlash(filepath.Clean(p))
		if !doublestar.ValidatePathPattern(clean) {
			return nil, fmt.Errorf("watch %q: %w", p, doublestar.ErrBadPattern)
		}
		w.patterns = append(w.patterns, clean)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fsw = fsw

	for _, dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.debug("watching", "dir", dir)
	}

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(w.handleError))
	return w.out, nil
}

// dirs returns the distinct directories to register.
func (w *watcher) dirs() []string {
	var dirs []string
	for _, p := range w.patterns {
		base, rest := doublestar.SplitPattern(p)
		base = filepath.FromSlash(base)
		dirs = append(dirs, base)

		if !strings.Contains(rest, "**") {
			continue
		}
		_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() && path != base {
				if strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				dirs = append(dirs, path)
			}
			return nil
		})
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func (w *watcher) matches(name string) bool {
	name = filepath.ToSlash(filepath.Clean(name))
	for _, p := range w.patterns {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
	}
	return false
}

func eventType(ev fsnotify.Event) core.EventType {
	switch {
	case ev.Has(fsnotify.Create):
		return core.EventCreate
	case ev.Has(fsnotify.Write):
		return core.EventModify
	default:
		return ""
	}
}

// run is the watch loop. It owns the pending set, so debouncing needs no
// locking.
func (w *watcher) run(ctx context.Context) error {
	defer close(w.out)
	defer w.fsw.Close()

	pending := make(map[string]core.Event)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.debug("event received", "name", ev.Name, "op", ev.Op.String())

			typ := eventType(ev)
			if typ == "" || !w.matches(ev.Name) {
				continue
			}
			// A create followed by writes is still a create.
			if prev, ok := pending[ev.Name]; ok && prev.Type == core.EventCreate {
				typ = core.EventCreate
			}
			pending[ev.Name] = core.Event{Type: typ, Path: ev.Name, Timestamp: time.Now().Unix()}
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			if !w.flush(ctx, pending) {
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.handleError(err)
		}
	}
}

// flush delivers and clears the pending events. It reports false when ctx
// ended first.
func (w *watcher) flush(ctx context.Context, pending map[string]core.Event) bool {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, p := range paths {
		select {
		case w.out <- pending[p]:
			delete(pending, p)
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *watcher) handleError(err error) {
	if w.config.ErrorHandler != nil {
		w.config.ErrorHandler(err)
		return
	}
	if w.config.Logger != nil {
		w.config.Logger.Error("watcher error", "error", err)
	}
}

func (w *watcher) debug(msg string, args ...any) {
	if w.config.Logger != nil {
		w.config.Logger.Debug(msg, args...)
	}
}
