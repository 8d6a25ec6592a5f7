// Package watcher reloads the catalog when template files change on disk.
// It watches the templates root and each category folder below it.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

type Config struct {
	Dir      string
	Logger   *slog.Logger
	Debounce time.Duration
	// OnChange runs after a quiet period following template changes.
	OnChange func()
}

type Watcher struct {
	dir       string
	logger    *slog.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	done      chan struct{}
}

func New(cfg *Config) (*Watcher, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.OnChange == nil {
		return nil, errors.New("change callback is required")
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, errors.New("templates directory is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:       filepath.Clean(cfg.Dir),
		logger:    logger.With("component", "watcher"),
		fsWatcher: fsWatcher,
		debouncer: NewDebouncer(debounce, cfg.OnChange),
		done:      make(chan struct{}),
	}, nil
}

// Start watches until ctx is cancelled. The templates root must exist.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addCategory(filepath.Join(w.dir, e.Name()))
		}
	}

	w.logger.Info("file watcher started", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}

	w.debouncer.Stop()
	if err := w.fsWatcher.Close(); err != nil {
		return fmt.Errorf("close fsnotify watcher: %w", err)
	}
	w.logger.Info("file watcher stopped")
	return nil
}

func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) addCategory(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Debug("failed to watch category", "path", dir, "error", err)
		return
	}
	w.logger.Debug("watching category", "path", dir)
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	depth := len(strings.Split(filepath.ToSlash(rel), "/"))

	switch depth {
	case 1:
		// A category folder appeared, vanished or was renamed.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.addCategory(event.Name)
				w.debouncer.Trigger()
			}
			return
		}
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			w.debouncer.Trigger()
		}
	case 2:
		if IsTemplateFile(event.Name) {
			w.logger.Debug("template changed", "path", rel, "op", event.Op.String())
			w.debouncer.Trigger()
		}
	}
}

// IsTemplateFile reports whether path has a template extension. The match is
// case-sensitive like the loader's glob.
func IsTemplateFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
