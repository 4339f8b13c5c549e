package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettle = 500 * time.Millisecond

// Watcher re-imports a scraper export whenever the file is written.
type Watcher struct {
	watcher *fsnotify.Watcher
	writer  Writer
	logger  *slog.Logger
	path    string
	settle  time.Duration
	opts    ImportOptions
}

// NewWatcher watches path's directory for changes to path.
func NewWatcher(path string, writer Writer, opts ImportOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		watcher: w,
		writer:  writer,
		logger:  logger,
		path:    abs,
		settle:  defaultSettle,
		opts:    opts,
	}, nil
}

// Run blocks until ctx is done, importing the export after each burst of writes.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Scrapers often write in several chunks; wait for the file to settle.
			pending = time.After(w.settle)
		case <-pending:
			pending = nil
			if err := w.reload(ctx); err != nil {
				w.logger.Error("catalog reload failed", "path", w.path, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) error {
	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	coffees, err := ParseExport(f, w.logger)
	if err != nil {
		return err
	}

	n, err := Import(ctx, w.writer, coffees, w.opts)
	if err != nil {
		return err
	}

	w.logger.Info("catalog reloaded", "path", w.path, "coffees", n)
	return nil
}
