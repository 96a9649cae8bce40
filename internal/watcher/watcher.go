// Package watcher reloads the corpus when its file changes on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/utils"
)

// DefaultDebounce is the quiet period after the last change before reloading.
const DefaultDebounce = time.Second

// ReloadFunc is called after the watched file settles.
type ReloadFunc func(ctx context.Context) error

// Watcher triggers a reload when a single file is written, created or
// replaced. Bursts of events within the debounce window cause one reload.
type Watcher struct {
	file     string
	debounce time.Duration
	reload   ReloadFunc
	logger   *zap.Logger
}

// New creates a watcher for file. A zero debounce uses DefaultDebounce.
func New(file string, debounce time.Duration, reload ReloadFunc, logger *zap.Logger) (*Watcher, error) {
	if file == "" {
		return nil, errors.New("watched file is not set")
	}
	if reload == nil {
		return nil, errors.New("reload callback is not set")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", file, err)
	}

	return &Watcher{
		file:     filepath.Clean(abs),
		debounce: debounce,
		reload:   reload,
		logger:   logger.With(zap.String("file", abs)),
	}, nil
}

// Run watches until ctx is done. The parent directory is watched so that
// editors replacing the file by rename are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.file)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	pending := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.reloadLoop(ctx, pending)
	}()

	w.logger.Info("corpus watcher started", zap.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			<-done
			w.logger.Info("corpus watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				<-done
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("corpus file changed", zap.String("op", event.Op.String()))
			select {
			case pending <- struct{}{}:
			default:
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				<-done
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.file {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reloadLoop(ctx context.Context, pending <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-pending:
		}

		if err := utils.WaitFor(ctx, w.debounce); err != nil {
			return
		}
		// Changes during the quiet period are covered by this reload.
		select {
		case <-pending:
		default:
		}

		if err := w.reload(ctx); err != nil {
			w.logger.Error("corpus reload failed", zap.Error(err))
			continue
		}
		w.logger.Info("corpus reloaded")
	}
}
