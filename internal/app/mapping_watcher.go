package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/jointreplay/internal/ports"
)

// DefaultDebounceDelay is the quiet period after a mapping file change before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// MapperSink receives mappers rebuilt by a MappingWatcher.
type MapperSink interface {
	SetMapper(m *Mapper)
}

// MappingWatcher reloads the mapping table when its file changes and hands
// the rebuilt Mapper to a sink. A failed reload keeps the previous mapper.
type MappingWatcher struct {
	repo     ports.MappingRepository
	sink     MapperSink
	logger   ports.Logger
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	onReload func(err error)
}

// NewMappingWatcher creates a watcher for repo's file. debounce <= 0 uses DefaultDebounceDelay.
func NewMappingWatcher(repo ports.MappingRepository, sink MapperSink, debounce time.Duration, logger ports.Logger) *MappingWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounceDelay
	}
	return &MappingWatcher{
		repo:     repo,
		sink:     sink,
		logger:   logger,
		debounce: debounce,
	}
}

// OnReload registers a callback invoked after every reload attempt.
func (w *MappingWatcher) OnReload(fn func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Run watches the mapping file's directory until ctx is done.
func (w *MappingWatcher) Run(ctx context.Context) error {
	path := w.repo.Path()
	if path == "" {
		return fmt.Errorf("mapping watcher: repository has no file path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("mapping watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("mapping watcher: watch %s: %w", dir, err)
	}

	w.logger.Info("watching mapping file", ports.String("path", path))
	target := filepath.Base(path)

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("mapping watcher error", ports.Err(err))
		}
	}
}

func (w *MappingWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.Reload(ctx)
	})
}

func (w *MappingWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Reload loads the table, builds a Mapper and passes it to the sink.
func (w *MappingWatcher) Reload(ctx context.Context) error {
	err := w.reload(ctx)

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
	return err
}

func (w *MappingWatcher) reload(ctx context.Context) error {
	table, err := w.repo.Load(ctx)
	if err != nil {
		w.logger.Error("mapping reload failed, keeping previous mapping", ports.Err(err))
		return err
	}
	m, err := NewMapper(table)
	if err != nil {
		w.logger.Error("mapping reload rejected, keeping previous mapping", ports.Err(err))
		return err
	}

	w.sink.SetMapper(m)
	w.logger.Info("mapping reloaded",
		ports.String("path", w.repo.Path()),
		ports.Int("parts", len(table.Parts)),
	)
	return nil
}
