package cssmod

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of events for one file
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures a Watcher
type WatchOptions struct {
	Debounce time.Duration
	// OnBuild is called after every rebuild or removal. fr is nil for removals
	// and failed builds.
	OnBuild func(path string, fr *FileResult, err error)
}

// Watcher rebuilds files of a Builder when they change on disk.
//
// Usage:
//
//	watcher, err := cssmod.NewWatcher(builder, cssmod.WatchOptions{}, logger)
//	if err := watcher.Start(ctx); err != nil {
//		return err
//	}
//	defer watcher.Stop()
type Watcher struct {
	builder *Builder
	watcher *fsnotify.Watcher
	log     *zap.Logger
	options WatchOptions
	ctx     context.Context

	// Debouncing
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher for the source directory of builder.
func NewWatcher(builder *Builder, options WatchOptions, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		builder:        builder,
		watcher:        fsw,
		log:            log.Named("watcher"),
		options:        options,
		ctx:            context.Background(),
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches the source directory tree in the background. The watcher
// stops when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	root := w.builder.config.SourceDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	w.ctx = ctx
	w.started = true
	w.log.Info("File watcher started", zap.String("root", root))

	go w.eventLoop()
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	w.log.Info("File watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case <-w.ctx.Done():
			_ = w.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// New directories are watched as they appear
	if event.Has(fsnotify.Create) && isDir(path) {
		if !w.shouldIgnoreDir(path) {
			if err := w.watcher.Add(path); err != nil {
				w.log.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return
	}

	cfg := w.builder.config
	if !matchesIncludes(cfg.SourceDir, path, cfg.Includes, cfg.Excludes) {
		return
	}

	w.log.Debug("File event", zap.String("op", event.Op.String()), zap.String("file", path))

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounce(path, w.rebuild)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.debounce(path, w.remove)
	}
}

// debounce runs fn after the debounce delay, replacing any pending call for path
func (w *Watcher) debounce(path string, fn func(string)) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(w.options.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		fn(path)
	})
}

func (w *Watcher) rebuild(path string) {
	fr, err := w.builder.BuildFile(w.ctx, path)
	if err != nil {
		w.log.Warn("Rebuild failed", zap.String("file", path), zap.Error(err))
	} else {
		w.log.Info("Rebuilt file",
			zap.String("file", fr.RelPath),
			zap.Int("classes", fr.Modules.Classes.Len()),
			zap.Int("utilities", fr.Modules.Utilities.Len()))
		err = w.writeManifest()
	}
	w.notify(path, fr, err)
}

func (w *Watcher) remove(path string) {
	// Rename events also fire for editors that save by replacing the file
	if exists(path) {
		w.rebuild(path)
		return
	}

	err := w.builder.Forget(path)
	if err == nil {
		err = w.writeManifest()
	}
	w.log.Info("Removed file", zap.String("file", path))
	w.notify(path, nil, err)
}

func (w *Watcher) writeManifest() error {
	if w.builder.config.DryRun {
		return nil
	}
	_, err := w.builder.WriteManifest()
	return err
}

func (w *Watcher) notify(path string, fr *FileResult, err error) {
	if w.options.OnBuild != nil {
		w.options.OnBuild(path, fr, err)
	}
}

// shouldIgnoreDir skips dependency folders and the output directory
func (w *Watcher) shouldIgnoreDir(path string) bool {
	switch filepath.Base(path) {
	case "node_modules", ".git":
		return true
	}
	out := w.builder.config.OutputDir
	return out != "" && filepath.Clean(path) == filepath.Clean(out)
}
