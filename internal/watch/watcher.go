// Package watch reloads a specification set whenever files under its root
// change, and publishes each new set together with its fingerprint.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"validate-specs/internal/specset"
)

const defaultDebounce = 200 * time.Millisecond

// LoadFunc loads a specification set.
type LoadFunc func(ctx context.Context) (*specset.SpecificationSet, error)

// Config configures the watcher.
type Config struct {
	// Root is the directory to watch.
	Root string
	// Single treats Root as a single package directory instead of a
	// metrics package with a specs/ subdirectory. Ignored when Load is set.
	Single bool
	// Debounce is how long to collect changes before reloading.
	Debounce time.Duration
	// Load replaces the default loader.
	Load LoadFunc
	// LoadConfig is passed to the default loader.
	LoadConfig specset.LoadConfig
	// Logger for logging events.
	Logger *slog.Logger
}

// Update is published after every reload that changed the fingerprint or
// failed.
type Update struct {
	Set         *specset.SpecificationSet
	Fingerprint uint64
	Err         error
}

// Watcher watches a specification tree and reloads it on change.
type Watcher struct {
	config  Config
	load    LoadFunc
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	dirtyMu sync.Mutex
	dirty   bool

	last    uint64
	hasLast bool

	updates  chan Update
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// New creates a watcher. Nothing is watched until Start.
func New(config Config) (*Watcher, error) {
	if config.Root == "" {
		return nil, errors.New("watch root is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}

	load := config.Load
	if load == nil {
		load = defaultLoad(config)
	}

	return &Watcher{
		config:  config,
		load:    load,
		watcher: fsw,
		logger:  logger,
		updates: make(chan Update, 16),
	}, nil
}

func defaultLoad(config Config) LoadFunc {
	cfg := config.LoadConfig
	if cfg.Logger == nil {
		cfg.Logger = config.Logger
	}

	return func(ctx context.Context) (*specset.SpecificationSet, error) {
		if config.Single {
			return specset.LoadSinglePackage(ctx, config.Root, cfg)
		}

		return specset.LoadMetricsPackage(ctx, config.Root, cfg)
	}
}

// Updates returns the channel of reload results. It is closed by Stop.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Start loads the set once, publishes the result and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)

	w.reload(ctx)

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		w.processEvents(ctx)
	}()

	w.logger.Info("specification watcher started",
		"root", w.config.Root,
		"debounce", w.config.Debounce)

	return nil
}

// Stop stops watching and closes the Updates channel. Later calls return
// the result of the first.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}

		w.stopErr = w.watcher.Close()
		w.wg.Wait()
		close(w.updates)
	})

	return w.stopErr
}

// addWatchesRecursive adds watches to all non-hidden directories.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}

		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if w.takeDirty() {
				w.reload(ctx)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name
	if isHidden(filepath.Base(path)) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}

			w.markDirty()

			return
		}
	}

	if !w.relevant(path) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("specification change detected", "path", path, "op", event.Op.String())
	w.markDirty()
}

func (w *Watcher) relevant(path string) bool {
	exts := w.config.LoadConfig.Extensions
	if len(exts) == 0 {
		exts = specset.DefaultConfig().Extensions
	}

	return slices.Contains(exts, filepath.Ext(path))
}

func (w *Watcher) markDirty() {
	w.dirtyMu.Lock()
	w.dirty = true
	w.dirtyMu.Unlock()
}

func (w *Watcher) takeDirty() bool {
	w.dirtyMu.Lock()
	defer w.dirtyMu.Unlock()

	d := w.dirty
	w.dirty = false

	return d
}

// reload loads the set and publishes it when its fingerprint changed or
// loading failed.
func (w *Watcher) reload(ctx context.Context) {
	set, err := w.load(ctx)
	if err != nil {
		w.logger.Warn("reload failed", "root", w.config.Root, "error", err)
		w.hasLast = false
		w.send(Update{Err: err})

		return
	}

	fp, err := set.Fingerprint()
	if err != nil {
		w.send(Update{Err: err})
		return
	}

	if w.hasLast && fp == w.last {
		w.logger.Debug("specifications unchanged", "fingerprint", fp)
		return
	}

	w.last, w.hasLast = fp, true

	w.logger.Info("specifications reloaded",
		"specifications", set.Len(),
		"partials", set.PartialCount(),
		"fingerprint", fp)

	w.send(Update{Set: set, Fingerprint: fp})
}

func (w *Watcher) send(u Update) {
	select {
	case w.updates <- u:
	default:
		w.logger.Warn("update channel full, dropping update")
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
