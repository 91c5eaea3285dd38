// Package watch regenerates on changes to the config file, templates or
// plugins.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of events, such as an editor save
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called once per debounced burst with the paths that changed
type ChangeFunc func(paths []string)

// Config holds configuration for the watcher
type Config struct {
	// Paths are files or directories. Directories are watched recursively;
	// files are matched by name through their parent directory.
	Paths    []string
	Debounce time.Duration
	OnChange ChangeFunc
}

// Watcher monitors paths and reports debounced changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration
	onChange ChangeFunc

	// files are watched individually, keyed by cleaned absolute path
	files map[string]struct{}
	// dirs are watched with all their contents
	dirs []string

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher; call Start to begin receiving events
func New(cfg Config, logger zerolog.Logger) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("watcher requires an OnChange callback")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger.With().Str("component", "watcher").Logger(),
		debounce: cfg.Debounce,
		onChange: cfg.OnChange,
		files:    make(map[string]struct{}),
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	for _, path := range cfg.Paths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		switch {
		case err != nil:
			w.logger.Warn().Err(err).Str("path", path).Msg("Not watching missing path")
		case info.IsDir():
			w.dirs = append(w.dirs, abs)
		default:
			w.files[abs] = struct{}{}
		}
	}

	return w, nil
}

// Start adds every path to the underlying watcher and starts the event loop
func (w *Watcher) Start() error {
	for _, dir := range w.dirs {
		if err := w.addDirectoryRecursive(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	parents := make(map[string]struct{})
	for file := range w.files {
		parent := filepath.Dir(file)
		if _, ok := parents[parent]; ok {
			continue
		}
		parents[parent] = struct{}{}
		if err := w.watcher.Add(parent); err != nil {
			return fmt.Errorf("failed to watch %s: %w", parent, err)
		}
	}

	go w.eventLoop()

	w.logger.Info().
		Int("dirs", len(w.dirs)).
		Int("files", len(w.files)).
		Msg("Watching for changes")
	return nil
}

// Stop stops the watcher and drops pending changes
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	clear(w.pending)
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Run starts the watcher and blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
		return
	}

	if event.Op.Has(fsnotify.Create) && w.underDir(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addDirectoryRecursive(event.Name)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	clear(w.pending)
	w.timer = nil
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	if len(paths) == 0 {
		return
	}

	w.logger.Debug().Strs("paths", paths).Msg("Change detected")
	w.onChange(paths)
}

// relevant reports whether path is a watched file or lives under a watched
// directory, ignoring editor and temporary files
func (w *Watcher) relevant(path string) bool {
	if shouldIgnore(path) {
		return false
	}
	if _, ok := w.files[filepath.Clean(path)]; ok {
		return true
	}
	return w.underDir(path)
}

func (w *Watcher) underDir(path string) bool {
	for _, dir := range w.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirectoryRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if walkPath != path && shouldIgnore(walkPath) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(walkPath); err != nil {
			w.logger.Warn().
				Err(err).
				Str("path", walkPath).
				Msg("Failed to watch path")
		}
		return nil
	})
}

// shouldIgnore filters dotfiles, editor swap files and temporary files
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"):
		return true
	case strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".tmp"):
		return true
	case base == "node_modules":
		return true
	}
	return false
}
