// Package watcher reloads lexicons when their files change on disk, using fsnotify with debouncing.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches lexicon files and calls onChange once a file has settled
// after a create, write or rename-into event. It watches each file's parent
// directory so atomic replacements are seen.
type Watcher struct {
	onChange    func(code, path string)
	debounce    time.Duration
	files       map[string]string // clean absolute path -> language code
	dirs        map[string]int    // watched directory -> number of files in it
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	loop        sync.WaitGroup
	inflight    sync.WaitGroup
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output (file events, reloads, etc.).
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must be quiet before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher. onChange receives the language code and path of a changed lexicon.
func NewWatcher(onChange func(code, path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		onChange:    onChange,
		debounce:    defaultDebounce,
		files:       make(map[string]string),
		dirs:        make(map[string]int),
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Add watches path as the lexicon of code. The file's directory must exist.
func (w *Watcher) Add(code, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)
	if info, err := os.Stat(dir); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		w.files[abs] = code
		return nil
	}
	if w.watcher != nil && w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.files[abs] = code
	w.dirs[dir]++
	w.logger.Debug("watcher file added", zap.String("language", code), zap.String("path", abs))
	return nil
}

// Remove stops watching the lexicon file of code.
func (w *Watcher) Remove(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, c := range w.files {
		if c != code {
			continue
		}
		delete(w.files, path)
		if t, ok := w.debounceMap[path]; ok {
			t.Stop()
			delete(w.debounceMap, path)
		}
		dir := filepath.Dir(path)
		w.dirs[dir]--
		if w.dirs[dir] <= 0 {
			delete(w.dirs, dir)
			if w.watcher != nil {
				_ = w.watcher.Remove(dir)
			}
		}
		w.logger.Debug("watcher file removed", zap.String("language", code), zap.String("path", path))
	}
}

// Files returns the watched paths in ascending order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return err
		}
	}
	w.watcher = fw
	w.started = true
	w.logger.Debug("watcher starting", zap.Int("files", len(w.files)), zap.Int("directories", len(w.dirs)))

	w.loop.Add(1)
	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.loop.Done()
	for {
		select {
		case <-ctx.Done():
			w.close()
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	code, ok := w.files[path]
	w.mu.Unlock()
	if !ok {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.debounceChange(code, path)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// The installed engine stays until a new file appears.
		w.cancelDebounce(path)
		w.logger.Info("lexicon file removed", zap.String("language", code), zap.String("path", path))
	}
}

func (w *Watcher) debounceChange(code, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if !w.started {
			w.mu.Unlock()
			return
		}
		delete(w.debounceMap, path)
		w.inflight.Add(1)
		w.mu.Unlock()
		defer w.inflight.Done()

		w.logger.Debug("watcher reloading lexicon (debounced)", zap.String("language", code), zap.String("path", path))
		if w.onChange != nil {
			w.onChange(code, path)
		}
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// close releases the fsnotify watcher and pending timers without waiting
// for the event loop.
func (w *Watcher) close() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}

// Stop stops the watcher and waits for the event loop and any running
// onChange call to return. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.close()
	w.loop.Wait()
	w.inflight.Wait()
}
