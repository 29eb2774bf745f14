package keyword

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a keyword definition file whenever it changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	onLoad  func(*Table)
	onError func(error)

	mu      sync.Mutex
	reloads uint64
}

// NewWatcher watches path. onLoad receives every successfully reloaded table;
// onError receives load and watcher errors and may be nil.
func NewWatcher(path string, onLoad func(*Table), onError func(error)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	// Editors often replace the file instead of writing it, so watch the
	// directory and filter on the file name.
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	if onError == nil {
		onError = func(error) {}
	}

	return &Watcher{
		watcher: fsWatcher,
		path:    abs,
		onLoad:  onLoad,
		onError: onError,
	}, nil
}

// Run processes file system events until ctx is done or the watcher is
// closed. A reload happens once events for the file have settled.
func (w *Watcher) Run(ctx context.Context) {
	// Debounce duration - wait for rapid changes to settle
	const debounce = 100 * time.Millisecond

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			settle = time.After(debounce)

		case <-settle:
			settle = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) reload() {
	t, err := Load(w.path)
	if err != nil {
		w.onError(err)
		return
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.onLoad(t)
}

// Reloads returns how many times the file has been reloaded successfully.
func (w *Watcher) Reloads() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
