// Package watcher monitors the EDL output directory so that manually
// edited or removed .edl files trigger regeneration, grounded on
// CineVault's internal/watcher (recursive fsnotify + debounce) scaled down
// to a single flat directory.
package watcher

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// OnEdlChange is called (debounced) when an .edl file under the watched
// directory is created, modified, or removed.
type OnEdlChange func(path string)

// Watcher monitors a single directory for .edl file churn.
type Watcher struct {
	dir      string
	callback OnEdlChange
	watcher  *fsnotify.Watcher

	mu       sync.Mutex
	debounce map[string]*time.Timer
	stop     chan struct{}
}

// New creates a watcher over dir. The directory is added to the underlying
// fsnotify watch immediately so Start only needs to pump events.
func New(dir string, cb OnEdlChange) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		dir:      dir,
		callback: cb,
		watcher:  fw,
		debounce: make(map[string]*time.Timer),
		stop:     make(chan struct{}),
	}, nil
}

// Start begins the event loop in the background.
func (w *Watcher) Start() {
	go w.eventLoop()
	log.Printf("[watcher] watching %s for edl changes", w.dir)
}

// Stop terminates the event loop and releases the underlying fsnotify
// watcher.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
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
			log.Printf("[watcher] error: %v", err)
		case <-w.stop:
			return
		}
	}
}

// handleEvent debounces (1s) rapid-fire events against the same path before
// invoking the callback, matching the teacher's media-file debounce window.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".edl") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.debounce[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.debounce[path] = time.AfterFunc(1*time.Second, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.callback(path)
	})
}
