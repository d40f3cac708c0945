package settings

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
)

// Event carries settings reloaded after an external edit
type Event struct {
	Settings model.DisplaySettings
	Err      error
}

// Watcher reports edits to the settings file made outside the agent
type Watcher struct {
	store   *FileStore
	watcher *fsnotify.Watcher
	events  chan Event
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the directory holding the store's file, since editors
// and the store itself replace the file by rename.
func NewWatcher(store *FileStore) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(store.Path())); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &Watcher{
		store:   store,
		watcher: watcher,
		events:  make(chan Event, 8),
		done:    make(chan struct{}),
	}

	go w.processEvents()

	return w, nil
}

func (w *Watcher) processEvents() {
	defer close(w.events)

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue running
			util.LogError("Settings watcher error: " + err.Error())

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload(event fsnotify.Event) {
	// A truncating write reports an empty file before the new content lands
	if info, err := util.GetFileInfo(w.store.Path()); err != nil || info.Size == 0 {
		return
	}
	fingerprint, err := util.CalculateFileFingerprint(w.store.Path())
	if err != nil {
		// Removed or mid-rename; the next event carries the final content
		return
	}
	if fingerprint == w.store.Fingerprint() {
		return
	}

	util.LogDebugf("Settings file changed (%s)", event.Op)
	settings, err := w.store.Load()

	select {
	case w.events <- Event{Settings: settings, Err: err}:
	case <-w.done:
	}
}

// Events returns reloaded settings; the channel closes after Close
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
