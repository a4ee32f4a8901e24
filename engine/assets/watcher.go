package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/tundra/engine/core"
)

// Watcher reports file changes below a root directory. Bursts of events on
// the same file are collapsed into one notification after the debounce
// delay. Callbacks run on the watcher goroutines, never on the caller's.
type Watcher struct {
	root     string
	fsnotify *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	mu     sync.Mutex
	subs   map[string]map[uint64]func(string)
	nextID uint64
	timers map[string]*time.Timer

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher watches root and all of its sub-directories. onChange, when
// set, sees every change before the subscribers of the path.
func NewWatcher(root string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		fsnotify: fsWatch,
		debounce: debounce,
		onChange: onChange,
		subs:     make(map[string]map[uint64]func(string)),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	if err := w.watchRecursive(root); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Subscribe calls fn with path whenever the file changes. The returned
// function cancels the subscription.
func (w *Watcher) Subscribe(path string, fn func(path string)) func() {
	key := filepath.ToSlash(filepath.Clean(path))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	if w.subs[key] == nil {
		w.subs[key] = make(map[uint64]func(string))
	}
	w.subs[key][id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs[key], id)
		if len(w.subs[key]) == 0 {
			delete(w.subs, key)
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()

		w.mu.Lock()
		for path, t := range w.timers {
			t.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handle(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("file watcher: %s", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if e.Has(fsnotify.Create) {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogWarn("file watcher: cannot watch %s: %s", e.Name, err)
			}
			return
		}
	}
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
		return
	}
	rel, err := filepath.Rel(w.root, e.Name)
	if err != nil {
		return
	}
	w.schedule(filepath.ToSlash(rel))
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	select {
	case <-w.done:
		return
	default:
	}

	w.mu.Lock()
	delete(w.timers, path)
	callbacks := make([]func(string), 0, len(w.subs[path]))
	for _, fn := range w.subs[path] {
		callbacks = append(callbacks, fn)
	}
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(path)
	}
	for _, fn := range callbacks {
		fn(path)
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}
