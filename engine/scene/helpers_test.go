package scene

import (
	"fmt"
	"os"
	"sync"

	"github.com/spaghettifunk/tundra/engine/renderer"
)

// memAssets serves scripts and models from memory and lets tests fire the
// watch callbacks by hand.
type memAssets struct {
	mu       sync.Mutex
	scripts  map[string]string
	models   map[string]*renderer.Model
	watchers map[string]func(string)
}

func newMemAssets() *memAssets {
	return &memAssets{
		scripts:  make(map[string]string),
		models:   make(map[string]*renderer.Model),
		watchers: make(map[string]func(string)),
	}
}

func (m *memAssets) LoadModel(path string) (*renderer.Model, error) {
	if model, ok := m.models[path]; ok {
		return model, nil
	}
	return nil, fmt.Errorf("model %s: %w", path, os.ErrNotExist)
}

func (m *memAssets) LoadFont(path string) (*renderer.Font, error) {
	return nil, fmt.Errorf("font %s: %w", path, os.ErrNotExist)
}

func (m *memAssets) LoadScript(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.scripts[path]
	if !ok {
		return nil, fmt.Errorf("script %s: %w", path, os.ErrNotExist)
	}
	return []byte(src), nil
}

func (m *memAssets) Watch(path string, fn func(string)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers[path] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, path)
	}, nil
}

// touch replaces a script and fires its watcher like the file watcher would.
func (m *memAssets) touch(path, src string) {
	m.mu.Lock()
	m.scripts[path] = src
	fn := m.watchers[path]
	m.mu.Unlock()
	if fn != nil {
		fn(path)
	}
}

func newTestScene() (*Scene, *renderer.RecordingBackend, *memAssets) {
	backend := &renderer.RecordingBackend{}
	assets := newMemAssets()
	return NewScene("test", renderer.NewForwardRenderer(backend), assets), backend, assets
}

type counterScript struct {
	ScriptBase
	created   int
	updates   int
	ticks     int
	destroyed int
}

func (c *counterScript) OnCreate()                { c.created++ }
func (c *counterScript) OnUpdate(dt float64)      { c.updates++ }
func (c *counterScript) OnConstUpdate(dt float64) { c.ticks++ }
func (c *counterScript) OnDestroy()               { c.destroyed++ }

type panickyScript struct {
	ScriptBase
}

func (p *panickyScript) OnUpdate(dt float64) { panic("boom") }
