package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/tundra/engine/assets/loaders"
	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/jobs"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

const defaultDebounce = 100 * time.Millisecond

// AssetManager indexes an asset directory, loads files through the loader
// registered for their type and caches the results. Paths are relative to
// the root and use forward slashes.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[AssetType]Loader
	cache   map[string]any

	mutex sync.RWMutex

	jobs     *jobs.JobSystem
	watcher  *Watcher
	isClosed bool
}

// NewAssetManager creates a manager for root. js may be nil, LoadAsync then
// loads synchronously.
func NewAssetManager(root string, js *jobs.JobSystem) *AssetManager {
	am := &AssetManager{
		root:    filepath.Clean(root),
		assets:  make(map[string]AssetInfo),
		loaders: make(map[AssetType]Loader),
		cache:   make(map[string]any),
		jobs:    js,
	}

	// Register loaders
	am.RegisterLoader(AssetTypeTexture, &loaders.TextureLoader{})
	am.RegisterLoader(AssetTypeModel, &loaders.OBJLoader{})
	am.RegisterLoader(AssetTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.RegisterLoader(AssetTypeTrueTypeFont, &loaders.TrueTypeLoader{})
	am.RegisterLoader(AssetTypeScript, &loaders.TextLoader{})
	am.RegisterLoader(AssetTypeShader, &loaders.TextLoader{})
	am.RegisterLoader(AssetTypeScene, &loaders.TextLoader{})
	return am
}

// Initialize indexes the root directory and, when watch is set, starts the
// file watcher used for hot reload.
func (am *AssetManager) Initialize(watch bool) error {
	if err := am.index(); err != nil {
		return err
	}
	if watch {
		w, err := NewWatcher(am.root, defaultDebounce, am.handleChange)
		if err != nil {
			return fmt.Errorf("watch %s: %w", am.root, err)
		}
		am.watcher = w
	}
	core.LogInfo("asset manager indexed %d files in %s", am.Len(), am.root)
	return nil
}

func (am *AssetManager) Root() string { return am.root }

// Register loaders for each asset type
func (am *AssetManager) RegisterLoader(assetType AssetType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Len returns the number of indexed files.
func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Info returns the index entry of path.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[am.relative(path)]
	return info, ok
}

// Load returns the cached resource of path or loads it with the loader of
// its type.
func (am *AssetManager) Load(path string) (any, error) {
	rel := am.relative(path)

	am.mutex.RLock()
	if am.isClosed {
		am.mutex.RUnlock()
		return nil, ErrClosed
	}
	if res, ok := am.cache[rel]; ok {
		am.mutex.RUnlock()
		return res, nil
	}
	assetType := determineAssetType(rel)
	if info, ok := am.assets[rel]; ok {
		assetType = info.Type
	}
	loader, loaderExists := am.loaders[assetType]
	am.mutex.RUnlock()

	if assetType == AssetTypeNone {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAssetType, rel)
	}
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for %s assets: %s", assetType, rel)
	}

	res, err := loader.Load(am.fullPath(rel))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rel, err)
	}

	am.mutex.Lock()
	am.cache[rel] = res
	info := am.assets[rel]
	info.Path, info.Type, info.LastLoaded = rel, assetType, time.Now()
	am.assets[rel] = info
	am.mutex.Unlock()

	core.LogDebug("loaded %s %s", assetType, rel)
	return res, nil
}

func (am *AssetManager) LoadModel(path string) (*renderer.Model, error) {
	return loadAs[*renderer.Model](am, path)
}

func (am *AssetManager) LoadTexture(path string) (*renderer.Texture, error) {
	return loadAs[*renderer.Texture](am, path)
}

func (am *AssetManager) LoadFont(path string) (*renderer.Font, error) {
	return loadAs[*renderer.Font](am, path)
}

func (am *AssetManager) LoadScript(path string) ([]byte, error) {
	return loadAs[[]byte](am, path)
}

func (am *AssetManager) LoadShader(path string) ([]byte, error) {
	return loadAs[[]byte](am, path)
}

func loadAs[T any](am *AssetManager, path string) (T, error) {
	var zero T
	res, err := am.Load(path)
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is a %T", ErrWrongAssetType, path, res)
	}
	return typed, nil
}

// Unload drops the cached resource of path.
func (am *AssetManager) Unload(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.cache, am.relative(path))
}

// Preload loads paths in parallel and stops at the first failure.
func (am *AssetManager) Preload(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := am.Load(p)
			return err
		})
	}
	return g.Wait()
}

// LoadAsync loads path on the job system. fn runs on the thread calling
// JobSystem.Update.
func (am *AssetManager) LoadAsync(path string, fn func(res any, err error)) error {
	if am.jobs == nil {
		fn(am.Load(path))
		return nil
	}
	return am.jobs.Submit(jobs.Job{
		Name:       "load " + path,
		Run:        func() (any, error) { return am.Load(path) },
		OnComplete: func(res any) { fn(res, nil) },
		OnFailure:  func(err error) { fn(nil, err) },
	})
}

// Watch calls fn from the watcher goroutine whenever path changes. The
// cached resource is dropped before fn runs.
func (am *AssetManager) Watch(path string, fn func(path string)) (func(), error) {
	am.mutex.RLock()
	w := am.watcher
	am.mutex.RUnlock()
	if w == nil {
		return nil, ErrWatchDisabled
	}
	return w.Subscribe(am.relative(path), fn), nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	w := am.watcher
	am.watcher = nil
	clear(am.cache)
	am.mutex.Unlock()

	if w != nil {
		return w.Close()
	}
	return nil
}

func (am *AssetManager) index() error {
	return filepath.WalkDir(am.root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(am.root, walkPath)
		if err != nil {
			return err
		}
		am.indexFile(filepath.ToSlash(rel))
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) indexFile(rel string) {
	assetType := determineAssetType(rel)
	if assetType == AssetTypeNone {
		return
	}
	s, err := os.Stat(am.fullPath(rel))
	if err != nil {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[rel]
	info.Path, info.Type, info.Size, info.ModTime = rel, assetType, s.Size(), s.ModTime()
	am.assets[rel] = info
}

// handleChange runs on the watcher goroutine for every changed file.
func (am *AssetManager) handleChange(rel string) {
	am.mutex.Lock()
	delete(am.cache, rel)
	am.mutex.Unlock()

	if _, err := os.Stat(am.fullPath(rel)); errors.Is(err, fs.ErrNotExist) {
		am.mutex.Lock()
		delete(am.assets, rel)
		am.mutex.Unlock()
		core.LogDebug("asset %s removed", rel)
		return
	}
	am.indexFile(rel)
	core.LogDebug("asset %s changed", rel)
}

func (am *AssetManager) relative(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(am.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func (am *AssetManager) fullPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(am.root, filepath.FromSlash(rel))
}
