package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/kiln/engine/assets/loaders"
	"github.com/spaghettifunk/kiln/engine/core"
)

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeTexture
	AssetTypeModel
	AssetTypeBitmapFont
	AssetTypeSystemFont
	AssetTypeMaterial
	AssetTypeShader
	AssetTypeBinary
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeTexture:
		return "texture"
	case AssetTypeModel:
		return "model"
	case AssetTypeBitmapFont:
		return "bitmap-font"
	case AssetTypeSystemFont:
		return "system-font"
	case AssetTypeMaterial:
		return "material"
	case AssetTypeShader:
		return "shader"
	case AssetTypeBinary:
		return "binary"
	}
	return "none"
}

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrWrongType     = errors.New("asset has a different type")
	ErrClosed        = errors.New("asset manager closed")
)

// loadWorkers is the number of goroutines serving asynchronous loads.
const loadWorkers = 2

// changeBuffer bounds the changes queued between two Dispatch calls.
const changeBuffer = 256

// AssetInfo is one indexed file. Name is the slash separated path relative
// to the asset root.
type AssetInfo struct {
	Name     string
	Path     string
	Type     AssetType
	Modified time.Time
}

type ChangeKind uint8

const (
	AssetCreated ChangeKind = iota
	AssetModified
	AssetRemoved
)

type Change struct {
	Asset AssetInfo
	Kind  ChangeKind
}

// AssetManager indexes an asset directory and loads files by name. With
// Watch enabled it follows changes on disk; the watcher goroutine only queues
// them and Dispatch publishes them on the caller's thread.
type AssetManager struct {
	root string

	mutex  sync.RWMutex
	assets map[string]AssetInfo

	fsnotify *fsnotify.Watcher
	changes  chan Change
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed atomic.Bool
	jobs     *JobSystem

	// Changed fires from Dispatch for every queued change.
	Changed core.Callback[Change]
}

func NewAssetManager(root string) (*AssetManager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", abs)
	}

	am := &AssetManager{
		root:    abs,
		assets:  make(map[string]AssetInfo),
		changes: make(chan Change, changeBuffer),
		done:    make(chan struct{}),
	}
	if err := am.scan(abs); err != nil {
		return nil, err
	}
	if am.jobs, err = NewJobSystem(loadWorkers, changeBuffer); err != nil {
		return nil, err
	}
	core.LogInfo("indexed %d assets under %s", am.Len(), abs)
	return am, nil
}

func (am *AssetManager) Root() string { return am.root }

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Lookup returns the indexed asset called name.
func (am *AssetManager) Lookup(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.ToSlash(name)]
	return info, ok
}

// List returns every asset of type t sorted by name.
func (am *AssetManager) List(t AssetType) []AssetInfo {
	am.mutex.RLock()
	var out []AssetInfo
	for _, info := range am.assets {
		if info.Type == t {
			out = append(out, info)
		}
	}
	am.mutex.RUnlock()
	slices.SortFunc(out, func(a, b AssetInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Watch starts following changes under the asset root.
func (am *AssetManager) Watch() error {
	if am.isClosed.Load() {
		return ErrClosed
	}
	if am.fsnotify != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = w
	if err := am.watchRecursive(am.root); err != nil {
		w.Close()
		am.fsnotify = nil
		return err
	}
	am.wg.Add(1)
	go am.start()
	return nil
}

// Dispatch publishes queued changes on Changed and runs the callbacks of
// finished asynchronous loads. Call it from the main thread.
func (am *AssetManager) Dispatch() {
	am.jobs.Dispatch()
	for {
		select {
		case c := <-am.changes:
			core.LogDebug("asset %s %s", c.Asset.Name, c.Kind)
			am.Changed.Call(c)
		default:
			return
		}
	}
}

func (am *AssetManager) Close() error {
	if !am.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	close(am.done)
	am.wg.Wait()
	am.jobs.Shutdown()
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)
		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)
		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		// a removed directory cannot be stat'ed; drop the path and anything under it
		_ = am.fsnotify.Remove(e.Name)
		for _, info := range am.removePrefix(e.Name) {
			am.queue(Change{Asset: info, Kind: AssetRemoved})
		}
		return
	}
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
		return
	}
	st, err := os.Stat(e.Name)
	if err != nil {
		return
	}
	if st.IsDir() {
		if err := am.watchRecursive(e.Name); err != nil {
			core.LogError("failed to watch %s: %s", e.Name, err)
		}
		return
	}
	info, created, ok := am.index(e.Name, st.ModTime())
	if !ok {
		return
	}
	kind := AssetModified
	if created {
		kind = AssetCreated
	}
	am.queue(Change{Asset: info, Kind: kind})
}

func (am *AssetManager) queue(c Change) {
	select {
	case am.changes <- c:
	default:
		core.LogWarn("asset change queue full, dropping %s", c.Asset.Name)
	}
}

// watchRecursive adds path and all of its sub-directories to the watcher and
// indexes files found under them, reporting them as created.
func (am *AssetManager) watchRecursive(path string) error {
	if am.isClosed.Load() {
		return ErrClosed
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(p)
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if info, created, ok := am.index(p, fi.ModTime()); ok && created {
			am.queue(Change{Asset: info, Kind: AssetCreated})
		}
		return nil
	})
}

// scan indexes every file under path.
func (am *AssetManager) scan(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if fi, err := d.Info(); err == nil {
			am.index(p, fi.ModTime())
		}
		return nil
	})
}

func (am *AssetManager) name(path string) (string, bool) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// index records the file at path. ok is false for unknown file types.
func (am *AssetManager) index(path string, modified time.Time) (info AssetInfo, created, ok bool) {
	t := determineAssetType(path)
	if t == AssetTypeNone {
		return AssetInfo{}, false, false
	}
	name, ok := am.name(path)
	if !ok {
		return AssetInfo{}, false, false
	}
	info = AssetInfo{Name: name, Path: path, Type: t, Modified: modified}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	_, exists := am.assets[name]
	am.assets[name] = info
	return info, !exists, true
}

func (am *AssetManager) removePrefix(path string) []AssetInfo {
	name, ok := am.name(path)
	if !ok {
		return nil
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	var removed []AssetInfo
	for key, info := range am.assets {
		if key == name || strings.HasPrefix(key, name+"/") {
			removed = append(removed, info)
			delete(am.assets, key)
		}
	}
	return removed
}

func (k ChangeKind) String() string {
	switch k {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	}
	return "removed"
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeTexture
	case ".obj", ".gltf", ".glb":
		return AssetTypeModel
	case ".fnt":
		return AssetTypeBitmapFont
	case ".ttf", ".otf", ".ttc":
		return AssetTypeSystemFont
	case ".kmt":
		return AssetTypeMaterial
	case ".spv", ".wgsl":
		return AssetTypeShader
	case ".bin":
		return AssetTypeBinary
	default:
		return AssetTypeNone
	}
}

func (am *AssetManager) resolve(name string, t AssetType) (AssetInfo, error) {
	info, ok := am.Lookup(name)
	if !ok {
		return AssetInfo{}, fmt.Errorf("%s: %w", name, ErrAssetNotFound)
	}
	if info.Type != t {
		return AssetInfo{}, fmt.Errorf("%s is a %s, not a %s: %w", name, info.Type, t, ErrWrongType)
	}
	return info, nil
}

func (am *AssetManager) LoadModel(name string) (*Mesh, error) {
	info, err := am.resolve(name, AssetTypeModel)
	if err != nil {
		return nil, err
	}
	return loaders.LoadModel(info.Path)
}

func (am *AssetManager) LoadTexture(name string) (*loaders.Texture, error) {
	info, err := am.resolve(name, AssetTypeTexture)
	if err != nil {
		return nil, err
	}
	return loaders.LoadTexture(info.Path)
}

func (am *AssetManager) LoadBitmapFont(name string) (*loaders.BitmapFont, error) {
	info, err := am.resolve(name, AssetTypeBitmapFont)
	if err != nil {
		return nil, err
	}
	return loaders.LoadBitmapFont(info.Path)
}

func (am *AssetManager) LoadSystemFont(name string) (*loaders.SystemFont, error) {
	info, err := am.resolve(name, AssetTypeSystemFont)
	if err != nil {
		return nil, err
	}
	return loaders.LoadSystemFont(info.Path)
}

func (am *AssetManager) LoadMaterial(name string) (*loaders.Material, error) {
	info, err := am.resolve(name, AssetTypeMaterial)
	if err != nil {
		return nil, err
	}
	return loaders.LoadMaterial(info.Path)
}

func (am *AssetManager) LoadBinary(name string) ([]byte, error) {
	info, ok := am.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrAssetNotFound)
	}
	return loaders.LoadBinary(info.Path)
}

// LoadModelAsync loads a model on a worker goroutine. done runs from Dispatch.
func (am *AssetManager) LoadModelAsync(name string, done func(*Mesh, error)) error {
	if am.isClosed.Load() {
		return ErrClosed
	}
	var mesh *Mesh
	return am.jobs.Submit(Job{
		Name: "load model " + name,
		Work: func() (err error) {
			mesh, err = am.LoadModel(name)
			return err
		},
		Done: func(err error) { done(mesh, err) },
	})
}

// LoadTextureAsync loads a texture on a worker goroutine. done runs from
// Dispatch.
func (am *AssetManager) LoadTextureAsync(name string, done func(*loaders.Texture, error)) error {
	if am.isClosed.Load() {
		return ErrClosed
	}
	var tex *loaders.Texture
	return am.jobs.Submit(Job{
		Name: "load texture " + name,
		Work: func() (err error) {
			tex, err = am.LoadTexture(name)
			return err
		},
		Done: func(err error) { done(tex, err) },
	})
}
