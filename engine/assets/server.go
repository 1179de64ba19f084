package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/ronasset/engine/core"
)

// ServerConfig configures an asset Server.
type ServerConfig struct {
	// Root is the directory asset paths are relative to.
	Root string
	// FS, when set, is read instead of Root. Watching still needs Root.
	FS fs.FS
	// Workers is the number of concurrent load jobs. Defaults to the number of CPUs.
	Workers int
}

// AssetInfo is a snapshot of one asset known to the server.
type AssetInfo struct {
	Handle     Handle
	State      LoadState
	Generation uint32
	LastLoaded time.Time
}

type assetEntry struct {
	handle     Handle
	state      LoadState
	value      any
	err        error
	deps       []Handle
	generation uint32
	lastLoaded time.Time
	// closed whenever the entry leaves LoadStateLoading
	done chan struct{}
	// a reload was requested while loading
	reloadPending bool
}

// Server owns every loaded asset. Load requests are deduplicated by path and
// executed asynchronously on a JobSystem.
type Server struct {
	config ServerConfig
	fsys   fs.FS

	mutex   sync.RWMutex
	assets  map[string]*assetEntry
	byID    map[uuid.UUID]*assetEntry
	types   map[reflect.Type]struct{}
	loaders map[string]Loader

	jobs    *JobSystem
	events  *eventSystem
	watcher *watcher
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}

	fsys := config.FS
	if fsys == nil {
		if config.Root == "" {
			return nil, fmt.Errorf("func NewServer - either config.Root or config.FS must be set")
		}
		fsys = os.DirFS(config.Root)
	}

	js, err := NewJobSystem(config.Workers)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:  config,
		fsys:    fsys,
		assets:  make(map[string]*assetEntry),
		byID:    make(map[uuid.UUID]*assetEntry),
		types:   make(map[reflect.Type]struct{}),
		loaders: make(map[string]Loader),
		jobs:    js,
		events:  newEventSystem(),
	}, nil
}

// InitAsset registers T as an asset kind of s. Registering twice is a no-op.
func InitAsset[T any](s *Server) {
	t := reflect.TypeFor[T]()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.types[t]; ok {
		return
	}
	s.types[t] = struct{}{}
	core.LogDebug("asset type '%s' initialized", t)
}

// Get returns the loaded value behind h if it is a *T.
func Get[T any](s *Server, h Handle) (*T, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.byID[h.id]
	if !ok || e.state != LoadStateLoaded {
		return nil, false
	}
	v, ok := e.value.(*T)
	return v, ok
}

// RegisterLoader attaches l to every extension it claims. Each extension maps
// to at most one loader; nothing is registered if any extension is taken.
func (s *Server) RegisterLoader(l Loader) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tl, ok := l.(TypedLoader); ok {
		if _, ok := s.types[tl.AssetType()]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAssetType, tl.AssetType())
		}
	}

	exts := make([]string, 0, len(l.Extensions()))
	for _, ext := range l.Extensions() {
		ext = normalizeExtension(ext)
		if ext == "" {
			return fmt.Errorf("loader %T claims an empty extension", l)
		}
		if _, exists := s.loaders[ext]; exists {
			core.LogError("Loader for extension '%s' already exists and will not be registered.", ext)
			return fmt.Errorf("%w: %q", ErrLoaderExists, ext)
		}
		exts = append(exts, ext)
	}
	for _, ext := range exts {
		s.loaders[ext] = l
		core.LogDebug("loader %T registered for extension '%s'", l, ext)
	}
	return nil
}

// Load begins loading the asset at p and returns its handle. Loading the same
// path again returns the same handle without scheduling another load.
func (s *Server) Load(p string) Handle {
	p, ok := normalizePath(p)

	s.mutex.Lock()
	if e, exists := s.assets[p]; exists {
		s.mutex.Unlock()
		return e.handle
	}
	e := &assetEntry{
		handle: newHandle(p),
		state:  LoadStateLoading,
		done:   make(chan struct{}),
	}
	s.assets[p] = e
	s.byID[e.handle.id] = e
	s.mutex.Unlock()

	if !ok {
		s.finish(e, nil, nil, fmt.Errorf("%w: %q", ErrInvalidPath, p), false)
		return e.handle
	}
	s.schedule(e, false)
	return e.handle
}

// Reload loads the asset at p again, replacing its value once the loader
// returns. Reloading an asset that is still loading runs the loader once
// more after the current load finishes.
func (s *Server) Reload(p string) error {
	p, _ = normalizePath(p)

	s.mutex.Lock()
	e, ok := s.assets[p]
	if !ok {
		s.mutex.Unlock()
		return fmt.Errorf("%w: %q", ErrAssetNotLoaded, p)
	}
	if e.state == LoadStateLoading {
		e.reloadPending = true
		s.mutex.Unlock()
		return nil
	}
	e.state = LoadStateLoading
	e.done = make(chan struct{})
	s.mutex.Unlock()

	s.schedule(e, true)
	return nil
}

// Remove drops the asset at p from the server.
func (s *Server) Remove(p string) {
	p, _ = normalizePath(p)

	s.mutex.Lock()
	e, ok := s.assets[p]
	if ok {
		delete(s.assets, p)
		delete(s.byID, e.handle.id)
	}
	s.mutex.Unlock()

	if ok {
		s.events.fire(Event{Code: EventAssetRemoved, Handle: e.handle})
	}
}

func (s *Server) schedule(e *assetEntry, reload bool) {
	h := e.handle
	var (
		value any
		deps  []Handle
	)
	err := s.jobs.Submit(JobTask{
		Name: h.path,
		OnStart: func(ctx context.Context) error {
			var err error
			value, deps, err = s.loadAsset(ctx, h)
			return err
		},
		OnComplete: func() { s.finish(e, value, deps, nil, reload) },
		OnFailure:  func(err error) { s.finish(e, nil, deps, err, reload) },
	})
	if err != nil {
		s.finish(e, nil, nil, fmt.Errorf("%w: %w", ErrServerShuttingDown, err), reload)
	}
}

func (s *Server) loadAsset(ctx context.Context, h Handle) (any, []Handle, error) {
	loader, err := s.loaderFor(h.path)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.fsys.Open(h.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open asset %q: %w", h.path, err)
	}
	defer f.Close()

	lc := &loadContext{server: s, path: h.path}
	value, err := loader.Load(ctx, f, lc)
	if err != nil {
		return nil, lc.deps, err
	}
	return value, lc.deps, nil
}

func (s *Server) finish(e *assetEntry, value any, deps []Handle, err error, reload bool) {
	s.mutex.Lock()
	e.deps = deps
	e.lastLoaded = time.Now()
	if err != nil {
		e.state = LoadStateFailed
		e.err = err
		e.value = nil
	} else {
		e.state = LoadStateLoaded
		e.err = nil
		e.value = value
		e.generation++
	}
	close(e.done)
	again := e.reloadPending
	if again {
		e.reloadPending = false
		e.state = LoadStateLoading
		e.done = make(chan struct{})
	}
	s.mutex.Unlock()

	event := Event{Code: EventAssetLoaded, Handle: e.handle, Err: err}
	switch {
	case err != nil:
		core.LogError("failed to load asset '%s': %s", e.handle.path, err.Error())
		event.Code = EventAssetFailed
	case reload:
		core.LogInfo("asset '%s' reloaded", e.handle.path)
		event.Code = EventAssetReloaded
	default:
		core.LogDebug("asset '%s' loaded", e.handle.path)
	}
	s.events.fire(event)

	if again {
		s.schedule(e, true)
	}
}

func (s *Server) loaderFor(p string) (Loader, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	// longest extension first: "car.car.ron" tries "car.ron" then "ron"
	name := strings.ToLower(path.Base(p))
	for i := strings.IndexByte(name, '.'); i >= 0; i = strings.IndexByte(name, '.') {
		name = name[i+1:]
		if l, ok := s.loaders[name]; ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoLoader, p)
}

func (s *Server) entry(h Handle) (*assetEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.byID[h.id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return e, nil
}

// State returns the load state of h.
func (s *Server) State(h Handle) LoadState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if e, ok := s.byID[h.id]; ok {
		return e.state
	}
	return LoadStateNotLoaded
}

// Err returns the error the last load of h failed with.
func (s *Server) Err(h Handle) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if e, ok := s.byID[h.id]; ok {
		return e.err
	}
	return nil
}

// Dependencies returns the handles requested while h was loaded, in request order.
func (s *Server) Dependencies(h Handle) []Handle {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if e, ok := s.byID[h.id]; ok {
		return append([]Handle(nil), e.deps...)
	}
	return nil
}

// Generation returns how many times h loaded successfully.
func (s *Server) Generation(h Handle) uint32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if e, ok := s.byID[h.id]; ok {
		return e.generation
	}
	return 0
}

// Assets returns a snapshot of every asset the server knows about.
func (s *Server) Assets() []AssetInfo {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	infos := make([]AssetInfo, 0, len(s.assets))
	for _, e := range s.assets {
		infos = append(infos, AssetInfo{
			Handle:     e.handle,
			State:      e.state,
			Generation: e.generation,
			LastLoaded: e.lastLoaded,
		})
	}
	return infos
}

// Wait blocks until h is no longer loading and returns its load error, if any.
func (s *Server) Wait(ctx context.Context, h Handle) error {
	e, err := s.entry(h)
	if err != nil {
		return err
	}

	s.mutex.RLock()
	done := e.done
	s.mutex.RUnlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Err(h)
}

// WaitRecursive waits for h and every asset it depends on, transitively. All
// load failures found in the tree are joined into the returned error.
func (s *Server) WaitRecursive(ctx context.Context, h Handle) error {
	var errs []error
	visited := map[uuid.UUID]bool{}
	queue := []Handle{h}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		if err := s.Wait(ctx, current); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, fmt.Errorf("%s: %w", current.path, err))
		}
		queue = append(queue, s.Dependencies(current)...)
	}
	return errors.Join(errs...)
}

// Subscribe registers callback for events with the given code. A listener
// can subscribe once per code. Listeners must be comparable with ==; maps,
// slices and funcs are rejected.
func (s *Server) Subscribe(code EventCode, listener interface{}, callback FnOnEvent) bool {
	return s.events.register(code, listener, callback)
}

// Unsubscribe removes a listener registered with Subscribe.
func (s *Server) Unsubscribe(code EventCode, listener interface{}) bool {
	return s.events.unregister(code, listener)
}

// Shutdown stops watching for changes and waits for running loads.
func (s *Server) Shutdown() error {
	var err error
	if s.watcher != nil {
		err = s.watcher.close()
	}
	return errors.Join(err, s.jobs.Shutdown())
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func normalizePath(p string) (string, bool) {
	p = path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))
	return p, p != "." && fs.ValidPath(p)
}
