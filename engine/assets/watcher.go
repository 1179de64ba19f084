package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/ronasset/engine/core"
)

// watcher reloads loaded assets when their files change on disk.
type watcher struct {
	server   *Server
	root     string
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// Watch starts hot reloading: writes to a loaded asset's file reload it and
// removing the file drops the asset. Requires ServerConfig.Root.
func (s *Server) Watch() error {
	if s.config.Root == "" {
		return ErrWatchWithoutRoot
	}
	if s.watcher != nil {
		return nil
	}

	root, err := filepath.Abs(s.config.Root)
	if err != nil {
		return err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w := &watcher{
		server:   s,
		root:     root,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if err := w.watchRecursive(root); err != nil {
		fsWatch.Close()
		return err
	}
	s.watcher = w
	go w.start()

	core.LogInfo("watching '%s' for asset changes", root)
	return nil
}

func (w *watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			w.handleEvent(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-w.done:
			return
		}
	}
}

func (w *watcher) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogError("failed to watch '%s': %s", e.Name, err.Error())
			}
		}
		return
	}

	rel, err := filepath.Rel(w.root, e.Name)
	if err != nil {
		return
	}
	p, ok := normalizePath(rel)
	if !ok {
		return
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.server.mutex.RLock()
		_, known := w.server.assets[p]
		w.server.mutex.RUnlock()
		if known {
			if err := w.server.Reload(p); err != nil {
				core.LogError(err.Error())
			}
		}
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.server.Remove(p)
	}
}

// watchRecursive adds path and every directory below it to the watch list.
func (w *watcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (w *watcher) close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		<-w.stopped
		err = w.fsnotify.Close()
	})
	return err
}
