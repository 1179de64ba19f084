package assets

import (
	"context"
	"io"
	"reflect"
)

// Loader turns the bytes of a file into an in-memory asset. A loader claims
// one or more file extensions, without the leading dot ("png", "car.ron").
//
// Load must return a pointer to the asset value. Any asset paths the value
// refers to should be requested through lc so the server tracks them as
// dependencies.
type Loader interface {
	Extensions() []string
	Load(ctx context.Context, r io.Reader, lc LoadContext) (any, error)
}

// TypedLoader is a Loader that declares the Go type of the assets it produces.
// The type must be registered with InitAsset before the loader.
type TypedLoader interface {
	Loader
	AssetType() reflect.Type
}

// LoadContext is handed to a Loader for the duration of one Load call.
type LoadContext interface {
	// Load begins loading the asset at path and returns its in-progress handle.
	// The referenced bytes are not read synchronously.
	Load(path string) Handle
	// Path returns the path of the asset currently being loaded.
	Path() string
}

type loadContext struct {
	server *Server
	path   string
	deps   []Handle
}

func (lc *loadContext) Load(path string) Handle {
	h := lc.server.Load(path)
	lc.deps = append(lc.deps, h)
	return h
}

func (lc *loadContext) Path() string {
	return lc.path
}
