package ronasset

import (
	"github.com/spaghettifunk/ronasset/engine/assets"
)

// Shandle is a serializable reference to an asset of type T. It is written
// as its path string; the handle stays unresolved until LoadAssets runs.
type Shandle[T any] struct {
	path   string
	handle assets.Handle
}

// NewShandle returns an unresolved reference to path.
func NewShandle[T any](path string) Shandle[T] {
	return Shandle[T]{path: path}
}

func (s Shandle[T]) Path() string {
	return s.path
}

// Handle returns the handle issued by the asset server, or the zero Handle
// before LoadAssets ran.
func (s Shandle[T]) Handle() assets.Handle {
	return s.handle
}

func (s Shandle[T]) IsResolved() bool {
	return s.handle.IsValid()
}

// Get returns the referenced asset once the server finished loading it.
func (s Shandle[T]) Get(server *assets.Server) (*T, bool) {
	if !s.IsResolved() {
		return nil, false
	}
	return assets.Get[T](server, s.handle)
}

// LoadAssets requests the referenced path. An empty path is requested too;
// the server fails it as an invalid path.
func (s *Shandle[T]) LoadAssets(lc assets.LoadContext) {
	s.handle = lc.Load(s.path)
}

// AssetPath implements Reference.
func (s *Shandle[T]) AssetPath() string {
	return s.path
}

func (s Shandle[T]) MarshalText() ([]byte, error) {
	return []byte(s.path), nil
}

// UnmarshalText sets the path and resets the handle to unresolved.
func (s *Shandle[T]) UnmarshalText(text []byte) error {
	s.path = string(text)
	s.handle = assets.Handle{}
	return nil
}

func (s Shandle[T]) String() string {
	return s.path
}

// Reference is a single asset reference such as a Shandle. Fields tagged
// asset, asset_vec or asset_map must hold references.
type Reference interface {
	RonAsset
	AssetPath() string
}
