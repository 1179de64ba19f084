package assets

import (
	"fmt"

	"github.com/google/uuid"
)

// Handle is an opaque reference to an asset owned by a Server. The zero Handle
// is unresolved: it points at nothing and is never returned by Server.Load.
type Handle struct {
	id   uuid.UUID
	path string
}

func newHandle(path string) Handle {
	return Handle{id: uuid.New(), path: path}
}

// ID returns the unique identifier of the asset.
func (h Handle) ID() uuid.UUID {
	return h.id
}

// Path returns the asset path the handle was requested with.
func (h Handle) Path() string {
	return h.path
}

// IsValid reports whether the handle has been resolved by a Server.
func (h Handle) IsValid() bool {
	return h.id != uuid.Nil
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "Handle(<unresolved>)"
	}
	return fmt.Sprintf("Handle(%s, %q)", h.id, h.path)
}

// LoadState describes where an asset is in its loading lifecycle.
type LoadState uint8

const (
	// The server does not know about the asset.
	LoadStateNotLoaded LoadState = iota
	// A load job was scheduled or is running.
	LoadStateLoading
	// The loader returned a value.
	LoadStateLoaded
	// Opening, reading or decoding the asset failed.
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateNotLoaded:
		return "not loaded"
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", uint8(s))
	}
}
