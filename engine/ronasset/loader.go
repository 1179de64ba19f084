package ronasset

import (
	"context"
	"io"
	"reflect"

	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/core"
)

// Loader decodes files of one Format into a *T and resolves the references
// the decoded value holds.
type Loader[T any] struct {
	extensions []string
	format     Format
	resolver   *Resolver[T]
}

// NewLoader builds a loader for T claiming the given extensions. It fails if
// T's markers are invalid.
func NewLoader[T any](format Format, extensions ...string) (*Loader[T], error) {
	resolver, err := Derive[T]()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{format.Extension()}
	}
	return &Loader[T]{
		extensions: extensions,
		format:     format,
		resolver:   resolver,
	}, nil
}

func (l *Loader[T]) Extensions() []string {
	return l.extensions
}

func (l *Loader[T]) AssetType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (l *Loader[T]) Load(ctx context.Context, r io.Reader, lc assets.LoadContext) (any, error) {
	asset, err := l.LoadAsset(ctx, r, lc)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// LoadAsset reads all of r, decodes it and requests every reference in the
// result through lc. Referenced assets are loaded asynchronously by the
// server; LoadAsset does not wait for them.
func (l *Loader[T]) LoadAsset(ctx context.Context, r io.Reader, lc assets.LoadContext) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: ErrorKindIO, Path: lc.Path(), Format: l.format.Name(), Err: err}
	}

	asset := new(T)
	if err := l.format.Unmarshal(data, asset); err != nil {
		e := &Error{Kind: ErrorKindDeserialize, Path: lc.Path(), Format: l.format.Name(), Err: err}
		e.Line, e.Column, _ = position(err)
		return nil, e
	}

	l.resolver.LoadAssets(asset, lc)
	core.LogDebug("decoded '%s' as %s", lc.Path(), reflect.TypeFor[T]())
	return asset, nil
}
