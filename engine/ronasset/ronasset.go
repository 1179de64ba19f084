// Package ronasset lets RON (or TOML) asset files refer to other assets by
// path. Every Shandle found in a decoded asset is handed to the asset server
// for loading, so the referenced images, fonts or sub-assets are requested
// together with the asset that names them.
//
// A type takes part either by implementing RonAsset by hand or by tagging
// its fields:
//
//	type Car struct {
//		Speed      float32
//		BodySprite ronasset.Shandle[loaders.Image] `ronasset:"asset"`
//		Wheels     []Wheel                         `ronasset:"asset_struct_vec"`
//	}
//
// and registering it with the engine through NewPlugin.
package ronasset

import (
	"github.com/spaghettifunk/ronasset/engine/assets"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// RonAsset is implemented by values that hold asset references. LoadAssets
// requests every embedded reference through lc. It is called once per
// decoded value.
type RonAsset interface {
	LoadAssets(lc assets.LoadContext)
}

// LoadOption resolves the value v points to. A nil v is a no-op.
func LoadOption[V any, PV interface {
	*V
	RonAsset
}](v *V, lc assets.LoadContext) {
	if v == nil {
		return
	}
	PV(v).LoadAssets(lc)
}

// LoadSlice resolves every element of s in order.
func LoadSlice[S ~[]V, V any, PV interface {
	*V
	RonAsset
}](s S, lc assets.LoadContext) {
	for i := range s {
		PV(&s[i]).LoadAssets(lc)
	}
}

// LoadMap resolves every value of m in ascending key order and stores the
// resolved values back into m.
func LoadMap[M ~map[K]V, K constraints.Ordered, V any, PV interface {
	*V
	RonAsset
}](m M, lc assets.LoadContext) {
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		v := m[k]
		PV(&v).LoadAssets(lc)
		m[k] = v
	}
}
