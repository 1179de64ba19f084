package ronasset

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/core"
)

// TagName is the struct tag key that carries a field's Marker.
const TagName = "ronasset"

// Marker selects how a tagged field is resolved.
type Marker string

const (
	// A single reference.
	MarkerAsset Marker = "asset"
	// A slice or array of references.
	MarkerAssetVec Marker = "asset_vec"
	// A map whose values are references.
	MarkerAssetMap Marker = "asset_map"
	// A nested struct with markers of its own, or implementing RonAsset.
	MarkerAssetStruct Marker = "asset_struct"
	// A slice or array of nested structs.
	MarkerAssetStructVec Marker = "asset_struct_vec"
	// A map whose values are nested structs.
	MarkerAssetStructMap Marker = "asset_struct_map"
)

func (m Marker) valid() bool {
	switch m {
	case MarkerAsset, MarkerAssetVec, MarkerAssetMap,
		MarkerAssetStruct, MarkerAssetStructVec, MarkerAssetStructMap:
		return true
	}
	return false
}

func (m Marker) reference() bool {
	return m == MarkerAsset || m == MarkerAssetVec || m == MarkerAssetMap
}

// FieldInfo describes one tagged field of a derived type.
type FieldInfo struct {
	Name   string
	Marker Marker
}

type resolveFunc func(v reflect.Value, lc assets.LoadContext)

type fieldPlan struct {
	info    FieldInfo
	index   int
	resolve resolveFunc
}

// plan is the resolver table of one struct type. fields is in declaration
// order and read-only once built.
type plan struct {
	typ    reflect.Type
	fields []fieldPlan
}

func (p *plan) resolve(v reflect.Value, lc assets.LoadContext) {
	for _, f := range p.fields {
		f.resolve(v.Field(f.index), lc)
	}
}

var (
	planMutex sync.Mutex
	plans     = map[reflect.Type]*plan{}
)

var (
	ronAssetType  = reflect.TypeFor[RonAsset]()
	referenceType = reflect.TypeFor[Reference]()
)

// Resolver resolves the asset references of a *T.
type Resolver[T any] struct {
	plan   *plan
	method bool
}

// Derive builds the resolver for T. If *T implements RonAsset its method is
// used. Otherwise T must be a struct, and its `ronasset` tags are checked and
// compiled into a table of per-field resolvers.
func Derive[T any]() (*Resolver[T], error) {
	t := reflect.TypeFor[T]()
	if reflect.PointerTo(t).Implements(ronAssetType) {
		return &Resolver[T]{method: true}, nil
	}
	p, err := derivePlan(t)
	if err != nil {
		return nil, err
	}
	return &Resolver[T]{plan: p}, nil
}

// MustDerive is like Derive but panics on error. Meant for package-level vars.
func MustDerive[T any]() *Resolver[T] {
	r, err := Derive[T]()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadAssets resolves every reference reachable from v.
func (r *Resolver[T]) LoadAssets(v *T, lc assets.LoadContext) {
	if v == nil {
		return
	}
	if r.method {
		any(v).(RonAsset).LoadAssets(lc)
		return
	}
	r.plan.resolve(reflect.ValueOf(v).Elem(), lc)
}

// Fields lists the tagged fields of T in resolution order. It is empty when
// T implements RonAsset itself.
func (r *Resolver[T]) Fields() []FieldInfo {
	if r.plan == nil {
		return nil
	}
	out := make([]FieldInfo, len(r.plan.fields))
	for i, f := range r.plan.fields {
		out[i] = f.info
	}
	return out
}

// LoadAssets resolves the tagged fields of the struct v points to. Types can
// use it to implement RonAsset and add hand-written resolution on top:
//
//	func (c *Car) LoadAssets(lc assets.LoadContext) {
//		_ = ronasset.LoadAssets(c, lc)
//		c.Extra.LoadAssets(lc)
//	}
func LoadAssets(v any, lc assets.LoadContext) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: LoadAssets needs a non-nil struct pointer, got %T", ErrNotDerivable, v)
	}
	p, err := derivePlan(rv.Type().Elem())
	if err != nil {
		return err
	}
	p.resolve(rv.Elem(), lc)
	return nil
}

func derivePlan(t reflect.Type) (*plan, error) {
	planMutex.Lock()
	defer planMutex.Unlock()

	d := &derivation{}
	p, err := d.build(t)
	if err != nil {
		// nested plans built on the way may point at a failed one
		for _, created := range d.created {
			delete(plans, created)
		}
		return nil, err
	}
	return p, nil
}

// derivation records the plans built by one derivePlan call.
type derivation struct {
	created []reflect.Type
}

func (d *derivation) build(t reflect.Type) (*plan, error) {
	if p, ok := plans[t]; ok {
		return p, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrNotDerivable, t)
	}

	// registered before its fields so self-referencing types terminate
	p := &plan{typ: t}
	plans[t] = p
	d.created = append(d.created, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		if f.Anonymous {
			core.LogDebug("%s: embedded field %s has no name, marker ignored", t, f.Type)
			continue
		}
		marker := Marker(tag)
		if !marker.valid() {
			return nil, fmt.Errorf("%w %q on %s.%s", ErrUnknownMarker, tag, t, f.Name)
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnexportedField, t, f.Name)
		}
		resolve, err := d.fieldResolver(f.Type, marker)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, f.Name, err)
		}
		p.fields = append(p.fields, fieldPlan{
			info:    FieldInfo{Name: f.Name, Marker: marker},
			index:   i,
			resolve: resolve,
		})
	}
	return p, nil
}

func (d *derivation) fieldResolver(t reflect.Type, marker Marker) (resolveFunc, error) {
	switch marker {
	case MarkerAsset, MarkerAssetStruct:
		return d.elemResolver(t, marker)

	case MarkerAssetVec, MarkerAssetStructVec:
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return nil, fmt.Errorf("%w: %s needs a slice or array, found %s", ErrMarkerShape, marker, t)
		}
		elem, err := d.elemResolver(t.Elem(), marker)
		if err != nil {
			return nil, err
		}
		return func(v reflect.Value, lc assets.LoadContext) {
			for i := 0; i < v.Len(); i++ {
				elem(v.Index(i), lc)
			}
		}, nil

	case MarkerAssetMap, MarkerAssetStructMap:
		if t.Kind() != reflect.Map {
			return nil, fmt.Errorf("%w: %s needs a map, found %s", ErrMarkerShape, marker, t)
		}
		elem, err := d.elemResolver(t.Elem(), marker)
		if err != nil {
			return nil, err
		}
		elemType := t.Elem()
		return func(v reflect.Value, lc assets.LoadContext) {
			keys := v.MapKeys()
			sortKeys(keys)
			for _, k := range keys {
				// map values are not addressable: resolve a copy and store it back
				nv := reflect.New(elemType).Elem()
				nv.Set(v.MapIndex(k))
				elem(nv, lc)
				v.SetMapIndex(k, nv)
			}
		}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownMarker, marker)
}

// elemResolver resolves one addressable value of type t. Pointers are
// optional values: nil is skipped.
func (d *derivation) elemResolver(t reflect.Type, marker Marker) (resolveFunc, error) {
	if t.Kind() == reflect.Pointer {
		inner, err := d.elemResolver(t.Elem(), marker)
		if err != nil {
			return nil, err
		}
		return func(v reflect.Value, lc assets.LoadContext) {
			if v.IsNil() {
				return
			}
			inner(v.Elem(), lc)
		}, nil
	}

	pt := reflect.PointerTo(t)
	if marker.reference() {
		if !pt.Implements(referenceType) {
			return nil, fmt.Errorf("%w: %s needs an asset reference such as Shandle, found %s", ErrMarkerShape, marker, t)
		}
		return callLoadAssets, nil
	}

	if pt.Implements(ronAssetType) {
		return callLoadAssets, nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s needs a struct, found %s", ErrMarkerShape, marker, t)
	}
	nested, err := d.build(t)
	if err != nil {
		return nil, err
	}
	return nested.resolve, nil
}

func callLoadAssets(v reflect.Value, lc assets.LoadContext) {
	v.Addr().Interface().(RonAsset).LoadAssets(lc)
}

func sortKeys(keys []reflect.Value) {
	if len(keys) == 0 {
		return
	}
	switch keys[0].Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	case reflect.Float32, reflect.Float64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Float() < keys[j].Float() })
	default:
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
	}
}
