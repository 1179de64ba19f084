// Package ron reads and writes Rusty Object Notation, the human readable
// data format used for asset description files.
//
// Structs are written as `(field: value)` with an optional leading struct
// name, tuples as `(a, b)`, lists as `[a, b]`, maps as `{key: value}` and
// optional values as `Some(value)` or `None`. Go struct fields map to their
// snake_case name unless a `ron:"name"` tag says otherwise.
package ron

import (
	"encoding"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal parses the RON document in data and stores the result in the
// value pointed to by v.
func Unmarshal(data []byte, v any) error {
	return unmarshal(data, v, false)
}

// Decoder reads a RON value from an input stream.
type Decoder struct {
	r               io.Reader
	disallowUnknown bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// DisallowUnknownFields makes Decode fail when a struct in the input has a
// field the destination struct does not.
func (d *Decoder) DisallowUnknownFields() {
	d.disallowUnknown = true
}

// Decode reads the whole stream and decodes it into v.
func (d *Decoder) Decode(v any) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return unmarshal(data, v, d.disallowUnknown)
}

func unmarshal(data []byte, v any, disallowUnknown bool) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("ron: Unmarshal(non-pointer %T)", v)
	}
	n, ext, err := parse(data)
	if err != nil {
		return err
	}
	ds := &decodeState{ext: ext, disallowUnknown: disallowUnknown}
	return ds.decode(n, rv.Elem())
}

type decodeState struct {
	ext             extensions
	disallowUnknown bool
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func (ds *decodeState) decode(n *node, v reflect.Value) error {
	if v.Kind() == reflect.Pointer {
		switch n.kind {
		case nodeNone:
			v.Set(reflect.Zero(v.Type()))
			return nil
		case nodeSome:
			n = n.items[0]
		default:
			if !ds.ext.implicitSome {
				return errorf(n.pos, "expected option (Some or None), found %s", n.kind)
			}
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return ds.decode(n, v.Elem())
	}

	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType) {
		switch n.kind {
		case nodeString, nodeChar, nodeIdent:
		default:
			return errorf(n.pos, "expected string, found %s", n.kind)
		}
		u := v.Addr().Interface().(encoding.TextUnmarshaler)
		if err := u.UnmarshalText([]byte(n.text)); err != nil {
			return errorf(n.pos, "%s", err.Error())
		}
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.NumMethod() != 0 {
			return errorf(n.pos, "cannot decode into non-empty interface %s", v.Type())
		}
		val, err := ds.generic(n)
		if err != nil {
			return err
		}
		if val == nil {
			v.Set(reflect.Zero(v.Type()))
		} else {
			v.Set(reflect.ValueOf(val))
		}
		return nil

	case reflect.Bool:
		if n.kind != nodeBool {
			return errorf(n.pos, "expected bool, found %s", n.kind)
		}
		v.SetBool(n.boolean)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n.kind == nodeChar && v.Kind() == reflect.Int32 {
			v.SetInt(int64([]rune(n.text)[0]))
			return nil
		}
		if n.kind != nodeNumber {
			return errorf(n.pos, "expected integer, found %s", n.kind)
		}
		i, err := parseInt(n.text, v.Type().Bits())
		if err != nil {
			return errorf(n.pos, "invalid %s `%s`: %s", v.Type(), n.text, numError(err))
		}
		v.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n.kind != nodeNumber {
			return errorf(n.pos, "expected integer, found %s", n.kind)
		}
		u, err := parseUint(n.text, v.Type().Bits())
		if err != nil {
			return errorf(n.pos, "invalid %s `%s`: %s", v.Type(), n.text, numError(err))
		}
		v.SetUint(u)
		return nil

	case reflect.Float32, reflect.Float64:
		if n.kind != nodeNumber {
			return errorf(n.pos, "expected float, found %s", n.kind)
		}
		f, err := parseFloat(n.text, v.Type().Bits())
		if err != nil {
			return errorf(n.pos, "invalid %s `%s`: %s", v.Type(), n.text, numError(err))
		}
		v.SetFloat(f)
		return nil

	case reflect.String:
		switch n.kind {
		case nodeString, nodeChar, nodeIdent:
			v.SetString(n.text)
			return nil
		}
		return errorf(n.pos, "expected string, found %s", n.kind)

	case reflect.Slice:
		if n.kind != nodeList && n.kind != nodeTuple {
			return errorf(n.pos, "expected list, found %s", n.kind)
		}
		s := reflect.MakeSlice(v.Type(), len(n.items), len(n.items))
		for i, item := range n.items {
			if err := ds.decode(item, s.Index(i)); err != nil {
				return err
			}
		}
		v.Set(s)
		return nil

	case reflect.Array:
		if n.kind != nodeList && n.kind != nodeTuple {
			return errorf(n.pos, "expected tuple, found %s", n.kind)
		}
		if len(n.items) != v.Len() {
			return errorf(n.pos, "expected %d elements, found %d", v.Len(), len(n.items))
		}
		for i, item := range n.items {
			if err := ds.decode(item, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		return ds.decodeMap(n, v)

	case reflect.Struct:
		return ds.decodeStruct(n, v)
	}

	return errorf(n.pos, "unsupported type %s", v.Type())
}

func (ds *decodeState) decodeMap(n *node, v reflect.Value) error {
	t := v.Type()
	if v.IsNil() {
		v.Set(reflect.MakeMap(t))
	}
	switch n.kind {
	case nodeMap:
		for _, e := range n.entries {
			key := reflect.New(t.Key()).Elem()
			if err := ds.decode(e.key, key); err != nil {
				return err
			}
			val := reflect.New(t.Elem()).Elem()
			if err := ds.decode(e.val, val); err != nil {
				return err
			}
			v.SetMapIndex(key, val)
		}
		return nil
	case nodeStruct:
		if t.Key().Kind() != reflect.String {
			break
		}
		for _, f := range n.fields {
			val := reflect.New(t.Elem()).Elem()
			if err := ds.decode(f.val, val); err != nil {
				return err
			}
			v.SetMapIndex(reflect.ValueOf(f.name).Convert(t.Key()), val)
		}
		return nil
	}
	return errorf(n.pos, "expected map, found %s", n.kind)
}

func (ds *decodeState) decodeStruct(n *node, v reflect.Value) error {
	fields := cachedFields(v.Type())
	if err := checkStructName(n, v.Type()); err != nil {
		return err
	}
	switch n.kind {
	case nodeUnit, nodeIdent:
		if len(fields.list) == 0 {
			return nil
		}
	case nodeStruct:
		seen := make(map[string]bool, len(n.fields))
		for _, f := range n.fields {
			if seen[f.name] {
				return errorf(f.pos, "duplicate field `%s`", f.name)
			}
			seen[f.name] = true
			i, ok := fields.byName[f.name]
			if !ok {
				if ds.disallowUnknown {
					return errorf(f.pos, "unknown field `%s` for %s", f.name, v.Type())
				}
				continue
			}
			if err := ds.decode(f.val, v.FieldByIndex(fields.list[i].index)); err != nil {
				return err
			}
		}
		return nil
	case nodeTuple:
		if len(n.items) > len(fields.list) {
			return errorf(n.pos, "expected at most %d elements for %s, found %d", len(fields.list), v.Type(), len(n.items))
		}
		for i, item := range n.items {
			if err := ds.decode(item, v.FieldByIndex(fields.list[i].index)); err != nil {
				return err
			}
		}
		return nil
	}
	return errorf(n.pos, "expected struct, found %s", n.kind)
}

// checkStructName rejects a named struct, tuple struct or unit struct
// whose name differs from the Go type it decodes into. Unnamed forms and
// anonymous Go structs accept any name.
func checkStructName(n *node, t reflect.Type) error {
	switch n.kind {
	case nodeStruct, nodeTuple, nodeIdent:
	default:
		return nil
	}
	want := t.Name()
	if i := strings.IndexByte(want, '['); i >= 0 {
		want = want[:i]
	}
	if n.text == "" || want == "" || n.text == want {
		return nil
	}
	return errorf(n.pos, "expected struct `%s`, found `%s`", want, n.text)
}

// generic decodes into the natural Go representation used for interface{}.
func (ds *decodeState) generic(n *node) (any, error) {
	switch n.kind {
	case nodeBool:
		return n.boolean, nil
	case nodeNumber:
		if i, err := parseInt(n.text, 64); err == nil {
			return i, nil
		}
		if u, err := parseUint(n.text, 64); err == nil {
			return u, nil
		}
		f, err := parseFloat(n.text, 64)
		if err != nil {
			return nil, errorf(n.pos, "invalid number `%s`", n.text)
		}
		return f, nil
	case nodeString, nodeChar, nodeIdent:
		return n.text, nil
	case nodeUnit, nodeNone:
		return nil, nil
	case nodeSome:
		return ds.generic(n.items[0])
	case nodeList, nodeTuple:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			v, err := ds.generic(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case nodeStruct:
		out := make(map[string]any, len(n.fields))
		for _, f := range n.fields {
			v, err := ds.generic(f.val)
			if err != nil {
				return nil, err
			}
			out[f.name] = v
		}
		return out, nil
	case nodeMap:
		allStrings := true
		for _, e := range n.entries {
			if e.key.kind != nodeString {
				allStrings = false
				break
			}
		}
		if allStrings {
			out := make(map[string]any, len(n.entries))
			for _, e := range n.entries {
				v, err := ds.generic(e.val)
				if err != nil {
					return nil, err
				}
				out[e.key.text] = v
			}
			return out, nil
		}
		out := make(map[any]any, len(n.entries))
		for _, e := range n.entries {
			k, err := ds.generic(e.key)
			if err != nil {
				return nil, err
			}
			if k != nil && !reflect.TypeOf(k).Comparable() {
				return nil, errorf(e.key.pos, "map key of kind %s cannot be decoded into interface{}", e.key.kind)
			}
			v, err := ds.generic(e.val)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, errorf(n.pos, "unexpected %s", n.kind)
}

func trimLeadingZeros(text string) string {
	sign := ""
	if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		sign, text = text[:1], text[1:]
	}
	if len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '9' {
		text = strings.TrimLeft(text, "0")
		if text == "" || text[0] < '0' || text[0] > '9' {
			text = "0" + text
		}
	}
	return sign + text
}

func parseInt(text string, bits int) (int64, error) {
	return strconv.ParseInt(trimLeadingZeros(text), 0, bits)
}

func parseUint(text string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(trimLeadingZeros(text), "+"), 0, bits)
}

func parseFloat(text string, bits int) (float64, error) {
	unsigned := strings.TrimLeft(text, "+-")
	switch unsigned {
	case "inf":
		if strings.HasPrefix(text, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	case "NaN":
		return math.NaN(), nil
	}
	if len(unsigned) > 1 && unsigned[0] == '0' && strings.ContainsAny(unsigned[1:2], "xXbBoO") {
		i, err := parseInt(text, 64)
		return float64(i), err
	}
	return strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), bits)
}

func numError(err error) string {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err.Error()
	}
	return err.Error()
}
