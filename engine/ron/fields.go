package ron

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
)

type structField struct {
	name      string
	index     []int
	omitEmpty bool
}

type structFields struct {
	list   []structField
	byName map[string]int
}

var fieldCache sync.Map // map[reflect.Type]*structFields

// cachedFields returns the RON-visible fields of struct type t in
// declaration order. Fields of embedded structs are promoted unless a
// shallower field uses the same name.
func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	fields := &structFields{byName: map[string]int{}}
	for _, sf := range collectFields(t, nil) {
		if i, exists := fields.byName[sf.name]; exists {
			if len(fields.list[i].index) <= len(sf.index) {
				continue
			}
			fields.list[i] = sf
			continue
		}
		fields.byName[sf.name] = len(fields.list)
		fields.list = append(fields.list, sf)
	}
	f, _ := fieldCache.LoadOrStore(t, fields)
	return f.(*structFields)
}

func collectFields(t reflect.Type, prefix []int) []structField {
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("ron")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(f.Type, index)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = SnakeCase(f.Name)
		}
		out = append(out, structField{
			name:      name,
			index:     index,
			omitEmpty: opts == "omitempty",
		})
	}
	return out
}

// SnakeCase converts a Go identifier to the snake_case name RON documents
// use for it by default: BodySprite becomes body_sprite, HTTPPort http_port.
func SnakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
