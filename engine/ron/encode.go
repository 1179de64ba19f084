package ron

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Marshal returns the compact RON encoding of v.
func Marshal(v any) ([]byte, error) {
	e := &encodeState{}
	if err := e.encode(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// MarshalIndent is like Marshal but puts every struct field, list element and
// map entry on its own line, indented by indent per nesting level.
func MarshalIndent(v any, indent string) ([]byte, error) {
	e := &encodeState{indent: indent}
	if err := e.encode(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encodeState struct {
	buf    bytes.Buffer
	indent string
}

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func (e *encodeState) encode(v reflect.Value, depth int) error {
	if !v.IsValid() {
		e.buf.WriteString("None")
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			e.buf.WriteString("None")
			return nil
		}
		e.buf.WriteString("Some(")
		if err := e.encode(v.Elem(), depth); err != nil {
			return err
		}
		e.buf.WriteByte(')')
		return nil
	case reflect.Interface:
		if v.IsNil() {
			e.buf.WriteString("None")
			return nil
		}
		return e.encode(v.Elem(), depth)
	}

	var tm encoding.TextMarshaler
	switch {
	case v.Type().Implements(textMarshalerType):
		tm = v.Interface().(encoding.TextMarshaler)
	case v.CanAddr() && v.Addr().Type().Implements(textMarshalerType):
		tm = v.Addr().Interface().(encoding.TextMarshaler)
	}
	if tm != nil {
		text, err := tm.MarshalText()
		if err != nil {
			return fmt.Errorf("ron: marshal %s: %w", v.Type(), err)
		}
		writeString(&e.buf, string(text))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		e.buf.WriteString(formatFloat(v.Float(), v.Type().Bits()))
	case reflect.String:
		writeString(&e.buf, v.String())

	case reflect.Slice, reflect.Array:
		open, close := "[", "]"
		if v.Kind() == reflect.Array {
			open, close = "(", ")"
		}
		e.buf.WriteString(open)
		for i := 0; i < v.Len(); i++ {
			e.separator(i, depth+1)
			if err := e.encode(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		e.closing(v.Len(), depth)
		e.buf.WriteString(close)

	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
		e.buf.WriteByte('{')
		for i, k := range keys {
			e.separator(i, depth+1)
			if err := e.encode(k, depth+1); err != nil {
				return err
			}
			e.colon()
			if err := e.encode(v.MapIndex(k), depth+1); err != nil {
				return err
			}
		}
		e.closing(len(keys), depth)
		e.buf.WriteByte('}')

	case reflect.Struct:
		fields := cachedFields(v.Type())
		e.buf.WriteByte('(')
		n := 0
		for _, f := range fields.list {
			fv := v.FieldByIndex(f.index)
			if f.omitEmpty && fv.IsZero() {
				continue
			}
			e.separator(n, depth+1)
			e.buf.WriteString(f.name)
			e.colon()
			if err := e.encode(fv, depth+1); err != nil {
				return err
			}
			n++
		}
		e.closing(n, depth)
		e.buf.WriteByte(')')

	default:
		return fmt.Errorf("ron: unsupported type %s", v.Type())
	}
	return nil
}

func (e *encodeState) separator(i, depth int) {
	if i > 0 {
		e.buf.WriteByte(',')
	}
	if e.indent != "" {
		e.buf.WriteByte('\n')
		e.buf.WriteString(strings.Repeat(e.indent, depth))
	}
}

func (e *encodeState) closing(n, depth int) {
	if e.indent != "" && n > 0 {
		e.buf.WriteString(",\n")
		e.buf.WriteString(strings.Repeat(e.indent, depth))
	}
}

func (e *encodeState) colon() {
	e.buf.WriteByte(':')
	if e.indent != "" {
		e.buf.WriteByte(' ')
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(buf, `\u{%x}`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

func lessKey(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	}
	return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
}
