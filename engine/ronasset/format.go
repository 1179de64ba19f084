package ronasset

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/ronasset/engine/ron"
)

// Format is a text serialization an asset file can be written in.
type Format interface {
	// Name is used in error messages.
	Name() string
	// Extension is the file extension used when a plugin names none.
	Extension() string
	Unmarshal(data []byte, v any) error
	Marshal(v any) ([]byte, error)
}

var (
	// RON decodes Rusty Object Notation and ignores unknown struct fields.
	RON Format = ronFormat{}
	// RONStrict is RON but rejects fields the Go type does not have.
	RONStrict Format = ronFormat{strict: true}
	// TOML decodes TOML documents. Shandle fields are plain strings.
	TOML Format = tomlFormat{}
)

type ronFormat struct {
	strict bool
}

func (ronFormat) Name() string { return "ron" }
func (ronFormat) Extension() string { return DefaultExtension }

func (f ronFormat) Unmarshal(data []byte, v any) error {
	dec := ron.NewDecoder(bytes.NewReader(data))
	if f.strict {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

func (ronFormat) Marshal(v any) ([]byte, error) {
	return ron.MarshalIndent(v, "    ")
}

type tomlFormat struct{}

func (tomlFormat) Name() string { return "toml" }
func (tomlFormat) Extension() string { return "toml" }

func (tomlFormat) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

func (tomlFormat) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

// position extracts the line and column a decode error points at.
func position(err error) (line, column int, ok bool) {
	var ronErr *ron.Error
	if errors.As(err, &ronErr) {
		return ronErr.Pos.Line, ronErr.Pos.Column, true
	}
	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		line, column = tomlErr.Position()
		return line, column, true
	}
	return 0, 0, false
}
