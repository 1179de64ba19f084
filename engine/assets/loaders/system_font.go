package loaders

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/spaghettifunk/ronasset/engine/assets"
)

type SystemFontFace struct {
	Name string
	Font *sfnt.Font
}

// SystemFont is a parsed TrueType/OpenType font or font collection.
type SystemFont struct {
	Faces      []SystemFontFace
	BinarySize uint64
}

// Face returns the face with the given family name.
func (sf *SystemFont) Face(name string) (*sfnt.Font, bool) {
	for _, f := range sf.Faces {
		if f.Name == name {
			return f.Font, true
		}
	}
	return nil, false
}

type SystemFontLoader struct{}

func (fl *SystemFontLoader) Extensions() []string {
	return []string{"ttf", "otf", "ttc"}
}

func (fl *SystemFontLoader) AssetType() reflect.Type {
	return reflect.TypeFor[SystemFont]()
}

func (fl *SystemFontLoader) Load(ctx context.Context, r io.Reader, lc assets.LoadContext) (any, error) {
	fontBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c, err := opentype.ParseCollection(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font '%s': %w", lc.Path(), err)
	}

	rd := &SystemFont{
		Faces:      make([]SystemFontFace, 0, c.NumFonts()),
		BinarySize: uint64(len(fontBytes)),
	}
	var buf sfnt.Buffer
	for i := 0; i < c.NumFonts(); i++ {
		f, err := c.Font(i)
		if err != nil {
			return nil, err
		}
		name, err := f.Name(&buf, sfnt.NameIDFamily)
		if err != nil {
			return nil, err
		}
		rd.Faces = append(rd.Faces, SystemFontFace{Name: name, Font: f})
	}

	return rd, nil
}
