package loaders

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/ronasset/engine/assets"
)

type FontGlyph struct {
	Codepoint rune
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 rune
	Codepoint1 rune
	Amount     int16
}

// BitmapFontPage is one atlas image of a bitmap font. The image itself is
// loaded as a separate asset.
type BitmapFontPage struct {
	ID    int8
	File  string
	Image assets.Handle
}

type BitmapFont struct {
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Glyphs     []FontGlyph
	Kernings   []FontKerning
	Pages      []BitmapFontPage
}

// BitmapFontLoader reads AngelCode BMFont text descriptors (.fnt) and requests
// every page image relative to the descriptor.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Extensions() []string {
	return []string{"fnt"}
}

func (fl *BitmapFontLoader) AssetType() reflect.Type {
	return reflect.TypeFor[BitmapFont]()
}

func (fl *BitmapFontLoader) Load(ctx context.Context, r io.Reader, lc assets.LoadContext) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read bitmap font '%s': %w", lc.Path(), err)
	}
	desc, err := bmfont.ReadDescriptor(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read bitmap font '%s': %w", lc.Path(), err)
	}

	font := &BitmapFont{
		Face:       desc.Info.Face,
		Size:       uint32(desc.Info.Size),
		LineHeight: int32(desc.Common.LineHeight),
		Baseline:   int32(desc.Common.Base),
		AtlasSizeX: int32(desc.Common.ScaleW),
		AtlasSizeY: int32(desc.Common.ScaleH),
		Glyphs:     make([]FontGlyph, 0, len(desc.Chars)),
		Kernings:   make([]FontKerning, 0, len(desc.Kerning)),
		Pages:      make([]BitmapFontPage, 0, len(desc.Pages)),
	}

	dir := path.Dir(lc.Path())
	for _, p := range desc.Pages {
		font.Pages = append(font.Pages, BitmapFontPage{
			ID:   int8(p.ID),
			File: p.File,
		})
	}
	// page requests go out in page id order
	sort.Slice(font.Pages, func(i, j int) bool { return font.Pages[i].ID < font.Pages[j].ID })
	for i := range font.Pages {
		font.Pages[i].Image = lc.Load(path.Join(dir, font.Pages[i].File))
	}

	pages := charPages(data)
	for _, g := range desc.Chars {
		font.Glyphs = append(font.Glyphs, FontGlyph{
			Codepoint: g.ID,
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    pages[g.ID],
		})
	}
	sort.Slice(font.Glyphs, func(i, j int) bool { return font.Glyphs[i].Codepoint < font.Glyphs[j].Codepoint })

	for p, k := range desc.Kerning {
		font.Kernings = append(font.Kernings, FontKerning{
			Codepoint0: p.First,
			Codepoint1: p.Second,
			Amount:     int16(k.Amount),
		})
	}
	sort.Slice(font.Kernings, func(i, j int) bool {
		if font.Kernings[i].Codepoint0 != font.Kernings[j].Codepoint0 {
			return font.Kernings[i].Codepoint0 < font.Kernings[j].Codepoint0
		}
		return font.Kernings[i].Codepoint1 < font.Kernings[j].Codepoint1
	})

	return font, nil
}

// charPages maps each glyph to its page id. bmfont leaves Char.Page unset
// for text descriptors, so the page= attribute is read from the raw lines.
func charPages(data []byte) map[rune]uint8 {
	pages := make(map[rune]uint8)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "char" {
			continue
		}
		var id, page int64
		var hasID bool
		for _, f := range fields[1:] {
			key, val, ok := strings.Cut(f, "=")
			if !ok {
				continue
			}
			switch key {
			case "id":
				if n, err := strconv.ParseInt(val, 10, 32); err == nil {
					id, hasID = n, true
				}
			case "page":
				if n, err := strconv.ParseUint(val, 10, 8); err == nil {
					page = int64(n)
				}
			}
		}
		if hasID {
			pages[rune(id)] = uint8(page)
		}
	}
	return pages
}
