package loaders

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"reflect"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/ronasset/engine/assets"
)

// Image is a decoded texture in RGBA8 layout.
type Image struct {
	// Format is the name of the decoder that read the file, e.g. "png".
	Format       string
	Width        uint32
	Height       uint32
	ChannelCount uint8
	Pixels       []uint8
}

// ImageLoader decodes the common raster formats into an Image.
type ImageLoader struct {
	// FlipY flips the rows so the first row is the bottom of the image.
	FlipY bool
}

func (il *ImageLoader) Extensions() []string {
	return []string{"png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp"}
}

func (il *ImageLoader) AssetType() reflect.Type {
	return reflect.TypeFor[Image]()
}

func (il *ImageLoader) Load(ctx context.Context, r io.Reader, lc assets.LoadContext) (any, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image '%s': %w", lc.Path(), err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	pixels := rgba.Pix
	if il.FlipY {
		pixels = flipRows(pixels, 4*bounds.Dx(), bounds.Dy())
	}

	return &Image{
		Format:       format,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
		ChannelCount: 4,
		Pixels:       pixels,
	}, nil
}

func flipRows(pixels []uint8, stride, rows int) []uint8 {
	out := make([]uint8, len(pixels))
	for y := 0; y < rows; y++ {
		copy(out[(rows-1-y)*stride:(rows-y)*stride], pixels[y*stride:(y+1)*stride])
	}
	return out
}
