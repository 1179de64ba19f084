package loaders

import (
	"context"
	"io"
	"reflect"

	"github.com/spaghettifunk/ronasset/engine/assets"
)

// Binary holds the raw bytes of a file.
type Binary struct {
	Data []byte
}

// Words returns the data as little-endian 32 bit words, e.g. SPIR-V bytecode.
// Trailing bytes that do not fill a word are dropped.
func (b *Binary) Words() []uint32 {
	return bytesToBytecode(b.Data)
}

type BinaryLoader struct{}

func (bl *BinaryLoader) Extensions() []string {
	return []string{"bin", "spv"}
}

func (bl *BinaryLoader) AssetType() reflect.Type {
	return reflect.TypeFor[Binary]()
}

func (bl *BinaryLoader) Load(ctx context.Context, r io.Reader, lc assets.LoadContext) (any, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Binary{Data: buf}, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
