package ron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assetRef mimics a handle wrapper that serializes as its path.
type assetRef struct {
	path string
}

func (r assetRef) MarshalText() ([]byte, error) {
	return []byte(r.path), nil
}

func (r *assetRef) UnmarshalText(text []byte) error {
	r.path = string(text)
	return nil
}

type sprite struct {
	Image   assetRef
	Backup  *assetRef
	Scale   float32
	Frames  []int
	Offsets [2]int
	Labels  map[string]string `ron:"labels,omitempty"`
}

func TestMarshal(t *testing.T) {
	s := sprite{
		Image:   assetRef{path: "sprites/car.png"},
		Scale:   2,
		Frames:  []int{1, 2},
		Offsets: [2]int{-1, 3},
	}
	out, err := Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `(image:"sprites/car.png",backup:None,scale:2.0,frames:[1,2],offsets:(-1,3))`, string(out))
}

func TestMarshalIndent(t *testing.T) {
	out, err := MarshalIndent(map[string]int{"b": 2, "a": 1}, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2,\n}", string(out))
}

func TestMarshalStrings(t *testing.T) {
	out, err := Marshal("line\n\"quoted\"\x01")
	require.NoError(t, err)
	assert.Equal(t, `"line\n\"quoted\"\u{1}"`, string(out))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := sprite{
		Image:   assetRef{path: "a.png"},
		Backup:  &assetRef{path: "b.png"},
		Scale:   0.5,
		Frames:  []int{},
		Offsets: [2]int{4, 5},
		Labels:  map[string]string{"k": "v"},
	}
	out, err := MarshalIndent(in, "    ")
	require.NoError(t, err)

	var got sprite
	require.NoError(t, Unmarshal(out, &got))
	assert.Equal(t, in, got)
}

func TestMarshalUnsupported(t *testing.T) {
	_, err := Marshal(struct{ C chan int }{})
	assert.Error(t, err)
}
