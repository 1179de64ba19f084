package ronasset_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/spaghettifunk/ronasset/engine"
	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/assets/loaders"
	"github.com/spaghettifunk/ronasset/engine/ronasset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newServer(t *testing.T, fsys fstest.MapFS) *assets.Server {
	t.Helper()
	s, err := assets.NewServer(assets.ServerConfig{FS: fsys, Workers: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestPluginExtensions(t *testing.T) {
	assert.Equal(t, []string{"ron"}, ronasset.NewPlugin[Car]().Extensions())
	assert.Equal(t, []string{"car.ron"}, ronasset.Create[Car]("car.ron").Extensions())
	assert.Equal(t, []string{"toml"}, ronasset.NewPlugin[Showroom](ronasset.WithFormat(ronasset.TOML)).Extensions())
	assert.Equal(t,
		[]string{"car.ron", "kart.ron"},
		ronasset.NewPlugin[Car](ronasset.WithExtensions("car.ron"), ronasset.WithExtensions("kart.ron")).Extensions(),
	)
}

func TestPluginLoadsCarWithSprites(t *testing.T) {
	s := newServer(t, fstest.MapFS{
		"cars/car.car.ron":  {Data: []byte(carRON)},
		"sprites/car.png":   {Data: pngBytes(t, 4, 2)},
		"sprites/wheel.png": {Data: pngBytes(t, 1, 1)},
	})
	require.NoError(t, loaders.RegisterDefaults(s))
	require.NoError(t, ronasset.Create[Car]("car.ron").Register(s))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := s.Load("cars/car.car.ron")
	require.NoError(t, s.WaitRecursive(ctx, h))

	car, ok := assets.Get[Car](s, h)
	require.True(t, ok)
	assert.Equal(t, "car", car.Name)

	body, ok := car.BodySprite.Get(s)
	require.True(t, ok)
	assert.Equal(t, uint32(4), body.Width)
	assert.Equal(t, uint32(2), body.Height)

	wheel, ok := car.Wheels[1].Sprite.Get(s)
	require.True(t, ok)
	assert.Equal(t, uint32(1), wheel.Width)

	deps := s.Dependencies(h)
	require.Len(t, deps, 3)
	assert.Equal(t, "sprites/car.png", deps[0].Path())
	assert.Equal(t, "sprites/wheel.png", deps[1].Path())
	assert.Equal(t, deps[1], deps[2])
}

func TestPluginMissingReference(t *testing.T) {
	s := newServer(t, fstest.MapFS{
		"cars/car.car.ron": {Data: []byte(carRON)},
		"sprites/car.png":  {Data: pngBytes(t, 1, 1)},
	})
	require.NoError(t, loaders.RegisterDefaults(s))
	require.NoError(t, ronasset.Create[Car]("car.ron").Register(s))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := s.Load("cars/car.car.ron")
	require.NoError(t, s.Wait(ctx, h))
	err := s.WaitRecursive(ctx, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sprites/wheel.png")

	// the car itself loaded, only the wheel sprite is missing
	assert.Equal(t, assets.LoadStateLoaded, s.State(h))
}

func TestPluginFailedDecode(t *testing.T) {
	s := newServer(t, fstest.MapFS{
		"broken.ron": {Data: []byte("Car(speed: )")},
	})
	require.NoError(t, ronasset.NewPlugin[Car]().Register(s))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := s.Load("broken.ron")
	err := s.Wait(ctx, h)
	assert.ErrorIs(t, err, ronasset.ErrDeserialize)
	assert.Equal(t, assets.LoadStateFailed, s.State(h))
	_, ok := assets.Get[Car](s, h)
	assert.False(t, ok)
}

func TestPluginRegistrationErrors(t *testing.T) {
	t.Run("extension taken", func(t *testing.T) {
		s := newServer(t, fstest.MapFS{})
		require.NoError(t, ronasset.NewPlugin[Car]().Register(s))
		assert.ErrorIs(t, ronasset.NewPlugin[Showroom]().Register(s), assets.ErrLoaderExists)
	})

	t.Run("invalid markers", func(t *testing.T) {
		s := newServer(t, fstest.MapFS{})
		assert.ErrorIs(t, ronasset.NewPlugin[unknownMarker]().Register(s), ronasset.ErrUnknownMarker)
	})
}

func TestPluginBuild(t *testing.T) {
	s := newServer(t, fstest.MapFS{
		"karts/kart.kart.ron": {Data: []byte(`(name: "kart", speed: 3.5)`)},
	})
	game := &engine.Game{
		ApplicationConfig: &engine.ApplicationConfig{Name: "test"},
		Plugins:           []engine.Plugin{ronasset.Create[Car]("kart.ron")},
	}
	e := engine.NewWithServer(game, s)
	require.NoError(t, e.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := s.Load("karts/kart.kart.ron")
	require.NoError(t, s.Wait(ctx, h))
	kart, ok := assets.Get[Car](s, h)
	require.True(t, ok)
	assert.Equal(t, float32(3.5), kart.Speed)

	// the unset body sprite is still requested
	assert.True(t, kart.BodySprite.IsResolved())
	assert.ErrorIs(t, s.WaitRecursive(ctx, h), assets.ErrInvalidPath)
}
