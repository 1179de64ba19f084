package testbed

import (
	"context"
	"testing"
	"time"

	"github.com/spaghettifunk/ronasset/engine"
	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*engine.Engine, *engine.Game) {
	t.Helper()
	g := NewTestGame(&engine.ApplicationConfig{
		Name:        "testbed",
		AssetRoot:   "../assets",
		LoadWorkers: 2,
	})
	e, err := engine.New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, g
}

func TestShowGarage(t *testing.T) {
	e, g := newTestEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, ShowGarage(ctx, e, g))

	server := e.Assets()
	garage, ok := assets.Get[Garage](server, g.State.(*gameState).garage)
	require.True(t, ok)
	assert.Equal(t, "main street garage", garage.Name)
	require.NotNil(t, garage.Sign)
	assert.True(t, garage.Sign.IsResolved())
	require.Len(t, garage.Decals, 1)
	assert.True(t, garage.Decals[0].IsResolved())

	car, ok := garage.Cars["red"].Get(server)
	require.True(t, ok)
	assert.Equal(t, "car", car.Name)
	assert.Equal(t, float32(10), car.Speed)
	require.Len(t, car.Wheels, 2)
	assert.Equal(t, Vec2{X: 6}, car.Wheels[1].Position)

	wheel, ok := car.Wheels[0].Sprite.Get(server)
	require.True(t, ok)
	assert.Positive(t, wheel.Width)

	truck, ok := garage.Cars["big"].Get(server)
	require.True(t, ok)
	assert.Len(t, truck.Wheels, 3)
	// both cars share the wheel sprite
	assert.Equal(t, car.Wheels[0].Sprite.Handle(), truck.Wheels[2].Sprite.Handle())
}

func TestCarDependencyOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	server := e.Assets()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h := server.Load("cars/car.car.ron")
	require.NoError(t, server.WaitRecursive(ctx, h))

	var paths []string
	for _, d := range server.Dependencies(h) {
		paths = append(paths, d.Path())
	}
	assert.Equal(t, []string{"sprites/car.png", "sprites/wheel.png", "sprites/wheel.png"}, paths)
}
