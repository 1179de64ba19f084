package testbed

import (
	"context"
	"fmt"
	"sort"

	"github.com/spaghettifunk/ronasset/engine"
	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/core"
	"github.com/spaghettifunk/ronasset/engine/ronasset"
)

const GaragePath = "main.garage.toml"

type gameState struct {
	garage assets.Handle
}

func NewTestGame(config *engine.ApplicationConfig) *engine.Game {
	g := &engine.Game{
		ApplicationConfig: config,
		Plugins: []engine.Plugin{
			ronasset.NewPlugin[Car](ronasset.WithExtensions("car.ron")),
			ronasset.NewPlugin[Garage](ronasset.WithFormat(ronasset.TOML), ronasset.WithExtensions("garage.toml")),
		},
		State: &gameState{},
	}
	g.FnBoot = func() error {
		core.LogInfo("booting testbed...")
		return nil
	}
	return g
}

// ShowGarage loads the garage, waits for every asset it refers to and logs
// what was loaded.
func ShowGarage(ctx context.Context, e *engine.Engine, g *engine.Game) error {
	server := e.Assets()
	state := g.State.(*gameState)
	state.garage = server.Load(GaragePath)

	if err := server.WaitRecursive(ctx, state.garage); err != nil {
		return err
	}

	garage, ok := assets.Get[Garage](server, state.garage)
	if !ok {
		return fmt.Errorf("garage '%s' is not loaded", GaragePath)
	}
	core.LogInfo("garage '%s'", garage.Name)

	names := make([]string, 0, len(garage.Cars))
	for name := range garage.Cars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		car, ok := garage.Cars[name].Get(server)
		if !ok {
			return fmt.Errorf("car '%s' is not loaded", name)
		}
		body, ok := car.BodySprite.Get(server)
		if !ok {
			return fmt.Errorf("sprite '%s' of car '%s' is not loaded", car.BodySprite.Path(), name)
		}
		core.LogInfo("%s: %s, speed %.1f, %d wheels, body %dx%d", name, car.Name, car.Speed, len(car.Wheels), body.Width, body.Height)
	}
	return nil
}
