package testbed

import (
	"github.com/spaghettifunk/ronasset/engine/assets/loaders"
	"github.com/spaghettifunk/ronasset/engine/ronasset"
)

type Vec2 struct {
	X float32 `toml:"x"`
	Y float32 `toml:"y"`
}

type Wheel struct {
	Sprite   ronasset.Shandle[loaders.Image] `toml:"sprite" ronasset:"asset"`
	Position Vec2                            `toml:"position"`
	CanTurn  bool                            `toml:"can_turn"`
}

type Car struct {
	Speed      float32                         `toml:"speed"`
	Name       string                          `toml:"name"`
	BodySprite ronasset.Shandle[loaders.Image] `toml:"body_sprite" ronasset:"asset"`
	Wheels     []Wheel                         `toml:"wheels" ronasset:"asset_struct_vec"`
}

// Garage is written in TOML and refers to cars by path.
type Garage struct {
	Name   string                            `toml:"name"`
	Sign   *ronasset.Shandle[loaders.Image]  `toml:"sign" ronasset:"asset"`
	Decals []ronasset.Shandle[loaders.Image] `toml:"decals" ronasset:"asset_vec"`
	Cars   map[string]ronasset.Shandle[Car]  `toml:"cars" ronasset:"asset_map"`
}
