// Package loaders holds the built-in loaders for the asset kinds other
// assets commonly refer to: images, fonts and raw binary blobs.
package loaders

import "github.com/spaghettifunk/ronasset/engine/assets"

// RegisterDefaults initializes the built-in asset types and registers their
// loaders with s.
func RegisterDefaults(s *assets.Server) error {
	assets.InitAsset[Image](s)
	assets.InitAsset[Binary](s)
	assets.InitAsset[BitmapFont](s)
	assets.InitAsset[SystemFont](s)

	for _, l := range []assets.Loader{
		&ImageLoader{},
		&BinaryLoader{},
		&BitmapFontLoader{},
		&SystemFontLoader{},
	} {
		if err := s.RegisterLoader(l); err != nil {
			return err
		}
	}
	return nil
}
