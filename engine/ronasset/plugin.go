package ronasset

import (
	"github.com/spaghettifunk/ronasset/engine"
	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/core"
)

// DefaultExtension is claimed by a plugin that is given no extensions.
const DefaultExtension = "ron"

type pluginConfig struct {
	extensions []string
	format     Format
}

type PluginOption func(*pluginConfig)

// WithExtensions sets the file extensions the plugin's loader claims,
// without the leading dot. Multi-part extensions such as "car.ron" let
// several asset types share one format.
func WithExtensions(extensions ...string) PluginOption {
	return func(c *pluginConfig) {
		c.extensions = append(c.extensions, extensions...)
	}
}

// WithFormat changes the file format. Without WithExtensions the plugin then
// claims the format's own extension.
func WithFormat(format Format) PluginOption {
	return func(c *pluginConfig) {
		c.format = format
	}
}

// Plugin registers T as an asset type and attaches a Loader[T] to the asset
// server when the engine builds it.
type Plugin[T any] struct {
	config pluginConfig
}

// NewPlugin returns a plugin for T reading RON files with extension "ron"
// unless options say otherwise.
func NewPlugin[T any](opts ...PluginOption) *Plugin[T] {
	cfg := pluginConfig{format: RON}
	for _, o := range opts {
		o(&cfg)
	}
	if len(cfg.extensions) == 0 {
		cfg.extensions = []string{cfg.format.Extension()}
	}
	return &Plugin[T]{config: cfg}
}

// Create returns a RON plugin for T claiming ext.
func Create[T any](ext string) *Plugin[T] {
	return NewPlugin[T](WithExtensions(ext))
}

func (p *Plugin[T]) Extensions() []string {
	return p.config.extensions
}

func (p *Plugin[T]) Build(e *engine.Engine) error {
	return p.Register(e.Assets())
}

// Register does what Build does against a bare asset server.
func (p *Plugin[T]) Register(s *assets.Server) error {
	l, err := NewLoader[T](p.config.format, p.config.extensions...)
	if err != nil {
		core.LogError("cannot register asset loader: %s", err.Error())
		return err
	}
	assets.InitAsset[T](s)
	return s.RegisterLoader(l)
}
