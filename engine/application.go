package engine

import (
	"github.com/caarlos0/env/v11"
	"github.com/spaghettifunk/ronasset/engine/core"
)

type ApplicationConfig struct {
	// The application name used in log lines.
	Name string `env:"NAME" envDefault:"Anima"`
	// Directory asset paths are relative to.
	AssetRoot string `env:"ASSET_ROOT" envDefault:"assets"`
	// Number of concurrent asset load jobs. 0 means one per CPU.
	LoadWorkers int `env:"LOAD_WORKERS" envDefault:"0"`
	// Reload assets when their files change.
	HotReload bool          `env:"HOT_RELOAD" envDefault:"false"`
	LogLevel  core.LogLevel `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads an ApplicationConfig from ANIMA_-prefixed environment
// variables, e.g. ANIMA_ASSET_ROOT.
func LoadConfig() (*ApplicationConfig, error) {
	cfg := &ApplicationConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ANIMA_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}
