package engine

// Game is what an application hands to the engine: its configuration, the
// plugins to install and optional lifecycle hooks.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Plugins           []Plugin
	State             interface{}
	FnBoot            Boot
	FnInitialize      Initialize
	FnShutdown        Shutdown
}

type Boot func() error
type Initialize func() error
type Shutdown func() error

// Plugin extends the engine at startup, typically by registering asset
// types and loaders.
type Plugin interface {
	Build(e *Engine) error
}
