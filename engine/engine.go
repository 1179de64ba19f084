package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/ronasset/engine/assets"
	"github.com/spaghettifunk/ronasset/engine/assets/loaders"
	"github.com/spaghettifunk/ronasset/engine/core"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	assetServer  *assets.Server
	plugins      []Plugin
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - game has no application config")
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	as, err := assets.NewServer(assets.ServerConfig{
		Root:    g.ApplicationConfig.AssetRoot,
		Workers: g.ApplicationConfig.LoadWorkers,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return NewWithServer(g, as), nil
}

// NewWithServer creates an engine around an existing asset server.
func NewWithServer(g *Game, as *assets.Server) *Engine {
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		assetServer:  as,
	}
}

// Assets returns the engine's asset server.
func (e *Engine) Assets() *assets.Server {
	return e.assetServer
}

// Stage returns the current lifecycle stage.
func (e *Engine) Stage() Stage {
	return e.currentStage
}

// AddPlugin builds p against the engine right away.
func (e *Engine) AddPlugin(p Plugin) error {
	if err := p.Build(e); err != nil {
		return fmt.Errorf("failed to build plugin %T: %w", p, err)
	}
	e.plugins = append(e.plugins, p)
	core.LogDebug("plugin %T added", p)
	return nil
}

// Initialize boots the game, installs the built-in loaders and the game's
// plugins, and starts hot reloading if configured.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	if err := loaders.RegisterDefaults(e.assetServer); err != nil {
		return err
	}
	for _, p := range e.gameInstance.Plugins {
		if err := e.AddPlugin(p); err != nil {
			return err
		}
	}
	if e.gameInstance.ApplicationConfig.HotReload {
		if err := e.assetServer.Watch(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized

	core.LogInfo("%s initialized", e.gameInstance.ApplicationConfig.Name)
	return nil
}

// Run blocks until ctx is done. Asset loading happens on the server's
// workers in the meantime.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrEngineNotInitialized
	}
	e.currentStage = EngineStageRunning
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return core.ErrEngineShutdown
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.assetServer.Shutdown())
	return errors.Join(errs...)
}
