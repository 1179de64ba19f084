/*
This is an example of application that will use the
engine package to load assets that refer to other assets
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/ronasset/engine"
	"github.com/spaghettifunk/ronasset/engine/core"
	"github.com/spaghettifunk/ronasset/testbed"
)

func main() {
	config, err := engine.LoadConfig()
	if err != nil {
		panic(err)
	}

	tb := testbed.NewTestGame(config)

	e, err := engine.New(tb)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// cancelled on sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := testbed.ShowGarage(ctx, e, tb); err != nil {
		core.LogError(err.Error())
		_ = e.Shutdown()
		os.Exit(1)
	}

	if config.HotReload {
		if err := e.Run(ctx); err != nil {
			core.LogError(err.Error())
		}
	}

	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
}
