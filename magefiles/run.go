//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Loads the example garage from ./assets.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Loads the example garage and keeps reloading assets as they change.
func (Run) Watch() error {
	mg.Deps(Build.Vet)
	_, err := executeCmd("go",
		withArgs("run", "main.go"),
		withEnv("ANIMA_HOT_RELOAD=true", "ANIMA_LOG_LEVEL=debug"),
		withStream(),
	)
	if err != nil {
		return err
	}
	return nil
}
