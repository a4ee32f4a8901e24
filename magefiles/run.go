//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the sandbox with the testbed config.
func (Run) Sandbox() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run sandbox...")
	if _, err := executeCmd("bin/tundra", withArgs("-config", "testbed/config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the sandbox without a window for a few hundred frames.
func (Run) Headless() error {
	mg.Deps(Build.Engine)
	_, err := executeCmd("bin/tundra", withArgs("-config", "testbed/config.toml", "-headless", "-frames", "300"), withStream())
	return err
}
