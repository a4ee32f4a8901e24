//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every test of the module.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./...", "-count", "1"), withStream())
	return err
}

// Runs the tests with the race detector. It needs cgo.
func (Test) Race() error {
	_, err := executeCmd("go",
		withArgs("test", "-race", "./...", "-count", "1"),
		withEnv("CGO_ENABLED=1"),
		withStream(),
	)
	return err
}

// Runs only the testbed tests from inside the testbed directory so the
// sample assets resolve relative to it.
func (Test) Sandbox() error {
	_, err := executeCmd("go", withArgs("test", ".", "-count", "1", "-v"), withDir("testbed"), withStream())
	return err
}
