//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Binary builds cmd/oxy-frame into bin/.
func (Build) Binary() error {
	mg.Deps(Shaders.Validate)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/oxy-frame", "./cmd/oxy-frame"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Unit runs every package test with the race detector.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

type Run mg.Namespace

// Demo runs the demo scene with the shipped configuration.
func (Run) Demo() error {
	mg.Deps(Shaders.Validate)
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs("run", "./cmd/oxy-frame", "-config", "config.toml", "-scene", "assets/scenes/demo.yaml"), withStream()); err != nil {
		return err
	}
	return nil
}
