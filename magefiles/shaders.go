//go:build mage

package main

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/magefile/mage/mg"
)

type Shaders mg.Namespace

// Validate runs every built-in pass shader and every override in assets/shaders through the WGSL validator.
func (Shaders) Validate() error {
	sources := pass.Sources()
	for _, name := range slices.Sorted(maps.Keys(sources)) {
		if _, err := shader.NewShaderFromSource(name, sources[name], shader.WithIncludes(pass.Includes())); err != nil {
			return err
		}
		if mg.Verbose() {
			fmt.Println("ok", name)
		}
	}

	overrides, err := filepath.Glob(filepath.Join("assets", "shaders", "*.wgsl"))
	if err != nil {
		return err
	}
	for _, path := range overrides {
		if _, err := shader.LoadShader(filepath.Base(path), path, shader.WithIncludes(pass.Includes())); err != nil {
			return err
		}
		fmt.Println("ok", path)
	}
	return nil
}
