package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
)

// Loader decodes glTF and GLB files into Models for an asset.Store.
type Loader struct {
	layout       *material.Layout
	maxInstances int
}

var _ asset.Loader[Model] = &Loader{}

// NewLoader creates a model loader whose materials bind against layout.
//
// Parameters:
//   - layout: the shared material layout
//   - options: variadic list of LoaderBuilderOption functions
//
// Returns:
//   - *Loader: the loader
func NewLoader(layout *material.Layout, options ...LoaderBuilderOption) *Loader {
	if layout == nil {
		panic("model: loader needs a material layout")
	}
	l := &Loader{layout: layout, maxInstances: DefaultMaxInstances}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Decode parses path off the frame goroutine and returns the upload that creates the Model.
func (l *Loader) Decode(path string) (asset.Upload[Model], error) {
	var (
		imported *ImportedModel
		err      error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		imported, err = DecodeGLTF(path)
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	return func(ctx asset.UploadContext) (Model, error) {
		return NewModel(ctx.Backend, imported, l.layout, WithMaxInstances(l.maxInstances))
	}, nil
}

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*Loader)

// WithLoaderMaxInstances sets the instance capacity of every model the loader produces.
// Non-positive values keep DefaultMaxInstances.
func WithLoaderMaxInstances(n int) LoaderBuilderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxInstances = n
		}
	}
}
