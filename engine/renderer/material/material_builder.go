package material

import "github.com/Carmen-Shannon/oxy-frame/common"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the RGBA colour multiplied into the diffuse map.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithShininess sets the specular exponent. Non-positive values keep the default.
func WithShininess(shininess float32) MaterialBuilderOption {
	return func(m *material) {
		if shininess > 0 {
			m.shininess = shininess
		}
	}
}

// WithDiffuseTexture is an option builder that sets the staged diffuse map.
//
// Parameters:
//   - tex: the decoded diffuse pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse texture option to a material
func WithDiffuseTexture(tex common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.diffuse = &tex
	}
}

// WithSpecularTexture is an option builder that sets the staged specular map.
//
// Parameters:
//   - tex: the decoded specular pixels
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular texture option to a material
func WithSpecularTexture(tex common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.specular = &tex
	}
}
