package shader

// shaderConfig holds construction-only settings that are not kept on the shader.
type shaderConfig struct {
	includeDir string
	registry   map[string]string
}

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader, *shaderConfig)

// WithEntryPoints overrides the vertex and fragment entry point names.
// An empty fragment entry makes the shader depth-only.
//
// Parameters:
//   - vertex: the vertex entry point
//   - fragment: the fragment entry point, or ""
//
// Returns:
//   - ShaderBuilderOption: a function that applies the entry points
func WithEntryPoints(vertex, fragment string) ShaderBuilderOption {
	return func(s *shader, _ *shaderConfig) {
		s.vertexEntry = vertex
		s.fragmentEntry = fragment
	}
}

// WithIncludeDir sets the directory file includes are resolved against.
func WithIncludeDir(dir string) ShaderBuilderOption {
	return func(_ *shader, c *shaderConfig) {
		c.includeDir = dir
	}
}

// WithIncludes registers named WGSL snippets that take precedence over files.
//
// Parameters:
//   - registry: include name to WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that merges the registry
func WithIncludes(registry map[string]string) ShaderBuilderOption {
	return func(_ *shader, c *shaderConfig) {
		if c.registry == nil {
			c.registry = make(map[string]string, len(registry))
		}
		for k, v := range registry {
			c.registry[k] = v
		}
	}
}
