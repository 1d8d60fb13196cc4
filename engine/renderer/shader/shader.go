package shader

import (
	"os"
	"path/filepath"

	"github.com/gogpu/naga"
	"github.com/pkg/errors"
)

// DefaultVertexEntry and DefaultFragmentEntry are the entry point names every engine shader uses
// unless a shader is created with explicit entry points.
const (
	DefaultVertexEntry   = "vs_main"
	DefaultFragmentEntry = "fs_main"
)

type shader struct {
	key           string
	path          string
	source        string
	vertexEntry   string
	fragmentEntry string
	includes      []string
}

// Shader is a pre-processed and validated WGSL module holding a vertex and an optional fragment stage.
type Shader interface {
	// Key returns the shader's identifying key, used as the pipeline label prefix.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Path returns the file the shader was loaded from.
	//
	// Returns:
	//   - string: the path, empty for shaders created from source
	Path() string

	// Source returns the expanded WGSL source.
	//
	// Returns:
	//   - string: the source
	Source() string

	// VertexEntry returns the vertex entry point name.
	VertexEntry() string

	// FragmentEntry returns the fragment entry point name, or "" for depth-only shaders.
	FragmentEntry() string

	// Includes returns the includes expanded into the source.
	Includes() []string
}

var _ Shader = &shader{}

// NewShaderFromSource pre-processes and validates WGSL source.
//
// Parameters:
//   - key: the shader key
//   - source: the raw WGSL source
//   - opts: functional options
//
// Returns:
//   - Shader: the validated shader
//   - error: error if pre-processing or validation fails
func NewShaderFromSource(key, source string, opts ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:           key,
		vertexEntry:   DefaultVertexEntry,
		fragmentEntry: DefaultFragmentEntry,
	}
	cfg := shaderConfig{}
	for _, opt := range opts {
		opt(s, &cfg)
	}

	pp := NewPreProcessor(cfg.includeDir, cfg.registry)
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", key)
	}
	s.source = expanded
	s.includes = append(s.includes, pp.Included()...)

	if err := Validate(expanded); err != nil {
		return nil, errors.Wrapf(err, "shader %s", key)
	}
	return s, nil
}

// LoadShader reads, pre-processes and validates a WGSL file. Includes resolve against the file's directory
// unless WithIncludeDir overrides it.
//
// Parameters:
//   - key: the shader key
//   - path: the WGSL file path
//   - opts: functional options
//
// Returns:
//   - Shader: the validated shader
//   - error: error carrying the path if the file cannot be read or fails validation
func LoadShader(key, path string, opts ...ShaderBuilderOption) (Shader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %s", path)
	}

	opts = append([]ShaderBuilderOption{WithIncludeDir(filepath.Dir(path))}, opts...)
	s, err := NewShaderFromSource(key, string(raw), opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load shader %s", path)
	}
	s.(*shader).path = path
	return s, nil
}

// Validate parses, lowers and validates WGSL with naga, returning the first reported problem.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - error: nil if the source is valid
func Validate(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return errors.Wrap(err, "parse")
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return errors.Wrap(err, "lower")
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	if len(problems) > 0 {
		return errors.Wrap(&problems[0], "validate")
	}
	return nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Path() string {
	return s.path
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntry() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntry() string {
	return s.fragmentEntry
}

func (s *shader) Includes() []string {
	return s.includes
}
