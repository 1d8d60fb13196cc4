// pre_processor.go implements the WGSL pre-processor. It scans shader source for
// @oxy:include annotations and replaces them with registered struct sources or the
// contents of other shader files from the same directory.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// dir is the directory file includes are resolved against.
	dir string

	// registry maps include names to WGSL source text registered by the GPU type packages.
	registry map[string]string

	// included records every include expanded during the current Process call.
	included []string
}

// PreProcessor expands @oxy:include annotations.
type PreProcessor interface {
	// Process expands includes in source. Each include is expanded at most once; nested includes
	// are expanded recursively and cycles are reported as errors.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: error if an annotation is malformed or an include cannot be resolved
	Process(source string) (string, error)

	// Included returns the include names expanded by the last Process call, in expansion order.
	//
	// Returns:
	//   - []string: the include names
	Included() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor resolving file includes against dir.
//
// Parameters:
//   - dir: the include directory
//   - registry: named WGSL snippets, may be nil
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(dir string, registry map[string]string) PreProcessor {
	return &preProcessor{dir: dir, registry: registry}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	return p.expand(source, map[string]bool{}, map[string]bool{})
}

func (p *preProcessor) Included() []string {
	return p.included
}

func (p *preProcessor) expand(source string, done, stack map[string]bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		if stack[a.Arg] {
			return "", fmt.Errorf("line %d: include cycle through %q", a.Line, a.Arg)
		}
		if done[a.Arg] {
			continue
		}

		body, err := p.resolve(a.Arg)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", a.Line, err)
		}

		stack[a.Arg] = true
		expanded, err := p.expand(body, done, stack)
		delete(stack, a.Arg)
		if err != nil {
			return "", fmt.Errorf("%s: %w", a.Arg, err)
		}

		done[a.Arg] = true
		p.included = append(p.included, a.Arg)
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) resolve(name string) (string, error) {
	if src, ok := p.registry[name]; ok {
		return src, nil
	}
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("include %q must be relative to the shader directory", name)
	}
	raw, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		return "", fmt.Errorf("unknown include %q: %w", name, err)
	}
	return string(raw), nil
}
