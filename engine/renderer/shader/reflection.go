package shader

import (
	"sort"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/pkg/errors"
)

// ResourceBinding is one @group(N) @binding(M) declaration.
type ResourceBinding struct {
	Group   uint32
	Binding uint32
	Name    string
}

// VertexInput is one @location(N) input of the vertex entry point, either a plain argument or a struct member.
type VertexInput struct {
	Location uint32
	Name     string
}

// Reflection lists what a shader expects the pipeline to provide.
type Reflection struct {
	// Bindings are sorted by group then binding.
	Bindings []ResourceBinding

	// VertexInputs are sorted by location.
	VertexInputs []VertexInput
}

// Reflect lowers WGSL with naga and collects its resource bindings and the vertex entry point's inputs.
//
// Parameters:
//   - source: the expanded WGSL source
//   - vertexEntry: the vertex entry point name
//
// Returns:
//   - Reflection: the declared bindings and vertex inputs
//   - error: error if the source does not lower or has no such vertex entry point
func Reflect(source, vertexEntry string) (Reflection, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return Reflection{}, errors.Wrap(err, "parse")
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return Reflection{}, errors.Wrap(err, "lower")
	}

	var r Reflection
	for _, g := range module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		r.Bindings = append(r.Bindings, ResourceBinding{Group: g.Binding.Group, Binding: g.Binding.Binding, Name: g.Name})
	}
	sort.Slice(r.Bindings, func(i, j int) bool {
		a, b := r.Bindings[i], r.Bindings[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Binding < b.Binding
	})

	entry := findEntryPoint(module, vertexEntry)
	if entry == nil {
		return Reflection{}, errors.Errorf("no vertex entry point %q", vertexEntry)
	}
	for _, arg := range entry.Function.Arguments {
		if loc, ok := location(arg.Binding); ok {
			r.VertexInputs = append(r.VertexInputs, VertexInput{Location: loc, Name: arg.Name})
			continue
		}
		if int(arg.Type) >= len(module.Types) {
			continue
		}
		st, ok := module.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, m := range st.Members {
			if loc, ok := location(m.Binding); ok {
				r.VertexInputs = append(r.VertexInputs, VertexInput{Location: loc, Name: arg.Name + "." + m.Name})
			}
		}
	}
	sort.Slice(r.VertexInputs, func(i, j int) bool { return r.VertexInputs[i].Location < r.VertexInputs[j].Location })
	return r, nil
}

func findEntryPoint(module *ir.Module, name string) *ir.EntryPoint {
	for i := range module.EntryPoints {
		if ep := &module.EntryPoints[i]; ep.Stage == ir.StageVertex && ep.Name == name {
			return ep
		}
	}
	return nil
}

func location(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	lb, ok := (*b).(ir.LocationBinding)
	if !ok {
		return 0, false
	}
	return lb.Location, true
}
