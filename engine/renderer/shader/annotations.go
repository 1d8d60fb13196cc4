// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @oxy:.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a registered WGSL snippet or another shader file at the annotation site.
	// Registered names take precedence over files. A given include is expanded once per shader.
	//
	// Syntax: //@oxy:include <name>
	//
	// Example: //@oxy:include camera
	// Example: //@oxy:include lighting.wgsl
	AnnotationTypeInclude AnnotationType = "include"
)

// Annotation is one parsed @oxy: annotation.
type Annotation struct {
	Type AnnotationType
	Arg  string
	Line int
}

// parseAnnotation parses a single WGSL source line. Lines that are not annotations return nil, nil.
//
// Parameters:
//   - line: the source line
//   - lineNum: the 1-based line number used in error messages
//
// Returns:
//   - *Annotation: the parsed annotation or nil
//   - error: error if the line is a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}

	switch AnnotationType(fields[0]) {
	case AnnotationTypeInclude:
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one argument", lineNum)
		}
		return &Annotation{Type: AnnotationTypeInclude, Arg: fields[1], Line: lineNum}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, fields[0])
	}
}
