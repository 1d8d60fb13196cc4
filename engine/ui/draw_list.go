// Package ui builds the screen-space geometry drawn by the UI pass: a draw list of textured, colored quads
// split into clip-rect commands, plus a bitmap-font text overlay that fills it.
package ui

// Rect is an axis-aligned rectangle in screen pixels, Min inclusive and Max exclusive.
type Rect struct {
	Min [2]float32
	Max [2]float32
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Max[0] <= r.Min[0] || r.Max[1] <= r.Min[1]
}

// Intersect returns the overlap of two rectangles.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: [2]float32{max(r.Min[0], o.Min[0]), max(r.Min[1], o.Min[1])},
		Max: [2]float32{min(r.Max[0], o.Max[0]), min(r.Max[1], o.Max[1])},
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Command draws ElemCount indices starting at IndexOffset with the scissor set to ClipRect.
type Command struct {
	ClipRect    Rect
	ElemCount   uint32
	IndexOffset uint32
}

// DrawList is one frame of UI geometry. Consecutive quads under the same clip rect share a Command.
type DrawList struct {
	Vertices    []Vertex
	Indices     []uint32
	Commands    []Command
	DisplaySize [2]float32

	clipStack []Rect
}

// NewDrawList creates an empty list for a display of the given size.
func NewDrawList(width, height float32) *DrawList {
	return &DrawList{DisplaySize: [2]float32{width, height}}
}

// Reset clears the geometry and the clip stack and sets a new display size.
func (d *DrawList) Reset(width, height float32) {
	d.Vertices = d.Vertices[:0]
	d.Indices = d.Indices[:0]
	d.Commands = d.Commands[:0]
	d.clipStack = d.clipStack[:0]
	d.DisplaySize = [2]float32{width, height}
}

// Empty reports whether there is nothing to draw.
func (d *DrawList) Empty() bool {
	return len(d.Indices) == 0
}

func (d *DrawList) fullRect() Rect {
	return Rect{Max: d.DisplaySize}
}

// ClipRect returns the clip rect in effect, the whole display when none is pushed.
func (d *DrawList) ClipRect() Rect {
	if n := len(d.clipStack); n > 0 {
		return d.clipStack[n-1]
	}
	return d.fullRect()
}

// PushClipRect restricts following quads to r intersected with the current clip rect.
func (d *DrawList) PushClipRect(r Rect) {
	d.clipStack = append(d.clipStack, r.Intersect(d.ClipRect()))
}

// PopClipRect restores the previous clip rect. Popping an empty stack panics.
func (d *DrawList) PopClipRect() {
	if len(d.clipStack) == 0 {
		panic("ui: PopClipRect without PushClipRect")
	}
	d.clipStack = d.clipStack[:len(d.clipStack)-1]
}

// AddQuad appends a textured quad. Quads fully outside the clip rect are dropped.
//
// Parameters:
//   - r: the quad in screen pixels
//   - uv: the texture coordinates of r.Min and r.Max
//   - color: the packed vertex color, multiplied with the texture
func (d *DrawList) AddQuad(r Rect, uv Rect, color uint32) {
	clip := d.ClipRect()
	if r.Intersect(clip).Empty() {
		return
	}

	base := uint32(len(d.Vertices))
	d.Vertices = append(d.Vertices,
		Vertex{Position: [2]float32{r.Min[0], r.Min[1]}, UV: [2]float32{uv.Min[0], uv.Min[1]}, Color: color},
		Vertex{Position: [2]float32{r.Max[0], r.Min[1]}, UV: [2]float32{uv.Max[0], uv.Min[1]}, Color: color},
		Vertex{Position: [2]float32{r.Max[0], r.Max[1]}, UV: [2]float32{uv.Max[0], uv.Max[1]}, Color: color},
		Vertex{Position: [2]float32{r.Min[0], r.Max[1]}, UV: [2]float32{uv.Min[0], uv.Max[1]}, Color: color},
	)
	d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)

	if n := len(d.Commands); n > 0 && d.Commands[n-1].ClipRect == clip {
		d.Commands[n-1].ElemCount += 6
		return
	}
	d.Commands = append(d.Commands, Command{
		ClipRect:    clip,
		ElemCount:   6,
		IndexOffset: uint32(len(d.Indices) - 6),
	})
}

// AddRect appends an untextured quad. The font atlas keeps a white texel at uv (0, 0) for this.
func (d *DrawList) AddRect(r Rect, color uint32) {
	d.AddQuad(r, Rect{}, color)
}
