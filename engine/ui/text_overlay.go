package ui

import "strings"

// TextOverlay draws a block of text lines over a translucent panel in one corner of the screen.
type TextOverlay struct {
	font       *Font
	lines      []string
	margin     float32
	padding    float32
	color      uint32
	background uint32
}

// NewTextOverlay creates an overlay anchored at the top-left corner.
//
// Parameters:
//   - font: the font, nil draws nothing
//   - opts: variadic list of TextOverlayBuilderOption functions
//
// Returns:
//   - *TextOverlay: the overlay
func NewTextOverlay(font *Font, opts ...TextOverlayBuilderOption) *TextOverlay {
	o := &TextOverlay{
		font:       font,
		margin:     8,
		padding:    4,
		color:      White,
		background: PackColor(0, 0, 0, 160),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetLines replaces the displayed text.
func (o *TextOverlay) SetLines(lines ...string) {
	o.lines = append(o.lines[:0], lines...)
}

// Lines returns the displayed text.
func (o *TextOverlay) Lines() []string {
	return o.lines
}

// Build appends the panel and the text to dl, clipped to the panel.
func (o *TextOverlay) Build(dl *DrawList) {
	if o.font == nil || len(o.lines) == 0 {
		return
	}
	text := strings.Join(o.lines, "\n")
	w, h := o.font.Measure(text)

	panel := Rect{
		Min: [2]float32{o.margin, o.margin},
		Max: [2]float32{o.margin + w + 2*o.padding, o.margin + h + 2*o.padding},
	}
	dl.PushClipRect(panel)
	dl.AddRect(panel, o.background)
	o.font.AddText(dl, panel.Min[0]+o.padding, panel.Min[1]+o.padding, text, o.color)
	dl.PopClipRect()
}

// TextOverlayBuilderOption is a function that configures a TextOverlay during construction.
type TextOverlayBuilderOption func(*TextOverlay)

// WithTextColor sets the packed text color.
func WithTextColor(color uint32) TextOverlayBuilderOption {
	return func(o *TextOverlay) {
		o.color = color
	}
}

// WithBackground sets the packed panel color.
func WithBackground(color uint32) TextOverlayBuilderOption {
	return func(o *TextOverlay) {
		o.background = color
	}
}

// WithMargin sets the distance between the panel and the screen corner in pixels.
func WithMargin(margin float32) TextOverlayBuilderOption {
	return func(o *TextOverlay) {
		o.margin = margin
	}
}
