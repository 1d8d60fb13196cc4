package ui

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/fzipp/bmfont"
	"github.com/pkg/errors"
)

// Glyph is one character of a bitmap font, in atlas pixels.
type Glyph struct {
	X, Y          float32
	Width, Height float32
	XOffset       float32
	YOffset       float32
	XAdvance      float32
}

// Font is a single-page BMFont with its atlas staged for upload.
type Font struct {
	Face       string
	LineHeight float32
	Base       float32
	Atlas      common.TextureStagingData

	glyphs  map[rune]Glyph
	kerning map[[2]rune]float32
}

// LoadFont reads a text or binary .fnt file and the atlas page next to it.
// Texel (0, 0) of the atlas is forced to opaque white so untextured quads can sample it.
//
// Parameters:
//   - path: the .fnt file
//
// Returns:
//   - *Font: the font
//   - error: error if the descriptor or its page cannot be read, or the font has more than one page
func LoadFont(path string) (*Font, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load font %s", path)
	}
	d := bf.Descriptor

	if len(d.Pages) != 1 {
		return nil, fmt.Errorf("load font %s: %d pages, only single-page fonts are supported", path, len(d.Pages))
	}
	var pageFile string
	for _, p := range d.Pages {
		pageFile = p.File
	}
	atlas, err := common.DecodeImageFile(filepath.Join(filepath.Dir(path), pageFile))
	if err != nil {
		return nil, errors.Wrapf(err, "load font %s", path)
	}
	if len(atlas.Pixels) >= 4 {
		copy(atlas.Pixels[:4], []byte{255, 255, 255, 255})
	}

	f := &Font{
		Face:       d.Info.Face,
		LineHeight: float32(d.Common.LineHeight),
		Base:       float32(d.Common.Base),
		Atlas:      atlas,
		glyphs:     make(map[rune]Glyph, len(d.Chars)),
		kerning:    make(map[[2]rune]float32, len(d.Kerning)),
	}
	for _, c := range d.Chars {
		f.glyphs[rune(c.ID)] = Glyph{
			X:        float32(c.X),
			Y:        float32(c.Y),
			Width:    float32(c.Width),
			Height:   float32(c.Height),
			XOffset:  float32(c.XOffset),
			YOffset:  float32(c.YOffset),
			XAdvance: float32(c.XAdvance),
		}
	}
	for pair, k := range d.Kerning {
		f.kerning[[2]rune{rune(pair.First), rune(pair.Second)}] = float32(k.Amount)
	}
	return f, nil
}

// Glyph returns the glyph of r. Missing glyphs fall back to '?'.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	g, ok := f.glyphs['?']
	return g, ok
}

// Kerning returns the horizontal adjustment between two characters.
func (f *Font) Kerning(first, second rune) float32 {
	return f.kerning[[2]rune{first, second}]
}

// Measure returns the width of the widest line and the total height of text.
func (f *Font) Measure(text string) (float32, float32) {
	var width, line float32
	lines := 1
	prev := rune(-1)
	for _, r := range text {
		if r == '\n' {
			width = max(width, line)
			line = 0
			lines++
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			continue
		}
		if prev >= 0 {
			line += f.Kerning(prev, r)
		}
		line += g.XAdvance
		prev = r
	}
	return max(width, line), float32(lines) * f.LineHeight
}

// AddText appends one quad per visible glyph with the pen starting at the top-left corner (x, y).
//
// Parameters:
//   - dl: the draw list
//   - x, y: the top-left corner of the first line
//   - text: the text, '\n' starts a new line
//   - color: the packed text color
func (f *Font) AddText(dl *DrawList, x, y float32, text string, color uint32) {
	aw, ah := float32(f.Atlas.Width), float32(f.Atlas.Height)
	penX, penY := x, y
	prev := rune(-1)
	for _, r := range text {
		if r == '\n' {
			penX = x
			penY += f.LineHeight
			prev = -1
			continue
		}
		g, ok := f.Glyph(r)
		if !ok {
			continue
		}
		if prev >= 0 {
			penX += f.Kerning(prev, r)
		}
		if g.Width > 0 && g.Height > 0 {
			x0, y0 := penX+g.XOffset, penY+g.YOffset
			dl.AddQuad(
				Rect{Min: [2]float32{x0, y0}, Max: [2]float32{x0 + g.Width, y0 + g.Height}},
				Rect{Min: [2]float32{g.X / aw, g.Y / ah}, Max: [2]float32{(g.X + g.Width) / aw, (g.Y + g.Height) / ah}},
				color,
			)
		}
		penX += g.XAdvance
		prev = r
	}
}
