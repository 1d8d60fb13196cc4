// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs, just plain structs
// and functions that express commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA8 pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// BytesPerRow returns the byte stride of one row of pixels.
func (t TextureStagingData) BytesPerRow() uint32 {
	return t.Width * 4
}

// SolidTexture returns a 1x1 texture of the given color, used when a material has no image.
//
// Parameters:
//   - r, g, b, a: the color channels
//
// Returns:
//   - TextureStagingData: the staged pixel
func SolidTexture(r, g, b, a uint8) TextureStagingData {
	return TextureStagingData{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}

// DecodeImage decodes any registered image format (PNG, JPEG, BMP, TIFF, WebP) into RGBA staging data.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: error if the format is unknown or decoding fails
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, err
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// DecodeImageBytes decodes an in-memory encoded image into RGBA staging data.
func DecodeImageBytes(data []byte) (TextureStagingData, error) {
	return DecodeImage(bytes.NewReader(data))
}

// DecodeImageFile opens and decodes an image file into RGBA staging data.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, err
	}
	defer f.Close()

	staged, err := DecodeImage(f)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return staged, nil
}
