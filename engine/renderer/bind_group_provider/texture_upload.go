package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// UploadTexture creates a sampled texture from staged RGBA pixels and returns it with a view of the
// requested dimension. Every layer must have the size of the first one. Cube views need six layers.
//
// Parameters:
//   - backend: the GPU backend
//   - label: a debug label
//   - format: the texture format, usually RGBA8UnormSrgb for colour and RGBA8Unorm for data
//   - dimension: the view dimension the shader declares
//   - layers: the staged pixels, one per array layer
//
// Returns:
//   - gpu.Texture: the texture, owned by the caller
//   - gpu.TextureView: a view over every layer
//   - error: error if the layers disagree or a GPU object cannot be created
func UploadTexture(backend gpu.Backend, label string, format gpu.TextureFormat, dimension gpu.TextureViewDimension, layers ...common.TextureStagingData) (gpu.Texture, gpu.TextureView, error) {
	if len(layers) == 0 {
		return nil, nil, fmt.Errorf("texture %q: no layers", label)
	}
	if dimension == gpu.TextureViewDimensionCube && len(layers) != 6 {
		return nil, nil, fmt.Errorf("texture %q: cube needs 6 layers, got %d", label, len(layers))
	}
	w, h := layers[0].Width, layers[0].Height
	for i, l := range layers {
		if l.Width != w || l.Height != h {
			return nil, nil, fmt.Errorf("texture %q: layer %d is %dx%d, want %dx%d", label, i, l.Width, l.Height, w, h)
		}
		if len(l.Pixels) != int(l.BytesPerRow()*l.Height) {
			return nil, nil, fmt.Errorf("texture %q: layer %d has %d bytes, want %d", label, i, len(l.Pixels), l.BytesPerRow()*l.Height)
		}
	}

	tex, err := backend.CreateTexture(gpu.TextureDescriptor{
		Label:         label,
		Size:          gpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: uint32(len(layers))},
		Format:        format,
		Dimension:     gpu.TextureDimension2D,
		Usage:         gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, err
	}

	for i, l := range layers {
		backend.WriteTexture(gpu.TextureWrite{
			Texture:     tex,
			ArrayLayer:  uint32(i),
			Data:        l.Pixels,
			BytesPerRow: l.BytesPerRow(),
			Width:       l.Width,
			Height:      l.Height,
		})
	}

	view, err := tex.CreateView(&gpu.TextureViewDescriptor{
		Label:           label + " View",
		Dimension:       dimension,
		ArrayLayerCount: uint32(len(layers)),
	})
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}
