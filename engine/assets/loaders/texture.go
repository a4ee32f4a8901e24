package loaders

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/tundra/engine/renderer"
)

// TextureLoader decodes png, jpeg, bmp, tiff and webp files into RGBA pixels.
type TextureLoader struct {
	// FlipY stores the rows bottom to top.
	FlipY bool
}

func (tl *TextureLoader) Load(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pixels := rgba.Pix
	if tl.FlipY {
		pixels = flipRows(rgba.Pix, rgba.Stride, bounds.Dy())
	}

	return &renderer.Texture{
		Name:            strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Width:           uint32(bounds.Dx()),
		Height:          uint32(bounds.Dy()),
		ChannelCount:    4,
		HasTransparency: hasTransparency(rgba.Pix) && format != "jpeg",
		Pixels:          pixels,
	}, nil
}

func flipRows(pix []uint8, stride, rows int) []uint8 {
	out := make([]uint8, len(pix))
	for y := 0; y < rows; y++ {
		copy(out[y*stride:(y+1)*stride], pix[(rows-1-y)*stride:(rows-y)*stride])
	}
	return out
}

func hasTransparency(pix []uint8) bool {
	for i := 3; i < len(pix); i += 4 {
		if pix[i] < 255 {
			return true
		}
	}
	return false
}
