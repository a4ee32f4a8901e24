package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/tundra/engine/renderer"
)

// TrueTypeLoader reads glyph metrics of the printable ASCII range from a
// TrueType or OpenType font. The result has no atlas pages; a rendering
// backend rasterizes the glyphs on demand.
type TrueTypeLoader struct {
	Size float64
	DPI  float64
}

const (
	firstPrintable = ' '
	lastPrintable  = '~'
)

func (tl *TrueTypeLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}

	size, dpi := tl.Size, tl.DPI
	if size <= 0 {
		size = 32
	}
	if dpi <= 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %s: %w", path, err)
	}
	defer face.Close()

	name, err := parsed.Name(nil, sfnt.NameIDFamily)
	if err != nil || name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	metrics := face.Metrics()
	out := &renderer.Font{
		Face:       name,
		Size:       uint32(size),
		LineHeight: int32(metrics.Height.Ceil()),
		Baseline:   int32(metrics.Ascent.Ceil()),
		Glyphs:     make(map[rune]renderer.FontGlyph),
		Kernings:   make(map[[2]rune]int16),
	}

	for r := rune(firstPrintable); r <= lastPrintable; r++ {
		bounds, advance, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		out.Glyphs[r] = renderer.FontGlyph{
			Codepoint: r,
			Width:     uint16((bounds.Max.X - bounds.Min.X).Ceil()),
			Height:    uint16((bounds.Max.Y - bounds.Min.Y).Ceil()),
			XOffset:   int16(bounds.Min.X.Floor()),
			YOffset:   int16((bounds.Min.Y + metrics.Ascent).Floor()),
			XAdvance:  int16(advance.Round()),
		}
	}
	for a := rune(firstPrintable); a <= lastPrintable; a++ {
		for b := rune(firstPrintable); b <= lastPrintable; b++ {
			if k := face.Kern(a, b); k != fixed.Int26_6(0) {
				out.Kernings[[2]rune{a, b}] = int16(k.Round())
			}
		}
	}
	return out, nil
}
