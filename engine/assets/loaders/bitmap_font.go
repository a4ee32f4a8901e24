package loaders

import (
	"sort"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/tundra/engine/renderer"
)

// BitmapFontLoader imports AngelCode .fnt files.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string) (any, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	desc := font.Descriptor

	out := &renderer.Font{
		Face:       desc.Info.Face,
		Size:       uint32(desc.Info.Size),
		LineHeight: int32(desc.Common.LineHeight),
		Baseline:   int32(desc.Common.Base),
		AtlasSizeX: int32(desc.Common.ScaleW),
		AtlasSizeY: int32(desc.Common.ScaleH),
		Glyphs:     make(map[rune]renderer.FontGlyph, len(desc.Chars)),
		Kernings:   make(map[[2]rune]int16, len(desc.Kerning)),
	}

	type page struct {
		id   int
		file string
	}
	var pages []page
	for _, p := range desc.Pages {
		pages = append(pages, page{id: int(p.ID), file: p.File})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].id < pages[j].id })
	for _, p := range pages {
		out.Pages = append(out.Pages, p.file)
	}

	for _, g := range desc.Chars {
		out.Glyphs[rune(g.ID)] = renderer.FontGlyph{
			Codepoint: rune(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		}
	}

	for p, k := range desc.Kerning {
		out.Kernings[[2]rune{rune(p.First), rune(p.Second)}] = int16(k.Amount)
	}

	return out, nil
}
