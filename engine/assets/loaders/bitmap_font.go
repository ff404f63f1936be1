package loaders

import (
	"fmt"

	"github.com/fzipp/bmfont"
)

type Glyph struct {
	Codepoint rune
	X, Y      uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	Page      uint8
}

type KerningPair struct {
	First, Second rune
}

type FontPage struct {
	ID   int
	File string
}

// BitmapFont is the glyph atlas description of an AngelCode .fnt file.
type BitmapFont struct {
	Face        string
	Size        int
	LineHeight  int
	Baseline    int
	AtlasWidth  int
	AtlasHeight int
	Glyphs      map[rune]Glyph
	Kerning     map[KerningPair]int16
	Pages       []FontPage
}

// LoadBitmapFont reads an AngelCode bitmap font descriptor.
func LoadBitmapFont(path string) (*BitmapFont, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load bitmap font %s: %w", path, err)
	}
	d := font.Descriptor

	out := &BitmapFont{
		Face:        d.Info.Face,
		Size:        int(d.Info.Size),
		LineHeight:  int(d.Common.LineHeight),
		Baseline:    int(d.Common.Base),
		AtlasWidth:  int(d.Common.ScaleW),
		AtlasHeight: int(d.Common.ScaleH),
		Glyphs:      make(map[rune]Glyph, len(d.Chars)),
		Kerning:     make(map[KerningPair]int16, len(d.Kerning)),
	}
	for _, p := range d.Pages {
		out.Pages = append(out.Pages, FontPage{ID: int(p.ID), File: p.File})
	}
	for _, g := range d.Chars {
		out.Glyphs[rune(g.ID)] = Glyph{
			Codepoint: rune(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			Page:      uint8(g.Page),
		}
	}
	for pair, k := range d.Kerning {
		out.Kerning[KerningPair{First: rune(pair.First), Second: rune(pair.Second)}] = int16(k.Amount)
	}
	return out, nil
}

// Advance returns the pen advance from a to b including kerning.
func (f *BitmapFont) Advance(a, b rune) int {
	g, ok := f.Glyphs[a]
	if !ok {
		return 0
	}
	return int(g.XAdvance) + int(f.Kerning[KerningPair{First: a, Second: b}])
}
