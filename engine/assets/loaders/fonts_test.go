package loaders

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

const testFNT = `info face="Test" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=32 base=26 scaleW=64 scaleH=64 pages=1 packed=0 alphaChnl=0 redChnl=0 greenChnl=0 blueChnl=0
page id=0 file="test_0.png"
chars count=2
char id=65 x=0 y=0 width=20 height=22 xoffset=0 yoffset=4 xadvance=19 page=0 chnl=15
char id=86 x=20 y=0 width=20 height=22 xoffset=1 yoffset=4 xadvance=18 page=0 chnl=15
kernings count=1
kerning first=65 second=86 amount=-2
`

func TestLoadBitmapFont(t *testing.T) {
	dir := t.TempDir()
	page, err := os.Create(filepath.Join(dir, "test_0.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(page, image.NewNRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatal(err)
	}
	page.Close()
	path := filepath.Join(dir, "test.fnt")
	if err := os.WriteFile(path, []byte(testFNT), 0o644); err != nil {
		t.Fatal(err)
	}

	font, err := LoadBitmapFont(path)
	if err != nil {
		t.Fatal(err)
	}
	if font.Face != "Test" || font.LineHeight != 32 || font.Baseline != 26 {
		t.Fatalf("font = %+v", font)
	}
	if len(font.Glyphs) != 2 || font.Glyphs['V'].XOffset != 1 {
		t.Fatalf("glyphs = %+v", font.Glyphs)
	}
	if got := font.Advance('A', 'V'); got != 17 {
		t.Fatalf("advance A->V = %d, want 17", got)
	}
	if got := font.Advance('V', 'A'); got != 18 {
		t.Fatalf("advance V->A = %d, want 18", got)
	}
}

func TestLoadSystemFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	font, err := LoadSystemFont(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(font.Faces) != 1 || font.Faces[0] == "" {
		t.Fatalf("faces = %v", font.Faces)
	}
}
