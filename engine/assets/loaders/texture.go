package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/kiln/engine/core"
)

// Texture is decoded 8-bit RGBA pixel data with the first row at the bottom
// of the image, as graphics APIs sample it.
type Texture struct {
	Name       string
	Width      int
	Height     int
	Components int
	Format     string
	Pixels     []byte
}

// LoadTexture decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tex, err := DecodeTexture(f)
	if err != nil {
		core.LogError("failed to load texture %s: %s", path, err)
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	tex.Name = path
	return tex, nil
}

// DecodeTexture converts any registered image format to RGBA and flips it
// vertically.
func DecodeTexture(r io.Reader) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	w, h := b.Dx(), b.Dy()
	row := w * 4
	pixels := make([]byte, row*h)
	for y := 0; y < h; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+row]
		copy(pixels[(h-1-y)*row:], src)
	}
	return &Texture{
		Width:      w,
		Height:     h,
		Components: 4,
		Format:     format,
		Pixels:     pixels,
	}, nil
}

// At returns the RGBA value at x, y with y counted from the bottom row.
func (t *Texture) At(x, y int) [4]byte {
	i := (y*t.Width + x) * 4
	return [4]byte{t.Pixels[i], t.Pixels[i+1], t.Pixels[i+2], t.Pixels[i+3]}
}
