package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func twoByTwo() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255}) // top left red
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255}) // bottom left blue
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func TestDecodeTextureFlipsRows(t *testing.T) {
	encoders := map[string]func(*bytes.Buffer, image.Image) error{
		"png": func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) },
		"bmp": func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf, twoByTwo()); err != nil {
				t.Fatal(err)
			}
			tex, err := DecodeTexture(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if tex.Width != 2 || tex.Height != 2 || tex.Components != 4 || len(tex.Pixels) != 16 {
				t.Fatalf("texture %dx%dx%d, %d bytes", tex.Width, tex.Height, tex.Components, len(tex.Pixels))
			}
			if tex.Format != name {
				t.Fatalf("format = %s", tex.Format)
			}
			if got := tex.At(0, 0); got != [4]byte{0, 0, 255, 255} {
				t.Fatalf("bottom left = %v, want blue", got)
			}
			if got := tex.At(0, 1); got != [4]byte{255, 0, 0, 255} {
				t.Fatalf("top left = %v, want red", got)
			}
		})
	}
}

func TestDecodeTextureRejectsGarbage(t *testing.T) {
	if _, err := DecodeTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected an error")
	}
}
