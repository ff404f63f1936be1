package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/spaghettifunk/kiln/engine/renderer"
)

func TestVertexBufferLayout(t *testing.T) {
	layout := vertexBufferLayout()
	if layout.ArrayStride != 60 {
		t.Fatalf("stride = %d, want 60", layout.ArrayStride)
	}
	want := []struct {
		format wgpu.VertexFormat
		offset uint64
	}{
		{wgpu.VertexFormatFloat32x3, 0},
		{wgpu.VertexFormatFloat32x3, 12},
		{wgpu.VertexFormatFloat32x2, 24},
		{wgpu.VertexFormatFloat32x4, 32},
		{wgpu.VertexFormatFloat32x3, 48},
	}
	if len(layout.Attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(layout.Attributes), len(want))
	}
	for i, w := range want {
		a := layout.Attributes[i]
		if a.Format != w.format || a.Offset != w.offset || a.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d = %+v, want format %v offset %d", i, a, w.format, w.offset)
		}
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		vsync     bool
		supported []wgpu.PresentMode
		want      wgpu.PresentMode
	}{
		{"vsync", true, []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeFifo}, wgpu.PresentModeFifo},
		{"immediate", false, []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeImmediate}, wgpu.PresentModeImmediate},
		{"mailbox fallback", false, []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox}, wgpu.PresentModeMailbox},
		{"fifo only", false, []wgpu.PresentMode{wgpu.PresentModeFifo}, wgpu.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choosePresentMode(tt.vsync, tt.supported); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsageFor(t *testing.T) {
	if u, err := usageFor(renderer.VertexBuffer); err != nil || u&wgpu.BufferUsageVertex == 0 {
		t.Fatalf("vertex usage = %v, %v", u, err)
	}
	if u, err := usageFor(renderer.IndexBuffer); err != nil || u&wgpu.BufferUsageIndex == 0 {
		t.Fatalf("index usage = %v, %v", u, err)
	}
	if _, err := usageFor(renderer.BufferKind(9)); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestDeviceRejectsWorkBeforeInitialize(t *testing.T) {
	d := NewDevice()
	if d.Type() != renderer.WebGPU {
		t.Fatalf("type = %s", d.Type())
	}
	if _, err := d.CreateBuffer(renderer.VertexBuffer, []byte{1, 2, 3, 4}); err == nil {
		t.Fatal("CreateBuffer before Initialize succeeded")
	}
	ctx := d.NewContext()
	if err := d.DestroyContext(ctx); err != nil {
		t.Fatalf("destroy uninitialized context: %v", err)
	}
	if err := d.Shutdown(); err == nil {
		t.Fatal("Shutdown before Initialize succeeded")
	}
}

func TestReleaseFrameWithoutFrame(t *testing.T) {
	c := &Context{}
	c.releaseFrame()
	c.releaseFrame()
	if c.pass != nil || c.encoder != nil || c.frameView != nil || c.frameTexture != nil || c.commands != nil {
		t.Fatal("frame resources left behind")
	}
	if err := c.BeginFrame(); err == nil {
		t.Fatal("BeginFrame on an uninitialized context succeeded")
	}
}
