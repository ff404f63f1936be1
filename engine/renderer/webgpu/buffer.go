package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

// Buffer is an immutable vertex or index buffer living in GPU memory.
type Buffer struct {
	handle *wgpu.Buffer
	kind   renderer.BufferKind
	size   uint64
}

var _ renderer.GPUBuffer = (*Buffer)(nil)

func (b *Buffer) Kind() renderer.BufferKind { return b.kind }
func (b *Buffer) Size() uint64              { return b.size }

func (b *Buffer) release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}

func usageFor(kind renderer.BufferKind) (wgpu.BufferUsage, error) {
	switch kind {
	case renderer.VertexBuffer:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst, nil
	case renderer.IndexBuffer:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst, nil
	}
	return 0, fmt.Errorf("unsupported buffer kind %s", kind)
}

// CreateBuffer uploads data into a new buffer. Queue writes must cover a
// multiple of four bytes, so the tail is zero padded.
func (d *Device) CreateBuffer(kind renderer.BufferKind, data []byte) (renderer.GPUBuffer, error) {
	if !d.initialized {
		return nil, core.ErrNotInitialized
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("create %s buffer: empty data", kind)
	}
	usage, err := usageFor(kind)
	if err != nil {
		return nil, err
	}
	size := (uint64(len(data)) + 3) &^ 3
	if size != uint64(len(data)) {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}

	handle, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: kind.String() + " buffer",
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", kind, err)
	}
	d.queue.WriteBuffer(handle, 0, data)

	b := &Buffer{handle: handle, kind: kind, size: size}
	d.buffers[b] = struct{}{}
	return b, nil
}

func (d *Device) DestroyBuffer(buf renderer.GPUBuffer) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return ErrForeignBuffer
	}
	if _, ok := d.buffers[b]; !ok {
		return fmt.Errorf("destroy %s buffer: %w", b.kind, ErrForeignBuffer)
	}
	b.release()
	delete(d.buffers, b)
	return nil
}
