package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

// findMemoryIndex returns the first memory type allowed by typeFilter that
// has every property flag, or -1.
func findMemoryIndex(memory vk.PhysicalDeviceMemoryProperties, typeFilter uint32, flags vk.MemoryPropertyFlags) int32 {
	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		t := memory.MemoryTypes[i]
		t.Deref()
		if typeFilter&(1<<i) != 0 && t.PropertyFlags&flags == flags {
			return int32(i)
		}
	}
	return -1
}

// rawBuffer is a buffer bound to its own allocation.
type rawBuffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	size   uint64
	mapped unsafe.Pointer
}

func (d *Device) createRawBuffer(size uint64, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*rawBuffer, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	b := &rawBuffer{size: size}
	if err := check("vkCreateBuffer", vk.CreateBuffer(d.logical, &info, nil, &b.handle)); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.logical, b.handle, &reqs)
	reqs.Deref()
	index := findMemoryIndex(d.physical.memory, reqs.MemoryTypeBits, props)
	if index < 0 {
		vk.DestroyBuffer(d.logical, b.handle, nil)
		return nil, errors.New("no memory type suits the buffer")
	}
	alloc := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: uint32(index),
	}
	if err := check("vkAllocateMemory", vk.AllocateMemory(d.logical, &alloc, nil, &b.memory)); err != nil {
		vk.DestroyBuffer(d.logical, b.handle, nil)
		return nil, err
	}
	if err := check("vkBindBufferMemory", vk.BindBufferMemory(d.logical, b.handle, b.memory, 0)); err != nil {
		b.destroy(d.logical)
		return nil, err
	}
	return b, nil
}

// mapMemory maps the whole buffer until destroy.
func (b *rawBuffer) mapMemory(device vk.Device) error {
	var ptr unsafe.Pointer
	if err := check("vkMapMemory", vk.MapMemory(device, b.memory, 0, vk.DeviceSize(b.size), 0, &ptr)); err != nil {
		return err
	}
	b.mapped = ptr
	return nil
}

// write copies data into mapped memory at offset.
func (b *rawBuffer) write(offset uint64, data []byte) error {
	if b.mapped == nil {
		return errors.New("buffer is not mapped")
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write of %d bytes at %d overflows %d byte buffer", len(data), offset, b.size)
	}
	dst := unsafe.Slice((*byte)(b.mapped), b.size)
	copy(dst[offset:], data)
	return nil
}

func (b *rawBuffer) destroy(device vk.Device) {
	if b.mapped != nil {
		vk.UnmapMemory(device, b.memory)
		b.mapped = nil
	}
	if b.handle != nil {
		vk.DestroyBuffer(device, b.handle, nil)
		b.handle = nil
	}
	if b.memory != nil {
		vk.FreeMemory(device, b.memory, nil)
		b.memory = nil
	}
}

// Buffer is an immutable vertex or index buffer in device local memory.
type Buffer struct {
	raw  *rawBuffer
	kind renderer.BufferKind
}

var _ renderer.GPUBuffer = (*Buffer)(nil)

func (b *Buffer) Kind() renderer.BufferKind { return b.kind }
func (b *Buffer) Size() uint64              { return b.raw.size }

func (b *Buffer) destroy(device vk.Device) {
	b.raw.destroy(device)
}

func usageFor(kind renderer.BufferKind) (vk.BufferUsageFlags, error) {
	switch kind {
	case renderer.VertexBuffer:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit), nil
	case renderer.IndexBuffer:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit), nil
	}
	return 0, fmt.Errorf("unsupported buffer kind %s", kind)
}

// CreateBuffer uploads data through a host visible staging buffer into a new
// device local buffer.
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
	size := uint64(len(data))

	staging, err := d.createRawBuffer(size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer staging.destroy(d.logical)
	if err := staging.mapMemory(d.logical); err != nil {
		return nil, err
	}
	if err := staging.write(0, data); err != nil {
		return nil, err
	}

	raw, err := d.createRawBuffer(size, usage, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", kind, err)
	}
	err = d.runSingleUse(d.graphicsPool, d.graphicsQueue, func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, staging.handle, raw.handle, 1, []vk.BufferCopy{{Size: vk.DeviceSize(size)}})
	})
	if err != nil {
		raw.destroy(d.logical)
		return nil, fmt.Errorf("upload %s buffer: %w", kind, err)
	}

	b := &Buffer{raw: raw, kind: kind}
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
	// the buffer may still be referenced by a frame in flight
	d.waitIdle()
	b.destroy(d.logical)
	delete(d.buffers, b)
	return nil
}
