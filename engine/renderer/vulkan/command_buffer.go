package vulkan

import (
	vk "github.com/goki/vulkan"
)

type commandBufferState int

const (
	commandBufferReady commandBufferState = iota
	commandBufferRecording
	commandBufferInRenderPass
	commandBufferRecordingEnded
	commandBufferSubmitted
	commandBufferNotAllocated
)

type commandBuffer struct {
	handle vk.CommandBuffer
	state  commandBufferState
}

func allocateCommandBuffer(device vk.Device, pool vk.CommandPool, primary bool) (*commandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if primary {
		level = vk.CommandBufferLevelPrimary
	}
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}
	handles := make([]vk.CommandBuffer, 1)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(device, &info, handles)); err != nil {
		return nil, err
	}
	return &commandBuffer{handle: handles[0], state: commandBufferReady}, nil
}

func (cb *commandBuffer) free(device vk.Device, pool vk.CommandPool) {
	if cb.handle != nil {
		vk.FreeCommandBuffers(device, pool, 1, []vk.CommandBuffer{cb.handle})
		cb.handle = nil
	}
	cb.state = commandBufferNotAllocated
}

func (cb *commandBuffer) begin(singleUse, renderPassContinue, simultaneousUse bool) error {
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if singleUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if renderPassContinue {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if simultaneousUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(cb.handle, &info)); err != nil {
		return err
	}
	cb.state = commandBufferRecording
	return nil
}

func (cb *commandBuffer) end() error {
	if err := check("vkEndCommandBuffer", vk.EndCommandBuffer(cb.handle)); err != nil {
		return err
	}
	cb.state = commandBufferRecordingEnded
	return nil
}

func (cb *commandBuffer) reset() error {
	if err := check("vkResetCommandBuffer", vk.ResetCommandBuffer(cb.handle, 0)); err != nil {
		return err
	}
	cb.state = commandBufferReady
	return nil
}

// runSingleUse records fn into a one-time command buffer, submits it to
// queue and waits for the queue to drain.
func (d *Device) runSingleUse(pool vk.CommandPool, queue vk.Queue, fn func(cmd vk.CommandBuffer)) error {
	cb, err := allocateCommandBuffer(d.logical, pool, true)
	if err != nil {
		return err
	}
	defer cb.free(d.logical, pool)

	if err := cb.begin(true, false, false); err != nil {
		return err
	}
	fn(cb.handle)
	if err := cb.end(); err != nil {
		return err
	}

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.handle},
	}
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if err := check("vkQueueSubmit", vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submit}, nil)); err != nil {
		return err
	}
	cb.state = commandBufferSubmitted
	return check("vkQueueWaitIdle", vk.QueueWaitIdle(queue))
}
