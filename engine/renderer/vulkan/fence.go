package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
)

// fence tracks whether it is signalled so waits on a known signalled fence
// skip the driver call.
type fence struct {
	handle    vk.Fence
	signalled bool
}

func newFence(device vk.Device, signalled bool) (*fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signalled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if err := check("vkCreateFence", vk.CreateFence(device, &info, nil, &handle)); err != nil {
		return nil, err
	}
	return &fence{handle: handle, signalled: signalled}, nil
}

func (f *fence) destroy(device vk.Device) {
	if f.handle != nil {
		vk.DestroyFence(device, f.handle, nil)
		f.handle = nil
	}
	f.signalled = false
}

func (f *fence) wait(device vk.Device, timeoutNs uint64) error {
	if f.signalled {
		return nil
	}
	res := vk.WaitForFences(device, 1, []vk.Fence{f.handle}, vk.True, timeoutNs)
	switch res {
	case vk.Success:
		f.signalled = true
		return nil
	case vk.Timeout:
		core.LogWarn("fence wait timed out")
	case vk.ErrorDeviceLost:
		core.LogError("fence wait: device lost")
	}
	return fmt.Errorf("wait for fence: %w", check("vkWaitForFences", res))
}

func (f *fence) reset(device vk.Device) error {
	if !f.signalled {
		return nil
	}
	if err := check("vkResetFences", vk.ResetFences(device, 1, []vk.Fence{f.handle})); err != nil {
		return err
	}
	f.signalled = false
	return nil
}
