package vulkan

import (
	vk "github.com/goki/vulkan"
)

func createFramebuffer(device vk.Device, rp *renderPass, extent vk.Extent2D, attachments []vk.ImageView) (vk.Framebuffer, error) {
	info := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      rp.handle,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var fb vk.Framebuffer
	if err := check("vkCreateFramebuffer", vk.CreateFramebuffer(device, &info, nil, &fb)); err != nil {
		return vk.NullFramebuffer, err
	}
	return fb, nil
}

// createFramebuffers builds one framebuffer per swapchain image, all sharing
// the depth buffer.
func createFramebuffers(device vk.Device, rp *renderPass, sc *swapchain) ([]vk.Framebuffer, error) {
	fbs := make([]vk.Framebuffer, 0, len(sc.views))
	for _, view := range sc.views {
		fb, err := createFramebuffer(device, rp, sc.extent, []vk.ImageView{view, sc.depth.view})
		if err != nil {
			destroyFramebuffers(device, fbs)
			return nil, err
		}
		fbs = append(fbs, fb)
	}
	return fbs, nil
}

func destroyFramebuffers(device vk.Device, fbs []vk.Framebuffer) {
	for _, fb := range fbs {
		vk.DestroyFramebuffer(device, fb, nil)
	}
}
