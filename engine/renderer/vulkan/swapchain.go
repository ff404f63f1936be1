package vulkan

import (
	"errors"
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

type swapchainSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func querySwapchainSupport(pd vk.PhysicalDevice, surface vk.Surface) (*swapchainSupport, error) {
	s := &swapchainSupport{}
	if err := check("vkGetPhysicalDeviceSurfaceCapabilities", vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &s.capabilities)); err != nil {
		return nil, err
	}
	s.capabilities.Deref()
	s.capabilities.CurrentExtent.Deref()
	s.capabilities.MinImageExtent.Deref()
	s.capabilities.MaxImageExtent.Deref()

	var count uint32
	if err := check("vkGetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, nil)); err != nil {
		return nil, err
	}
	if count > 0 {
		s.formats = make([]vk.SurfaceFormat, count)
		if err := check("vkGetPhysicalDeviceSurfaceFormats", vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &count, s.formats)); err != nil {
			return nil, err
		}
		for i := range s.formats {
			s.formats[i].Deref()
		}
	}

	count = 0
	if err := check("vkGetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, nil)); err != nil {
		return nil, err
	}
	if count > 0 {
		s.presentModes = make([]vk.PresentMode, count)
		if err := check("vkGetPhysicalDeviceSurfacePresentModes", vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &count, s.presentModes)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// chooseSurfaceFormat prefers 8-bit BGRA in the sRGB colour space.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode honours VSync with FIFO, the one mode every driver has.
// Without VSync it takes immediate, then mailbox.
func choosePresentMode(vsync bool, modes []vk.PresentMode) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, want := range []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox} {
		for _, m := range modes {
			if m == want {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseImageCount clamps the requested backbuffer count to the surface
// limits. A maximum of zero means unbounded.
func chooseImageCount(requested uint32, caps vk.SurfaceCapabilities) uint32 {
	if requested < renderer.MinBackbufferCount {
		requested = renderer.MinBackbufferCount
	}
	return clamp(requested, caps.MinImageCount, caps.MaxImageCount)
}

// chooseExtent uses the surface's current extent when the window system
// fixes it, otherwise the requested size clamped to the surface limits.
func chooseExtent(width, height uint32, caps vk.SurfaceCapabilities) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

type swapchain struct {
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D
	images      []vk.Image
	views       []vk.ImageView
	depth       *image
}

func (d *Device) createSwapchain(surface vk.Surface, width, height uint32, settings renderer.ContextSettings, old vk.Swapchain) (*swapchain, error) {
	support, err := querySwapchainSupport(d.physical.handle, surface)
	if err != nil {
		return nil, err
	}
	if len(support.formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	caps := support.capabilities

	sc := &swapchain{
		format:      chooseSurfaceFormat(support.formats),
		presentMode: choosePresentMode(settings.VSync, support.presentModes),
		extent:      chooseExtent(width, height, caps),
	}
	if sc.extent.Width == 0 || sc.extent.Height == 0 {
		return nil, fmt.Errorf("swapchain extent %dx%d is empty", sc.extent.Width, sc.extent.Height)
	}
	imageCount := chooseImageCount(settings.BackbufferCount, caps)

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      sc.format.Format,
		ImageColorSpace:  sc.format.ColorSpace,
		ImageExtent:      sc.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      sc.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	q := d.physical.queues
	if q.graphics != q.present {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{uint32(q.graphics), uint32(q.present)}
	} else {
		info.ImageSharingMode = vk.SharingModeExclusive
	}

	if err := check("vkCreateSwapchain", vk.CreateSwapchain(d.logical, &info, nil, &sc.handle)); err != nil {
		return nil, err
	}

	var count uint32
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(d.logical, sc.handle, &count, nil)); err != nil {
		sc.destroy(d.logical)
		return nil, err
	}
	sc.images = make([]vk.Image, count)
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(d.logical, sc.handle, &count, sc.images)); err != nil {
		sc.destroy(d.logical)
		return nil, err
	}
	for _, img := range sc.images {
		view, err := createImageView(d.logical, img, sc.format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			sc.destroy(d.logical)
			return nil, err
		}
		sc.views = append(sc.views, view)
	}

	sc.depth, err = d.createImage(sc.extent.Width, sc.extent.Height, d.depthFormat,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		sc.destroy(d.logical)
		return nil, fmt.Errorf("create depth buffer: %w", err)
	}

	core.LogInfo("swapchain created: %dx%d, %d images, present mode %d", sc.extent.Width, sc.extent.Height, count, sc.presentMode)
	return sc, nil
}

// destroy releases the views and depth buffer, then the swapchain, which
// owns its images.
func (sc *swapchain) destroy(device vk.Device) {
	if sc.depth != nil {
		sc.depth.destroy(device)
		sc.depth = nil
	}
	for _, v := range sc.views {
		vk.DestroyImageView(device, v, nil)
	}
	sc.views = nil
	sc.images = nil
	if sc.handle != nil {
		vk.DestroySwapchain(device, sc.handle, nil)
		sc.handle = nil
	}
}
