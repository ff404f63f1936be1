package vulkan

import (
	"errors"

	vk "github.com/goki/vulkan"
)

// image is a device image with its own allocation and a single view.
type image struct {
	handle vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	width  uint32
	height uint32
}

func (d *Device) createImage(width, height uint32, format vk.Format, usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags) (*image, error) {
	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	img := &image{width: width, height: height}
	if err := check("vkCreateImage", vk.CreateImage(d.logical, &info, nil, &img.handle)); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.logical, img.handle, &reqs)
	reqs.Deref()
	index := findMemoryIndex(d.physical.memory, reqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if index < 0 {
		img.destroy(d.logical)
		return nil, errors.New("no memory type suits the image")
	}
	alloc := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: uint32(index),
	}
	if err := check("vkAllocateMemory", vk.AllocateMemory(d.logical, &alloc, nil, &img.memory)); err != nil {
		img.destroy(d.logical)
		return nil, err
	}
	if err := check("vkBindImageMemory", vk.BindImageMemory(d.logical, img.handle, img.memory, 0)); err != nil {
		img.destroy(d.logical)
		return nil, err
	}

	view, err := createImageView(d.logical, img.handle, format, aspect)
	if err != nil {
		img.destroy(d.logical)
		return nil, err
	}
	img.view = view
	return img, nil
}

func createImageView(device vk.Device, handle vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := check("vkCreateImageView", vk.CreateImageView(device, &info, nil, &view)); err != nil {
		return nil, err
	}
	return view, nil
}

func (img *image) destroy(device vk.Device) {
	if img.view != nil {
		vk.DestroyImageView(device, img.view, nil)
		img.view = nil
	}
	if img.memory != nil {
		vk.FreeMemory(device, img.memory, nil)
		img.memory = nil
	}
	if img.handle != nil {
		vk.DestroyImage(device, img.handle, nil)
		img.handle = nil
	}
}
