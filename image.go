// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"

	vk "github.com/goki/vulkan"
)

// ImageFormat describes the size and format of an Image.
type ImageFormat struct {
	Size   image.Point `desc:"size of image"`
	Format vk.Format   `desc:"image format -- FormatB8g8r8a8Srgb is the standard default"`
}

func (im *ImageFormat) SetSize(w, h int) {
	im.Size = image.Point{X: w, Y: h}
}

func (im *ImageFormat) Set(w, h int, ft vk.Format) {
	im.SetSize(w, h)
	im.Format = ft
}

// Size32 returns size as uint32 values.
func (im *ImageFormat) Size32() (width, height uint32) {
	width = uint32(im.Size.X)
	height = uint32(im.Size.Y)
	return
}

// Image is a device-allocated vulkan image with its memory and view,
// used for the depth attachment and for textures.  Swapchain images
// are owned by the swapchain and do not go through here.
type Image struct {
	Format ImageFormat     `desc:"format and size of image"`
	Image  vk.Image        `desc:"vulkan image handle"`
	View   vk.ImageView    `desc:"vulkan image view"`
	Mem    vk.DeviceMemory `desc:"device-local memory backing the image"`
	Dev    vk.Device       `desc:"device, for view and memory teardown"`
}

// Alloc creates the image at the current Format size and binds fresh
// device-local memory to it.
func (im *Image) Alloc(gp *GPU, dev vk.Device, usage vk.ImageUsageFlagBits) error {
	im.Dev = dev
	w, h := im.Format.Size32()
	var img vk.Image
	ret := vk.CreateImage(dev, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        im.Format.Format,
		Extent:        vk.Extent3D{Width: w, Height: h, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if err := NewError(ret); err != nil {
		return err
	}
	im.Image = img

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev, img, &memReqs)
	memReqs.Deref()
	memType, _ := FindRequiredMemoryType(gp.MemoryProps,
		vk.MemoryPropertyFlagBits(memReqs.MemoryTypeBits), vk.MemoryPropertyDeviceLocalBit)
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := NewError(ret); err != nil {
		return err
	}
	im.Mem = mem
	vk.BindImageMemory(dev, img, mem, 0)
	return nil
}

// ConfigView makes a standard 2D view for the current image and format,
// with the given aspect (color or depth).
func (im *Image) ConfigView(aspect vk.ImageAspectFlagBits) error {
	var view vk.ImageView
	ret := vk.CreateImageView(im.Dev, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		ViewType: vk.ImageViewType2d,
		Format:   im.Format.Format,
		Image:    im.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if err := NewError(ret); err != nil {
		return err
	}
	im.View = view
	return nil
}

// Destroy frees the view, image, and memory.
func (im *Image) Destroy() {
	if im.View != vk.NullImageView {
		vk.DestroyImageView(im.Dev, im.View, nil)
		im.View = vk.NullImageView
	}
	if im.Image != vk.NullImage {
		vk.DestroyImage(im.Dev, im.Image, nil)
		im.Image = vk.NullImage
	}
	FreeBuffMem(im.Dev, &im.Mem)
	im.Dev = nil
}
