// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"
	"image/color"
	"image/draw"

	vk "github.com/goki/vulkan"
)

// Texture is a sampled device image with its sampler.  One texture is
// shared across all per-frame descriptor sets.
type Texture struct {
	Image
	Sampler vk.Sampler `desc:"sampler for the image"`
}

// NewCheckerImage generates a checkerboard image of sz x sz pixels
// with square tiles of the given size, alternating the two colors.
func NewCheckerImage(sz, tile int, c1, c2 color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, sz, sz))
	for y := 0; y < sz; y++ {
		for x := 0; x < sz; x++ {
			if (x/tile+y/tile)%2 == 0 {
				img.SetRGBA(x, y, c1)
			} else {
				img.SetRGBA(x, y, c2)
			}
		}
	}
	return img
}

// ConfigImage uploads the given image through a staging buffer, with
// layout transitions around the copy, and creates the view and
// sampler.  The command pool is used for a transient one-time submit.
func (tx *Texture) ConfigImage(gp *GPU, dev *Device, cp *CmdPool, src image.Image) error {
	rgba, ok := src.(*image.RGBA)
	if !ok {
		b := src.Bounds()
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, src, b.Min, draw.Src)
	}
	sz := rgba.Bounds().Size()
	tx.Format.Set(sz.X, sz.Y, vk.FormatR8g8b8a8Srgb)
	if err := tx.Alloc(gp, dev.Device, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit); err != nil {
		return err
	}

	var staging HostBuff
	if err := staging.Alloc(gp, dev.Device, len(rgba.Pix), vk.BufferUsageTransferSrcBit); err != nil {
		return err
	}
	staging.Write(dev.Device, rgba.Pix)

	cmd := cp.OneTime(dev)
	tx.transition(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		vk.PipelineStageTopOfPipeBit, vk.PipelineStageTransferBit,
		0, vk.AccessFlags(vk.AccessTransferWriteBit))
	w, h := tx.Format.Size32()
	vk.CmdCopyBufferToImage(cmd, staging.Buff, tx.Image.Image,
		vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: w, Height: h, Depth: 1},
		}})
	tx.transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.PipelineStageTransferBit, vk.PipelineStageFragmentShaderBit,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessShaderReadBit))
	cp.SubmitWaitFree(dev, cmd)
	staging.Free(dev.Device)

	if err := tx.ConfigView(vk.ImageAspectColorBit); err != nil {
		return err
	}
	return tx.ConfigSampler(gp, dev.Device)
}

// transition records a full-image layout transition barrier.
func (tx *Texture) transition(cmd vk.CommandBuffer, from, to vk.ImageLayout,
	srcStage, dstStage vk.PipelineStageFlagBits, srcAccess, dstAccess vk.AccessFlags) {

	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(srcStage), vk.PipelineStageFlags(dstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			OldLayout:           from,
			NewLayout:           to,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			Image:               tx.Image.Image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}})
}

// ConfigSampler creates the linear-filtering, repeating sampler with
// anisotropy at the device's maximum.
func (tx *Texture) ConfigSampler(gp *GPU, dev vk.Device) error {
	var samp vk.Sampler
	ret := vk.CreateSampler(dev, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           gp.GPUProps.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}, nil, &samp)
	if err := NewError(ret); err != nil {
		return err
	}
	tx.Sampler = samp
	return nil
}

// Destroy frees the sampler, view, image, and memory.
func (tx *Texture) Destroy() {
	if tx.Sampler != vk.NullSampler {
		vk.DestroySampler(tx.Dev, tx.Sampler, nil)
		tx.Sampler = vk.NullSampler
	}
	tx.Image.Destroy()
}
