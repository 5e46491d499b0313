// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"

	vk "github.com/goki/vulkan"
)

// DepthImage is the depth attachment backing the render pass, sized to
// the swapchain extent and rebuilt on every swapchain recreation.
type DepthImage struct {
	Image
}

// FindDepthFormat returns a depth format supported for optimal-tiling
// depth attachments: D32 float preferred, D24 with 8-bit stencil as
// the fallback.
func FindDepthFormat(gp *GPU) (vk.Format, error) {
	candidates := []vk.Format{vk.FormatD32Sfloat, vk.FormatD24UnormS8Uint}
	for _, ft := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(gp.GPU, ft, &props)
		props.Deref()
		if props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			return ft, nil
		}
	}
	return vk.FormatUndefined, ErrNoDevice
}

// Config allocates the depth image and view at the given size,
// destroying any existing one first.
func (dp *DepthImage) Config(gp *GPU, dev vk.Device, ft vk.Format, size image.Point) error {
	dp.Destroy()
	dp.Format.Size = size
	dp.Format.Format = ft
	if err := dp.Alloc(gp, dev, vk.ImageUsageDepthStencilAttachmentBit); err != nil {
		return err
	}
	return dp.ConfigView(vk.ImageAspectDepthBit)
}
