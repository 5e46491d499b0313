// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"

	vk "github.com/goki/vulkan"
)

// Render is the render pass with color and depth attachments, the
// depth image, and the per-swap-image framebuffers.  The framebuffers
// and depth image are rebuilt whenever the swapchain is recreated.
type Render struct {
	Dev *Device `desc:"device the pass lives on"`

	Pass vk.RenderPass `desc:"render pass handle"`

	Format ImageFormat `desc:"color attachment format, from the swapchain"`

	DepthFormat vk.Format `desc:"depth attachment format"`

	Depth DepthImage `desc:"depth attachment, sized to the swapchain extent"`

	Framebuffers []vk.Framebuffer `desc:"one framebuffer per swapchain image"`

	ClearColor [4]float32 `desc:"color the color attachment is cleared to"`

	ClearDepth float32 `desc:"depth the depth attachment is cleared to"`
}

// Config creates the render pass for the given color format.  The
// color attachment ends in present-src layout; the depth attachment is
// cleared each pass and not preserved.
func (rd *Render) Config(gp *GPU, dev *Device, colorFormat vk.Format) error {
	rd.Dev = dev
	rd.Format.Format = colorFormat
	rd.ClearDepth = 1
	depthFormat, err := FindDepthFormat(gp)
	if err != nil {
		return err
	}
	rd.DepthFormat = depthFormat

	attachments := []vk.AttachmentDescription{{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}, {
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	var pass vk.RenderPass
	ret := vk.CreateRenderPass(dev.Device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:       vk.PipelineBindPointGraphics,
			ColorAttachmentCount:    1,
			PColorAttachments:       []vk.AttachmentReference{colorRef},
			PDepthStencilAttachment: &depthRef,
		}},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass: vk.SubpassExternal,
			DstSubpass: 0,
			SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
				vk.PipelineStageEarlyFragmentTestsBit),
			SrcAccessMask: 0,
			DstStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
				vk.PipelineStageEarlyFragmentTestsBit),
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit |
				vk.AccessDepthStencilAttachmentWriteBit),
		}},
	}, nil, &pass)
	if err := NewError(ret); err != nil {
		return err
	}
	rd.Pass = pass
	return nil
}

// SetClearColor sets the color attachment clear color.
func (rd *Render) SetClearColor(r, g, b, a float32) {
	rd.ClearColor = [4]float32{r, g, b, a}
}

// ConfigFrames (re)builds the depth image and the per-image
// framebuffers for the given swapchain views and extent.
func (rd *Render) ConfigFrames(gp *GPU, views []vk.ImageView, size image.Point) error {
	rd.FreeFrames()
	rd.Format.Size = size
	if err := rd.Depth.Config(gp, rd.Dev.Device, rd.DepthFormat, size); err != nil {
		return err
	}
	w, h := rd.Format.Size32()
	for _, vw := range views {
		ivs := []vk.ImageView{vw, rd.Depth.View}
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(rd.Dev.Device, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      rd.Pass,
			AttachmentCount: uint32(len(ivs)),
			PAttachments:    ivs,
			Width:           w,
			Height:          h,
			Layers:          1,
		}, nil, &fb)
		if err := NewError(ret); err != nil {
			return err
		}
		rd.Framebuffers = append(rd.Framebuffers, fb)
	}
	return nil
}

// FreeFrames destroys the framebuffers and depth image.  The device
// must be idle.
func (rd *Render) FreeFrames() {
	for _, fb := range rd.Framebuffers {
		vk.DestroyFramebuffer(rd.Dev.Device, fb, nil)
	}
	rd.Framebuffers = nil
	rd.Depth.Destroy()
}

// Begin starts the render pass on the framebuffer at idx, clearing
// both attachments, and sets the dynamic viewport and scissor to the
// full extent.
func (rd *Render) Begin(cmd vk.CommandBuffer, idx int) {
	w, h := rd.Format.Size32()
	clears := make([]vk.ClearValue, 2)
	clears[0].SetColor(rd.ClearColor[:])
	clears[1].SetDepthStencil(rd.ClearDepth, 0)
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rd.Pass,
		Framebuffer: rd.Framebuffers[idx],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: w, Height: h},
		},
		ClearValueCount: 2,
		PClearValues:    clears,
	}, vk.SubpassContentsInline)

	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		X: 0, Y: 0,
		Width:    float32(w),
		Height:   float32(h),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: w, Height: h},
	}})
}

// End ends the render pass.
func (rd *Render) End(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

// Destroy frees the framebuffers, depth image, and render pass.
func (rd *Render) Destroy() {
	rd.FreeFrames()
	if rd.Pass != vk.NullRenderPass {
		vk.DestroyRenderPass(rd.Dev.Device, rd.Pass, nil)
		rd.Pass = vk.NullRenderPass
	}
}
