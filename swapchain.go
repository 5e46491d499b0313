// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License.

package vkube

import (
	"log"

	vk "github.com/goki/vulkan"
)

// SwapImage is one presentable image owned by the Swapchain, with its
// dedicated synchronization objects.  ImageAcquired is signaled when
// the presentation engine hands the image over; RenderDone is signaled
// when rendering to it completes; Fence is signaled when the submitted
// command buffer for this image has retired, and is created signaled so
// the first wait does not block.
type SwapImage struct {
	Idx           int          `desc:"index of this image in the swapchain"`
	Image         vk.Image     `desc:"image handle, owned by the swapchain"`
	View          vk.ImageView `desc:"color attachment view"`
	ImageAcquired vk.Semaphore `desc:"signaled by acquire for this image"`
	RenderDone    vk.Semaphore `desc:"signaled by the render submission"`
	Fence         vk.Fence     `desc:"signaled when this image's commands retire"`
}

// Swapchain owns the swapchain handle, its per-image state, and the
// one spare acquire semaphore.  The spare is used for every acquire
// and then swapped into the acquired image's slot, so that exactly one
// semaphore is always free to acquire with, and no semaphore is ever
// waited on twice for the same signal.
type Swapchain struct {
	Drv Driver `desc:"device interface"`

	Format ImageFormat `desc:"current swapchain image format and dimensions"`

	// ColorSpace is the color space matching Format.
	ColorSpace vk.ColorSpace `desc:"color space of the swapchain images"`

	Images []*SwapImage `desc:"per-image state, one per presentable image"`

	// ImageIdx is the index of the currently acquired image.
	ImageIdx int `desc:"index of the currently acquired image"`

	// Spare is the semaphore available for the next acquire.
	Spare vk.Semaphore `desc:"spare acquire semaphore"`

	Swapchain vk.Swapchain `desc:"vulkan swapchain handle"`
}

// NewSwapchain returns a Swapchain operating through the given Driver.
func NewSwapchain(drv Driver) *Swapchain {
	return &Swapchain{Drv: drv}
}

// SwapExtent determines the swapchain extent from the surface
// capabilities and the live framebuffer pixel size.  When the surface
// reports a fixed extent it is used as-is; otherwise the framebuffer
// size is clamped to the reported min and max image extents.  A zero
// width or height returns ErrZeroExtent.
func SwapExtent(caps vk.SurfaceCapabilities, fbw, fbh int) (w, h int, err error) {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		w = int(caps.CurrentExtent.Width)
		h = int(caps.CurrentExtent.Height)
	} else {
		w = clampInt(fbw, int(caps.MinImageExtent.Width), int(caps.MaxImageExtent.Width))
		h = clampInt(fbh, int(caps.MinImageExtent.Height), int(caps.MaxImageExtent.Height))
	}
	if w == 0 || h == 0 {
		return 0, 0, ErrZeroExtent
	}
	return w, h, nil
}

func clampInt(v, mn, mx int) int {
	if v < mn {
		return mn
	}
	if mx > 0 && v > mx {
		return mx
	}
	return v
}

// SwapImageCount returns the number of images to request: one more
// than the minimum, clamped to the maximum when the surface reports
// one (a max of 0 means unlimited).
func SwapImageCount(caps vk.SurfaceCapabilities) int {
	n := int(caps.MinImageCount) + 1
	if caps.MaxImageCount > 0 && n > int(caps.MaxImageCount) {
		n = int(caps.MaxImageCount)
	}
	return n
}

// ChooseFormat selects the surface format: B8G8R8A8 sRGB with the sRGB
// nonlinear color space when available, else the first one reported.
func ChooseFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, ft := range formats {
		if ft.Format == vk.FormatB8g8r8a8Srgb && ft.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return ft
		}
	}
	return formats[0]
}

// Config builds the swapchain for the given framebuffer pixel size and
// acquires the first image.  outdated reports whether the initial
// acquire already flagged the swapchain as stale, in which case the
// caller should recreate.  Returns ErrZeroExtent, without creating any
// handle, when the surface currently has a zero dimension.
func (sc *Swapchain) Config(fbw, fbh int) (outdated bool, err error) {
	st, outdated, err := sc.build(fbw, fbh, vk.NullSwapchain)
	if err != nil {
		return false, err
	}
	sc.adopt(st)
	return outdated, nil
}

// Recreate replaces the swapchain after a resize or an outdated
// result, reusing the old handle via OldSwapchain.  Order: wait for
// the device to go idle, build the replacement, free the old per-image
// sync objects and views, destroy the old handle, adopt the new state.
func (sc *Swapchain) Recreate(fbw, fbh int) (outdated bool, err error) {
	sc.Drv.DeviceWaitIdle()
	old := sc.Swapchain
	st, outdated, err := sc.build(fbw, fbh, old)
	if err != nil {
		return false, err
	}
	sc.freeSync()
	sc.Drv.DestroySwapchain(old)
	sc.adopt(st)
	return outdated, nil
}

// swapState is a fully-built replacement swapchain, not yet adopted.
type swapState struct {
	handle vk.Swapchain
	format ImageFormat
	cspace vk.ColorSpace
	images []*SwapImage
	spare  vk.Semaphore
	imgIdx int
}

// build creates a new swapchain passing old as OldSwapchain, creates
// the per-image state, and performs the initial acquire with a scratch
// semaphore that is rotated into the acquired image's slot.  On error
// everything created here is torn down before returning.
func (sc *Swapchain) build(fbw, fbh int, old vk.Swapchain) (*swapState, bool, error) {
	caps, err := sc.Drv.SurfaceCaps()
	if err != nil {
		return nil, false, err
	}
	w, h, err := SwapExtent(caps, fbw, fbh)
	if err != nil {
		return nil, false, err
	}
	formats, err := sc.Drv.SurfaceFormats()
	if err != nil {
		return nil, false, err
	}
	format := ChooseFormat(formats)
	imgCount := SwapImageCount(caps)

	// FIFO is guaranteed to be supported, so it is never queried.
	handle, err := sc.Drv.CreateSwapchain(&vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		MinImageCount:    uint32(imgCount),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      vk.Extent2D{Width: uint32(w), Height: uint32(h)},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		OldSwapchain:     old,
	})
	if err != nil {
		return nil, false, err
	}
	st := &swapState{handle: handle}
	st.format.Set(w, h, format.Format)
	st.cspace = format.ColorSpace

	imgs, err := sc.Drv.SwapchainImages(handle)
	if err != nil {
		sc.unwind(st)
		return nil, false, err
	}
	for i, img := range imgs {
		vw, err := sc.Drv.CreateImageView(&vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Image:    img,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		})
		if err != nil {
			sc.unwind(st)
			return nil, false, err
		}
		st.images = append(st.images, &SwapImage{
			Idx:           i,
			Image:         img,
			View:          vw,
			ImageAcquired: sc.Drv.NewSemaphore(),
			RenderDone:    sc.Drv.NewSemaphore(),
			Fence:         sc.Drv.NewSignaledFence(),
		})
	}

	st.spare = sc.Drv.NewSemaphore()
	idx, res := sc.Drv.AcquireNextImage(handle, st.spare)
	outdated := false
	switch res {
	case vk.Success:
	case vk.Suboptimal:
		outdated = true
	case vk.ErrorOutOfDate:
		// no image was acquired; keep the state and let the caller
		// recreate from it.
		return st, true, nil
	default:
		sc.unwind(st)
		return nil, false, NewError(res)
	}
	im := st.images[idx]
	im.ImageAcquired, st.spare = st.spare, im.ImageAcquired
	st.imgIdx = int(idx)
	return st, outdated, nil
}

// unwind tears down a partially or fully built replacement state.
func (sc *Swapchain) unwind(st *swapState) {
	for _, im := range st.images {
		sc.Drv.DestroyImageView(im.View)
		sc.Drv.DestroySemaphore(im.ImageAcquired)
		sc.Drv.DestroySemaphore(im.RenderDone)
		sc.Drv.DestroyFence(im.Fence)
	}
	if st.spare != vk.NullSemaphore {
		sc.Drv.DestroySemaphore(st.spare)
	}
	sc.Drv.DestroySwapchain(st.handle)
}

func (sc *Swapchain) adopt(st *swapState) {
	sc.Swapchain = st.handle
	sc.Format = st.format
	sc.ColorSpace = st.cspace
	sc.Images = st.images
	sc.Spare = st.spare
	sc.ImageIdx = st.imgIdx
}

// freeSync destroys the per-image sync objects and views and the spare
// semaphore.  The device must be idle.
func (sc *Swapchain) freeSync() {
	for _, im := range sc.Images {
		sc.Drv.DestroyImageView(im.View)
		sc.Drv.DestroySemaphore(im.ImageAcquired)
		sc.Drv.DestroySemaphore(im.RenderDone)
		sc.Drv.DestroyFence(im.Fence)
	}
	sc.Images = nil
	if sc.Spare != vk.NullSemaphore {
		sc.Drv.DestroySemaphore(sc.Spare)
		sc.Spare = vk.NullSemaphore
	}
}

// Current returns the currently acquired image.
func (sc *Swapchain) Current() *SwapImage {
	return sc.Images[sc.ImageIdx]
}

// Views returns the color attachment views of all swapchain images,
// in index order, for framebuffer construction.
func (sc *Swapchain) Views() []vk.ImageView {
	views := make([]vk.ImageView, len(sc.Images))
	for i, im := range sc.Images {
		views[i] = im.View
	}
	return views
}

// Acquire acquires the next presentable image using the spare
// semaphore, then swaps the spare into the acquired image's slot.
// outdated reports out-of-date or suboptimal; on out-of-date no image
// was acquired and the spare remains unused.
func (sc *Swapchain) Acquire() (outdated bool, err error) {
	idx, res := sc.Drv.AcquireNextImage(sc.Swapchain, sc.Spare)
	switch res {
	case vk.Success:
	case vk.Suboptimal:
		outdated = true
	case vk.ErrorOutOfDate:
		return true, nil
	case vk.ErrorDeviceLost:
		log.Println("vkube: device lost during acquire")
		return true, nil
	default:
		return false, NewError(res)
	}
	im := sc.Images[idx]
	im.ImageAcquired, sc.Spare = sc.Spare, im.ImageAcquired
	sc.ImageIdx = int(idx)
	return outdated, nil
}

// SubmitRender submits the command buffer for the current image: it
// waits on ImageAcquired at the color attachment output stage, and
// signals RenderDone and this image's fence.
func (sc *Swapchain) SubmitRender(cmd vk.CommandBuffer) error {
	im := sc.Current()
	return sc.Drv.QueueSubmit(&vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{im.ImageAcquired},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{im.RenderDone},
	}, im.Fence)
}

// Present queues the current image for presentation, waiting on its
// RenderDone semaphore.  outdated reports out-of-date or suboptimal.
func (sc *Swapchain) Present() (outdated bool, err error) {
	im := sc.Current()
	res := sc.Drv.QueuePresent(&vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{im.RenderDone},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Swapchain},
		PImageIndices:      []uint32{uint32(sc.ImageIdx)},
	})
	switch res {
	case vk.Success:
		return false, nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return true, nil
	case vk.ErrorDeviceLost:
		log.Println("vkube: device lost during present")
		return true, nil
	default:
		return false, NewError(res)
	}
}

// Destroy waits for the device to go idle and frees all swapchain
// state including the handle.
func (sc *Swapchain) Destroy() {
	if sc.Swapchain == vk.NullSwapchain {
		return
	}
	sc.Drv.DeviceWaitIdle()
	sc.freeSync()
	sc.Drv.DestroySwapchain(sc.Swapchain)
	sc.Swapchain = vk.NullSwapchain
}
