// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	vk "github.com/goki/vulkan"
)

// Driver is the narrow device interface that the swapchain and frame
// scheduler operate against.  The production implementation is
// SurfaceDriver; tests exercise the full acquire / submit / present
// protocol against a fake.
type Driver interface {
	// SurfaceCaps returns the surface capabilities, fully hydrated
	// including the extent fields.
	SurfaceCaps() (vk.SurfaceCapabilities, error)

	// SurfaceFormats returns the supported surface formats, hydrated.
	SurfaceFormats() ([]vk.SurfaceFormat, error)

	// CreateSwapchain creates a swapchain.  The driver owns the surface
	// and the queue family layout, and fills the Surface and image
	// sharing fields of the info before the call.
	CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error)

	// SwapchainImages returns the presentable images owned by the
	// swapchain.
	SwapchainImages(sc vk.Swapchain) ([]vk.Image, error)

	DestroySwapchain(sc vk.Swapchain)

	CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(vw vk.ImageView)

	NewSemaphore() vk.Semaphore
	DestroySemaphore(sp vk.Semaphore)

	// NewSignaledFence returns a fence created in the signaled state,
	// so the first wait on a never-submitted image does not block.
	NewSignaledFence() vk.Fence
	DestroyFence(fc vk.Fence)
	WaitFence(fc vk.Fence) error
	ResetFence(fc vk.Fence) error

	// AcquireNextImage acquires the next presentable image, signaling
	// the given semaphore.  The raw result is returned for the caller
	// to classify.
	AcquireNextImage(sc vk.Swapchain, sem vk.Semaphore) (uint32, vk.Result)

	// QueueSubmit submits to the graphics queue with the given fence.
	QueueSubmit(info *vk.SubmitInfo, fence vk.Fence) error

	// QueuePresent presents on the present queue.  The raw result is
	// returned for the caller to classify.
	QueuePresent(info *vk.PresentInfo) vk.Result

	DeviceWaitIdle()
}

// SurfaceDriver implements Driver against a real device and window
// surface.
type SurfaceDriver struct {
	GPU     *GPU
	Dev     *Device
	Surface vk.Surface
}

// NewDriver returns a Driver for the given device and surface.
func NewDriver(gp *GPU, dev *Device, surf vk.Surface) *SurfaceDriver {
	return &SurfaceDriver{GPU: gp, Dev: dev, Surface: surf}
}

func (dr *SurfaceDriver) SurfaceCaps() (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(dr.GPU.GPU, dr.Surface, &caps)
	if err := NewError(ret); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (dr *SurfaceDriver) SurfaceFormats() ([]vk.SurfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(dr.GPU.GPU, dr.Surface, &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(dr.GPU.GPU, dr.Surface, &count, formats)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

func (dr *SurfaceDriver) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	info.Surface = dr.Surface
	if dr.Dev.GraphicsIndex != dr.Dev.PresentIndex {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{dr.Dev.GraphicsIndex, dr.Dev.PresentIndex}
	} else {
		info.ImageSharingMode = vk.SharingModeExclusive
	}
	var sc vk.Swapchain
	ret := vk.CreateSwapchain(dr.Dev.Device, info, nil, &sc)
	if err := NewError(ret); err != nil {
		return vk.NullSwapchain, err
	}
	return sc, nil
}

func (dr *SurfaceDriver) SwapchainImages(sc vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	ret := vk.GetSwapchainImages(dr.Dev.Device, sc, &count, nil)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	imgs := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(dr.Dev.Device, sc, &count, imgs)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	return imgs, nil
}

func (dr *SurfaceDriver) DestroySwapchain(sc vk.Swapchain) {
	if sc != vk.NullSwapchain {
		vk.DestroySwapchain(dr.Dev.Device, sc, nil)
	}
}

func (dr *SurfaceDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var vw vk.ImageView
	ret := vk.CreateImageView(dr.Dev.Device, info, nil, &vw)
	if err := NewError(ret); err != nil {
		return vk.NullImageView, err
	}
	return vw, nil
}

func (dr *SurfaceDriver) DestroyImageView(vw vk.ImageView) {
	if vw != vk.NullImageView {
		vk.DestroyImageView(dr.Dev.Device, vw, nil)
	}
}

func (dr *SurfaceDriver) NewSemaphore() vk.Semaphore {
	var sp vk.Semaphore
	ret := vk.CreateSemaphore(dr.Dev.Device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sp)
	IfPanic(NewError(ret))
	return sp
}

func (dr *SurfaceDriver) DestroySemaphore(sp vk.Semaphore) {
	if sp != vk.NullSemaphore {
		vk.DestroySemaphore(dr.Dev.Device, sp, nil)
	}
}

func (dr *SurfaceDriver) NewSignaledFence() vk.Fence {
	var fc vk.Fence
	ret := vk.CreateFence(dr.Dev.Device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &fc)
	IfPanic(NewError(ret))
	return fc
}

func (dr *SurfaceDriver) DestroyFence(fc vk.Fence) {
	if fc != vk.NullFence {
		vk.DestroyFence(dr.Dev.Device, fc, nil)
	}
}

func (dr *SurfaceDriver) WaitFence(fc vk.Fence) error {
	ret := vk.WaitForFences(dr.Dev.Device, 1, []vk.Fence{fc}, vk.True, vk.MaxUint64)
	return NewError(ret)
}

func (dr *SurfaceDriver) ResetFence(fc vk.Fence) error {
	ret := vk.ResetFences(dr.Dev.Device, 1, []vk.Fence{fc})
	return NewError(ret)
}

func (dr *SurfaceDriver) AcquireNextImage(sc vk.Swapchain, sem vk.Semaphore) (uint32, vk.Result) {
	var idx uint32
	ret := vk.AcquireNextImage(dr.Dev.Device, sc, vk.MaxUint64, sem, vk.NullFence, &idx)
	return idx, ret
}

func (dr *SurfaceDriver) QueueSubmit(info *vk.SubmitInfo, fence vk.Fence) error {
	ret := vk.QueueSubmit(dr.Dev.GraphicsQueue, 1, []vk.SubmitInfo{*info}, fence)
	return NewError(ret)
}

func (dr *SurfaceDriver) QueuePresent(info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(dr.Dev.PresentQueue, info)
}

func (dr *SurfaceDriver) DeviceWaitIdle() {
	vk.DeviceWaitIdle(dr.Dev.Device)
}

// DestroySurface destroys the window surface itself, after the
// swapchain is gone.
func (dr *SurfaceDriver) DestroySurface() {
	if dr.Surface != vk.NullSurface {
		vk.DestroySurface(dr.GPU.Instance, dr.Surface, nil)
		dr.Surface = vk.NullSurface
	}
}
