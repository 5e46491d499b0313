// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// fakeSubmit records one queue submission.
type fakeSubmit struct {
	Wait   vk.Semaphore
	Signal vk.Semaphore
	Fence  vk.Fence
	Cmd    vk.CommandBuffer
}

// fakePresent records one presentation.
type fakePresent struct {
	Wait   vk.Semaphore
	ImgIdx uint32
}

// fakeDriver implements Driver entirely in memory, fabricating unique
// handle values, so the acquire / submit / present protocol and the
// recreation paths can run without a GPU.  It keeps
// live-handle maps for leak checking, a signaled-state map so waiting
// on a fence nothing will signal is caught immediately, and scripted
// result queues for acquire and present.
type fakeDriver struct {
	caps    vk.SurfaceCapabilities
	formats []vk.SurfaceFormat

	nextHandle int

	liveSwaps  map[vk.Swapchain][]vk.Image
	liveViews  map[vk.ImageView]bool
	liveSems   map[vk.Semaphore]bool
	liveFences map[vk.Fence]bool
	signaled   map[vk.Fence]bool

	// acquireScript and presentScript are consumed front-first; empty
	// means vk.Success.
	acquireScript []vk.Result
	presentScript []vk.Result

	nextImage uint32

	// failViewAfter makes CreateImageView fail once this many views
	// have been created; 0 disables.
	failViewAfter int
	viewsMade     int

	lastExtent vk.Extent2D
	lastOld    vk.Swapchain

	submits  []fakeSubmit
	presents []fakePresent
	acquires []vk.Semaphore

	events []string
	errs   []string
}

func fakeCaps(minImg, maxImg, w, h uint32) vk.SurfaceCapabilities {
	return vk.SurfaceCapabilities{
		MinImageCount:  minImg,
		MaxImageCount:  maxImg,
		CurrentExtent:  vk.Extent2D{Width: w, Height: h},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
}

func newFakeDriver(caps vk.SurfaceCapabilities) *fakeDriver {
	return &fakeDriver{
		caps: caps,
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		liveSwaps:  map[vk.Swapchain][]vk.Image{},
		liveViews:  map[vk.ImageView]bool{},
		liveSems:   map[vk.Semaphore]bool{},
		liveFences: map[vk.Fence]bool{},
		signaled:   map[vk.Fence]bool{},
	}
}

// ptr fabricates a unique non-nil handle value.
func (fd *fakeDriver) ptr() unsafe.Pointer {
	fd.nextHandle++
	return unsafe.Add(unsafe.Pointer(nil), fd.nextHandle)
}

func (fd *fakeDriver) log(ev string, args ...any) {
	fd.events = append(fd.events, fmt.Sprintf(ev, args...))
}

func (fd *fakeDriver) fail(ev string, args ...any) {
	fd.errs = append(fd.errs, fmt.Sprintf(ev, args...))
}

// live returns the total number of handles not yet destroyed.
func (fd *fakeDriver) live() int {
	return len(fd.liveSwaps) + len(fd.liveViews) + len(fd.liveSems) + len(fd.liveFences)
}

func (fd *fakeDriver) SurfaceCaps() (vk.SurfaceCapabilities, error) {
	return fd.caps, nil
}

func (fd *fakeDriver) SurfaceFormats() ([]vk.SurfaceFormat, error) {
	return fd.formats, nil
}

func (fd *fakeDriver) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	fd.lastExtent = info.ImageExtent
	fd.lastOld = info.OldSwapchain
	sc := vk.Swapchain(fd.ptr())
	imgs := make([]vk.Image, info.MinImageCount)
	for i := range imgs {
		imgs[i] = vk.Image(fd.ptr())
	}
	fd.liveSwaps[sc] = imgs
	fd.nextImage = 0
	fd.log("create-swapchain %dx%d", info.ImageExtent.Width, info.ImageExtent.Height)
	return sc, nil
}

func (fd *fakeDriver) SwapchainImages(sc vk.Swapchain) ([]vk.Image, error) {
	imgs, ok := fd.liveSwaps[sc]
	if !ok {
		fd.fail("images of unknown swapchain")
	}
	return imgs, nil
}

func (fd *fakeDriver) DestroySwapchain(sc vk.Swapchain) {
	if sc == vk.NullSwapchain {
		return
	}
	if _, ok := fd.liveSwaps[sc]; !ok {
		fd.fail("destroy of unknown swapchain")
		return
	}
	delete(fd.liveSwaps, sc)
	fd.log("destroy-swapchain")
}

func (fd *fakeDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	fd.viewsMade++
	if fd.failViewAfter > 0 && fd.viewsMade > fd.failViewAfter {
		return vk.NullImageView, NewError(vk.ErrorOutOfDeviceMemory)
	}
	vw := vk.ImageView(fd.ptr())
	fd.liveViews[vw] = true
	return vw, nil
}

func (fd *fakeDriver) DestroyImageView(vw vk.ImageView) {
	if vw == vk.NullImageView {
		return
	}
	if !fd.liveViews[vw] {
		fd.fail("destroy of unknown image view")
		return
	}
	delete(fd.liveViews, vw)
}

func (fd *fakeDriver) NewSemaphore() vk.Semaphore {
	sp := vk.Semaphore(fd.ptr())
	fd.liveSems[sp] = true
	return sp
}

func (fd *fakeDriver) DestroySemaphore(sp vk.Semaphore) {
	if sp == vk.NullSemaphore {
		return
	}
	if !fd.liveSems[sp] {
		fd.fail("destroy of unknown semaphore")
		return
	}
	delete(fd.liveSems, sp)
}

func (fd *fakeDriver) NewSignaledFence() vk.Fence {
	fc := vk.Fence(fd.ptr())
	fd.liveFences[fc] = true
	fd.signaled[fc] = true
	return fc
}

func (fd *fakeDriver) DestroyFence(fc vk.Fence) {
	if fc == vk.NullFence {
		return
	}
	if !fd.liveFences[fc] {
		fd.fail("destroy of unknown fence")
		return
	}
	delete(fd.liveFences, fc)
	delete(fd.signaled, fc)
}

func (fd *fakeDriver) WaitFence(fc vk.Fence) error {
	fd.log("wait-fence")
	if !fd.signaled[fc] {
		// nothing in a fake can signal it later, so this is a deadlock
		fd.fail("wait on unsignaled fence")
	}
	return nil
}

func (fd *fakeDriver) ResetFence(fc vk.Fence) error {
	fd.log("reset-fence")
	fd.signaled[fc] = false
	return nil
}

func (fd *fakeDriver) AcquireNextImage(sc vk.Swapchain, sem vk.Semaphore) (uint32, vk.Result) {
	fd.log("acquire")
	res := vk.Success
	if len(fd.acquireScript) > 0 {
		res = fd.acquireScript[0]
		fd.acquireScript = fd.acquireScript[1:]
	}
	if res == vk.ErrorOutOfDate || res == vk.ErrorDeviceLost {
		return 0, res
	}
	if !fd.liveSems[sem] {
		fd.fail("acquire with unknown semaphore")
	}
	fd.acquires = append(fd.acquires, sem)
	imgs := fd.liveSwaps[sc]
	idx := fd.nextImage
	fd.nextImage = (fd.nextImage + 1) % uint32(len(imgs))
	return idx, res
}

func (fd *fakeDriver) QueueSubmit(info *vk.SubmitInfo, fence vk.Fence) error {
	fd.log("submit")
	fd.submits = append(fd.submits, fakeSubmit{
		Wait:   info.PWaitSemaphores[0],
		Signal: info.PSignalSemaphores[0],
		Fence:  fence,
		Cmd:    info.PCommandBuffers[0],
	})
	fd.signaled[fence] = true
	return nil
}

func (fd *fakeDriver) QueuePresent(info *vk.PresentInfo) vk.Result {
	fd.log("present")
	fd.presents = append(fd.presents, fakePresent{
		Wait:   info.PWaitSemaphores[0],
		ImgIdx: info.PImageIndices[0],
	})
	if len(fd.presentScript) > 0 {
		res := fd.presentScript[0]
		fd.presentScript = fd.presentScript[1:]
		return res
	}
	return vk.Success
}

func (fd *fakeDriver) DeviceWaitIdle() {
	fd.log("wait-idle")
}

// fakeWindow implements Window with a scripted sequence of framebuffer
// sizes; the last size repeats once the script runs out.
type fakeWindow struct {
	sizes [][2]int
	waits int
}

func (fw *fakeWindow) FramebufferSize() (int, int) {
	sz := fw.sizes[0]
	if len(fw.sizes) > 1 {
		fw.sizes = fw.sizes[1:]
	}
	return sz[0], sz[1]
}

func (fw *fakeWindow) WaitEvents(timeout float64) {
	fw.waits++
}
