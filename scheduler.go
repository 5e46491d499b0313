// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"log"

	vk "github.com/goki/vulkan"
)

// States are the frame scheduler states.
type States int32

const (
	// Ready means the swapchain is valid and frames are being rendered.
	Ready States = iota

	// WaitingForSurface means the framebuffer has a zero dimension
	// (e.g. minimized window) and rendering is paused until it is
	// usable again.
	WaitingForSurface

	// Recreating means the swapchain and its dependent resources are
	// being rebuilt after a resize or an outdated result.
	Recreating

	StatesN
)

//go:generate stringer -type=States

// Window is the minimal window access the scheduler needs: the live
// framebuffer pixel size, and a bounded wait for window events while
// the surface is unusable.
type Window interface {
	FramebufferSize() (w, h int)
	WaitEvents(timeout float64)
}

// Scheduler drives the per-frame protocol over a Swapchain:
// wait and reset the current image's fence, write its frame resources,
// record and submit its command buffer, present, then acquire the next
// image.  It owns recovery: an outdated acquire or present, or a
// resize notification, moves it through Recreating (and
// WaitingForSurface while the framebuffer has a zero dimension) and
// back to Ready.
type Scheduler struct {
	Swap *Swapchain `desc:"swapchain being scheduled"`

	Win Window `desc:"window, for framebuffer size and event waits"`

	State States `desc:"current scheduler state"`

	// FrameCount is the total number of frames presented.
	FrameCount uint64 `desc:"total frames presented"`

	// WriteFrame updates per-frame resources (uniforms, instances)
	// for the given image index, called after the fence wait+reset.
	WriteFrame func(idx int)

	// Record records the command buffer for the given image index.
	Record func(idx int) error

	// Rebuild recreates swapchain-dependent resources (depth image,
	// framebuffers, command buffers) after a swapchain recreation.
	Rebuild func() error

	// Cmds are the per-image primary command buffers, owned by the
	// caller's command pool, indexed like Swap.Images.
	Cmds []vk.CommandBuffer

	resized bool
}

// NewScheduler returns a Scheduler for the given swapchain and window.
func NewScheduler(sw *Swapchain, win Window) *Scheduler {
	return &Scheduler{Swap: sw, Win: win}
}

// SetResized flags that the framebuffer size changed.  Call from the
// window resize callback; the flag is consumed by the next RenderFrame.
func (fs *Scheduler) SetResized() {
	fs.resized = true
}

// RenderFrame runs one iteration of the frame protocol.  A pending
// resize flag is consumed first, exactly once, and triggers recreation
// before any rendering.
func (fs *Scheduler) RenderFrame() error {
	if fs.resized {
		fs.resized = false
		return fs.recreate()
	}
	drv := fs.Swap.Drv
	im := fs.Swap.Current()
	if err := drv.WaitFence(im.Fence); err != nil {
		return err
	}
	if err := drv.ResetFence(im.Fence); err != nil {
		return err
	}
	idx := fs.Swap.ImageIdx
	if fs.WriteFrame != nil {
		fs.WriteFrame(idx)
	}
	if fs.Record != nil {
		if err := fs.Record(idx); err != nil {
			return err
		}
	}
	if err := fs.Swap.SubmitRender(fs.Cmds[idx]); err != nil {
		return err
	}
	outdated, err := fs.Swap.Present()
	if err != nil {
		return err
	}
	fs.FrameCount++
	acqOutdated, err := fs.Swap.Acquire()
	if err != nil {
		return err
	}
	if outdated || acqOutdated {
		return fs.recreate()
	}
	return nil
}

// recreate rebuilds the swapchain and dependent resources, waiting out
// a zero-size framebuffer first.  It loops while the rebuilt swapchain
// itself comes back outdated, e.g. when resizes land mid-recreation.
func (fs *Scheduler) recreate() error {
	fs.State = Recreating
	for {
		w, h := fs.Win.FramebufferSize()
		for w == 0 || h == 0 {
			fs.State = WaitingForSurface
			fs.Win.WaitEvents(0.1)
			w, h = fs.Win.FramebufferSize()
		}
		fs.State = Recreating
		outdated, err := fs.Swap.Recreate(w, h)
		if err != nil {
			return err
		}
		if !outdated {
			break
		}
		if Debug {
			log.Println("vkube: swapchain outdated immediately after recreation, retrying")
		}
	}
	if fs.Rebuild != nil {
		if err := fs.Rebuild(); err != nil {
			return err
		}
	}
	fs.State = Ready
	return nil
}

// Shutdown drains all in-flight work before teardown.
func (fs *Scheduler) Shutdown() {
	fs.Swap.Drv.DeviceWaitIdle()
}
