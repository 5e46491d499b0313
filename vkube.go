// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vkube provides the Vulkan device, swapchain, and per-frame
// synchronization substrate for rendering a live 3D scene to a window.
//
// The core of the package is the acquire -> submit -> present frame
// protocol: a Swapchain owns one SwapImage per presentable image, each
// with its own semaphore pair and fence, plus one spare acquire
// semaphore that is rotated into the acquired image's slot after every
// acquire.  The Scheduler drives the protocol and owns recovery when
// the surface is resized or a present comes back suboptimal.
//
// All Vulkan calls happen on a single host thread; the only
// concurrency is between the host and the GPU, expressed through
// the semaphores and fences managed here.
package vkube

import (
	"unsafe"
)

// Debug enables verbose logging and Vulkan validation layers.
// Must be set before GPU.Config is called.
var Debug = false

// memcopy copies bytes from src into the device-mapped destination
// pointer, returning the number of bytes copied.
func memcopy(dst unsafe.Pointer, src []byte) int {
	const m = 0x7fffffff
	d := (*[m]byte)(dst)[:len(src)]
	return copy(d, src)
}
