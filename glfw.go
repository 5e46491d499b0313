// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
)

// note: this file contains the glfw dependencies, for desktop
// platform builds.

// Init initializes the vulkan system for display use, using glfw.
// Calls glfw.Init, sets the vulkan instance proc addr, and calls
// vk.Init.  IMPORTANT: must be called on the main initial thread!
func Init() error {
	if err := glfw.Init(); err != nil {
		return err
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	return vk.Init()
}

// Terminate shuts down the vulkan system.  Call as the last thing
// before quitting.  IMPORTANT: must be called on the main initial
// thread!
func Terminate() {
	glfw.Terminate()
}

// GlfwWindow adapts a glfw window to the scheduler's Window interface.
type GlfwWindow struct {
	*glfw.Window
}

func (w GlfwWindow) FramebufferSize() (int, int) {
	return w.Window.GetFramebufferSize()
}

func (w GlfwWindow) WaitEvents(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}
