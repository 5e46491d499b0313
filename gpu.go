// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License.

package vkube

import (
	"log"
	"strings"

	vk "github.com/goki/vulkan"
)

// GPU represents the Vulkan instance and the selected physical device,
// with cached device properties for memory and limits lookups.
type GPU struct {
	Instance vk.Instance      `desc:"vulkan instance handle"`
	GPU      vk.PhysicalDevice `desc:"selected physical device"`

	// DeviceName is the name of the selected physical device.
	DeviceName string `desc:"name of the selected physical device"`

	// GPUProps are the core physical device properties, with Limits
	// hydrated, cached at selection time.
	GPUProps vk.PhysicalDeviceProperties `desc:"properties of the selected device"`

	// MemoryProps are the memory properties of the selected device,
	// used for memory type lookups during allocation.
	MemoryProps vk.PhysicalDeviceMemoryProperties `desc:"memory properties of the selected device"`

	// GraphicsFamily is the queue family index used for graphics work.
	GraphicsFamily uint32 `desc:"graphics queue family index"`

	// PresentFamily is the queue family index used for presentation.
	// May equal GraphicsFamily.
	PresentFamily uint32 `desc:"present queue family index"`

	InstanceExts     []string `desc:"instance extensions to enable"`
	DeviceExts       []string `desc:"device extensions to enable"`
	ValidationLayers []string `desc:"validation layers to enable, if Debug"`
}

// NewGPU returns a new GPU with the swapchain device extension required.
func NewGPU() *GPU {
	gp := &GPU{}
	gp.DeviceExts = []string{"VK_KHR_swapchain\x00"}
	PlatformDefaults(gp)
	return gp
}

// AddInstanceExt adds instance extensions, e.g. those reported as
// required by the window system.  Call before Config.
func (gp *GPU) AddInstanceExt(exts ...string) {
	gp.InstanceExts = append(gp.InstanceExts, exts...)
}

// AddDeviceExt adds device extensions required beyond swapchain support.
// Call before SelectDevice.
func (gp *GPU) AddDeviceExt(exts ...string) {
	gp.DeviceExts = append(gp.DeviceExts, exts...)
}

// Config creates the Vulkan instance under the given application name.
// If Debug is set, the Khronos validation layer is enabled when present.
func (gp *GPU) Config(name string) error {
	if Debug {
		gp.ValidationLayers = []string{"VK_LAYER_KHRONOS_validation\x00"}
		gp.checkValidationLayers()
	}
	var inst vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 1, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   SafeString(name),
			PEngineName:        "vkube\x00",
		},
		EnabledExtensionCount:   uint32(len(gp.InstanceExts)),
		PpEnabledExtensionNames: SafeStrings(gp.InstanceExts),
		EnabledLayerCount:       uint32(len(gp.ValidationLayers)),
		PpEnabledLayerNames:     SafeStrings(gp.ValidationLayers),
	}, nil, &inst)
	if err := NewError(ret); err != nil {
		return err
	}
	gp.Instance = inst
	vk.InitInstance(inst)
	return nil
}

// SelectDevice selects the first physical device suitable for rendering
// to the given surface: it must support the required device extensions,
// report at least one surface format and one present mode for the
// surface, and provide a graphics queue family and a present-capable
// queue family (which may be the same).  Returns ErrNoDevice if no
// device qualifies.  On success the device properties and memory
// properties are cached.
func (gp *GPU) SelectDevice(surf vk.Surface) error {
	var devCount uint32
	ret := vk.EnumeratePhysicalDevices(gp.Instance, &devCount, nil)
	if err := NewError(ret); err != nil {
		return err
	}
	if devCount == 0 {
		return ErrNoDevice
	}
	devs := make([]vk.PhysicalDevice, devCount)
	ret = vk.EnumeratePhysicalDevices(gp.Instance, &devCount, devs)
	if err := NewError(ret); err != nil {
		return err
	}
	for _, pd := range devs {
		gfx, prs, ok := gp.deviceSuitable(pd, surf)
		if !ok {
			continue
		}
		gp.GPU = pd
		gp.GraphicsFamily = gfx
		gp.PresentFamily = prs
		vk.GetPhysicalDeviceProperties(pd, &gp.GPUProps)
		gp.GPUProps.Deref()
		gp.GPUProps.Limits.Deref()
		gp.DeviceName = vk.ToString(gp.GPUProps.DeviceName[:])
		vk.GetPhysicalDeviceMemoryProperties(pd, &gp.MemoryProps)
		gp.MemoryProps.Deref()
		if Debug {
			log.Printf("vkube: selected device: %s  graphics family: %d  present family: %d\n",
				gp.DeviceName, gfx, prs)
		}
		return nil
	}
	return ErrNoDevice
}

// deviceSuitable reports whether the physical device can render to the
// surface, returning its graphics and present queue family indices.
func (gp *GPU) deviceSuitable(pd vk.PhysicalDevice, surf vk.Surface) (gfx, prs uint32, ok bool) {
	if !deviceExtsSupported(pd, gp.DeviceExts) {
		return 0, 0, false
	}
	var nfmt, nmode uint32
	vk.GetPhysicalDeviceSurfaceFormats(pd, surf, &nfmt, nil)
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surf, &nmode, nil)
	if nfmt == 0 || nmode == 0 {
		return 0, 0, false
	}
	var queueCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueCount, nil)
	queueProps := make([]vk.QueueFamilyProperties, queueCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueCount, queueProps)

	gfxFound := false
	prsFound := false
	for i := uint32(0); i < queueCount; i++ {
		queueProps[i].Deref()
		if !gfxFound && queueProps[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			gfx = i
			gfxFound = true
		}
		if !prsFound {
			var supports vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, i, surf, &supports)
			if supports.B() {
				prs = i
				prsFound = true
			}
		}
	}
	return gfx, prs, gfxFound && prsFound
}

// deviceExtsSupported reports whether the device provides all of the
// given extensions.
func deviceExtsSupported(pd vk.PhysicalDevice, exts []string) bool {
	var extCount uint32
	vk.EnumerateDeviceExtensionProperties(pd, "", &extCount, nil)
	extProps := make([]vk.ExtensionProperties, extCount)
	vk.EnumerateDeviceExtensionProperties(pd, "", &extCount, extProps)
	avail := make(map[string]bool, extCount)
	for i := range extProps {
		extProps[i].Deref()
		avail[vk.ToString(extProps[i].ExtensionName[:])] = true
	}
	for _, ext := range exts {
		if !avail[strings.TrimSuffix(ext, "\x00")] {
			return false
		}
	}
	return true
}

// checkValidationLayers prunes requested validation layers that are not
// installed, logging each one dropped.
func (gp *GPU) checkValidationLayers() {
	var layerCount uint32
	vk.EnumerateInstanceLayerProperties(&layerCount, nil)
	layerProps := make([]vk.LayerProperties, layerCount)
	vk.EnumerateInstanceLayerProperties(&layerCount, layerProps)
	avail := make(map[string]bool, layerCount)
	for i := range layerProps {
		layerProps[i].Deref()
		avail[vk.ToString(layerProps[i].LayerName[:])] = true
	}
	var keep []string
	for _, ly := range gp.ValidationLayers {
		if avail[strings.TrimSuffix(ly, "\x00")] {
			keep = append(keep, ly)
		} else {
			log.Printf("vkube: validation layer not available: %s\n", ly)
		}
	}
	gp.ValidationLayers = keep
}

// Destroy destroys the instance.  Call after all devices are destroyed.
func (gp *GPU) Destroy() {
	if gp.Instance != nil {
		vk.DestroyInstance(gp.Instance, nil)
		gp.Instance = nil
	}
}

// SafeString returns the string null-terminated for passing to C.
func SafeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

// SafeStrings null-terminates each string in the list for passing to C.
func SafeStrings(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = SafeString(s)
	}
	return out
}
