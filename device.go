// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License.

package vkube

import (
	vk "github.com/goki/vulkan"
)

// Device is the logical device with its graphics and present queues.
// When the graphics and present queue families alias, one queue serves
// both roles.
type Device struct {
	Device vk.Device `desc:"logical device"`

	GraphicsIndex uint32   `desc:"graphics queue family index"`
	PresentIndex  uint32   `desc:"present queue family index"`
	GraphicsQueue vk.Queue `desc:"queue for graphics submission"`
	PresentQueue  vk.Queue `desc:"queue for presentation"`
}

// Config creates the logical device from the GPU's selected physical
// device, with one queue per distinct queue family.
func (dv *Device) Config(gp *GPU) error {
	dv.GraphicsIndex = gp.GraphicsFamily
	dv.PresentIndex = gp.PresentFamily

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: dv.GraphicsIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	if dv.PresentIndex != dv.GraphicsIndex {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: dv.PresentIndex,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	var device vk.Device
	ret := vk.CreateDevice(gp.GPU, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(gp.DeviceExts)),
		PpEnabledExtensionNames: SafeStrings(gp.DeviceExts),
		EnabledLayerCount:       uint32(len(gp.ValidationLayers)),
		PpEnabledLayerNames:     SafeStrings(gp.ValidationLayers),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.True,
		}},
	}, nil, &device)
	if err := NewError(ret); err != nil {
		return err
	}
	dv.Device = device

	var queue vk.Queue
	vk.GetDeviceQueue(dv.Device, dv.GraphicsIndex, 0, &queue)
	dv.GraphicsQueue = queue
	if dv.PresentIndex != dv.GraphicsIndex {
		var pq vk.Queue
		vk.GetDeviceQueue(dv.Device, dv.PresentIndex, 0, &pq)
		dv.PresentQueue = pq
	} else {
		dv.PresentQueue = queue
	}
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (dv *Device) WaitIdle() {
	vk.DeviceWaitIdle(dv.Device)
}

func (dv *Device) Destroy() {
	if dv.Device == nil {
		return
	}
	vk.DeviceWaitIdle(dv.Device)
	vk.DestroyDevice(dv.Device, nil)
	dv.Device = nil
}
