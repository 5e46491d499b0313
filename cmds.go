// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License.

package vkube

import (
	vk "github.com/goki/vulkan"
)

// CmdPool is a command pool with per-image primary command buffers.
type CmdPool struct {
	Pool  vk.CommandPool     `desc:"pool that buffers are allocated from"`
	Buffs []vk.CommandBuffer `desc:"primary command buffers, one per swapchain image"`
}

// Config creates the pool on the graphics queue family, with the
// reset-command-buffer flag so individual buffers can be re-recorded.
func (cp *CmdPool) Config(dv *Device) {
	var cmdPool vk.CommandPool
	ret := vk.CreateCommandPool(dv.Device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: dv.GraphicsIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &cmdPool)
	IfPanic(NewError(ret))
	cp.Pool = cmdPool
}

// ConfigBuffs (re)allocates n primary command buffers from the pool,
// freeing any existing ones first.  Call whenever the swapchain image
// count changes.
func (cp *CmdPool) ConfigBuffs(dv *Device, n int) {
	cp.FreeBuffs(dv)
	cp.Buffs = make([]vk.CommandBuffer, n)
	ret := vk.AllocateCommandBuffers(dv.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        cp.Pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}, cp.Buffs)
	IfPanic(NewError(ret))
}

// FreeBuffs frees the allocated command buffers back to the pool.
func (cp *CmdPool) FreeBuffs(dv *Device) {
	if len(cp.Buffs) == 0 {
		return
	}
	vk.FreeCommandBuffers(dv.Device, cp.Pool, uint32(len(cp.Buffs)), cp.Buffs)
	cp.Buffs = nil
}

// BeginBuff resets and begins recording the command buffer at idx.
func (cp *CmdPool) BeginBuff(idx int) vk.CommandBuffer {
	cmd := cp.Buffs[idx]
	vk.ResetCommandBuffer(cmd, 0)
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	IfPanic(NewError(ret))
	return cmd
}

// EndBuff ends recording the command buffer at idx.
func (cp *CmdPool) EndBuff(idx int) {
	ret := vk.EndCommandBuffer(cp.Buffs[idx])
	IfPanic(NewError(ret))
}

// OneTime allocates and begins a transient one-time-submit command
// buffer, for staging uploads and layout transitions.
func (cp *CmdPool) OneTime(dv *Device) vk.CommandBuffer {
	var cmdBuff = make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(dv.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        cp.Pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmdBuff)
	IfPanic(NewError(ret))
	cmd := cmdBuff[0]
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	IfPanic(NewError(ret))
	return cmd
}

// SubmitWaitFree ends a one-time command buffer, submits it on the
// graphics queue, waits for the queue to go idle, and frees it.
func (cp *CmdPool) SubmitWaitFree(dv *Device, cmd vk.CommandBuffer) {
	ret := vk.EndCommandBuffer(cmd)
	IfPanic(NewError(ret))
	cmds := []vk.CommandBuffer{cmd}
	ret = vk.QueueSubmit(dv.GraphicsQueue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}}, vk.NullFence)
	IfPanic(NewError(ret))
	vk.QueueWaitIdle(dv.GraphicsQueue)
	vk.FreeCommandBuffers(dv.Device, cp.Pool, 1, cmds)
}

// Destroy frees the buffers and destroys the pool.
func (cp *CmdPool) Destroy(dv *Device) {
	if cp.Pool == nil {
		return
	}
	cp.FreeBuffs(dv)
	vk.DestroyCommandPool(dv.Device, cp.Pool, nil)
	cp.Pool = nil
}
