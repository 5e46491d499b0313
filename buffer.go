// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"log"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// HostBuff is a host-visible buffer that stays persistently mapped for
// its whole lifetime.  Used for per-frame uniform and instance data.
type HostBuff struct {
	Size int             `desc:"allocated size in bytes"`
	Buff vk.Buffer       `desc:"buffer handle"`
	Mem  vk.DeviceMemory `desc:"host-visible memory"`
	Ptr  unsafe.Pointer  `desc:"persistent mapping into the memory"`
}

// Alloc creates the buffer with the given usage, allocates
// host-visible coherent memory for it, and maps the memory.
func (hb *HostBuff) Alloc(gp *GPU, dev vk.Device, size int, usage vk.BufferUsageFlagBits) error {
	hb.Buff = NewBuffer(dev, size, usage)
	mem, err := AllocBuffMem(gp, dev, hb.Buff,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return err
	}
	hb.Mem = mem
	hb.Size = size
	hb.Ptr = MapMemory(dev, hb.Mem, size)
	return nil
}

// Write copies data into the mapped memory and flushes the mapped
// range.  The memory is host-coherent, but the flush is issued anyway
// so the write ordering does not depend on the memory type chosen.
func (hb *HostBuff) Write(dev vk.Device, data []byte) {
	if hb.Ptr == nil || len(data) == 0 {
		return
	}
	n := len(data)
	if n > hb.Size {
		n = hb.Size
	}
	memcopy(hb.Ptr, data[:n])
	vk.FlushMappedMemoryRanges(dev, 1, []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: hb.Mem,
		Offset: 0,
		Size:   vk.DeviceSize(vk.WholeSize),
	}})
}

// Free unmaps and frees the memory and destroys the buffer.
func (hb *HostBuff) Free(dev vk.Device) {
	if hb.Size == 0 {
		return
	}
	vk.UnmapMemory(dev, hb.Mem)
	FreeBuffMem(dev, &hb.Mem)
	DestroyBuffer(dev, &hb.Buff)
	hb.Ptr = nil
	hb.Size = 0
}

// DevBuff is a device-local buffer filled once through a staging
// copy, used for static vertex and index data.
type DevBuff struct {
	Size int             `desc:"allocated size in bytes"`
	Buff vk.Buffer       `desc:"buffer handle"`
	Mem  vk.DeviceMemory `desc:"device-local memory"`
}

// Upload creates the device-local buffer with the given usage and
// copies data into it through a transient staging buffer.
func (db *DevBuff) Upload(gp *GPU, dev *Device, cp *CmdPool, data []byte, usage vk.BufferUsageFlagBits) error {
	db.Size = len(data)
	db.Buff = NewBuffer(dev.Device, db.Size, usage|vk.BufferUsageTransferDstBit)
	mem, err := AllocBuffMem(gp, dev.Device, db.Buff, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return err
	}
	db.Mem = mem

	var staging HostBuff
	if err := staging.Alloc(gp, dev.Device, db.Size, vk.BufferUsageTransferSrcBit); err != nil {
		return err
	}
	staging.Write(dev.Device, data)
	cmd := cp.OneTime(dev)
	vk.CmdCopyBuffer(cmd, staging.Buff, db.Buff, 1, []vk.BufferCopy{{
		Size: vk.DeviceSize(db.Size),
	}})
	cp.SubmitWaitFree(dev, cmd)
	staging.Free(dev.Device)
	return nil
}

// Free frees the memory and destroys the buffer.
func (db *DevBuff) Free(dev vk.Device) {
	if db.Size == 0 {
		return
	}
	FreeBuffMem(dev, &db.Mem)
	DestroyBuffer(dev, &db.Buff)
	db.Size = 0
}

/////////////////////////////////////////////////////////////////////
// Basic memory functions

// NewBuffer makes a buffer of given size, usage.
func NewBuffer(dev vk.Device, size int, usage vk.BufferUsageFlagBits) vk.Buffer {
	if size == 0 {
		return vk.NullBuffer
	}
	var buffer vk.Buffer
	ret := vk.CreateBuffer(dev, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Usage:       vk.BufferUsageFlags(usage),
		Size:        vk.DeviceSize(size),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	IfPanic(NewError(ret))
	return buffer
}

// AllocBuffMem allocates memory for given buffer, with given properties.
func AllocBuffMem(gp *GPU, dev vk.Device, buffer vk.Buffer, props vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &memReqs)
	memReqs.Deref()

	memType, ok := FindRequiredMemoryType(gp.MemoryProps,
		vk.MemoryPropertyFlagBits(memReqs.MemoryTypeBits), props)
	if !ok {
		log.Println("vkube warning: failed to find required memory type")
	}

	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := NewError(ret); err != nil {
		return vk.NullDeviceMemory, err
	}
	vk.BindBufferMemory(dev, buffer, memory, 0)
	return memory, nil
}

// MapMemory maps the buffer memory, returning a pointer into start of
// buffer memory.
func MapMemory(dev vk.Device, mem vk.DeviceMemory, size int) unsafe.Pointer {
	var buffPtr unsafe.Pointer
	ret := vk.MapMemory(dev, mem, 0, vk.DeviceSize(size), 0, &buffPtr)
	if IsError(ret) {
		log.Printf("vkube MapMemory warning: failed to map device memory for data (len=%d)", size)
		return nil
	}
	return buffPtr
}

// FreeBuffMem frees given device memory to nil.
func FreeBuffMem(dev vk.Device, memory *vk.DeviceMemory) {
	if *memory == vk.NullDeviceMemory {
		return
	}
	vk.FreeMemory(dev, *memory, nil)
	*memory = vk.NullDeviceMemory
}

// DestroyBuffer destroys given buffer and nils the pointer.
func DestroyBuffer(dev vk.Device, buff *vk.Buffer) {
	if *buff == vk.NullBuffer {
		return
	}
	vk.DestroyBuffer(dev, *buff, nil)
	*buff = vk.NullBuffer
}

// FindRequiredMemoryType finds a memory type in the device's memory
// properties matching the type bits and the required property flags.
func FindRequiredMemoryType(props vk.PhysicalDeviceMemoryProperties,
	typeBits, required vk.MemoryPropertyFlagBits) (uint32, bool) {

	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(vk.MemoryPropertyFlagBits(1)<<i) != 0 {
			props.MemoryTypes[i].Deref()
			flags := props.MemoryTypes[i].PropertyFlags
			if flags&vk.MemoryPropertyFlags(required) == vk.MemoryPropertyFlags(required) {
				return i, true
			}
		}
	}
	return 0, false
}

// MemSizeAlign returns the size aligned according to align byte
// increments, e.g. for uniform buffer offset alignment.
func MemSizeAlign(size, align int) int {
	if size%align == 0 {
		return size
	}
	nb := size / align
	return (nb + 1) * align
}
