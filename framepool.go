// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	vk "github.com/goki/vulkan"
)

// FrameResources is the per-swap-image resource set: a persistently
// mapped uniform buffer for camera and lighting constants, a
// persistently mapped instance buffer for per-object transforms and
// tints, and the descriptor set binding both plus the shared texture.
type FrameResources struct {
	Idx      int             `desc:"swapchain image index these belong to"`
	Uniform  HostBuff        `desc:"camera + lighting constants"`
	Instance HostBuff        `desc:"per-object model matrices and tints"`
	DescSet  vk.DescriptorSet `desc:"descriptor set for this frame"`
}

// FramePool owns one FrameResources per swapchain image, the
// descriptor layout and pool they are allocated from, and the shared
// texture binding.  It is torn down and rebuilt in lockstep with the
// swapchain image count.
type FramePool struct {
	GPU *GPU    `desc:"gpu, for memory properties"`
	Dev *Device `desc:"device the resources live on"`

	// UniformSize is the byte size of each frame's uniform buffer.
	UniformSize int `desc:"byte size of each uniform buffer"`

	// InstanceSize is the byte size of each frame's instance buffer.
	InstanceSize int `desc:"byte size of each instance buffer"`

	Frames []*FrameResources `desc:"one resource set per swapchain image"`

	DescLayout vk.DescriptorSetLayout `desc:"layout shared by all frame sets"`
	DescPool   vk.DescriptorPool      `desc:"pool the frame sets come from"`

	// TexView and TexSampler are the shared texture binding written
	// into every frame's descriptor set.
	TexView    vk.ImageView `desc:"shared texture view"`
	TexSampler vk.Sampler   `desc:"shared texture sampler"`
}

// NewFramePool returns a FramePool with the given per-frame buffer
// sizes, rounded up to the device's uniform offset alignment.
func NewFramePool(gp *GPU, dev *Device, uniformSize, instanceSize int) *FramePool {
	align := int(gp.GPUProps.Limits.MinUniformBufferOffsetAlignment)
	return &FramePool{
		GPU:          gp,
		Dev:          dev,
		UniformSize:  MemSizeAlign(uniformSize, align),
		InstanceSize: MemSizeAlign(instanceSize, align),
	}
}

// SetTexture sets the shared texture binding.  Must be called before
// Config.
func (fp *FramePool) SetTexture(view vk.ImageView, samp vk.Sampler) {
	fp.TexView = view
	fp.TexSampler = samp
}

// ConfigLayout creates the descriptor set layout:
// 0 uniform (vertex), 1 instance storage (vertex), 2 sampler (fragment).
func (fp *FramePool) ConfigLayout() error {
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(fp.Dev.Device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 3,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}, {
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}, {
			Binding:         2,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
	}, nil, &layout)
	if err := NewError(ret); err != nil {
		return err
	}
	fp.DescLayout = layout
	return nil
}

// Config builds the per-frame resources for n swapchain images,
// freeing any existing set first.  ConfigLayout and SetTexture must
// have been called.
func (fp *FramePool) Config(n int) error {
	fp.Free()

	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(fp.Dev.Device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(n),
		PoolSizeCount: 3,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(n),
		}, {
			Type:            vk.DescriptorTypeStorageBuffer,
			DescriptorCount: uint32(n),
		}, {
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: uint32(n),
		}},
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return err
	}
	fp.DescPool = pool

	for i := 0; i < n; i++ {
		fr := &FrameResources{Idx: i}
		if err := fr.Uniform.Alloc(fp.GPU, fp.Dev.Device, fp.UniformSize, vk.BufferUsageUniformBufferBit); err != nil {
			return err
		}
		if err := fr.Instance.Alloc(fp.GPU, fp.Dev.Device, fp.InstanceSize, vk.BufferUsageStorageBufferBit); err != nil {
			return err
		}
		descSets := make([]vk.DescriptorSet, 1)
		ret = vk.AllocateDescriptorSets(fp.Dev.Device, &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     fp.DescPool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{fp.DescLayout},
		}, &descSets[0])
		if err := NewError(ret); err != nil {
			return err
		}
		fr.DescSet = descSets[0]
		fp.writeDescSet(fr)
		fp.Frames = append(fp.Frames, fr)
	}
	return nil
}

// writeDescSet points the frame's descriptor set at its buffers and
// the shared texture.
func (fp *FramePool) writeDescSet(fr *FrameResources) {
	vk.UpdateDescriptorSets(fp.Dev.Device, 3, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          fr.DescSet,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: fr.Uniform.Buff,
			Offset: 0,
			Range:  vk.DeviceSize(fp.UniformSize),
		}},
	}, {
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          fr.DescSet,
		DstBinding:      1,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeStorageBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: fr.Instance.Buff,
			Offset: 0,
			Range:  vk.DeviceSize(fp.InstanceSize),
		}},
	}, {
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          fr.DescSet,
		DstBinding:      2,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     fp.TexSampler,
			ImageView:   fp.TexView,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}}, 0, nil)
}

// WriteUniform writes the uniform data for the frame at idx, with an
// explicit flush of the mapped range.  Only the index of the currently
// acquired image should be written.
func (fp *FramePool) WriteUniform(idx int, data []byte) {
	fp.Frames[idx].Uniform.Write(fp.Dev.Device, data)
}

// WriteInstances writes the instance data for the frame at idx, with
// an explicit flush of the mapped range.
func (fp *FramePool) WriteInstances(idx int, data []byte) {
	fp.Frames[idx].Instance.Write(fp.Dev.Device, data)
}

// Free frees the per-frame resources and the descriptor pool, keeping
// the layout for the next Config.  The device must be idle.
func (fp *FramePool) Free() {
	for _, fr := range fp.Frames {
		fr.Uniform.Free(fp.Dev.Device)
		fr.Instance.Free(fp.Dev.Device)
	}
	fp.Frames = nil
	if fp.DescPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(fp.Dev.Device, fp.DescPool, nil)
		fp.DescPool = vk.NullDescriptorPool
	}
}

// Destroy frees everything including the layout.
func (fp *FramePool) Destroy() {
	fp.Free()
	if fp.DescLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(fp.Dev.Device, fp.DescLayout, nil)
		fp.DescLayout = vk.NullDescriptorSetLayout
	}
}
