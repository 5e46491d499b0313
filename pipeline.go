// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	vk "github.com/goki/vulkan"
)

// VtxStride is the byte stride of one interleaved vertex:
// position (3), normal (3), texcoord (2) float32s.
const VtxStride = 8 * 4

// Pipeline is the graphics pipeline for instanced, depth-tested,
// back-face-culled rendering of the interleaved vertex format.
// Viewport and scissor are dynamic, so a resize only needs command
// buffer re-recording, never a pipeline rebuild.
type Pipeline struct {
	Name string `desc:"name of this pipeline"`

	Dev *Device `desc:"device the pipeline lives on"`

	Layout vk.PipelineLayout `desc:"pipeline layout from the descriptor set layout"`

	VkPipeline vk.Pipeline `desc:"graphics pipeline handle"`

	Cache vk.PipelineCache `desc:"pipeline cache"`
}

// Config builds the graphics pipeline for the given render pass and
// descriptor set layout, with the given vertex and fragment shaders.
// The shader modules can be freed afterward.
func (pl *Pipeline) Config(dev *Device, pass vk.RenderPass, descLayout vk.DescriptorSetLayout, vert, frag *Shader) error {
	pl.Dev = dev

	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(dev.Device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{descLayout},
	}, nil, &layout)
	if err := NewError(ret); err != nil {
		return err
	}
	pl.Layout = layout

	var cache vk.PipelineCache
	ret = vk.CreatePipelineCache(dev.Device, &vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}, nil, &cache)
	if err := NewError(ret); err != nil {
		return err
	}
	pl.Cache = cache

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vert.Module,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: frag.Module,
		PName:  "main\x00",
	}}

	vtxBind := []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    VtxStride,
		InputRate: vk.VertexInputRateVertex,
	}}
	vtxAttr := []vk.VertexInputAttributeDescription{{
		Location: 0,
		Binding:  0,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   0,
	}, {
		Location: 1,
		Binding:  0,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   3 * 4,
	}, {
		Location: 2,
		Binding:  0,
		Format:   vk.FormatR32g32Sfloat,
		Offset:   6 * 4,
	}}

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(dev.Device, pl.Cache, 1, []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(vtxBind)),
			PVertexBindingDescriptions:      vtxBind,
			VertexAttributeDescriptionCount: uint32(len(vtxAttr)),
			PVertexAttributeDescriptions:    vtxAttr,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceCounterClockwise,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  vk.True,
			DepthWriteEnable: vk.True,
			DepthCompareOp:   vk.CompareOpLess,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
					vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateViewport,
				vk.DynamicStateScissor,
			},
		},
		Layout:     pl.Layout,
		RenderPass: pass,
	}}, nil, pipelines)
	if err := NewError(ret); err != nil {
		return err
	}
	pl.VkPipeline = pipelines[0]
	return nil
}

// Bind binds the pipeline and the given descriptor set.
func (pl *Pipeline) Bind(cmd vk.CommandBuffer, descSet vk.DescriptorSet) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pl.VkPipeline)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, pl.Layout,
		0, 1, []vk.DescriptorSet{descSet}, 0, nil)
}

// BindVtxIdx binds the combined vertex and index buffers.
func (pl *Pipeline) BindVtxIdx(cmd vk.CommandBuffer, vtx, idx vk.Buffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{vtx}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cmd, idx, 0, vk.IndexTypeUint32)
}

// DrawIndexed issues one instanced indexed draw over a range of the
// bound buffers.
func (pl *Pipeline) DrawIndexed(cmd vk.CommandBuffer, firstIdx, nIdx, vtxOff, firstInst, nInst int) {
	vk.CmdDrawIndexed(cmd, uint32(nIdx), uint32(nInst), uint32(firstIdx), int32(vtxOff), uint32(firstInst))
}

// Destroy frees the pipeline, cache, and layout.
func (pl *Pipeline) Destroy() {
	if pl.VkPipeline != vk.NullPipeline {
		vk.DestroyPipeline(pl.Dev.Device, pl.VkPipeline, nil)
		pl.VkPipeline = vk.NullPipeline
	}
	if pl.Cache != vk.NullPipelineCache {
		vk.DestroyPipelineCache(pl.Dev.Device, pl.Cache, nil)
		pl.Cache = vk.NullPipelineCache
	}
	if pl.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(pl.Dev.Device, pl.Layout, nil)
		pl.Layout = vk.NullPipelineLayout
	}
}
