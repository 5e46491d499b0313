// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
	"goki.dev/glop/dirs"
	"goki.dev/ordmap"
)

// Shader is one compiled SPIR-V shader module, loaded by logical name.
type Shader struct {
	Name   string          `desc:"logical name, e.g. cube.vert"`
	Module vk.ShaderModule `desc:"shader module handle"`
}

// Open loads SPIR-V bytecode from the given file and creates the
// module on the device.
func (sh *Shader) Open(dev vk.Device, fname string) error {
	code, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return sh.Load(dev, code)
}

// Load creates the module from SPIR-V bytecode.
func (sh *Shader) Load(dev vk.Device, code []byte) error {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(dev, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    SliceUint32(code),
	}, nil, &module)
	if err := NewError(ret); err != nil {
		return err
	}
	sh.Module = module
	return nil
}

func (sh *Shader) Destroy(dev vk.Device) {
	if sh.Module != vk.NullShaderModule {
		vk.DestroyShaderModule(dev, sh.Module, nil)
		sh.Module = vk.NullShaderModule
	}
}

// SliceUint32 reinterprets SPIR-V bytes as the uint32 words vulkan
// wants, without copying.
func SliceUint32(data []byte) []uint32 {
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer(unsafe.SliceData(data)))[:len(data)/4]
}

// Shaders is an ordered registry of shader modules by logical name.
// Modules are consumed at pipeline creation and can be freed after.
type Shaders struct {
	Dev  vk.Device `desc:"device the modules live on"`
	Mods ordmap.Map[string, *Shader]
}

func (ss *Shaders) Init(dev vk.Device) {
	ss.Dev = dev
}

// OpenFile loads the SPIR-V file and registers it under the given
// logical name.
func (ss *Shaders) OpenFile(name, fname string) (*Shader, error) {
	sh := &Shader{Name: name}
	if err := sh.Open(ss.Dev, fname); err != nil {
		return nil, err
	}
	ss.Mods.Add(name, sh)
	return sh, nil
}

// OpenDir loads every .spv file in dir, registering each under its
// file name without the .spv extension (e.g. cube.vert.spv -> cube.vert).
func (ss *Shaders) OpenDir(dir string) error {
	fns := dirs.ExtFileNames(dir, []string{".spv"})
	for _, fn := range fns {
		name := strings.TrimSuffix(fn, ".spv")
		if _, err := ss.OpenFile(name, filepath.Join(dir, fn)); err != nil {
			return err
		}
	}
	return nil
}

// ShaderByName returns the registered shader, or an error naming the
// missing one.
func (ss *Shaders) ShaderByName(name string) (*Shader, error) {
	sh, ok := ss.Mods.ValByKeyTry(name)
	if !ok {
		return nil, fmt.Errorf("vkube: shader not found: %s", name)
	}
	return sh, nil
}

// Destroy frees all modules and clears the registry.
func (ss *Shaders) Destroy() {
	for _, kv := range ss.Mods.Order {
		kv.Val.Destroy(ss.Dev)
	}
	ss.Mods.Reset()
}
