// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vscene

import (
	"unsafe"

	"goki.dev/mat32/v2"
)

// AmbientLight provides diffuse uniform lighting -- typically only one
// of these.  Fields are padded to the 16-byte alignment the GPU
// uniform layout requires.
type AmbientLight struct {

	// color of light -- multiplies ambient color of materials
	Color mat32.Vec3
	pad0  float32
}

// DirLight is a directional light, which projects light along its
// direction vector with no attenuation, like the Sun.
type DirLight struct {

	// color of light at full intensity
	Color mat32.Vec3
	pad0  float32

	// normalized direction the light shines along
	Dir  mat32.Vec3
	pad1 float32
}

// FrameUniform is the per-frame uniform block: camera matrices plus
// lighting constants, written each frame into the current frame's
// uniform buffer.  Layout matches the shader's std140 block.
type FrameUniform struct {
	View    mat32.Mat4
	Prjn    mat32.Mat4
	Ambient AmbientLight
	Dir     DirLight
}

// SetCamera fills the matrices from the camera's current state.
func (fu *FrameUniform) SetCamera(cm *Camera) {
	fu.View = cm.ViewMatrix
	fu.Prjn = cm.PrjnMatrix
}

// DefaultLights sets a dim warm ambient plus one directional key
// light from above and behind the default camera.
func (fu *FrameUniform) DefaultLights() {
	fu.Ambient.Color = mat32.Vec3{X: 0.25, Y: 0.25, Z: 0.22}
	fu.Dir.Color = mat32.Vec3{X: 0.9, Y: 0.9, Z: 0.85}
	fu.Dir.Dir = mat32.Vec3{X: -0.4, Y: -1, Z: -0.3}.Normal()
}

// Bytes returns the uniform block as raw bytes for buffer upload.
func (fu *FrameUniform) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(fu)), int(unsafe.Sizeof(*fu)))
}
