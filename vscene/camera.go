// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vscene provides the demo scene content: an orbit camera, a
// deterministically generated world of a floor and scattered cubes,
// lighting constants, and the GPU-facing uniform and instance layouts.
package vscene

import (
	"goki.dev/mat32/v2"
)

// Camera is an orbit camera: it circles a target point at a given
// distance, azimuth (degrees around Y), and elevation (degrees above
// the horizon), always looking at the target.
type Camera struct {
	Target mat32.Vec3 `desc:"point the camera orbits and looks at"`

	Azimuth   float32 `desc:"rotation around the Y axis, in degrees"`
	Elevation float32 `desc:"angle above the horizon, in degrees, clamped to (-90, 90)"`
	Distance  float32 `desc:"distance from the target"`

	FOV  float32 `desc:"vertical field of view in degrees"`
	Near float32 `desc:"near plane z coordinate"`
	Far  float32 `desc:"far plane z coordinate"`

	ViewMatrix mat32.Mat4 `desc:"view matrix, updated by UpdateMatrix"`
	PrjnMatrix mat32.Mat4 `desc:"projection matrix with Vulkan conventions, updated by UpdateMatrix"`
}

func (cm *Camera) Defaults() {
	cm.Target = mat32.Vec3Zero
	cm.Azimuth = 30
	cm.Elevation = 25
	cm.Distance = 12
	cm.FOV = 45
	cm.Near = 0.01
	cm.Far = 1000
}

// Pos returns the camera position implied by the current azimuth,
// elevation, and distance.
func (cm *Camera) Pos() mat32.Vec3 {
	az := mat32.DegToRad(cm.Azimuth)
	el := mat32.DegToRad(cm.Elevation)
	xz := cm.Distance * mat32.Cos(el)
	return mat32.Vec3{
		X: cm.Target.X + xz*mat32.Sin(az),
		Y: cm.Target.Y + cm.Distance*mat32.Sin(el),
		Z: cm.Target.Z + xz*mat32.Cos(az),
	}
}

// Orbit rotates the camera by the given azimuth and elevation deltas
// in degrees, clamping elevation short of the poles.
func (cm *Camera) Orbit(dAz, dEl float32) {
	cm.Azimuth += dAz
	for cm.Azimuth >= 360 {
		cm.Azimuth -= 360
	}
	for cm.Azimuth < 0 {
		cm.Azimuth += 360
	}
	cm.Elevation = mat32.Clamp(cm.Elevation+dEl, -89, 89)
}

// Zoom moves the camera toward (negative) or away from (positive) the
// target, keeping a minimum distance.
func (cm *Camera) Zoom(d float32) {
	cm.Distance = mat32.Max(cm.Distance+d, cm.Near*10)
}

// UpdateMatrix recomputes the view and projection matrices for the
// given aspect ratio.  The projection uses Vulkan conventions: Y
// flipped and depth in 0..1.
func (cm *Camera) UpdateMatrix(aspect float32) {
	pos := cm.Pos()
	var lookq mat32.Quat
	lookq.SetFromRotationMatrix(mat32.NewLookAt(pos, cm.Target, mat32.Vec3Y))
	var pose mat32.Mat4
	pose.SetTransform(pos, lookq, mat32.Vec3{X: 1, Y: 1, Z: 1})
	cm.ViewMatrix.SetInverse(&pose)
	cm.PrjnMatrix.SetVkPerspective(cm.FOV, aspect, cm.Near, cm.Far)
}
