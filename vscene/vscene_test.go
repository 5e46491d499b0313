// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vscene

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goki.dev/mat32/v2"
)

func TestCameraPos(t *testing.T) {
	var cm Camera
	cm.Defaults()
	cm.Azimuth = 0
	cm.Elevation = 0
	cm.Distance = 10

	pos := cm.Pos()
	assert.InDelta(t, 0, pos.X, 1e-4)
	assert.InDelta(t, 0, pos.Y, 1e-4)
	assert.InDelta(t, 10, pos.Z, 1e-4)

	cm.Elevation = 90
	pos = cm.Pos()
	assert.InDelta(t, 10, pos.Y, 1e-3)

	cm.Elevation = 0
	cm.Azimuth = 90
	pos = cm.Pos()
	assert.InDelta(t, 10, pos.X, 1e-3)
	assert.InDelta(t, 0, pos.Z, 1e-3)
}

func TestCameraOrbit(t *testing.T) {
	var cm Camera
	cm.Defaults()

	cm.Azimuth = 350
	cm.Orbit(20, 0)
	assert.InDelta(t, 10, cm.Azimuth, 1e-4)

	cm.Orbit(-20, 0)
	assert.InDelta(t, 350, cm.Azimuth, 1e-4)

	// elevation clamps short of the poles
	cm.Orbit(0, 1000)
	assert.Equal(t, float32(89), cm.Elevation)
	cm.Orbit(0, -1000)
	assert.Equal(t, float32(-89), cm.Elevation)
}

func TestCameraZoom(t *testing.T) {
	var cm Camera
	cm.Defaults()
	cm.Zoom(5)
	assert.Equal(t, float32(17), cm.Distance)
	cm.Zoom(-1000)
	assert.Equal(t, cm.Near*10, cm.Distance)
}

func TestCameraUpdateMatrix(t *testing.T) {
	var cm Camera
	cm.Defaults()
	cm.UpdateMatrix(16.0 / 9.0)

	// the view matrix maps the camera position to the origin
	pos := cm.Pos()
	eye := pos.MulMat4(&cm.ViewMatrix)
	assert.InDelta(t, 0, eye.X, 1e-3)
	assert.InDelta(t, 0, eye.Y, 1e-3)
	assert.InDelta(t, 0, eye.Z, 1e-3)

	// the target lands on the -Z view axis at the orbit distance
	tgt := cm.Target.MulMat4(&cm.ViewMatrix)
	assert.InDelta(t, 0, tgt.X, 1e-3)
	assert.InDelta(t, 0, tgt.Y, 1e-3)
	assert.InDelta(t, -cm.Distance, tgt.Z, 1e-3)
}

func TestFrameUniformLayout(t *testing.T) {
	// std140: two mat4s, one padded vec3, one padded pair of vec3s
	assert.Equal(t, uintptr(16*4), unsafe.Sizeof(mat32.Mat4{}))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(AmbientLight{}))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(DirLight{}))
	assert.Equal(t, uintptr(2*16*4+16+32), unsafe.Sizeof(FrameUniform{}))

	var fu FrameUniform
	fu.DefaultLights()
	assert.Equal(t, int(unsafe.Sizeof(fu)), len(fu.Bytes()))
	assert.InDelta(t, 1, fu.Dir.Dir.Length(), 1e-5)
}

func TestInstanceLayout(t *testing.T) {
	// std430: mat4 plus vec4
	assert.Equal(t, uintptr(16*4+16), unsafe.Sizeof(Instance{}))
}

func TestWorldDeterministic(t *testing.T) {
	var cfg Config
	cfg.Defaults()

	w1 := NewWorld(&cfg)
	w2 := NewWorld(&cfg)
	assert.Equal(t, w1.Instances, w2.Instances)
	assert.Equal(t, w1.Vtx, w2.Vtx)
	assert.Equal(t, w1.Idx, w2.Idx)

	cfg2 := cfg
	cfg2.Seed = 7
	w3 := NewWorld(&cfg2)
	assert.NotEqual(t, w1.Instances, w3.Instances)
}

func TestWorldInstances(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	cfg.NCubes = 25
	wd := NewWorld(&cfg)

	require.Equal(t, 26, wd.NInstances())

	// the floor instance is the identity
	var ident mat32.Mat4
	ident.SetIdentity()
	assert.Equal(t, ident, wd.Instances[0].Model)

	// cubes stay inside the floor bounds and rest on it
	half := cfg.FloorSize / 2
	for _, inst := range wd.Instances[1:] {
		var pos mat32.Vec3
		pos.SetFromMatrixPos(&inst.Model)
		assert.LessOrEqual(t, mat32.Abs(pos.X), half)
		assert.LessOrEqual(t, mat32.Abs(pos.Z), half)
		assert.Greater(t, pos.Y, float32(0))
		assert.Equal(t, float32(1), inst.Color.W)
	}
}

func TestWorldGeometry(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	wd := NewWorld(&cfg)

	// floor quad then unit cube, in one interleaved buffer with 8
	// floats per vertex
	assert.Equal(t, 6, wd.Floor.NIdx)
	assert.Equal(t, 0, wd.Floor.FirstIdx)
	assert.Equal(t, 36, wd.Cube.NIdx)
	assert.Equal(t, wd.Floor.NIdx, wd.Cube.FirstIdx)
	assert.Equal(t, 4, wd.Cube.VtxOff)
	assert.Equal(t, (4+24)*8, len(wd.Vtx))

	// rebased cube indices address cube vertices only
	for ii := wd.Cube.FirstIdx; ii < wd.Cube.FirstIdx+wd.Cube.NIdx; ii++ {
		assert.Less(t, int(wd.Idx[ii]), 24)
	}

	assert.Equal(t, len(wd.Vtx)*4, len(wd.VtxBytes()))
	assert.Equal(t, len(wd.Idx)*4, len(wd.IdxBytes()))
	assert.Equal(t, wd.NInstances()*int(unsafe.Sizeof(Instance{})), len(wd.InstanceBytes()))
}

func TestConfigSaveOpen(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	cfg.NCubes = 99
	fname := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, cfg.Save(fname))

	var got Config
	got.OpenWithDefaults(fname)
	assert.Equal(t, cfg, got)

	// a missing file just leaves the defaults
	var def Config
	def.OpenWithDefaults(filepath.Join(t.TempDir(), "missing.json"))
	var want Config
	want.Defaults()
	assert.Equal(t, want, def)
}
