// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vscene

import (
	"math/rand"
	"unsafe"

	"goki.dev/mat32/v2"

	"vkube/vshape"
)

// Instance is the per-object data read by the vertex shader through
// the instance storage buffer, indexed by gl_InstanceIndex.
type Instance struct {
	Model mat32.Mat4
	Color mat32.Vec4
}

// MeshRange locates one mesh inside the combined vertex and index
// buffers, for a single indexed draw.
type MeshRange struct {
	FirstIdx int `desc:"first index in the combined index buffer"`
	NIdx     int `desc:"number of indices"`
	VtxOff   int `desc:"vertex offset added to each index"`
}

// World is the demo scene content: one floor plane plus NCubes cubes
// scattered deterministically from the config seed, with per-cube
// position, Y rotation, scale, and tint.  All geometry lives in one
// combined interleaved vertex buffer and one index buffer; instances
// are ordered floor first, then cubes, matching draw order.
type World struct {
	Cfg *Config `desc:"config the world was generated from"`

	Vtx mat32.ArrayF32 `desc:"combined interleaved vertex data: pos, norm, tex"`
	Idx mat32.ArrayU32 `desc:"combined index data"`

	Floor MeshRange `desc:"floor mesh location in the combined buffers"`
	Cube  MeshRange `desc:"cube mesh location in the combined buffers"`

	// Instances holds the floor instance at index 0, then one
	// instance per cube.
	Instances []Instance `desc:"floor instance then cube instances"`
}

// cubePalette are the tints cubes cycle through, weighted by the
// seeded random pick.
var cubePalette = []mat32.Vec4{
	{X: 0.85, Y: 0.3, Z: 0.25, W: 1},
	{X: 0.3, Y: 0.65, Z: 0.85, W: 1},
	{X: 0.95, Y: 0.75, Z: 0.25, W: 1},
	{X: 0.45, Y: 0.8, Z: 0.4, W: 1},
	{X: 0.7, Y: 0.45, Z: 0.85, W: 1},
}

// NewWorld generates the world from the config.  The same config
// always produces the same world.
func NewWorld(cfg *Config) *World {
	wd := &World{Cfg: cfg}
	wd.buildGeometry()
	wd.buildInstances()
	return wd
}

// buildGeometry allocates the combined arrays and writes the floor
// and cube meshes into them through the shape offsets.
func (wd *World) buildGeometry() {
	floor := vshape.NewPlane(wd.Cfg.FloorSize, wd.Cfg.FloorSize)
	cube := vshape.NewBox(1, 1, 1)

	fnv, fni := floor.N()
	cnv, cni := cube.N()
	floor.SetOffs(0, 0)
	cube.SetOffs(fnv, fni)

	nv := fnv + cnv
	ni := fni + cni
	vtxAry := make(mat32.ArrayF32, nv*3)
	normAry := make(mat32.ArrayF32, nv*3)
	texAry := make(mat32.ArrayF32, nv*2)
	idxAry := make(mat32.ArrayU32, ni)

	floor.Set(vtxAry, normAry, texAry, idxAry)
	cube.Set(vtxAry, normAry, texAry, idxAry)

	// indexes are written relative to the shape's vertex offset, but
	// each mesh draws with its own vertex offset, so rebase the cube's.
	for ii := fni; ii < ni; ii++ {
		idxAry[ii] -= uint32(fnv)
	}

	wd.Vtx = vshape.Interleave(vtxAry, normAry, texAry)
	wd.Idx = idxAry
	wd.Floor = MeshRange{FirstIdx: 0, NIdx: fni, VtxOff: 0}
	wd.Cube = MeshRange{FirstIdx: fni, NIdx: cni, VtxOff: fnv}
}

// buildInstances generates the floor instance and the seeded cube
// scatter.
func (wd *World) buildInstances() {
	rnd := rand.New(rand.NewSource(wd.Cfg.Seed))
	half := wd.Cfg.FloorSize/2 - 1

	wd.Instances = make([]Instance, 0, wd.Cfg.NCubes+1)

	var floorInst Instance
	floorInst.Model.SetIdentity()
	floorInst.Color = mat32.Vec4{X: 0.5, Y: 0.5, Z: 0.52, W: 1}
	wd.Instances = append(wd.Instances, floorInst)

	for i := 0; i < wd.Cfg.NCubes; i++ {
		x := (rnd.Float32()*2 - 1) * half
		z := (rnd.Float32()*2 - 1) * half
		scale := 0.5 + rnd.Float32()
		rot := rnd.Float32() * 2 * mat32.Pi
		tint := cubePalette[rnd.Intn(len(cubePalette))]

		var inst Instance
		inst.Model.SetTransform(
			mat32.Vec3{X: x, Y: scale / 2, Z: z},
			mat32.NewQuatAxisAngle(mat32.Vec3Y, rot),
			mat32.Vec3{X: scale, Y: scale, Z: scale})
		inst.Color = tint
		wd.Instances = append(wd.Instances, inst)
	}
}

// NInstances returns the total instance count including the floor.
func (wd *World) NInstances() int {
	return len(wd.Instances)
}

// InstanceBytes returns the instance array as raw bytes for buffer
// upload.
func (wd *World) InstanceBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&wd.Instances[0])),
		len(wd.Instances)*int(unsafe.Sizeof(Instance{})))
}

// VtxBytes returns the interleaved vertex data as raw bytes.
func (wd *World) VtxBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&wd.Vtx[0])), len(wd.Vtx)*4)
}

// IdxBytes returns the index data as raw bytes.
func (wd *World) IdxBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&wd.Idx[0])), len(wd.Idx)*4)
}
