// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goki.dev/mat32/v2"
)

func allocFor(sp Shape) (vtx, norm, tex mat32.ArrayF32, idx mat32.ArrayU32) {
	nv, ni := sp.N()
	return make(mat32.ArrayF32, nv*3), make(mat32.ArrayF32, nv*3),
		make(mat32.ArrayF32, nv*2), make(mat32.ArrayU32, ni)
}

func TestPlaneN(t *testing.T) {
	nv, ni := PlaneN(1, 1)
	assert.Equal(t, 4, nv)
	assert.Equal(t, 6, ni)

	nv, ni = PlaneN(2, 3)
	assert.Equal(t, 12, nv)
	assert.Equal(t, 36, ni)

	// segments are enforced to at least 1
	nv, ni = PlaneN(0, 0)
	assert.Equal(t, 4, nv)
	assert.Equal(t, 6, ni)
}

func TestPlaneSet(t *testing.T) {
	pl := NewPlane(4, 2)
	vtx, norm, tex, idx := allocFor(pl)
	pl.Set(vtx, norm, tex, idx)

	nv, _ := pl.N()
	require.Equal(t, 4, nv)

	// all vertices lie in the y=0 plane within the half sizes, with
	// normals pointing up
	var v, n mat32.Vec3
	for vi := 0; vi < nv; vi++ {
		v.FromArray(vtx, vi*3)
		n.FromArray(norm, vi*3)
		assert.Equal(t, float32(0), v.Y)
		assert.LessOrEqual(t, mat32.Abs(v.X), float32(2))
		assert.LessOrEqual(t, mat32.Abs(v.Z), float32(1))
		assert.Equal(t, mat32.Vec3{X: 0, Y: 1, Z: 0}, n)
	}

	bb := pl.BBox()
	assert.Equal(t, mat32.Vec3{X: -2, Y: 0, Z: -1}, bb.Min)
	assert.Equal(t, mat32.Vec3{X: 2, Y: 0, Z: 1}, bb.Max)

	// indices stay in range and tile the grid
	for _, ix := range idx {
		assert.Less(t, int(ix), nv)
	}
}

func TestPlaneOffsets(t *testing.T) {
	pl := NewPlane(1, 1)
	nv, ni := pl.N()
	pl.SetOffs(10, 12)

	vtx := make(mat32.ArrayF32, (10+nv)*3)
	norm := make(mat32.ArrayF32, (10+nv)*3)
	tex := make(mat32.ArrayF32, (10+nv)*2)
	idx := make(mat32.ArrayU32, 12+ni)
	pl.Set(vtx, norm, tex, idx)

	// indices are written at the index offset and refer to vertices at
	// the vertex offset
	for ii := 12; ii < 12+ni; ii++ {
		assert.GreaterOrEqual(t, int(idx[ii]), 10)
		assert.Less(t, int(idx[ii]), 10+nv)
	}
}

func TestBoxN(t *testing.T) {
	bx := NewBox(1, 1, 1)
	nv, ni := bx.N()
	assert.Equal(t, 24, nv)
	assert.Equal(t, 36, ni)
}

func TestBoxSet(t *testing.T) {
	bx := NewBox(2, 4, 6)
	vtx, norm, tex, idx := allocFor(bx)
	bx.Set(vtx, norm, tex, idx)

	nv, _ := bx.N()

	// every vertex sits on the surface of the half-size box, and every
	// normal is a unit axis vector
	var v, n mat32.Vec3
	for vi := 0; vi < nv; vi++ {
		v.FromArray(vtx, vi*3)
		n.FromArray(norm, vi*3)
		onFace := mat32.Abs(v.X) == 1 || mat32.Abs(v.Y) == 2 || mat32.Abs(v.Z) == 3
		assert.True(t, onFace, "vertex %v not on box surface", v)
		assert.Equal(t, float32(1), n.Length())
	}

	bb := bx.BBox()
	assert.Equal(t, mat32.Vec3{X: -1, Y: -2, Z: -3}, bb.Min)
	assert.Equal(t, mat32.Vec3{X: 1, Y: 2, Z: 3}, bb.Max)

	for _, ix := range idx {
		assert.Less(t, int(ix), nv)
	}
}

func TestBBoxFromVtxs(t *testing.T) {
	pl := NewPlane(3, 5)
	vtx, norm, tex, idx := allocFor(pl)
	pl.Set(vtx, norm, tex, idx)
	nv, _ := pl.N()

	bb := BBoxFromVtxs(vtx, 0, nv)
	assert.Equal(t, pl.BBox(), bb)
}

func TestInterleave(t *testing.T) {
	vtx := mat32.ArrayF32{1, 2, 3, 4, 5, 6}
	norm := mat32.ArrayF32{0, 1, 0, 0, 0, 1}
	tex := mat32.ArrayF32{0.5, 0.25, 0.75, 1}

	out := Interleave(vtx, norm, tex)
	require.Equal(t, 16, len(out))
	assert.Equal(t, mat32.ArrayF32{
		1, 2, 3, 0, 1, 0, 0.5, 0.25,
		4, 5, 6, 0, 0, 1, 0.75, 1,
	}, out)
}
