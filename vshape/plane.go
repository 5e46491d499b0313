// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vshape

import "goki.dev/mat32/v2"

// Plane is a flat 2D plane in the X-Z plane (i.e., a floor), with its
// normal pointing up along +Y when Pos.Y >= 0.
type Plane struct {
	ShapeBase
	Size mat32.Vec2  `desc:"size along the X and Z dimensions"`
	Segs mat32.Vec2i `desc:"number of segments to divide each dimension into (enforced to be at least 1)"`
}

// NewPlane returns a Plane shape with given X, Z size
func NewPlane(width, depth float32) *Plane {
	pl := &Plane{}
	pl.Defaults()
	pl.Size.Set(width, depth)
	return pl
}

func (pl *Plane) Defaults() {
	pl.Size.Set(1, 1)
	pl.Segs.Set(1, 1)
}

func (pl *Plane) N() (nVtx, nIdx int) {
	return PlaneN(int(pl.Segs.X), int(pl.Segs.Y))
}

// Set sets points in given allocated arrays
func (pl *Plane) Set(vtxAry, normAry, texAry mat32.ArrayF32, idxAry mat32.ArrayU32) {
	hSz := pl.Size.DivScalar(2)
	SetPlane(vtxAry, normAry, texAry, idxAry, pl.VtxOff, pl.IdxOff,
		mat32.X, mat32.Z, 1, 1, pl.Size.X, pl.Size.Y, -hSz.X, -hSz.Y, pl.Pos.Y,
		int(pl.Segs.X), int(pl.Segs.Y))
	mn := mat32.Vec3{X: -hSz.X, Y: pl.Pos.Y, Z: -hSz.Y}
	mx := mat32.Vec3{X: hSz.X, Y: pl.Pos.Y, Z: hSz.Y}
	pl.CBBox.Set(&mn, &mx)
}

// PlaneN returns the N's for a single plane's worth of vertex and
// index data with given number of segments.
// Note: In *vertex* units, not float units (i.e., x3 to get actual
// float offset in Vtx array).
func PlaneN(wsegs, hsegs int) (nVtx, nIdx int) {
	wsegs = max(wsegs, 1)
	hsegs = max(hsegs, 1)
	nVtx = (wsegs + 1) * (hsegs + 1)
	nIdx = wsegs * hsegs * 6
	return
}

// SetPlane sets plane vertex, norm, tex, index data at given starting
// *vertex* index (i.e., multiply this *3 to get actual float offset in
// Vtx array), and starting Idx index.  The plane lies in the waxis and
// haxis dimensions, at zoff along the remaining dimension, which also
// carries the normal, pointing positive when zoff >= 0.  wdir and hdir
// (+1 or -1) flip the direction each dimension is traversed, which
// controls the winding.  woff and hoff offset the grid start.
func SetPlane(vtxAry, normAry, texAry mat32.ArrayF32, idxAry mat32.ArrayU32,
	vtxOff, idxOff int, waxis, haxis mat32.Dims, wdir, hdir float32,
	width, height, woff, hoff, zoff float32, wsegs, hsegs int) {

	zaxis := planeNormAxis(waxis, haxis)
	zdir := float32(1)
	if zoff < 0 {
		zdir = -1
	}

	wsegs = max(wsegs, 1)
	hsegs = max(hsegs, 1)
	segW := width / float32(wsegs)
	segH := height / float32(hsegs)

	var pt, norm mat32.Vec3
	norm.SetDim(zaxis, zdir)

	vidx := vtxOff * 3
	tidx := vtxOff * 2
	vi := 0
	for iy := 0; iy <= hsegs; iy++ {
		for ix := 0; ix <= wsegs; ix++ {
			pt.SetDim(waxis, (woff+float32(ix)*segW)*wdir)
			pt.SetDim(haxis, (hoff+float32(iy)*segH)*hdir)
			pt.SetDim(zaxis, zoff)
			pt.ToArray(vtxAry, vidx+vi*3)
			norm.ToArray(normAry, vidx+vi*3)
			texAry[tidx+vi*2] = float32(ix) / float32(wsegs)
			texAry[tidx+vi*2+1] = 1 - float32(iy)/float32(hsegs)
			vi++
		}
	}

	ii := idxOff
	for iy := 0; iy < hsegs; iy++ {
		for ix := 0; ix < wsegs; ix++ {
			a := uint32(vtxOff + iy*(wsegs+1) + ix)
			b := a + uint32(wsegs+1)
			idxAry[ii] = a
			idxAry[ii+1] = b
			idxAry[ii+2] = a + 1
			idxAry[ii+3] = a + 1
			idxAry[ii+4] = b
			idxAry[ii+5] = b + 1
			ii += 6
		}
	}
}

// planeNormAxis returns the dimension orthogonal to the two given
// plane dimensions.
func planeNormAxis(waxis, haxis mat32.Dims) mat32.Dims {
	switch {
	case waxis != mat32.X && haxis != mat32.X:
		return mat32.X
	case waxis != mat32.Y && haxis != mat32.Y:
		return mat32.Y
	default:
		return mat32.Z
	}
}
