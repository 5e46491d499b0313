// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	vk "github.com/goki/vulkan"
)

func TestMemSizeAlign(t *testing.T) {
	assert.Equal(t, 0, MemSizeAlign(0, 16))
	assert.Equal(t, 16, MemSizeAlign(1, 16))
	assert.Equal(t, 16, MemSizeAlign(16, 16))
	assert.Equal(t, 32, MemSizeAlign(17, 16))
	assert.Equal(t, 256, MemSizeAlign(200, 256))
}

func TestImageFormat(t *testing.T) {
	var ft ImageFormat
	ft.Set(1280, 800, vk.FormatB8g8r8a8Srgb)
	assert.Equal(t, image.Pt(1280, 800), ft.Size)
	w, h := ft.Size32()
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(800), h)
}

func TestNewCheckerImage(t *testing.T) {
	c1 := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	c2 := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	img := NewCheckerImage(64, 16, c1, c2)

	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, c1, img.RGBAAt(0, 0))
	assert.Equal(t, c2, img.RGBAAt(16, 0))
	assert.Equal(t, c2, img.RGBAAt(0, 16))
	assert.Equal(t, c1, img.RGBAAt(16, 16))
	assert.Equal(t, c1, img.RGBAAt(33, 32))
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "abc\x00", SafeString("abc"))
	assert.Equal(t, "abc\x00", SafeString("abc\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, SafeStrings([]string{"a", "b\x00"}))
}

func TestErrors(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))
	assert.False(t, IsError(vk.Success))
	assert.True(t, IsError(vk.ErrorOutOfDate))
	assert.Error(t, NewError(vk.ErrorDeviceLost))
}
