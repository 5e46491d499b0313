// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !darwin

package vkube

// PlatformDefaults adds platform-specific extensions; nothing needed
// outside darwin.
func PlatformDefaults(gp *GPU) {
}
