// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vscene

import (
	"goki.dev/grows/jsons"
)

// Config holds the demo scene settings, loadable from and savable to
// a JSON file.
type Config struct {

	// Width, Height are the initial window size in screen coordinates.
	Width  int `desc:"initial window width"`
	Height int `desc:"initial window height"`

	// NCubes is the number of cubes scattered on the floor.
	NCubes int `desc:"number of cubes"`

	// Seed drives the deterministic cube scatter.
	Seed int64 `desc:"random seed for the cube scatter"`

	// FloorSize is the side length of the square floor.
	FloorSize float32 `desc:"side length of the floor"`

	// FOV is the camera's vertical field of view in degrees.
	FOV float32 `desc:"camera vertical field of view, degrees"`

	// Distance is the camera's starting orbit distance.
	Distance float32 `desc:"camera orbit distance"`

	// OrbitDPS is the automatic orbit speed in degrees per second.
	OrbitDPS float32 `desc:"orbit speed, degrees per second"`
}

func (cf *Config) Defaults() {
	cf.Width = 1280
	cf.Height = 800
	cf.NCubes = 40
	cf.Seed = 42
	cf.FloorSize = 20
	cf.FOV = 45
	cf.Distance = 14
	cf.OrbitDPS = 10
}

// Open loads the config from the JSON file.
func (cf *Config) Open(fname string) error {
	return jsons.Open(cf, fname)
}

// Save writes the config to the JSON file.
func (cf *Config) Save(fname string) error {
	return jsons.Save(cf, fname)
}

// OpenWithDefaults sets defaults and then overlays the JSON file if
// it exists; a missing file just leaves the defaults.
func (cf *Config) OpenWithDefaults(fname string) {
	cf.Defaults()
	if fname == "" {
		return
	}
	_ = cf.Open(fname)
}
