// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This is initially adapted from https://github.com/vulkan-go/asche
// Copyright © 2017 Maxim Kupriianov <max@kc.vc>, under the MIT License.

package vkube

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	vk "github.com/goki/vulkan"
)

var (
	// ErrNoDevice is returned when no physical device satisfies the
	// requirements of the target surface.
	ErrNoDevice = errors.New("vkube: no suitable physical device found")

	// ErrZeroExtent is returned when the framebuffer has a zero dimension
	// on either axis.  It is retryable: wait for a non-zero size.
	ErrZeroExtent = errors.New("vkube: surface extent has a zero dimension")
)

// IsError returns true if the Vulkan result is an error code.
func IsError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError returns a Go error wrapping a non-success Vulkan result,
// annotated with the calling frame, or nil on success.
func NewError(ret vk.Result) error {
	if ret != vk.Success {
		pc, _, _, ok := runtime.Caller(1)
		if !ok {
			return fmt.Errorf("vkube error: %s (%d)",
				vk.Error(ret).Error(), ret)
		}
		frame := newStackFrame(pc)
		return fmt.Errorf("vkube error: %s (%d) on %s",
			vk.Error(ret).Error(), ret, frame.String())
	}
	return nil
}

// IfPanic panics on a non-nil error, after running any finalizers.
func IfPanic(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}
		panic(err)
	}
}

// CheckErr is a deferred error catcher: it recovers a panic into *err.
func CheckErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}

type stackFrame struct {
	pc   uintptr
	fn   *runtime.Func
	line int
	file string
}

func newStackFrame(pc uintptr) *stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return nil
	}
	file, line := fn.FileLine(pc)
	return &stackFrame{
		pc:   pc,
		fn:   fn,
		file: file,
		line: line,
	}
}

func (f *stackFrame) String() string {
	if f == nil {
		return "(unknown)"
	}
	return fmt.Sprintf("%s:%d %s()", f.file, f.line, f.fn.Name())
}

// OrPanic logs and panics on a non-nil error.
func OrPanic(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}
		log.Panicln("vkube error:", err)
	}
}
