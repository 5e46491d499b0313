// Copyright (c) 2024, The Vkube Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkube

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vk "github.com/goki/vulkan"
)

// newTestScheduler builds a swapchain over a fake driver with one
// command buffer per image and returns it with a ready Scheduler.
func newTestScheduler(t *testing.T, fd *fakeDriver, fw *fakeWindow) *Scheduler {
	t.Helper()
	sc := NewSwapchain(fd)
	w, h := fw.FramebufferSize()
	_, err := sc.Config(w, h)
	require.NoError(t, err)

	fs := NewScheduler(sc, fw)
	fs.Rebuild = func() error {
		fs.Cmds = fakeCmds(fd, len(sc.Images))
		return nil
	}
	fs.Cmds = fakeCmds(fd, len(sc.Images))
	return fs
}

func fakeCmds(fd *fakeDriver, n int) []vk.CommandBuffer {
	cmds := make([]vk.CommandBuffer, n)
	for i := range cmds {
		cmds[i] = vk.CommandBuffer(fd.ptr())
	}
	return cmds
}

func TestFrameProtocolOrder(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, 1280, 800))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}}}
	fs := newTestScheduler(t, fd, fw)

	idx := fs.Swap.ImageIdx
	im := fs.Swap.Images[idx]
	acq := im.ImageAcquired

	var wrote, recorded []int
	fs.WriteFrame = func(i int) { wrote = append(wrote, i) }
	fs.Record = func(i int) error { recorded = append(recorded, i); return nil }

	fd.events = nil
	require.NoError(t, fs.RenderFrame())

	assert.Equal(t, []string{"wait-fence", "reset-fence", "submit", "present", "acquire"}, fd.events)
	assert.Equal(t, []int{idx}, wrote)
	assert.Equal(t, []int{idx}, recorded)
	assert.Equal(t, uint64(1), fs.FrameCount)

	// the submission waits the semaphore the acquire signaled for this
	// image, signals its RenderDone and its fence, with its command
	// buffer; the present waits RenderDone
	require.Equal(t, 1, len(fd.submits))
	sb := fd.submits[0]
	assert.Equal(t, acq, sb.Wait)
	assert.Equal(t, im.RenderDone, sb.Signal)
	assert.Equal(t, im.Fence, sb.Fence)
	assert.Equal(t, fs.Cmds[idx], sb.Cmd)
	require.Equal(t, 1, len(fd.presents))
	assert.Equal(t, im.RenderDone, fd.presents[0].Wait)
	assert.Equal(t, uint32(idx), fd.presents[0].ImgIdx)
	assert.Empty(t, fd.errs)
}

func TestFenceDiscipline(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, 1280, 800))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}}}
	fs := newTestScheduler(t, fd, fw)

	// more frames than images, so every fence gets waited, reset, and
	// signaled again; the fake flags any wait that would deadlock
	for i := 0; i < 10; i++ {
		require.NoError(t, fs.RenderFrame())
	}
	assert.Equal(t, uint64(10), fs.FrameCount)
	for i, sb := range fd.submits {
		assert.Equal(t, fs.Swap.Images[int(fd.presents[i].ImgIdx)].Fence, sb.Fence)
	}
	assert.Empty(t, fd.errs)
}

func TestResizedConsumedOnce(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, vk.MaxUint32, vk.MaxUint32))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}, {640, 400}}}
	fs := newTestScheduler(t, fd, fw)

	fs.SetResized()
	fd.events = nil
	require.NoError(t, fs.RenderFrame())

	// the resize frame recreates and renders nothing
	assert.Empty(t, fd.submits)
	assert.Equal(t, image.Pt(640, 400), fs.Swap.Format.Size)
	assert.Equal(t, Ready, fs.State)
	assert.Equal(t, uint64(0), fs.FrameCount)

	// the flag was consumed: the next frame is a normal one
	require.NoError(t, fs.RenderFrame())
	assert.Equal(t, 1, len(fd.submits))
	assert.Equal(t, uint64(1), fs.FrameCount)
	assert.Empty(t, fd.errs)
}

func TestZeroSizeWaitsForSurface(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, vk.MaxUint32, vk.MaxUint32))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}}}
	fs := newTestScheduler(t, fd, fw)

	// minimized: two zero-size polls before a usable size appears
	fw.sizes = [][2]int{{0, 0}, {0, 0}, {640, 400}}
	fs.SetResized()
	require.NoError(t, fs.RenderFrame())

	assert.Equal(t, 2, fw.waits)
	assert.Equal(t, image.Pt(640, 400), fs.Swap.Format.Size)
	assert.Equal(t, Ready, fs.State)
	assert.Empty(t, fd.errs)
}

func TestOutdatedPresentRecreates(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, vk.MaxUint32, vk.MaxUint32))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}, {640, 400}}}
	fs := newTestScheduler(t, fd, fw)
	old := fs.Swap.Swapchain

	rebuilds := 0
	inner := fs.Rebuild
	fs.Rebuild = func() error { rebuilds++; return inner() }

	fd.presentScript = []vk.Result{vk.ErrorOutOfDate}
	require.NoError(t, fs.RenderFrame())

	// the frame still counts; the swapchain was replaced and dependent
	// resources rebuilt
	assert.Equal(t, uint64(1), fs.FrameCount)
	assert.NotEqual(t, old, fs.Swap.Swapchain)
	assert.Equal(t, image.Pt(640, 400), fs.Swap.Format.Size)
	assert.Equal(t, 1, rebuilds)
	assert.Equal(t, Ready, fs.State)
	n := len(fs.Swap.Images)
	assert.Equal(t, 1+n+(2*n+1)+n, fd.live())
	assert.Empty(t, fd.errs)
}

func TestSuboptimalAcquireRecreates(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, vk.MaxUint32, vk.MaxUint32))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}, {640, 400}}}
	fs := newTestScheduler(t, fd, fw)

	fd.acquireScript = []vk.Result{vk.Suboptimal}
	require.NoError(t, fs.RenderFrame())
	assert.Equal(t, image.Pt(640, 400), fs.Swap.Format.Size)
	assert.Equal(t, Ready, fs.State)
	assert.Empty(t, fd.errs)
}

func TestRecreateRetriesWhileOutdated(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, vk.MaxUint32, vk.MaxUint32))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}, {640, 400}}}
	fs := newTestScheduler(t, fd, fw)

	// the first two rebuilt swapchains come back already out of date
	// from their initial acquire, e.g. resizes landing mid-recreation
	fd.acquireScript = []vk.Result{vk.ErrorOutOfDate, vk.ErrorOutOfDate, vk.Success}
	fs.SetResized()
	require.NoError(t, fs.RenderFrame())

	assert.Equal(t, Ready, fs.State)
	n := len(fs.Swap.Images)
	assert.Equal(t, 1, len(fd.liveSwaps))
	assert.Equal(t, 2*n+1, len(fd.liveSems))
	assert.Equal(t, n, len(fd.liveFences))
	assert.Equal(t, n, len(fd.liveViews))
	assert.Empty(t, fd.errs)
}

func TestShutdownWaitsIdle(t *testing.T) {
	fd := newFakeDriver(fakeCaps(2, 0, 1280, 800))
	fw := &fakeWindow{sizes: [][2]int{{1280, 800}}}
	fs := newTestScheduler(t, fd, fw)

	fd.events = nil
	fs.Shutdown()
	assert.Equal(t, []string{"wait-idle"}, fd.events)
}
