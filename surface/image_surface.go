// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"

	"github.com/gogpu/spectra/render"
)

// ErrNotInitialized is returned by surfaces used before Init.
var ErrNotInitialized = errors.New("surface: not initialized")

// FrameFunc observes presented frames. It runs on the render goroutine
// inside Swap.
type FrameFunc func(frame uint64, s *ImageSurface)

// ImageSurface is an offscreen surface rasterizing through gg. It has no
// window: the host drives size and visibility through Resize and
// SetVisible, and reads frames back with Snapshot or an OnFrame hook.
//
// Example:
//
//	s := surface.NewImageSurface(1024, 768)
//	s.OnFrame(func(n uint64, s *surface.ImageSurface) {
//	    _ = s.SavePNG(fmt.Sprintf("frame-%04d.png", n))
//	})
type ImageSurface struct {
	lifecycle

	log     *slog.Logger
	ctx     *gg.Context
	canvas  *ggCanvas
	onFrame FrameFunc

	snapMu sync.Mutex
	snap   *image.RGBA
}

// NewImageSurface creates an offscreen surface of the given size. Sizes
// below one pixel are raised to one.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{
		lifecycle: newLifecycle(width, height),
		log:       slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger used for rasterization diagnostics.
func (s *ImageSurface) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// OnFrame installs a hook called after every Swap. Call before Init.
func (s *ImageSurface) OnFrame(fn FrameFunc) {
	s.onFrame = fn
}

// Init implements Surface.
func (s *ImageSurface) Init() error {
	w, h := s.Size()
	s.ctx = gg.NewContext(w, h)
	s.canvas = newGGCanvas(s.ctx, s.log)
	s.log.Info("surface: image surface ready", "width", w, "height", h)
	s.started()
	return nil
}

// Update implements Surface.
func (s *ImageSurface) Update() (int, int) {
	w, h, ok := s.takePending()
	if !ok || s.ctx == nil {
		return s.Size()
	}
	if err := s.ctx.Resize(w, h); err != nil {
		s.log.Warn("surface: resize failed", "width", w, "height", h, "err", err)
		return s.Size()
	}
	s.applied(w, h)
	return w, h
}

// Poll implements Surface. An offscreen surface has no event queue.
func (s *ImageSurface) Poll() {}

// Swap implements Surface. It publishes the frame for Snapshot and runs
// the OnFrame hook.
func (s *ImageSurface) Swap() error {
	if s.ctx == nil {
		return ErrNotInitialized
	}
	src := s.ctx.Image()
	s.snapMu.Lock()
	if s.snap == nil || s.snap.Bounds() != src.Bounds() {
		s.snap = image.NewRGBA(src.Bounds())
	}
	draw.Draw(s.snap, s.snap.Bounds(), src, src.Bounds().Min, draw.Src)
	s.snapMu.Unlock()

	s.presented()
	if s.onFrame != nil {
		s.onFrame(s.Frames(), s)
	}
	return nil
}

// Close implements Surface.
func (s *ImageSurface) Close() error {
	if s.ctx == nil {
		return nil
	}
	s.stopped()
	err := s.ctx.Close()
	s.ctx = nil
	s.canvas = nil
	return err
}

// Canvas implements Surface.
func (s *ImageSurface) Canvas() render.Canvas {
	if s.canvas == nil {
		return nil
	}
	return s.canvas
}

// Device implements Surface. Offscreen surfaces have no GPU device.
func (s *ImageSurface) Device() render.DeviceHandle {
	return render.NullDeviceHandle{}
}

// Snapshot returns a copy of the last presented frame, or nil before the
// first Swap.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.snap == nil {
		return nil
	}
	out := image.NewRGBA(s.snap.Bounds())
	copy(out.Pix, s.snap.Pix)
	return out
}

// SavePNG writes the current draw target to path. It must be called from
// the render goroutine, typically from an OnFrame hook.
func (s *ImageSurface) SavePNG(path string) error {
	if s.ctx == nil {
		return ErrNotInitialized
	}
	if err := s.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("surface: save %s: %w", path, err)
	}
	return nil
}

var _ Surface = (*ImageSurface)(nil)
