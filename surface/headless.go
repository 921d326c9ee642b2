// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"sync"

	"github.com/gogpu/spectra/render"
)

// HeadlessSurface records frames as command lists instead of pixels. It
// suits hosts that replay frames elsewhere and tests that inspect what was
// drawn.
type HeadlessSurface struct {
	lifecycle

	// InitErr, when set, is returned by Init.
	InitErr error

	rec *render.Recorder

	lastMu sync.Mutex
	last   []render.Command
	closed bool
}

// NewHeadlessSurface creates a recording surface of the given size.
func NewHeadlessSurface(width, height int) *HeadlessSurface {
	return &HeadlessSurface{lifecycle: newLifecycle(width, height)}
}

// Init implements Surface.
func (s *HeadlessSurface) Init() error {
	if s.InitErr != nil {
		return s.InitErr
	}
	w, h := s.Size()
	s.rec = render.NewRecorder(w, h)
	s.lastMu.Lock()
	s.closed = false
	s.lastMu.Unlock()
	s.started()
	return nil
}

// Update implements Surface.
func (s *HeadlessSurface) Update() (int, int) {
	w, h, ok := s.takePending()
	if !ok || s.rec == nil {
		return s.Size()
	}
	s.rec.Resize(w, h)
	s.applied(w, h)
	return w, h
}

// Poll implements Surface.
func (s *HeadlessSurface) Poll() {}

// Swap implements Surface. The recorded frame becomes LastFrame.
func (s *HeadlessSurface) Swap() error {
	if s.rec == nil {
		return ErrNotInitialized
	}
	frame := append([]render.Command(nil), s.rec.Commands()...)
	s.rec.Reset()
	s.lastMu.Lock()
	s.last = frame
	s.lastMu.Unlock()
	s.presented()
	return nil
}

// Close implements Surface.
func (s *HeadlessSurface) Close() error {
	s.stopped()
	s.rec = nil
	s.lastMu.Lock()
	s.closed = true
	s.lastMu.Unlock()
	return nil
}

// Closed reports whether Close ran after the last Init.
func (s *HeadlessSurface) Closed() bool {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.closed
}

// Canvas implements Surface.
func (s *HeadlessSurface) Canvas() render.Canvas {
	if s.rec == nil {
		return nil
	}
	return s.rec
}

// Device implements Surface.
func (s *HeadlessSurface) Device() render.DeviceHandle {
	return render.NullDeviceHandle{}
}

// LastFrame returns the commands of the last presented frame.
func (s *HeadlessSurface) LastFrame() []render.Command {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.last
}

// Replay draws the last presented frame onto dst and reports whether there
// was one. It must not run concurrently with the render loop when dst is
// another surface's canvas.
func (s *HeadlessSurface) Replay(dst render.Canvas) bool {
	frame := s.LastFrame()
	if len(frame) == 0 || dst == nil {
		return false
	}
	render.Play(frame, dst)
	return true
}

var _ Surface = (*HeadlessSurface)(nil)
