// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"sync"

	"github.com/gogpu/spectra/render"
)

// Surface is a presentable draw target with a lifecycle bound to the
// render goroutine.
//
// Init, Update, Poll, Swap, Close, Canvas and Device are called from the
// render goroutine only. Size and SetCallbacks may be called from any
// goroutine. Host-side notifications (a window resize, the window being
// shown or hidden) are delivered through the Callbacks, possibly from
// another goroutine.
type Surface interface {
	// Init creates the draw target. It fires OnResize with the initial
	// size and OnVisibility once the target can be presented.
	Init() error

	// Update applies a pending resize and returns the current size.
	Update() (width, height int)

	// Poll processes pending host events.
	Poll()

	// Swap presents the frame drawn since the previous Swap.
	Swap() error

	// Close releases the draw target.
	Close() error

	// Canvas returns the draw target. Valid between Init and Close.
	Canvas() render.Canvas

	// Device returns the GPU device the surface presents with.
	Device() render.DeviceHandle

	// Size returns the current size in pixels.
	Size() (width, height int)

	// SetCallbacks installs the host notification callbacks.
	SetCallbacks(cb Callbacks)
}

// Callbacks receive host notifications. Nil fields are skipped.
type Callbacks struct {
	OnResize     func(width, height int)
	OnVisibility func(visible bool)
}

// Options configures surface creation.
type Options struct {
	Width  int
	Height int
}

// lifecycle holds the state shared by the surfaces in this package: the
// applied size, a pending resize and the callbacks.
type lifecycle struct {
	mu            sync.Mutex
	cb            Callbacks
	width, height int
	pendW, pendH  int
	pending       bool
	visible       bool
	initialized   bool
	frames        uint64
}

func newLifecycle(width, height int) lifecycle {
	return lifecycle{width: max(width, 1), height: max(height, 1), visible: true}
}

// SetCallbacks implements Surface.
func (l *lifecycle) SetCallbacks(cb Callbacks) {
	l.mu.Lock()
	l.cb = cb
	l.mu.Unlock()
}

// Size implements Surface.
func (l *lifecycle) Size() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.width, l.height
}

// Resize requests a new size. The draw target is resized by the next
// Update; OnResize fires immediately.
func (l *lifecycle) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	l.mu.Lock()
	l.pendW, l.pendH, l.pending = width, height, true
	cb := l.cb.OnResize
	init := l.initialized
	l.mu.Unlock()
	if cb != nil && init {
		cb(width, height)
	}
}

// SetVisible reports the host window as shown or hidden.
func (l *lifecycle) SetVisible(visible bool) {
	l.mu.Lock()
	changed := l.visible != visible
	l.visible = visible
	cb := l.cb.OnVisibility
	init := l.initialized
	l.mu.Unlock()
	if cb != nil && init && changed {
		cb(visible)
	}
}

// Visible reports the last visibility set by the host.
func (l *lifecycle) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// Frames returns the number of presented frames.
func (l *lifecycle) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// started marks the surface initialized and replays the initial size and
// visibility to the callbacks.
func (l *lifecycle) started() {
	l.mu.Lock()
	l.initialized = true
	cb := l.cb
	w, h, vis := l.width, l.height, l.visible
	l.mu.Unlock()
	if cb.OnResize != nil {
		cb.OnResize(w, h)
	}
	if cb.OnVisibility != nil {
		cb.OnVisibility(vis)
	}
}

func (l *lifecycle) stopped() {
	l.mu.Lock()
	l.initialized = false
	l.mu.Unlock()
}

// takePending returns the pending size, if any, and clears it.
func (l *lifecycle) takePending() (w, h int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.pending {
		return l.width, l.height, false
	}
	l.pending = false
	return l.pendW, l.pendH, true
}

func (l *lifecycle) applied(w, h int) {
	l.mu.Lock()
	l.width, l.height = w, h
	l.mu.Unlock()
}

func (l *lifecycle) presented() {
	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
}
