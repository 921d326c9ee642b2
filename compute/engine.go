// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compute defines the contract between the render loop and the
// engines that turn sample batches into displayable resources.
package compute

import (
	"errors"
	"slices"

	"github.com/gogpu/spectra/render"
)

// Batching parameters, in units of the FFT length.
const (
	// BatchMult is the granularity of a batch: one waterfall row.
	BatchMult = 16
	// BatchMax caps the size of a single Process call.
	BatchMax = 1024
	// MaxIterations caps the number of Process calls per frame.
	MaxIterations = 8
)

// DefaultFFTLength is the FFT length engines start with.
const DefaultFFTLength = 1024

var fftLengths = []int{512, 1024, 2048, 4096, 8192, 16384, 32768}

// ErrInvalidFFTLength is returned for lengths outside FFTLengths.
var ErrInvalidFFTLength = errors.New("compute: unsupported FFT length")

// FFTLengths returns the supported FFT lengths in increasing order.
func FFTLengths() []int {
	return slices.Clone(fftLengths)
}

// ValidFFTLength reports whether n is a supported FFT length.
func ValidFFTLength(n int) bool {
	return slices.Contains(fftLengths, n)
}

// Engine processes sample batches and draws panes from the result.
//
// All methods but PosToFrequency and HitTest are called from the render
// goroutine, with the surface's device current. PosToFrequency and HitTest
// may be called from other goroutines; they only read the descriptor and
// the engine's frequency range, and the caller serializes them with
// SetFrequencyRange and Draw.
type Engine interface {
	// Release frees every resource held by the engine.
	Release()

	// Process consumes samples, a multiple of BatchMult*FFTLength() long.
	Process(samples []complex64)

	// Draw composites pane d onto the engine's canvas.
	Draw(d *render.Descriptor) error

	SetPowerRange(refLevel, dbPerDiv int)
	SetFrequencyRange(center, span float64)

	// SetWindow replaces the FFT window. len(coeffs) must equal FFTLength().
	SetWindow(coeffs []float32) error

	// SetFFTLength changes the FFT length, reallocating resources. The
	// window resets to rectangular until SetWindow is called again.
	SetFFTLength(n int) error
	FFTLength() int

	PosToFrequency(d *render.Descriptor, x float64) float64
	HitTest(d *render.Descriptor, x, y float64) render.Hit
}

// Factory creates an engine bound to the surface's device and canvas.
type Factory func(dev render.DeviceHandle, canvas render.Canvas) (Engine, error)
