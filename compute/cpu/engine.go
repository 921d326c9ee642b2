// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cpu is a software compute engine. It mirrors the GPU pipeline
// (windowed FFT, waterfall ring, decaying power histogram, live and
// max-hold traces) in host memory and composites through render.Canvas.
package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/gogpu/spectra/compute"
	"github.com/gogpu/spectra/render"
	"github.com/gogpu/spectra/render/shader"
)

const (
	floorDB = -200.0

	// holdDecayDB is subtracted from the max-hold trace per waterfall row.
	holdDecayDB = 0.5

	// histDecay is the histogram persistence per waterfall row.
	histDecay = 0.9
)

// ErrNoCanvas is returned by Draw when the engine has no canvas.
var ErrNoCanvas = errors.New("cpu: no canvas")

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFFTLength sets the initial FFT length. Unsupported lengths are
// ignored.
func WithFFTLength(n int) Option {
	return func(e *Engine) {
		if compute.ValidFFTLength(n) {
			e.n = n
		}
	}
}

// Engine is the software implementation of compute.Engine.
type Engine struct {
	log    *slog.Logger
	canvas render.Canvas
	comp   *render.Compositor
	module []uint32

	n      int
	fft    *fourier.CmplxFFT
	window []float32
	in     []complex128
	out    []complex128

	// Per-bin state in FFT order.
	rowAcc   []float64
	rowCount int
	live     []float32
	hold     []float32

	res *render.Resources

	pwr  render.PowerRange
	freq render.FrequencyRange
}

// New creates an engine drawing onto canvas. The device is not used.
//
// New compiles the colormap shader as its resource load and fails when the
// shader does not compile. The software path never runs the module; GPU
// hosts presenting the engine's textures take it from ShaderModule.
func New(dev render.DeviceHandle, canvas render.Canvas, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:    slog.New(slog.DiscardHandler),
		canvas: canvas,
		comp:   render.NewCompositor(),
		n:      compute.DefaultFFTLength,
		pwr:    render.PowerRange{RefLevel: 0, DBPerDiv: 10},
	}
	for _, opt := range opts {
		opt(e)
	}

	module, err := shader.Colormap()
	if err != nil {
		return nil, fmt.Errorf("cpu: load colormap shader: %w", err)
	}
	e.module = module

	e.alloc(e.n)
	e.window = compute.BuildWindow(compute.DefaultWindow, e.n)

	gpu := dev != nil && dev.Device() != nil
	e.log.Info("cpu: engine ready", "fft_len", e.n, "gpu_device", gpu, "shader_words", len(module))
	return e, nil
}

// Factory returns a compute.Factory creating software engines.
func Factory(opts ...Option) compute.Factory {
	return func(dev render.DeviceHandle, canvas render.Canvas) (compute.Engine, error) {
		return New(dev, canvas, opts...)
	}
}

func (e *Engine) alloc(n int) {
	e.n = n
	e.fft = fourier.NewCmplxFFT(n)
	e.in = make([]complex128, n)
	e.out = make([]complex128, n)
	e.rowAcc = make([]float64, n)
	e.rowCount = 0
	e.live = make([]float32, n)
	e.hold = make([]float32, n)
	for i := range n {
		e.live[i] = floorDB
		e.hold[i] = floorDB
	}
	e.res = render.NewResources(n)
	e.updateSpectrum()
}

// Release implements compute.Engine.
func (e *Engine) Release() {
	e.log.Debug("cpu: engine released")
	e.res = nil
	e.fft = nil
	e.canvas = nil
}

// ShaderModule returns the SPIR-V colormap pass matching the engine's
// shading, for hosts presenting the textures on a GPU. The engine itself
// does not execute it.
func (e *Engine) ShaderModule() []uint32 {
	return e.module
}

// Resources exposes the engine's textures and trace vertices.
func (e *Engine) Resources() *render.Resources {
	return e.res
}

// Process implements compute.Engine. Trailing samples short of a full FFT
// block are ignored.
func (e *Engine) Process(samples []complex64) {
	if e.res == nil {
		return
	}
	n := e.n
	norm := 1 / float64(n*n)
	hist := e.res.Histogram
	hitWeight := float32((1 - histDecay) / compute.BatchMult)

	for off := 0; off+n <= len(samples); off += n {
		for i, s := range samples[off : off+n] {
			w := float64(e.window[i])
			e.in[i] = complex(float64(real(s))*w, float64(imag(s))*w)
		}
		e.fft.Coefficients(e.out, e.in)

		for i, c := range e.out {
			p := (real(c)*real(c) + imag(c)*imag(c)) * norm
			e.rowAcc[i] += p
			db := float32(10 * math.Log10(p+1e-20))
			e.live[i] = db
			e.hold[i] = max(e.hold[i], db)

			t := e.pwr.Normalize(float64(db))
			if t >= 0 && t < 1 {
				b := int(t * render.HistogramBuckets)
				hist.Row(b)[i] += hitWeight
			}
		}

		e.rowCount++
		if e.rowCount == compute.BatchMult {
			e.flushRow()
		}
	}
	e.updateSpectrum()
}

// flushRow writes the averaged row into the waterfall ring and ages the
// histogram and max-hold state.
func (e *Engine) flushRow() {
	row := e.res.Waterfall.Row(e.res.WaterfallPos)
	for i, acc := range e.rowAcc {
		row[i] = float32(10 * math.Log10(acc/float64(e.rowCount)+1e-20))
		e.rowAcc[i] = 0
		e.hold[i] = max(e.hold[i]-holdDecayDB, floorDB)
	}
	e.rowCount = 0
	e.res.WaterfallPos = (e.res.WaterfallPos + 1) % render.WaterfallRows

	for i := range e.res.Histogram.Data {
		e.res.Histogram.Data[i] *= histDecay
	}
}

// updateSpectrum rewrites trace vertex heights in display order: vertex i
// holds bin i^(n/2), so the band edge comes first and DC sits at n/2.
func (e *Engine) updateSpectrum() {
	half := e.n / 2
	for i := range e.n {
		b := i ^ half
		e.res.Spectrum[i].Y = float64(e.live[b])
		e.res.Spectrum[e.n+i].Y = float64(e.hold[b])
	}
}

// Draw implements compute.Engine.
func (e *Engine) Draw(d *render.Descriptor) error {
	if e.canvas == nil || e.res == nil {
		return ErrNoCanvas
	}
	e.comp.Draw(e.canvas, d, e.res, e.pwr, e.freq)
	return nil
}

// SetPowerRange implements compute.Engine.
func (e *Engine) SetPowerRange(refLevel, dbPerDiv int) {
	e.pwr = render.PowerRange{RefLevel: refLevel, DBPerDiv: dbPerDiv}
}

// SetFrequencyRange implements compute.Engine.
func (e *Engine) SetFrequencyRange(center, span float64) {
	e.freq = render.FrequencyRange{Center: center, Span: span}
}

// SetWindow implements compute.Engine.
func (e *Engine) SetWindow(coeffs []float32) error {
	if len(coeffs) != e.n {
		return fmt.Errorf("cpu: window has %d coefficients, want %d", len(coeffs), e.n)
	}
	e.window = append(e.window[:0], coeffs...)
	return nil
}

// SetFFTLength implements compute.Engine.
func (e *Engine) SetFFTLength(n int) error {
	if !compute.ValidFFTLength(n) {
		return fmt.Errorf("cpu: %w: %d", compute.ErrInvalidFFTLength, n)
	}
	if n == e.n {
		return nil
	}
	e.log.Debug("cpu: fft length changed", "from", e.n, "to", n)
	e.alloc(n)
	e.window = compute.BuildWindow(compute.WindowRectangular, n)
	return nil
}

// FFTLength implements compute.Engine.
func (e *Engine) FFTLength() int {
	return e.n
}

// PosToFrequency implements compute.Engine.
func (e *Engine) PosToFrequency(d *render.Descriptor, x float64) float64 {
	return d.PosToFrequency(x, e.freq)
}

// HitTest implements compute.Engine.
func (e *Engine) HitTest(d *render.Descriptor, x, y float64) render.Hit {
	return d.PosInside(x, y)
}

var _ compute.Engine = (*Engine)(nil)
