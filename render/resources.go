// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"

	"github.com/gogpu/gputypes"
)

const (
	// WaterfallRows is the height of the waterfall texture. Rows are written
	// cyclically; the compositor reads them through repeat addressing.
	WaterfallRows = 1024

	// HistogramBuckets is the number of power buckets per histogram column.
	HistogramBuckets = 128
)

// FrequencyRange is an absolute frequency window, in Hz.
type FrequencyRange struct {
	Center float64
	Span   float64
}

// PowerRange is the displayed power window: RefLevel dB at the top of the
// plot and DBPerDiv dB per grid division below it.
type PowerRange struct {
	RefLevel int
	DBPerDiv int
}

// Scale returns the factor mapping dB onto the [0,1] plot height.
func (p PowerRange) Scale() float64 {
	return 1 / float64(PowerDivisions*p.DBPerDiv)
}

// Offset returns the dB offset applied before Scale, so that
// Scale*(RefLevel+Offset) == 1 and the bottom gridline maps to 0.
func (p PowerRange) Offset() float64 {
	return -float64(p.RefLevel - PowerDivisions*p.DBPerDiv)
}

// Normalize maps a dB value into plot units.
func (p PowerRange) Normalize(db float64) float64 {
	return p.Scale() * (db + p.Offset())
}

// Texture is a single-channel float texture held in host memory, row-major.
type Texture struct {
	Desc TextureDescriptor
	Data []float32
}

// NewTexture allocates a zeroed texture.
func NewTexture(label string, width, height int) *Texture {
	return &Texture{
		Desc: DataTextureDescriptor(label, width, height),
		Data: make([]float32, width*height),
	}
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return int(t.Desc.Width) }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return int(t.Desc.Height) }

// Row returns row y for writing.
func (t *Texture) Row(y int) []float32 {
	w := t.Width()
	return t.Data[y*w : (y+1)*w]
}

// At returns the texel (x, y) with addressing already applied by the caller.
func (t *Texture) At(x, y int) float32 {
	return t.Data[y*t.Width()+x]
}

// Sample reads the texture at normalized (u, v) through s.
func (t *Texture) Sample(u, v float64, s Sampler) float32 {
	w, h := t.Width(), t.Height()
	if w == 0 || h == 0 {
		return 0
	}
	if s.Filter != gputypes.FilterModeLinear {
		x := address(int(math.Floor(u*float64(w))), w, s.AddressU)
		y := address(int(math.Floor(v*float64(h))), h, s.AddressV)
		return t.At(x, y)
	}

	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	ax, ay := float32(fx-x0), float32(fy-y0)
	xa := address(int(x0), w, s.AddressU)
	xb := address(int(x0)+1, w, s.AddressU)
	ya := address(int(y0), h, s.AddressV)
	yb := address(int(y0)+1, h, s.AddressV)
	top := t.At(xa, ya)*(1-ax) + t.At(xb, ya)*ax
	bot := t.At(xa, yb)*(1-ax) + t.At(xb, yb)*ax
	return top*(1-ay) + bot*ay
}

func address(i, n int, mode gputypes.AddressMode) int {
	if mode == gputypes.AddressModeRepeat {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return min(max(i, 0), n-1)
}

// Resources are the per-engine buffers the compositor reads.
type Resources struct {
	// Waterfall holds one row of power values (dB) per processed batch.
	Waterfall *Texture
	// WaterfallPos is the next row to be written; the newest row is
	// WaterfallPos-1.
	WaterfallPos int

	// Histogram holds, per bin column, the hit density of each power bucket.
	Histogram *Texture

	// Spectrum holds the trace vertices: live trace at [0,N), max-hold at
	// [N,2N). Vertex i of either trace is at x = 2i/N - 1 with the power in
	// dB as y; index 0 carries the band-edge bin.
	Spectrum []Point

	WaterfallColormap *Colormap
	HistogramColormap *Colormap
}

// NewResources allocates resources for an FFT of n bins.
func NewResources(n int) *Resources {
	r := &Resources{
		Waterfall:         NewTexture("waterfall", n, WaterfallRows),
		Histogram:         NewTexture("histogram", n, HistogramBuckets),
		Spectrum:          make([]Point, 2*n),
		WaterfallColormap: WaterfallColormap(),
		HistogramColormap: HistogramColormap(),
	}
	for i := range n {
		x := 2*float64(i)/float64(n) - 1
		r.Spectrum[i].X = x
		r.Spectrum[n+i].X = x
	}
	return r
}

// BinCount returns the FFT length the resources were built for.
func (r *Resources) BinCount() int {
	return r.Waterfall.Width()
}

// Live returns the live trace vertices.
func (r *Resources) Live() []Point {
	return r.Spectrum[:r.BinCount()]
}

// MaxHold returns the max-hold trace vertices.
func (r *Resources) MaxHold() []Point {
	return r.Spectrum[r.BinCount():]
}
