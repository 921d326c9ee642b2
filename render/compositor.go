// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"strconv"

	"github.com/gogpu/gputypes"
)

// HistogramIntensity is the colormap scale applied to histogram density.
const HistogramIntensity = 1.1

var (
	backdropColor   = Color{0, 0, 0.1, 1}
	liveColor       = Color{1, 1, 1, 0.75}
	maxHoldColor    = Color{1, 0, 0, 0.75}
	gridColor       = Color{0.35, 0.35, 0.35, 0.6}
	labelColor      = Color{1, 1, 0.33, 1}
	colorScaleSteps = 32
)

// Compositor draws one pane from the engine resources onto a Canvas.
// It keeps scratch buffers between calls and is not safe for concurrent use.
type Compositor struct {
	points []Point
}

// NewCompositor creates a Compositor.
func NewCompositor() *Compositor {
	return &Compositor{}
}

// TextureU returns the horizontal texture window for a pane showing the
// normalized band window (center, span) out of n bins. Bins are stored in
// FFT order, so the window is shifted by half a texture to put DC in the
// middle, plus half a texel to sample texel centers. The result may exceed
// [0,1]; textures are sampled with repeat addressing on U.
func TextureU(n int, center, span float64) (u0, u1 float64) {
	tw := 1 / float64(n)
	u0 = 0.5 + tw/2 + center - span/2
	return u0, u0 + span
}

// WaterfallV returns the vertical texture window ending at the newest
// waterfall row. When v0 is negative the window wraps and must be sampled
// with repeat addressing.
func WaterfallV(pos int, span float64) (v0, v1 float64) {
	v1 = float64(pos) / WaterfallRows
	return v1 - span, v1
}

// VisibleBins returns the inclusive range of trace vertices inside the
// normalized band window (center, span), clamped to [1, n-1]. ok is false
// when the range is empty.
func VisibleBins(n int, center, span float64) (lo, hi int, ok bool) {
	lo = int(math.Ceil(float64(n) * (center - span/2)))
	hi = int(math.Floor(float64(n) * (center + span/2)))
	lo = max(lo, 1)
	hi = min(hi, n-1)
	return lo, hi, hi >= lo
}

// TraceTransform returns the transform taking trace vertices (x = 2i/n-1,
// y in dB) to device coordinates for pane d.
func TraceTransform(proj Affine, d *Descriptor, pwr PowerRange, n int) Affine {
	tw := 1 / float64(n)
	return proj.
		Then(Translate(d.X0, d.HistoY0)).
		Then(Scale(d.X1-d.X0, d.HistoY1-d.HistoY0)).
		Then(Scale(1, pwr.Scale())).
		Then(Translate(0, pwr.Offset())).
		Then(Scale(1/d.FreqSpan, 1)).
		Then(Translate(-d.FreqCenter+d.FreqSpan/2, 0)).
		Then(Translate(tw, 0)).
		Then(Scale(1-2*tw, 1)).
		Then(Translate(0.5, 0)).
		Then(Scale(0.5/(1-2*tw), 1))
}

// Draw composites pane d. The power range drives waterfall shading, trace
// placement and power labels; freq is the absolute range of the full band.
func (c *Compositor) Draw(cv Canvas, d *Descriptor, res *Resources, pwr PowerRange, freq FrequencyRange) {
	w, h := cv.Size()
	if w <= 0 || h <= 0 || d.X1 <= d.X0 || d.FreqSpan <= 0 || pwr.DBPerDiv <= 0 {
		return
	}
	proj := Ortho(float64(w), float64(h))
	n := res.BinCount()
	u0, u1 := TextureU(n, d.FreqCenter, d.FreqSpan)

	if d.ShowsWaterfall() && d.WaterfallY1 > d.WaterfallY0 {
		c.drawWaterfall(cv, proj, d, res, pwr, u0, u1)
	}

	spectrum := d.ShowsSpectrum() && d.HistoY1 > d.HistoY0
	if spectrum {
		histo := Rect(d.X0, d.HistoY0, d.X1, d.HistoY1).Transform(proj)
		if d.Options.Has(OptHistogram) {
			cv.DrawTexturedQuad(&TexturedQuad{
				Pos:      histo,
				UV:       Rect(u0, 0, u1, 1),
				Texture:  res.Histogram,
				Sampler:  Sampler{gputypes.AddressModeRepeat, gputypes.AddressModeClampToEdge, gputypes.FilterModeLinear},
				Colormap: res.HistogramColormap,
				Scale:    HistogramIntensity,
			})
		} else {
			cv.FillQuad(histo, backdropColor)
		}
		c.drawTraces(cv, proj, d, res, pwr)
		c.drawGrid(cv, proj, d, pwr, freq)
	}

	if d.Options.Has(OptChannels) {
		c.drawChannels(cv, proj, d)
	}
	if d.Options.Has(OptColorScale) {
		c.drawColorScales(cv, proj, d, res)
	}
}

func (c *Compositor) drawWaterfall(cv Canvas, proj Affine, d *Descriptor, res *Resources, pwr PowerRange, u0, u1 float64) {
	v0, v1 := WaterfallV(res.WaterfallPos, d.WaterfallSpan)
	addrV := gputypes.AddressModeClampToEdge
	if v0 < 0 {
		addrV = gputypes.AddressModeRepeat
	}
	cv.DrawTexturedQuad(&TexturedQuad{
		Pos:      Rect(d.X0, d.WaterfallY0, d.X1, d.WaterfallY1).Transform(proj),
		UV:       Rect(u0, v0, u1, v1),
		Texture:  res.Waterfall,
		Sampler:  Sampler{gputypes.AddressModeRepeat, addrV, gputypes.FilterModeLinear},
		Colormap: res.WaterfallColormap,
		Scale:    pwr.Scale(),
		Offset:   pwr.Offset(),
	})
}

func (c *Compositor) drawTraces(cv Canvas, proj Affine, d *Descriptor, res *Resources, pwr PowerRange) {
	n := res.BinCount()
	lo, hi, ok := VisibleBins(n, d.FreqCenter, d.FreqSpan)
	if !ok {
		return
	}
	m := TraceTransform(proj, d, pwr, n)
	_, yMin := proj.Apply(0, d.HistoY0)
	_, yMax := proj.Apply(0, d.HistoY1)

	trace := func(src []Point, col Color) {
		c.points = c.points[:0]
		for _, p := range src[lo : hi+1] {
			q := m.ApplyPoint(p)
			q.Y = min(max(q.Y, yMin), yMax)
			c.points = append(c.points, q)
		}
		cv.DrawLineStrip(c.points, col, 1)
	}
	if d.Options.Has(OptLive) {
		trace(res.Live(), liveColor)
	}
	if d.Options.Has(OptMaxHold) {
		trace(res.MaxHold(), maxHoldColor)
	}
}

// PowerLabel returns the label of power gridline i, counted from the
// bottom of the plot.
func PowerLabel(pwr PowerRange, i int) string {
	return strconv.Itoa(pwr.RefLevel - (PowerDivisions-i)*pwr.DBPerDiv)
}

// PaneFrequencyRange returns the absolute frequency range shown by d. A
// pane showing the whole band gets freq unchanged.
func PaneFrequencyRange(d *Descriptor, freq FrequencyRange) FrequencyRange {
	if d.FreqCenter == 0.5 && d.FreqSpan == 1 {
		return freq
	}
	return FrequencyRange{
		Center: freq.Center + freq.Span*(d.FreqCenter-0.5),
		Span:   freq.Span * d.FreqSpan,
	}
}

func (c *Compositor) drawGrid(cv Canvas, proj Affine, d *Descriptor, pwr PowerRange, freq FrequencyRange) {
	c.points = c.points[:0]
	for i := 0; i <= PowerDivisions; i++ {
		y := d.HistoY0 + float64(i)*d.HistoYDiv + 0.5
		c.points = append(c.points,
			proj.ApplyPoint(Point{d.X0 + 0.5, y}),
			proj.ApplyPoint(Point{d.X1 - 0.5, y}))
	}
	divs := max(d.FreqDivs, 1)
	for i := 0; i <= divs; i++ {
		x := d.X0 + float64(i)*d.XDiv + 0.5
		c.points = append(c.points,
			proj.ApplyPoint(Point{x, d.HistoY0 + 0.5}),
			proj.ApplyPoint(Point{x, d.HistoY1 - 0.5}))
	}
	cv.DrawLines(c.points, gridColor, 1)

	if d.Options.Has(OptLabelPower) {
		for i := 0; i <= PowerDivisions; i++ {
			y := d.HistoY0 + float64(i)*d.HistoYDiv
			cv.DrawText(PowerLabel(pwr, i), proj.ApplyPoint(Point{d.LabelPowerX, y}), AlignRight, labelColor)
		}
	}

	if d.Options.Has(OptLabelFrequency) && freq.Span > 0 {
		pr := PaneFrequencyRange(d, freq)
		axis := NewFreqAxis(pr.Center, pr.Span, divs)
		// Pull the outer labels inward so they stay inside the plot.
		spread := (cv.TextWidth(axis.Label(divs/2)) + cv.TextWidth(axis.Label(-divs/2))) / 2
		for i := 0; i <= divs; i++ {
			ib := i - divs/2
			ofs := math.Floor(-spread * float64(ib) / float64(divs))
			x := d.X0 + float64(i)*d.XDiv + ofs
			cv.DrawText(axis.Label(ib), proj.ApplyPoint(Point{x, d.LabelFreqY}), AlignCenter, labelColor)
		}
	}
}

func (c *Compositor) drawChannels(cv Canvas, proj Affine, d *Descriptor) {
	segs := Partition(d.Channels[:d.NumChannels])
	if segs == nil {
		return
	}
	fmap := d.FrequencyMap()
	for _, s := range segs {
		col := OverlayColor(s.Depth)
		if col.A <= 0 {
			continue
		}
		x0, _ := fmap.Apply(s.Start, 0)
		x1, _ := fmap.Apply(s.End, 0)
		x0 = min(max(x0, d.X0), d.X1)
		x1 = min(max(x1, d.X0), d.X1)
		if x1 <= x0 {
			continue
		}
		if d.ShowsWaterfall() && d.WaterfallY1 > d.WaterfallY0 {
			cv.FillQuad(Rect(x0, d.WaterfallY0, x1, d.WaterfallY1).Transform(proj), col)
		}
		if d.ShowsSpectrum() && d.HistoY1 > d.HistoY0 {
			cv.FillQuad(Rect(x0, d.HistoY0, x1, d.HistoY1).Transform(proj), col)
		}
	}
}

func (c *Compositor) drawColorScales(cv Canvas, proj Affine, d *Descriptor, res *Resources) {
	x0 := d.X1 + marginOuter
	x1 := x0 + colorScaleWidth
	strip := func(cm *Colormap, y0, y1 float64) {
		if y1 <= y0 {
			return
		}
		step := (y1 - y0) / float64(colorScaleSteps)
		for k := range colorScaleSteps {
			col := cm.Lookup((float64(k) + 0.5) / float64(colorScaleSteps))
			col.A = 1
			ya := y0 + float64(k)*step
			cv.FillQuad(Rect(x0, ya, x1, ya+step).Transform(proj), col)
		}
	}
	if d.ShowsWaterfall() {
		strip(res.WaterfallColormap, d.WaterfallY0, d.WaterfallY1)
	}
	if d.Options.Has(OptHistogram) {
		strip(res.HistogramColormap, d.HistoY0, d.HistoY1)
	}
}
