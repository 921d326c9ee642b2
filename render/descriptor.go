// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// Options selects what a pane draws. Flags combine with bitwise OR.
type Options uint32

const (
	// OptWaterfall draws the scrolling waterfall.
	OptWaterfall Options = 1 << iota
	// OptHistogram draws the power histogram.
	OptHistogram
	// OptLive draws the live spectrum trace.
	OptLive
	// OptMaxHold draws the max-hold trace.
	OptMaxHold
	// OptLabelPower labels the power gridlines.
	OptLabelPower
	// OptLabelTime reserves the left margin for time labels.
	OptLabelTime
	// OptLabelFrequency labels the frequency gridlines.
	OptLabelFrequency
	// OptColorScale draws colormap legends right of the plot.
	OptColorScale
	// OptChannels shades the channel overlays.
	OptChannels
)

// Has reports whether all flags in o are set.
func (opts Options) Has(o Options) bool {
	return opts&o == o
}

// Any reports whether at least one flag in o is set.
func (opts Options) Any(o Options) bool {
	return opts&o != 0
}

// spectrumOptions are the options that need the histogram area.
const spectrumOptions = OptHistogram | OptLive | OptMaxHold

// MaxChannels is the capacity of the per-pane channel overlay table.
const MaxChannels = 8

// Channel is a highlighted frequency region in normalized band units.
// The region spans Center-Width/2 to Center+Width/2.
type Channel struct {
	Enabled bool
	Center  float64
	Width   float64
}

// Geometry constants, in pixels.
const (
	marginOuter     = 10
	labelPowerWidth = 30
	colorScaleWidth = 10
	labelFreqHeight = 10
	paneGap         = 10

	// PowerDivisions is the number of vertical power divisions.
	PowerDivisions = 10
)

// Descriptor describes one pane: where it is, what it shows and which part
// of the band it covers. The layout engine writes the input fields, then
// Refresh derives the geometry consumed by the compositor.
//
// Positions are window pixels with the origin at the bottom-left corner.
type Descriptor struct {
	PosX, PosY    int
	Width, Height int

	// Ratio is the share of the plot height given to the histogram when
	// both histogram and waterfall are shown.
	Ratio float64

	Options Options

	// FreqCenter and FreqSpan select the displayed part of the band,
	// normalized so the full band is center 0.5, span 1.
	FreqCenter float64
	FreqSpan   float64

	// FreqDivs is the number of frequency grid divisions.
	FreqDivs int

	Channels    [MaxChannels]Channel
	NumChannels int

	// Derived by Refresh.
	X0, X1                   float64
	XDiv                     float64
	HistoY0, HistoY1         float64
	HistoYDiv                float64
	WaterfallY0, WaterfallY1 float64
	// WaterfallSpan is the fraction of the waterfall texture rows shown.
	WaterfallSpan float64
	// LabelPowerX is the right edge of the power labels.
	LabelPowerX float64
	// LabelFreqY is the baseline row of the frequency labels.
	LabelFreqY float64
}

// NewDescriptor returns a full-band pane with every display option on
// except channels.
func NewDescriptor() Descriptor {
	return Descriptor{
		Ratio: 0.5,
		Options: OptWaterfall | OptHistogram | OptLive | OptMaxHold |
			OptLabelPower | OptLabelTime | OptLabelFrequency | OptColorScale,
		FreqCenter: 0.5,
		FreqSpan:   1,
		FreqDivs:   10,
	}
}

// SetChannel stores ch at index i, growing NumChannels as needed.
// Indices outside the table are ignored.
func (d *Descriptor) SetChannel(i int, ch Channel) {
	if i < 0 || i >= MaxChannels {
		return
	}
	d.Channels[i] = ch
	if i >= d.NumChannels {
		d.NumChannels = i + 1
	}
}

// ShowsSpectrum reports whether the histogram area is in use.
func (d *Descriptor) ShowsSpectrum() bool {
	return d.Options.Any(spectrumOptions)
}

// ShowsWaterfall reports whether the waterfall area is in use.
func (d *Descriptor) ShowsWaterfall() bool {
	return d.Options.Has(OptWaterfall)
}

// Refresh recomputes the derived geometry from the input fields.
func (d *Descriptor) Refresh() {
	divs := max(d.FreqDivs, 1)

	// Horizontal: left margin plus power/time labels, right margin plus
	// color scale, then an integer pitch per division, centered.
	left := marginOuter
	if d.Options.Any(OptLabelPower | OptLabelTime) {
		left += labelPowerWidth
	}
	right := marginOuter
	if d.Options.Has(OptColorScale) {
		right += colorScaleWidth + marginOuter
	}
	avail := max(d.Width-left-right, 0)
	xdiv := avail / divs
	over := avail - xdiv*divs

	d.XDiv = float64(xdiv)
	d.X0 = float64(d.PosX + left + over/2)
	d.X1 = d.X0 + float64(xdiv*divs)
	d.LabelPowerX = d.X0 - 5

	// Vertical: waterfall at the bottom, histogram above it.
	bottom := marginOuter
	if d.Options.Has(OptLabelFrequency) {
		bottom += labelFreqHeight
	}
	top := marginOuter
	spectrum, waterfall := d.ShowsSpectrum(), d.ShowsWaterfall()
	gap := 0
	if spectrum && waterfall {
		gap = paneGap
	}
	vavail := max(d.Height-bottom-top-gap, 0)

	var histo, wf int
	switch {
	case spectrum && waterfall:
		histo = int(float64(vavail)*d.Ratio) / PowerDivisions * PowerDivisions
		wf = vavail - histo
	case spectrum:
		histo = vavail / PowerDivisions * PowerDivisions
	case waterfall:
		wf = vavail
	}

	y := float64(d.PosY + bottom)
	d.WaterfallY0 = y
	d.WaterfallY1 = y + float64(wf)
	d.HistoY0 = d.WaterfallY1 + float64(gap)
	if !waterfall {
		d.HistoY0 = y
	}
	d.HistoY1 = d.HistoY0 + float64(histo)
	d.HistoYDiv = float64(histo / PowerDivisions)
	d.LabelFreqY = float64(d.PosY + marginOuter/2)

	d.WaterfallSpan = math.Min(float64(wf)/WaterfallRows, 1)
}

// Hit is the result of a hit test.
type Hit uint8

const (
	// HitPlot is set for any point inside a plot area.
	HitPlot Hit = 1 << iota
	// HitHistogram is set inside the histogram/trace area.
	HitHistogram
	// HitWaterfall is set inside the waterfall area.
	HitWaterfall
)

// PosInside hit-tests the window pixel position (x, y).
func (d *Descriptor) PosInside(x, y float64) Hit {
	if d.X1 <= d.X0 || x < d.X0 || x > d.X1 {
		return 0
	}
	if d.ShowsSpectrum() && y >= d.HistoY0 && y <= d.HistoY1 && d.HistoY1 > d.HistoY0 {
		return HitPlot | HitHistogram
	}
	if d.ShowsWaterfall() && y >= d.WaterfallY0 && y <= d.WaterfallY1 && d.WaterfallY1 > d.WaterfallY0 {
		return HitPlot | HitWaterfall
	}
	return 0
}

// FrequencyMap returns the transform from normalized band position to the
// window x coordinate of this pane.
func (d *Descriptor) FrequencyMap() Affine {
	span := d.FreqSpan
	if span <= 0 {
		span = 1
	}
	return Translate(d.X0, 0).
		Then(Scale(d.X1-d.X0, 1)).
		Then(Scale(1/span, 1)).
		Then(Translate(-(d.FreqCenter - span/2), 0))
}

// BandPosition maps window x back to a normalized band position.
func (d *Descriptor) BandPosition(x float64) float64 {
	inv, ok := d.FrequencyMap().Invert()
	if !ok {
		return d.FreqCenter
	}
	n, _ := inv.Apply(x, 0)
	return n
}

// PosToFrequency maps window x to an absolute frequency within fr.
func (d *Descriptor) PosToFrequency(x float64, fr FrequencyRange) float64 {
	return fr.Center + (d.BandPosition(x)-0.5)*fr.Span
}
