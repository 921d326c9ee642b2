// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{}
)

// WithAlpha returns c with alpha a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// ColormapSize is the number of entries in a colormap.
const ColormapSize = 256

// Colormap is a lookup table from normalized intensity to color.
type Colormap struct {
	Name    string
	Entries [ColormapSize]Color
}

type colorStop struct {
	pos float64
	c   Color
}

func newColormap(name string, stops []colorStop) *Colormap {
	cm := &Colormap{Name: name}
	for i := range cm.Entries {
		t := float64(i) / (ColormapSize - 1)
		j := 1
		for j < len(stops)-1 && stops[j].pos < t {
			j++
		}
		a, b := stops[j-1], stops[j]
		f := 0.0
		if b.pos > a.pos {
			f = (t - a.pos) / (b.pos - a.pos)
		}
		f = min(max(f, 0), 1)
		cm.Entries[i] = Color{
			R: a.c.R*(1-f) + b.c.R*f,
			G: a.c.G*(1-f) + b.c.G*f,
			B: a.c.B*(1-f) + b.c.B*f,
			A: a.c.A*(1-f) + b.c.A*f,
		}
	}
	return cm
}

// Lookup returns the color for t, clamped to [0,1].
func (cm *Colormap) Lookup(t float64) Color {
	if t != t || t <= 0 {
		return cm.Entries[0]
	}
	if t >= 1 {
		return cm.Entries[ColormapSize-1]
	}
	return cm.Entries[int(t*(ColormapSize-1)+0.5)]
}

// WaterfallColormap returns the dark-to-hot map used for the waterfall.
func WaterfallColormap() *Colormap {
	return newColormap("waterfall", []colorStop{
		{0.00, Color{0, 0, 0, 1}},
		{0.15, Color{0, 0, 0.35, 1}},
		{0.30, Color{0, 0.1, 0.9, 1}},
		{0.45, Color{0, 0.75, 0.9, 1}},
		{0.60, Color{0.1, 0.9, 0.2, 1}},
		{0.75, Color{1, 0.95, 0, 1}},
		{0.90, Color{1, 0.15, 0, 1}},
		{1.00, Color{1, 1, 1, 1}},
	})
}

// HistogramColormap returns the map used for the histogram density.
// Zero density is fully transparent so the backdrop shows through.
func HistogramColormap() *Colormap {
	return newColormap("histogram", []colorStop{
		{0.00, Color{0, 0, 0, 0}},
		{0.05, Color{0.15, 0, 0.3, 1}},
		{0.35, Color{0.6, 0, 0.6, 1}},
		{0.65, Color{1, 0.45, 0.05, 1}},
		{1.00, Color{1, 1, 0.8, 1}},
	})
}
