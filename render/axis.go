// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type siUnit struct {
	scale  float64
	suffix string
}

var siUnits = []siUnit{
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
}

// FreqAxis formats the labels of a frequency grid of Divs divisions
// spanning Span Hz around Center Hz. The center gridline carries the
// absolute frequency; the others carry their signed offset from it.
type FreqAxis struct {
	Center float64
	Span   float64
	Divs   int

	step     float64
	unit     siUnit
	decimals int
	printer  *message.Printer
}

// NewFreqAxis builds the axis for the given range and division count.
func NewFreqAxis(center, span float64, divs int) *FreqAxis {
	a := &FreqAxis{
		Center:  center,
		Span:    span,
		Divs:    max(divs, 1),
		printer: message.NewPrinter(language.English),
	}
	a.step = span / float64(a.Divs)

	ref := math.Abs(a.step)
	if ref == 0 {
		ref = math.Abs(center)
	}
	a.unit = siUnits[len(siUnits)-1]
	for _, u := range siUnits {
		if ref >= u.scale {
			a.unit = u
			break
		}
	}

	r := math.Abs(a.step) / a.unit.scale
	for a.decimals < 3 {
		p := r * math.Pow10(a.decimals)
		if math.Abs(p-math.Round(p)) < 1e-6 {
			break
		}
		a.decimals++
	}
	return a
}

// Step returns the frequency distance between gridlines.
func (a *FreqAxis) Step() float64 {
	return a.step
}

// Label returns the label of gridline i, counted from the center line
// (i in [-Divs/2, Divs/2]). An empty range yields empty labels.
func (a *FreqAxis) Label(i int) string {
	if a.Span <= 0 {
		return ""
	}
	format := fmt.Sprintf("%%.%df%%s", a.decimals)
	if i == 0 {
		return a.printer.Sprintf(format, a.Center/a.unit.scale, a.unit.suffix)
	}
	v := float64(i) * a.step / a.unit.scale
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + a.printer.Sprintf(format, math.Abs(v), a.unit.suffix)
}
