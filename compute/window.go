// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowKind selects an FFT window function.
type WindowKind int

const (
	WindowRectangular WindowKind = iota
	WindowHann
	WindowHamming
	WindowBlackman
	WindowBlackmanHarris
	WindowNuttall
	WindowFlatTop
)

// DefaultWindow is the window engines are configured with at startup.
const DefaultWindow = WindowBlackmanHarris

var windowNames = [...]string{
	WindowRectangular:    "rectangular",
	WindowHann:           "hann",
	WindowHamming:        "hamming",
	WindowBlackman:       "blackman",
	WindowBlackmanHarris: "blackman-harris",
	WindowNuttall:        "nuttall",
	WindowFlatTop:        "flat-top",
}

var windowFuncs = [...]func([]float64) []float64{
	WindowRectangular:    window.Rectangular,
	WindowHann:           window.Hann,
	WindowHamming:        window.Hamming,
	WindowBlackman:       window.Blackman,
	WindowBlackmanHarris: window.BlackmanHarris,
	WindowNuttall:        window.Nuttall,
	WindowFlatTop:        window.FlatTop,
}

// String returns the configuration name of k.
func (k WindowKind) String() string {
	if k >= 0 && int(k) < len(windowNames) {
		return windowNames[k]
	}
	return fmt.Sprintf("WindowKind(%d)", int(k))
}

// ParseWindowKind parses a configuration name, case-insensitively.
func ParseWindowKind(s string) (WindowKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range windowNames {
		if name == s {
			return WindowKind(k), nil
		}
	}
	return 0, fmt.Errorf("compute: unknown window %q", s)
}

// BuildWindow returns n coefficients of window k, normalized so that their
// sum is n: a tone keeps the same displayed power whatever the window.
// Unknown kinds build a rectangular window.
func BuildWindow(k WindowKind, n int) []float32 {
	if n <= 0 {
		return nil
	}
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}
	fn := windowFuncs[WindowRectangular]
	if k >= 0 && int(k) < len(windowFuncs) {
		fn = windowFuncs[k]
	}
	seq = fn(seq)

	sum := 0.0
	for _, v := range seq {
		sum += v
	}
	norm := 1.0
	if sum != 0 {
		norm = float64(n) / sum
	}
	out := make([]float32, n)
	for i, v := range seq {
		out[i] = float32(v * norm)
	}
	return out
}
