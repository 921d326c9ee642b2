// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "math"

// Point is a 2D position, either in pixels or in device coordinates
// depending on context.
type Point struct {
	X, Y float64
}

// Affine is a 2D affine transformation in row-major 2x3 form:
//
//	| a  b  c |
//	| d  e  f |
//
// mapping (x, y) to (a*x + b*y + c, d*x + e*y + f).
//
// Compositing builds transforms the way a fixed-function pipeline builds
// its model-view stack: starting from the projection and post-multiplying
// each step with Then, so the last step added is the first one applied to
// incoming vertices.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate creates a translation.
func Translate(x, y float64) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling.
func Scale(x, y float64) Affine {
	return Affine{A: x, E: y}
}

// Ortho maps the pixel rectangle [0,w]x[0,h] (origin bottom-left) onto
// device coordinates [-1,1]x[-1,1].
func Ortho(w, h float64) Affine {
	return Translate(-1, -1).Then(Scale(2/w, 2/h))
}

// Then returns m * next: next is applied to points before m.
func (m Affine) Then(next Affine) Affine {
	return Affine{
		A: m.A*next.A + m.B*next.D,
		B: m.A*next.B + m.B*next.E,
		C: m.A*next.C + m.B*next.F + m.C,
		D: m.D*next.A + m.E*next.D,
		E: m.D*next.B + m.E*next.E,
		F: m.D*next.C + m.E*next.F + m.F,
	}
}

// Apply transforms the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// ApplyPoint transforms p.
func (m Affine) ApplyPoint(p Point) Point {
	x, y := m.Apply(p.X, p.Y)
	return Point{X: x, Y: y}
}

// Invert returns the inverse transformation and whether one exists.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}

// IsIdentity reports whether m is exactly the identity.
func (m Affine) IsIdentity() bool {
	return m == Identity()
}
