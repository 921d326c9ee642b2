// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"
)

func nearly(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAffineThenOrder(t *testing.T) {
	// Translate then scale: the scale is applied first.
	m := Translate(10, 0).Then(Scale(2, 3))
	x, y := m.Apply(1, 1)
	if x != 12 || y != 3 {
		t.Errorf("Apply(1,1) = (%v,%v), want (12,3)", x, y)
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(800, 600)
	tests := []struct {
		px, py float64
		nx, ny float64
	}{
		{0, 0, -1, -1},
		{800, 600, 1, 1},
		{400, 300, 0, 0},
		{200, 450, -0.5, 0.5},
	}
	for _, tt := range tests {
		x, y := m.Apply(tt.px, tt.py)
		if !nearly(x, tt.nx) || !nearly(y, tt.ny) {
			t.Errorf("Ortho.Apply(%v,%v) = (%v,%v), want (%v,%v)", tt.px, tt.py, x, y, tt.nx, tt.ny)
		}
	}
}

func TestAffineInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Affine
	}{
		{"identity", Identity()},
		{"translate", Translate(3, -7)},
		{"scale", Scale(4, 0.25)},
		{"chain", Translate(10, 20).Then(Scale(640, 1)).Then(Scale(1/0.2, 1)).Then(Translate(-0.4, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert() reported singular matrix")
			}
			if got := tt.m.Then(inv); !nearly(got.A, 1) || !nearly(got.E, 1) || !nearly(got.C, 0) || !nearly(got.F, 0) {
				t.Errorf("m * inv = %+v, want identity", got)
			}
		})
	}

	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("Invert() of singular matrix should fail")
	}
}

func TestIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if Translate(1, 0).IsIdentity() {
		t.Error("Translate(1,0).IsIdentity() = true")
	}
}
