// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Align selects the horizontal anchor of a text label.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Quad is a convex quadrilateral, corners in counter-clockwise order
// starting bottom-left.
type Quad [4]Point

// Rect returns the axis-aligned quad spanning (x0,y0)-(x1,y1).
func Rect(x0, y0, x1, y1 float64) Quad {
	return Quad{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

// Transform returns q with every corner mapped through m.
func (q Quad) Transform(m Affine) Quad {
	for i := range q {
		q[i] = m.ApplyPoint(q[i])
	}
	return q
}

// TexturedQuad draws a data texture through a colormap. Each texel value v
// is shaded as Colormap.Lookup(Scale*(v+Offset)).
type TexturedQuad struct {
	Pos      Quad
	UV       Quad
	Texture  *Texture
	Sampler  Sampler
	Colormap *Colormap
	Scale    float64
	Offset   float64
}

// Canvas is the draw target of the compositor. All positions are device
// coordinates: [-1,1] on both axes with y pointing up. Widths are pixels.
//
// A Canvas is used from the render goroutine only.
type Canvas interface {
	// Size returns the canvas size in pixels.
	Size() (width, height int)

	// Clear fills the whole canvas with c.
	Clear(c Color)

	// FillQuad fills q with c, blending by c.A.
	FillQuad(q Quad, c Color)

	// DrawTexturedQuad draws a colormapped texture.
	DrawTexturedQuad(q *TexturedQuad)

	// DrawLines strokes independent segments: pts[0]-pts[1], pts[2]-pts[3]...
	DrawLines(pts []Point, c Color, width float64)

	// DrawLineStrip strokes the polyline through pts.
	DrawLineStrip(pts []Point, c Color, width float64)

	// DrawText draws s anchored at at, aligned horizontally by align and
	// vertically centered.
	DrawText(s string, at Point, align Align, c Color)

	// TextWidth returns the rendered width of s in pixels.
	TextWidth(s string) float64
}
