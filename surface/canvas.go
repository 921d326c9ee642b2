// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/spectra/cache"
	"github.com/gogpu/spectra/render"
)

// labelCacheSize bounds the rasterized labels kept between frames.
const labelCacheSize = 256

type labelKey struct {
	text  string
	color render.Color
}

type label struct {
	img  *gg.ImageBuf
	w, h int
}

// ggCanvas rasterizes render.Canvas calls through a gg.Context.
type ggCanvas struct {
	ctx  *gg.Context
	log  *slog.Logger
	face font.Face

	// quadImg is reused between frames.
	quadImg *image.RGBA
	labels  *cache.LRU[labelKey, label]
}

func newGGCanvas(ctx *gg.Context, log *slog.Logger) *ggCanvas {
	return &ggCanvas{
		ctx:    ctx,
		log:    log,
		face:   basicfont.Face7x13,
		labels: cache.New[labelKey, label](labelCacheSize),
	}
}

func (c *ggCanvas) Size() (int, int) {
	return c.ctx.Width(), c.ctx.Height()
}

// toPixel maps device coordinates to gg pixel space (origin top-left).
func (c *ggCanvas) toPixel(p render.Point) (float64, float64) {
	w, h := c.Size()
	return (p.X + 1) / 2 * float64(w), (1 - p.Y) / 2 * float64(h)
}

func (c *ggCanvas) setColor(col render.Color) {
	c.ctx.SetRGBA(col.R, col.G, col.B, col.A)
}

func (c *ggCanvas) Clear(col render.Color) {
	c.ctx.ClearWithColor(gg.RGBA{R: col.R, G: col.G, B: col.B, A: col.A})
}

func (c *ggCanvas) FillQuad(q render.Quad, col render.Color) {
	c.setColor(col)
	for i, p := range q {
		x, y := c.toPixel(p)
		if i == 0 {
			c.ctx.MoveTo(x, y)
		} else {
			c.ctx.LineTo(x, y)
		}
	}
	c.ctx.ClosePath()
	if err := c.ctx.Fill(); err != nil {
		c.log.Debug("surface: fill failed", "err", err)
	}
}

func (c *ggCanvas) DrawLines(pts []render.Point, col render.Color, width float64) {
	if len(pts) < 2 {
		return
	}
	c.setColor(col)
	c.ctx.SetLineWidth(width)
	for i := 0; i+1 < len(pts); i += 2 {
		x0, y0 := c.toPixel(pts[i])
		x1, y1 := c.toPixel(pts[i+1])
		c.ctx.MoveTo(x0, y0)
		c.ctx.LineTo(x1, y1)
	}
	if err := c.ctx.Stroke(); err != nil {
		c.log.Debug("surface: stroke failed", "err", err)
	}
}

func (c *ggCanvas) DrawLineStrip(pts []render.Point, col render.Color, width float64) {
	if len(pts) < 2 {
		return
	}
	c.setColor(col)
	c.ctx.SetLineWidth(width)
	x, y := c.toPixel(pts[0])
	c.ctx.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = c.toPixel(p)
		c.ctx.LineTo(x, y)
	}
	if err := c.ctx.Stroke(); err != nil {
		c.log.Debug("surface: stroke failed", "err", err)
	}
}

// DrawTexturedQuad shades the axis-aligned bounding box of q texel by
// texel, interpolating UV linearly across it.
func (c *ggCanvas) DrawTexturedQuad(q *render.TexturedQuad) {
	if q.Texture == nil || q.Colormap == nil {
		return
	}
	left, top := c.toPixel(q.Pos[3])
	right, bottom := c.toPixel(q.Pos[1])
	x0, y0 := int(math.Round(left)), int(math.Round(top))
	x1, y1 := int(math.Round(right)), int(math.Round(bottom))
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return
	}

	img := c.scratch(&c.quadImg, w, h)
	u0, v0 := q.UV[0].X, q.UV[0].Y
	du, dv := q.UV[2].X-u0, q.UV[2].Y-v0
	for iy := range h {
		// Row 0 of the image is the top of the quad.
		fy := 1 - (float64(iy)+0.5)/float64(h)
		v := v0 + fy*dv
		row := img.Pix[iy*img.Stride:]
		for ix := range w {
			u := u0 + (float64(ix)+0.5)/float64(w)*du
			val := q.Texture.Sample(u, v, q.Sampler)
			col := q.Colormap.Lookup(q.Scale * (float64(val) + q.Offset))
			a := col.A
			row[ix*4+0] = uint8(col.R*a*255 + 0.5)
			row[ix*4+1] = uint8(col.G*a*255 + 0.5)
			row[ix*4+2] = uint8(col.B*a*255 + 0.5)
			row[ix*4+3] = uint8(a*255 + 0.5)
		}
	}
	c.ctx.DrawImage(gg.ImageBufFromImage(img), float64(x0), float64(y0))
}

func (c *ggCanvas) DrawText(s string, at render.Point, align render.Align, col render.Color) {
	if s == "" {
		return
	}
	l := c.labels.GetOrCreate(labelKey{s, col}, func() label {
		return c.rasterize(s, col)
	})
	if l.img == nil {
		return
	}

	x, y := c.toPixel(at)
	switch align {
	case render.AlignCenter:
		x -= float64(l.w) / 2
	case render.AlignRight:
		x -= float64(l.w)
	}
	y -= float64(l.h) / 2
	c.ctx.DrawImage(l.img, math.Round(x), math.Round(y))
}

// rasterize draws s into a tight image.
func (c *ggCanvas) rasterize(s string, col render.Color) label {
	m := c.face.Metrics()
	w := font.MeasureString(c.face, s).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	if w <= 0 || h <= 0 {
		return label{}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{uint8(col.R * 255), uint8(col.G * 255), uint8(col.B * 255), uint8(col.A * 255)}),
		Face: c.face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(s)
	return label{img: gg.ImageBufFromImage(img), w: w, h: h}
}

func (c *ggCanvas) TextWidth(s string) float64 {
	return float64(font.MeasureString(c.face, s).Ceil())
}

// scratch returns *p resized to w x h, reallocating only when the size
// changes.
func (c *ggCanvas) scratch(p **image.RGBA, w, h int) *image.RGBA {
	if *p == nil || (*p).Rect.Dx() != w || (*p).Rect.Dy() != h {
		*p = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return *p
}

var _ render.Canvas = (*ggCanvas)(nil)
