package graphics

import (
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

// DrawImage draws src with its top-left corner at (x, y).
func (c *Context) DrawImage(src *texture.Source, x, y float64) {
	c.drawImage(&render.ImageCommand{Source: src, SX: x, SY: y})
}

// DrawImageSized draws the width by height region at the origin of src
// with its top-left corner at (x, y).
func (c *Context) DrawImageSized(src *texture.Source, x, y, width, height float64) {
	c.drawImage(&render.ImageCommand{Source: src, SX: x, SY: y, SW: width, SH: height, HasSize: true})
}

// DrawImageRect draws the source region (sx, sy, sw, sh) of src into the
// destination rectangle (dx, dy, dw, dh).
func (c *Context) DrawImageRect(src *texture.Source, sx, sy, sw, sh, dx, dy, dw, dh float64) {
	c.drawImage(&render.ImageCommand{
		Source: src,
		SX:     sx, SY: sy, SW: sw, SH: sh,
		DX: dx, DY: dy, DW: dw, DH: dh,
		HasSize: true,
		HasDest: true,
	})
}

func (c *Context) drawImage(cmd *render.ImageCommand) {
	switch {
	case cmd.HasSize && (cmd.SW == 0 || cmd.SH == 0):
		return
	case cmd.HasDest && (cmd.DW == 0 || cmd.DH == 0):
		return
	case cmd.Source == nil:
		gx.Logger().Warn("graphics: cannot draw a nil image")
		return
	case cmd.Source.Width() == 0 || cmd.Source.Height() == 0:
		return
	}
	if c.state.material != nil {
		c.Draw(render.MaterialType, cmd)
		return
	}
	c.Draw(render.ImageType, cmd)
}

// DrawLine draws a segment of the given thickness.
func (c *Context) DrawLine(start, end gx.Point, color gx.RGBA, thickness float64) {
	c.Draw(render.RectangleType, &render.LineCommand{Start: start, End: end, Color: color, Thickness: thickness})
}

// DrawRectangle fills a width by height rectangle at pos, stroking its
// inside edge when strokeWidth is positive.
func (c *Context) DrawRectangle(pos gx.Point, width, height float64, fill, stroke gx.RGBA, strokeWidth float64) {
	c.Draw(render.RectangleType, &render.RectangleCommand{
		Rect:        gx.R(pos.X, pos.Y, width, height),
		Color:       fill,
		StrokeColor: stroke,
		StrokeWidth: strokeWidth,
	})
}

// DrawCircle fills a circle, stroking its inside edge when strokeWidth is
// positive.
func (c *Context) DrawCircle(center gx.Point, radius float64, fill, stroke gx.RGBA, strokeWidth float64) {
	c.Draw(render.CircleType, &render.CircleCommand{
		Center:      center,
		Radius:      radius,
		Color:       fill,
		StrokeColor: stroke,
		StrokeWidth: strokeWidth,
	})
}

// DrawParticles draws particles, textured with src when it is not nil.
// The slice is read on Flush and must not be modified before then.
func (c *Context) DrawParticles(particles []render.Particle, src *texture.Source) {
	if len(particles) == 0 {
		return
	}
	c.Draw(render.ParticleType, &render.ParticleCommand{Particles: particles, Source: src})
}

// Debug draws diagnostic shapes through the shape renderers.
type Debug struct {
	ctx *Context
}

// DrawRect outlines the rectangle with four lines.
func (d *Debug) DrawRect(x, y, width, height float64, color gx.RGBA, thickness float64) {
	tl, tr := gx.Pt(x, y), gx.Pt(x+width, y)
	bl, br := gx.Pt(x, y+height), gx.Pt(x+width, y+height)
	d.DrawLine(tl, tr, color, thickness)
	d.DrawLine(tr, br, color, thickness)
	d.DrawLine(br, bl, color, thickness)
	d.DrawLine(bl, tl, color, thickness)
}

// DrawLine draws a segment.
func (d *Debug) DrawLine(start, end gx.Point, color gx.RGBA, thickness float64) {
	d.ctx.DrawLine(start, end, color, thickness)
}

// DrawPoint draws a square dot of the given size centered on p.
func (d *Debug) DrawPoint(p gx.Point, color gx.RGBA, size float64) {
	d.ctx.Draw(render.RectangleType, &render.PointCommand{At: p, Color: color, Size: size})
}

// DrawCircle draws a circle.
func (d *Debug) DrawCircle(center gx.Point, radius float64, fill, stroke gx.RGBA, strokeWidth float64) {
	d.ctx.DrawCircle(center, radius, fill, stroke, strokeWidth)
}
