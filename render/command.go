package render

import (
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/texture"
)

// Built-in plugin tags.
const (
	ImageType     = "gx.image"
	MaterialType  = "gx.material"
	RectangleType = "gx.rectangle"
	CircleType    = "gx.circle"
	ParticleType  = "gx.particle"
)

// Command is a draw request for a plugin.
type Command interface {
	command()
}

// ImageCommand draws part of an image.
//
// Without a destination, (SX, SY) is where the image is drawn and
// (SW, SH) is the size of the visible region, starting at the image
// origin. With a destination, (SX, SY, SW, SH) is the source region and
// (DX, DY, DW, DH) is the destination rectangle.
type ImageCommand struct {
	Source *texture.Source

	SX, SY, SW, SH float64
	DX, DY, DW, DH float64

	// HasSize is set when SW and SH were given.
	HasSize bool
	// HasDest is set when the destination rectangle was given.
	HasDest bool
}

// Placement is an ImageCommand resolved to a source view and a
// destination quad.
type Placement struct {
	// View is the source region in texels.
	View gx.Rect
	// Dest is the top-left corner of the quad.
	Dest gx.Point
	// Width and Height are the quad size.
	Width, Height float64
}

// Place resolves the call shape of c for an image of imgW by imgH texels.
// A missing size defaults to the image size.
func (c *ImageCommand) Place(imgW, imgH float64) Placement {
	sw, sh := imgW, imgH
	if c.HasSize {
		sw, sh = c.SW, c.SH
	}
	if c.HasDest {
		return Placement{
			View:   gx.R(c.SX, c.SY, sw, sh),
			Dest:   gx.Pt(c.DX, c.DY),
			Width:  c.DW,
			Height: c.DH,
		}
	}
	return Placement{
		View:   gx.R(0, 0, sw, sh),
		Dest:   gx.Pt(c.SX, c.SY),
		Width:  sw,
		Height: sh,
	}
}

// RectangleCommand fills a rectangle, or strokes it when StrokeWidth > 0.
type RectangleCommand struct {
	Rect        gx.Rect
	Color       gx.RGBA
	StrokeColor gx.RGBA
	StrokeWidth float64
}

// LineCommand draws a segment of the given thickness.
type LineCommand struct {
	Start, End gx.Point
	Color      gx.RGBA
	Thickness  float64
}

// PointCommand draws a square dot centered on At.
type PointCommand struct {
	At    gx.Point
	Color gx.RGBA
	Size  float64
}

// CircleCommand fills a circle with an optional stroke.
type CircleCommand struct {
	Center      gx.Point
	Radius      float64
	Color       gx.RGBA
	StrokeColor gx.RGBA
	StrokeWidth float64
}

// Particle is one particle instance.
type Particle struct {
	Position gx.Point
	Size     float64
	Rotation float64
	Color    gx.RGBA
	Opacity  float64
}

// ParticleCommand draws a set of particles, optionally textured.
type ParticleCommand struct {
	Particles []Particle
	Source    *texture.Source
}

func (*ImageCommand) command()     {}
func (*RectangleCommand) command() {}
func (*LineCommand) command()      {}
func (*PointCommand) command()     {}
func (*CircleCommand) command()    {}
func (*ParticleCommand) command()  {}
