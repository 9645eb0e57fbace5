package graphics

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/texture"
)

// Text is a single line of text rasterized into a texture source. The
// source is rebuilt when the text or color changes and uploaded again on
// its next draw.
type Text struct {
	Base

	face   font.Face
	value  string
	color  gx.RGBA
	source *texture.Source
	dirty  bool
}

// NewText returns a text graphic drawn with the 7x13 bitmap face.
func NewText(value string, color gx.RGBA) *Text {
	return NewTextFace(value, color, basicfont.Face7x13)
}

// NewTextFace returns a text graphic drawn with face.
func NewTextFace(value string, color gx.RGBA, face font.Face) *Text {
	return &Text{Base: DefaultBase(), face: face, value: value, color: color, dirty: true}
}

// Text returns the displayed string.
func (t *Text) Text() string { return t.value }

// SetText replaces the displayed string.
func (t *Text) SetText(value string) {
	if value != t.value {
		t.value = value
		t.dirty = true
	}
}

// Color returns the text color.
func (t *Text) Color() gx.RGBA { return t.color }

// SetColor replaces the text color.
func (t *Text) SetColor(c gx.RGBA) {
	if c != t.color {
		t.color = c
		t.dirty = true
	}
}

// size returns the pixel size of the rasterized text.
func (t *Text) size() (int, int) {
	if t.value == "" {
		return 0, 0
	}
	m := t.face.Metrics()
	w := font.MeasureString(t.face, t.value).Ceil()
	return w, (m.Ascent + m.Descent).Ceil()
}

// Source returns the texture source holding the rasterized text.
func (t *Text) Source() *texture.Source {
	if !t.dirty && t.source != nil {
		return t.source
	}
	t.dirty = false
	img := t.rasterize()
	if t.source == nil {
		t.source = texture.NewSource("text", img, texture.Options{})
	} else {
		t.source.SetImage(img)
	}
	return t.source
}

func (t *Text) rasterize() *image.RGBA {
	w, h := t.size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 {
		return img
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(t.color.Color()),
		Face: t.face,
		Dot:  fixed.Point26_6{Y: t.face.Metrics().Ascent},
	}
	d.DrawString(t.value)
	return img
}

func (t *Text) Draw(ctx *Context, x, y float64) {
	w, h := t.size()
	if w == 0 {
		return
	}
	src := t.Source()
	t.DrawWith(ctx, x, y, float64(w), float64(h), func(ctx *Context) {
		ctx.DrawImage(src, 0, 0)
	})
}

func (t *Text) LocalBounds() gx.Rect {
	w, h := t.size()
	return t.Bounds(float64(w), float64(h))
}

// Clone returns a copy with its own texture source.
func (t *Text) Clone() Graphic {
	c := *t
	c.source = nil
	c.dirty = true
	return &c
}
