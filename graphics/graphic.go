package graphics

import (
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/texture"
)

// Graphic is anything that can be drawn into a Context at a position.
type Graphic interface {
	// Draw draws the graphic with its local origin at (x, y).
	Draw(ctx *Context, x, y float64)

	// LocalBounds returns the bounds relative to the local origin.
	LocalBounds() gx.Rect

	// Clone returns an independent copy.
	Clone() Graphic
}

// Base holds the presentation settings shared by graphics. Use
// DefaultBase for a visible, untransformed graphic: a zero Opacity draws
// nothing and a zero Scale is treated as (1, 1).
type Base struct {
	Opacity        float64
	Rotation       float64
	Scale          gx.Point
	FlipHorizontal bool
	FlipVertical   bool
}

// DefaultBase returns full opacity, no rotation and unit scale.
func DefaultBase() Base {
	return Base{Opacity: 1, Scale: gx.Pt(1, 1)}
}

func (b *Base) scale() gx.Point {
	if b.Scale == (gx.Point{}) {
		return gx.Pt(1, 1)
	}
	return b.Scale
}

// Bounds scales the unscaled size to the local bounds of the graphic.
func (b *Base) Bounds(width, height float64) gx.Rect {
	s := b.scale()
	return gx.R(0, 0, width*s.X, height*s.Y)
}

// DrawWith sets up the transform and opacity of b for a graphic of the
// given unscaled size at (x, y) and calls paint, which draws at the
// origin. Rotation is about the center of the graphic.
func (b *Base) DrawWith(ctx *Context, x, y, width, height float64, paint func(ctx *Context)) {
	if b.Opacity <= 0 {
		return
	}
	ctx.Save()
	defer ctx.Restore()

	ctx.Translate(x, y)
	if s := b.scale(); s != gx.Pt(1, 1) {
		ctx.Scale(s.X, s.Y)
	}
	if b.Rotation != 0 {
		ctx.Translate(width/2, height/2)
		ctx.Rotate(b.Rotation)
		ctx.Translate(-width/2, -height/2)
	}
	if b.FlipHorizontal {
		ctx.Translate(width, 0)
		ctx.Scale(-1, 1)
	}
	if b.FlipVertical {
		ctx.Translate(0, height)
		ctx.Scale(1, -1)
	}
	ctx.SetOpacity(ctx.Opacity() * b.Opacity)
	paint(ctx)
}

// Sprite draws a region of an image, optionally resized.
type Sprite struct {
	Base

	Source *texture.Source

	// View is the source region in texels.
	View gx.Rect

	// Width and Height are the drawn size before Scale.
	Width, Height float64
}

// NewSprite returns a sprite showing all of src at its natural size.
func NewSprite(src *texture.Source) *Sprite {
	w, h := float64(src.Width()), float64(src.Height())
	return &Sprite{Base: DefaultBase(), Source: src, View: gx.R(0, 0, w, h), Width: w, Height: h}
}

// NewSpriteView returns a sprite showing the region view of src at the
// region's size.
func NewSpriteView(src *texture.Source, view gx.Rect) *Sprite {
	return &Sprite{Base: DefaultBase(), Source: src, View: view, Width: view.Width, Height: view.Height}
}

func (s *Sprite) Draw(ctx *Context, x, y float64) {
	s.DrawWith(ctx, x, y, s.Width, s.Height, func(ctx *Context) {
		v := s.View
		ctx.DrawImageRect(s.Source, v.X, v.Y, v.Width, v.Height, 0, 0, s.Width, s.Height)
	})
}

func (s *Sprite) LocalBounds() gx.Rect { return s.Bounds(s.Width, s.Height) }

func (s *Sprite) Clone() Graphic {
	c := *s
	return &c
}

// SheetGrid describes a uniform grid of sprites within an image.
type SheetGrid struct {
	Rows, Columns int
	SpriteWidth   float64
	SpriteHeight  float64

	// Origin is the top-left of the first sprite; Margin is the gap
	// between neighbours.
	Origin gx.Point
	Margin gx.Point
}

// SpriteSheet is a grid of sprites cut from one image, stored row-major.
type SpriteSheet struct {
	Base

	Sprites []*Sprite
	Rows    int
	Columns int
}

// NewSpriteSheet cuts src along grid.
func NewSpriteSheet(src *texture.Source, grid SheetGrid) *SpriteSheet {
	sheet := &SpriteSheet{
		Base:    DefaultBase(),
		Sprites: make([]*Sprite, 0, grid.Rows*grid.Columns),
		Rows:    grid.Rows,
		Columns: grid.Columns,
	}
	for row := range grid.Rows {
		for col := range grid.Columns {
			view := gx.R(
				grid.Origin.X+float64(col)*(grid.SpriteWidth+grid.Margin.X),
				grid.Origin.Y+float64(row)*(grid.SpriteHeight+grid.Margin.Y),
				grid.SpriteWidth, grid.SpriteHeight,
			)
			sheet.Sprites = append(sheet.Sprites, NewSpriteView(src, view))
		}
	}
	return sheet
}

// Sprite returns the sprite at column x and row y, or nil if out of range.
func (s *SpriteSheet) Sprite(x, y int) *Sprite {
	if x < 0 || y < 0 || x >= s.Columns || y >= s.Rows {
		return nil
	}
	return s.Sprites[y*s.Columns+x]
}

// cell returns the size of one grid cell.
func (s *SpriteSheet) cell() (float64, float64) {
	if len(s.Sprites) == 0 {
		return 0, 0
	}
	return s.Sprites[0].Width, s.Sprites[0].Height
}

// Draw lays the sprites out on their grid.
func (s *SpriteSheet) Draw(ctx *Context, x, y float64) {
	cw, ch := s.cell()
	s.DrawWith(ctx, x, y, cw*float64(s.Columns), ch*float64(s.Rows), func(ctx *Context) {
		for i, sp := range s.Sprites {
			sp.Draw(ctx, float64(i%s.Columns)*cw, float64(i/s.Columns)*ch)
		}
	})
}

func (s *SpriteSheet) LocalBounds() gx.Rect {
	cw, ch := s.cell()
	return s.Bounds(cw*float64(s.Columns), ch*float64(s.Rows))
}

func (s *SpriteSheet) Clone() Graphic {
	c := *s
	c.Sprites = make([]*Sprite, len(s.Sprites))
	for i, sp := range s.Sprites {
		c.Sprites[i] = sp.Clone().(*Sprite)
	}
	return &c
}

// Member is a graphic placed in a Group.
type Member struct {
	Graphic Graphic
	Offset  gx.Point
}

// Group draws several graphics as one.
type Group struct {
	Base
	Members []Member
}

// NewGroup returns a group of members.
func NewGroup(members ...Member) *Group {
	return &Group{Base: DefaultBase(), Members: members}
}

func (g *Group) Draw(ctx *Context, x, y float64) {
	b := g.bounds()
	g.DrawWith(ctx, x, y, b.Right(), b.Bottom(), func(ctx *Context) {
		for _, m := range g.Members {
			m.Graphic.Draw(ctx, m.Offset.X, m.Offset.Y)
		}
	})
}

// bounds returns the unscaled union of member bounds.
func (g *Group) bounds() gx.Rect {
	var r gx.Rect
	for _, m := range g.Members {
		r = r.Union(m.Graphic.LocalBounds().Translate(m.Offset.X, m.Offset.Y))
	}
	return r
}

func (g *Group) LocalBounds() gx.Rect {
	b := g.bounds()
	s := g.scale()
	return gx.R(b.X*s.X, b.Y*s.Y, b.Width*s.X, b.Height*s.Y)
}

func (g *Group) Clone() Graphic {
	c := *g
	c.Members = make([]Member, len(g.Members))
	for i, m := range g.Members {
		c.Members[i] = Member{Graphic: m.Graphic.Clone(), Offset: m.Offset}
	}
	return &c
}
