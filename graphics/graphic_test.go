package graphics

import (
	"testing"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/render"
)

func TestSpriteDraw(t *testing.T) {
	ctx, dev := newContext(t)
	s := NewSprite(newSource(8, 4))
	s.FlipHorizontal = true
	s.Draw(ctx, 10, 20)

	hidden := s.Clone().(*Sprite)
	hidden.Opacity = 0
	hidden.Draw(ctx, 0, 0)
	mustFlush(t, ctx)

	if s.Opacity != 1 {
		t.Fatal("Clone shares state with the original")
	}
	d := dev.Draws[0]
	if d.InstanceCount != 1 {
		t.Fatalf("instances = %d, want 1", d.InstanceCount)
	}
	if a := instanceFloat(d, 0, "mat_col1"); a != -1 {
		t.Errorf("flipped x scale = %v, want -1", a)
	}
	if x := instanceFloat(d, 0, "mat_col3"); x != 18 {
		t.Errorf("flipped translation = %v, want 18", x)
	}
	if w := instanceFloat(d, 0, "res"); w != 8 {
		t.Errorf("quad width = %v, want 8", w)
	}
	if b := s.LocalBounds(); b != gx.R(0, 0, 8, 4) {
		t.Errorf("LocalBounds() = %v", b)
	}
}

func TestSpriteScaleBounds(t *testing.T) {
	s := NewSprite(newSource(8, 4))
	s.Scale = gx.Pt(2, 3)
	if b := s.LocalBounds(); b != gx.R(0, 0, 16, 12) {
		t.Errorf("LocalBounds() = %v", b)
	}
	var zero Sprite
	zero.Width, zero.Height = 5, 5
	if b := zero.LocalBounds(); b != gx.R(0, 0, 5, 5) {
		t.Errorf("zero Scale bounds = %v, want unit scale", b)
	}
}

func TestSpriteSheet(t *testing.T) {
	src := newSource(64, 64)
	sheet := NewSpriteSheet(src, SheetGrid{
		Rows: 2, Columns: 3,
		SpriteWidth: 16, SpriteHeight: 16,
		Origin: gx.Pt(2, 2),
		Margin: gx.Pt(1, 1),
	})
	if len(sheet.Sprites) != 6 {
		t.Fatalf("sprites = %d, want 6", len(sheet.Sprites))
	}
	if v := sheet.Sprite(2, 1).View; v != gx.R(36, 19, 16, 16) {
		t.Errorf("Sprite(2, 1).View = %v", v)
	}
	for _, xy := range [][2]int{{3, 0}, {0, 2}, {-1, 0}} {
		if sheet.Sprite(xy[0], xy[1]) != nil {
			t.Errorf("Sprite(%d, %d) should be nil", xy[0], xy[1])
		}
	}
	if b := sheet.LocalBounds(); b != gx.R(0, 0, 48, 32) {
		t.Errorf("LocalBounds() = %v", b)
	}

	clone := sheet.Clone().(*SpriteSheet)
	clone.Sprites[0].Width = 1
	if sheet.Sprites[0].Width != 16 {
		t.Error("Clone shares sprites")
	}

	ctx, dev := newContext(t)
	sheet.Draw(ctx, 0, 0)
	mustFlush(t, ctx)
	if n := dev.Draws[0].InstanceCount; n != 6 {
		t.Errorf("instances = %d, want 6", n)
	}
}

func TestGroup(t *testing.T) {
	a := NewSprite(newSource(10, 10))
	b := NewSprite(newSource(4, 4))
	g := NewGroup(Member{Graphic: a, Offset: gx.Pt(5, 0)}, Member{Graphic: b, Offset: gx.Pt(0, 20)})

	if got := g.LocalBounds(); got != gx.R(0, 0, 15, 24) {
		t.Errorf("LocalBounds() = %v", got)
	}

	clone := g.Clone().(*Group)
	clone.Members[0].Graphic.(*Sprite).Width = 99
	if a.Width != 10 {
		t.Error("Clone shares members")
	}

	ctx, dev := newContext(t)
	g.Opacity = 0.5
	g.Draw(ctx, 100, 100)
	mustFlush(t, ctx)
	d := dev.Draws[0]
	if d.InstanceCount != 2 {
		t.Fatalf("instances = %d, want 2", d.InstanceCount)
	}
	if x := instanceFloat(d, 0, "mat_col3"); x != 105 {
		t.Errorf("member translation = %v, want 105", x)
	}
	if o := instanceFloat(d, 1, "opacity"); o != 0.5 {
		t.Errorf("member opacity = %v, want 0.5", o)
	}
}

func TestText(t *testing.T) {
	txt := NewText("abc", gx.White)
	if b := txt.LocalBounds(); b != gx.R(0, 0, 21, 13) {
		t.Errorf("LocalBounds() = %v, want 21x13", b)
	}

	img := txt.Source().Image()
	var lit int
	for y := range 13 {
		for x := range 21 {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("rasterized text is blank")
	}

	ctx, dev := newContext(t)
	txt.Draw(ctx, 0, 0)
	mustFlush(t, ctx)

	txt.SetText("abcd")
	if !txt.Source().Meta.ForceUpload {
		t.Error("SetText should request a re-upload")
	}
	txt.Draw(ctx, 0, 0)
	mustFlush(t, ctx)

	images := dev.DrawsFor(render.ImageType)
	if len(images) != 2 {
		t.Fatalf("draws = %d, want 2", len(images))
	}
	if w := images[1].Textures[0].W; w != 28 {
		t.Errorf("texture width after SetText = %d, want 28", w)
	}

	empty := NewText("", gx.White)
	empty.Draw(ctx, 0, 0)
	if ctx.PendingDraws() != 0 {
		t.Error("empty text recorded a draw")
	}
}
