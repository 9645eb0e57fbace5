package batch

import (
	"testing"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu/gputest"
	"github.com/gogpu/gx/render"
)

func TestRectangleRenderer(t *testing.T) {
	r := NewRectangleRenderer(0)
	dev, host := initPlugin(t, r, defaultLimits())
	host.transform = gx.Translate(10, 20)
	host.opacity = 0.5

	r.Draw(&render.RectangleCommand{Rect: gx.R(0, 0, 4, 2), Color: gx.Red})
	r.Draw(&render.LineCommand{Start: gx.Pt(0, 0), End: gx.Pt(10, 0), Color: gx.Blue, Thickness: 2})
	r.Draw(&render.PointCommand{At: gx.Pt(5, 5), Color: gx.Green, Size: 2})
	mustFlush(t, r)

	if len(dev.Draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.VertexCount != 18 {
		t.Errorf("VertexCount = %d, want 18", d.VertexCount)
	}

	f := gputest.Floats(d.Vertices)
	stride := ShapeLayout.Floats()
	// vertex 5 is the bottom-right corner of the rectangle
	br := f[5*stride:]
	if br[0] != 14 || br[1] != 22 {
		t.Errorf("bottom-right = (%v, %v), want (14, 22)", br[0], br[1])
	}
	off, _ := ShapeLayout.Offset("color")
	if a := f[off+3]; a != 0.5 {
		t.Errorf("alpha = %v, want opacity applied", a)
	}

	// line corners straddle the segment by half the thickness
	line := f[6*stride:]
	if line[0] != 10 || line[1] != 19 {
		t.Errorf("line start corner = (%v, %v), want (10, 19)", line[0], line[1])
	}
}

func TestRectangleSkipsDegenerateLine(t *testing.T) {
	r := NewRectangleRenderer(0)
	initPlugin(t, r, defaultLimits())
	r.Draw(&render.LineCommand{Start: gx.Pt(3, 3), End: gx.Pt(3, 3)})
	if r.HasPendingDraws() {
		t.Error("zero-length line should not be batched")
	}
}

func TestRectangleCapacity(t *testing.T) {
	r := NewRectangleRenderer(2)
	dev, _ := initPlugin(t, r, defaultLimits())
	for range 5 {
		r.Draw(&render.RectangleCommand{Rect: gx.R(0, 0, 1, 1), Color: gx.White})
	}
	mustFlush(t, r)
	if len(dev.Draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(dev.Draws))
	}
	if got := dev.Draws[2].VertexCount; got != 6 {
		t.Errorf("last VertexCount = %d, want 6", got)
	}
}

func TestCircleRenderer(t *testing.T) {
	r := NewCircleRenderer(0)
	dev, host := initPlugin(t, r, defaultLimits())

	r.Draw(&render.CircleCommand{Center: gx.Pt(50, 50), Radius: 0})
	if r.HasPendingDraws() {
		t.Fatal("zero radius circle should not be batched")
	}
	r.Draw(&render.CircleCommand{Center: gx.Pt(50, 50), Radius: 10, Color: gx.White, StrokeColor: gx.Black, StrokeWidth: 2})
	mustFlush(t, r)

	f := gputest.Floats(dev.Draws[0].Vertices)
	if f[0] != 40 || f[1] != 40 || f[2] != -10 || f[3] != -10 {
		t.Errorf("first vertex = %v", f[:4])
	}
	off, _ := CircleLayout.Offset("radius")
	if f[off] != 10 {
		t.Errorf("radius = %v", f[off])
	}
	if host.stats.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d", host.stats.DrawCalls)
	}
	expectPanic(t, func() { r.Draw(&render.RectangleCommand{}) })
}
