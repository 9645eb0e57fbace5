package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/render"
)

// DefaultMaxShapes is the quad capacity of one shape batch.
const DefaultMaxShapes = 10_000

const projectionUniformSize = 64

// ShapeLayout is the per-vertex layout of rectangles, lines and points.
var ShapeLayout = gpu.NewVertexLayout(gputypes.VertexStepModeVertex,
	gpu.Attribute{Name: "position", Components: 2},
	gpu.Attribute{Name: "local", Components: 2},
	gpu.Attribute{Name: "size", Components: 2},
	gpu.Attribute{Name: "color", Components: 4},
	gpu.Attribute{Name: "stroke_color", Components: 4},
	gpu.Attribute{Name: "stroke", Components: 1},
)

// CircleLayout is the per-vertex layout of circles.
var CircleLayout = gpu.NewVertexLayout(gputypes.VertexStepModeVertex,
	gpu.Attribute{Name: "position", Components: 2},
	gpu.Attribute{Name: "local", Components: 2},
	gpu.Attribute{Name: "radius", Components: 1},
	gpu.Attribute{Name: "color", Components: 4},
	gpu.Attribute{Name: "stroke_color", Components: 4},
	gpu.Attribute{Name: "stroke", Components: 1},
)

// quadBatch accumulates six-vertex quads in world space and draws them in
// one call. Shape renderers embed it.
type quadBatch struct {
	label    string
	layout   gpu.VertexLayout
	source   string
	maxQuads int

	dev     gpu.Device
	host    render.Host
	program gpu.Program
	data    *gpu.VertexBuffer
	uniform *gpu.UniformWriter

	quads int
	err   error
}

func (b *quadBatch) Priority() int { return 0 }

func (b *quadBatch) Initialize(dev gpu.Device, host render.Host) error {
	b.dev, b.host = dev, host
	if b.maxQuads <= 0 {
		b.maxQuads = DefaultMaxShapes
	}
	var err error
	b.program, err = dev.CreateProgram(gpu.ProgramDescriptor{
		Label:         b.label,
		Source:        b.source,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Layout:        b.layout,
		UniformSize:   projectionUniformSize,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", b.label, err)
	}
	b.data, err = gpu.NewVertexBuffer(dev, b.label, b.layout, b.maxQuads*6)
	if err != nil {
		dev.DestroyProgram(b.program)
		return fmt.Errorf("%s: %w", b.label, err)
	}
	b.uniform = gpu.NewUniformWriter(projectionUniformSize)
	return nil
}

// reserve flushes if one more quad does not fit.
func (b *quadBatch) reserve() {
	if b.quads < b.maxQuads {
		return
	}
	if err := b.Flush(); err != nil {
		b.err = err
	}
}

// quad appends the quad with world corners c (top-left, bottom-left,
// top-right, bottom-right) and per-corner local coordinates l. attrs are
// the remaining attributes, shared by all six vertices.
func (b *quadBatch) quad(c, l [4]gx.Point, attrs ...float32) {
	for _, i := range [6]int{0, 1, 2, 2, 1, 3} {
		b.data.Put(float32(c[i].X), float32(c[i].Y), float32(l[i].X), float32(l[i].Y))
		b.data.Put(attrs...)
	}
	b.quads++
}

// rect returns the world corners of the local rectangle r.
func (b *quadBatch) rect(r gx.Rect) [4]gx.Point {
	m := b.host.Transform()
	return [4]gx.Point{
		m.TransformPoint(gx.Pt(r.X, r.Y)),
		m.TransformPoint(gx.Pt(r.X, r.Bottom())),
		m.TransformPoint(gx.Pt(r.Right(), r.Y)),
		m.TransformPoint(gx.Pt(r.Right(), r.Bottom())),
	}
}

// color returns c with the host opacity applied.
func (b *quadBatch) color(c gx.RGBA) [4]float32 {
	n := c.Normalized()
	n[3] *= float32(b.host.Opacity())
	return n
}

func (b *quadBatch) HasPendingDraws() bool { return b.quads > 0 }

func (b *quadBatch) Flush() error {
	err := b.err
	b.err = nil
	if b.quads == 0 {
		return err
	}
	defer func() {
		b.quads = 0
		b.data.Reset()
	}()
	if uerr := b.data.Upload(b.dev); uerr != nil {
		return fmt.Errorf("%s: upload: %w", b.label, uerr)
	}
	b.uniform.Reset()
	b.uniform.Mat4(b.host.Projection())
	if derr := b.dev.Draw(&gpu.DrawCommand{
		Program:       b.program,
		Vertices:      b.data.Buffer(),
		VertexCount:   b.quads * 6,
		InstanceCount: 1,
		Uniforms:      b.uniform.Bytes(),
	}); derr != nil {
		return fmt.Errorf("%s: draw: %w", b.label, derr)
	}
	b.host.Stats().DrawCalls++
	return err
}

func (b *quadBatch) Dispose() {
	if b.data != nil {
		b.data.Destroy(b.dev)
		b.data = nil
	}
	if b.program != nil {
		b.dev.DestroyProgram(b.program)
		b.program = nil
	}
	b.host = nil
}

// RectangleRenderer draws rectangles, lines and points.
type RectangleRenderer struct {
	quadBatch
}

var _ render.Plugin = (*RectangleRenderer)(nil)

// NewRectangleRenderer creates a rectangle renderer holding up to maxQuads
// shapes per batch; zero selects DefaultMaxShapes.
func NewRectangleRenderer(maxQuads int) *RectangleRenderer {
	return &RectangleRenderer{quadBatch{
		label:    render.RectangleType,
		layout:   ShapeLayout,
		source:   shapeShaderSource,
		maxQuads: maxQuads,
	}}
}

func (r *RectangleRenderer) Type() string { return render.RectangleType }

func (r *RectangleRenderer) Draw(cmd render.Command) {
	switch c := cmd.(type) {
	case *render.RectangleCommand:
		r.fill(c.Rect, c.Color, c.StrokeColor, c.StrokeWidth)
	case *render.LineCommand:
		r.line(c)
	case *render.PointCommand:
		half := c.Size / 2
		r.fill(gx.R(c.At.X-half, c.At.Y-half, c.Size, c.Size), c.Color, gx.Transparent, 0)
	default:
		render.Unexpected(r, cmd)
	}
}

func (r *RectangleRenderer) fill(rect gx.Rect, fill, stroke gx.RGBA, width float64) {
	r.reserve()
	w, h := rect.Width, rect.Height
	local := [4]gx.Point{gx.Pt(0, 0), gx.Pt(0, h), gx.Pt(w, 0), gx.Pt(w, h)}
	fc, sc := r.color(fill), r.color(stroke)
	r.quad(r.rect(rect), local,
		float32(w), float32(h),
		fc[0], fc[1], fc[2], fc[3],
		sc[0], sc[1], sc[2], sc[3],
		float32(width),
	)
}

// line draws the segment as a quad of the given thickness centered on it.
func (r *RectangleRenderer) line(c *render.LineCommand) {
	d := c.End.Sub(c.Start)
	length := d.Length()
	if length == 0 {
		return
	}
	thickness := c.Thickness
	if thickness <= 0 {
		thickness = 1
	}
	r.reserve()
	n := gx.Pt(-d.Y/length, d.X/length).Mul(thickness / 2)
	m := r.host.Transform()
	corners := [4]gx.Point{
		m.TransformPoint(c.Start.Sub(n)),
		m.TransformPoint(c.Start.Add(n)),
		m.TransformPoint(c.End.Sub(n)),
		m.TransformPoint(c.End.Add(n)),
	}
	local := [4]gx.Point{gx.Pt(0, 0), gx.Pt(0, thickness), gx.Pt(length, 0), gx.Pt(length, thickness)}
	fc := r.color(c.Color)
	r.quad(corners, local,
		float32(length), float32(thickness),
		fc[0], fc[1], fc[2], fc[3],
		0, 0, 0, 0,
		0,
	)
}

// CircleRenderer draws anti-aliased circles.
type CircleRenderer struct {
	quadBatch
}

var _ render.Plugin = (*CircleRenderer)(nil)

// NewCircleRenderer creates a circle renderer holding up to maxQuads
// circles per batch; zero selects DefaultMaxShapes.
func NewCircleRenderer(maxQuads int) *CircleRenderer {
	return &CircleRenderer{quadBatch{
		label:    render.CircleType,
		layout:   CircleLayout,
		source:   circleShaderSource,
		maxQuads: maxQuads,
	}}
}

func (r *CircleRenderer) Type() string { return render.CircleType }

func (r *CircleRenderer) Draw(cmd render.Command) {
	c, ok := cmd.(*render.CircleCommand)
	if !ok {
		render.Unexpected(r, cmd)
	}
	if c.Radius <= 0 {
		return
	}
	r.reserve()
	rad := c.Radius
	bounds := gx.R(c.Center.X-rad, c.Center.Y-rad, 2*rad, 2*rad)
	local := [4]gx.Point{gx.Pt(-rad, -rad), gx.Pt(-rad, rad), gx.Pt(rad, -rad), gx.Pt(rad, rad)}
	fc, sc := r.color(c.Color), r.color(c.StrokeColor)
	r.quad(r.rect(bounds), local,
		float32(rad),
		fc[0], fc[1], fc[2], fc[3],
		sc[0], sc[1], sc[2], sc[3],
		float32(c.StrokeWidth),
	)
}
