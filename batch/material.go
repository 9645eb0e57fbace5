package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/render"
)

// DefaultMaxMaterialDraws is the number of material quads held per flush.
const DefaultMaxMaterialDraws = 1024

// MaterialUniformSize is the size of the material uniform block.
const MaterialUniformSize = 112

// MaterialLayout is the per-vertex layout of material programs.
var MaterialLayout = gpu.NewVertexLayout(gputypes.VertexStepModeVertex,
	gpu.Attribute{Name: "position", Components: 2},
	gpu.Attribute{Name: "uv", Components: 2},
	gpu.Attribute{Name: "screen_uv", Components: 2},
)

// MaterialDefaultFragment is the fragment stage of a material that only
// tints the image with its color.
const MaterialDefaultFragment = `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let c = textureSample(u_graphic, u_graphic_sampler, in.uv);
    return c * u.color * u.opacity;
}
`

// MaterialSource returns the complete program for a material fragment.
func MaterialSource(fragment string) string {
	return MaterialPrelude + fragment
}

// MaterialDescriptor returns the program descriptor for a material with
// extraImages images beyond the drawn one.
func MaterialDescriptor(name, fragment string, extraImages int) gpu.ProgramDescriptor {
	return gpu.ProgramDescriptor{
		Label:         render.MaterialType + ":" + name,
		Source:        MaterialSource(fragment),
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Layout:        MaterialLayout,
		TextureSlots:  1 + extraImages,
		UniformSize:   MaterialUniformSize,
	}
}

type materialDraw struct {
	material *render.Material
	first    int
	textures []gpu.Texture
	uniforms []byte
}

// MaterialRenderer draws images through the host's current material. Each
// image is its own draw call; they are queued and issued in order on
// flush.
type MaterialRenderer struct {
	maxDraws int

	dev     gpu.Device
	host    render.Host
	data    *gpu.VertexBuffer
	uniform *gpu.UniformWriter
	pending []materialDraw
	err     error
}

var _ render.Plugin = (*MaterialRenderer)(nil)

// NewMaterialRenderer creates a material renderer holding up to maxDraws
// quads per flush; zero selects DefaultMaxMaterialDraws.
func NewMaterialRenderer(maxDraws int) *MaterialRenderer {
	if maxDraws <= 0 {
		maxDraws = DefaultMaxMaterialDraws
	}
	return &MaterialRenderer{maxDraws: maxDraws}
}

func (r *MaterialRenderer) Type() string  { return render.MaterialType }
func (r *MaterialRenderer) Priority() int { return 0 }

func (r *MaterialRenderer) Initialize(dev gpu.Device, host render.Host) error {
	r.dev, r.host = dev, host
	var err error
	r.data, err = gpu.NewVertexBuffer(dev, render.MaterialType, MaterialLayout, r.maxDraws*6)
	if err != nil {
		return fmt.Errorf("material renderer: %w", err)
	}
	r.uniform = gpu.NewUniformWriter(MaterialUniformSize)
	return nil
}

func (r *MaterialRenderer) Draw(cmd render.Command) {
	c, ok := cmd.(*render.ImageCommand)
	if !ok {
		render.Unexpected(r, cmd)
	}
	mat := r.host.Material()
	if mat == nil || mat.Program == nil {
		return
	}
	if len(r.pending) >= r.maxDraws {
		if err := r.Flush(); err != nil {
			r.err = err
		}
	}

	imgW, imgH := float64(c.Source.Width()), float64(c.Source.Height())
	p := c.Place(imgW, imgH)
	dest := p.Dest
	if r.host.SnapToPixel() {
		dest.X, dest.Y = render.Snap(dest.X), render.Snap(dest.Y)
	}

	textures := make([]gpu.Texture, 0, 1+len(mat.Images))
	if h := r.host.Textures().Load(c.Source, c.Source.Meta.Options, c.Source.Meta.ForceUpload); h != nil {
		c.Source.Meta.ForceUpload = false
		textures = append(textures, h.Texture)
	}
	for _, img := range mat.Images {
		if h := r.host.Textures().Load(img, img.Meta.Options, false); h != nil {
			textures = append(textures, h.Texture)
		}
	}

	m := r.host.Transform()
	resW, resH := r.host.Resolution()
	uv0x, uv0y := uv(p.View.X, imgW), uv(p.View.Y, imgH)
	uv1x, uv1y := uv(p.View.Right(), imgW), uv(p.View.Bottom(), imgH)
	corners := [4]struct{ x, y, u, v float64 }{
		{dest.X, dest.Y, float64(uv0x), float64(uv0y)},
		{dest.X, dest.Y + p.Height, float64(uv0x), float64(uv1y)},
		{dest.X + p.Width, dest.Y, float64(uv1x), float64(uv0y)},
		{dest.X + p.Width, dest.Y + p.Height, float64(uv1x), float64(uv1y)},
	}
	first := r.data.Len()
	for _, i := range [6]int{0, 1, 2, 2, 1, 3} {
		v := corners[i]
		w := m.TransformPoint(gx.Pt(v.x, v.y))
		r.data.Put(
			float32(w.X), float32(w.Y),
			float32(v.u), float32(v.v),
			uv(w.X, float64(resW)), uv(w.Y, float64(resH)),
		)
	}

	r.uniform.Reset()
	r.uniform.Mat4(r.host.Projection())
	r.uniform.Vec4(mat.Color.Normalized())
	r.uniform.Vec2(float32(resW), float32(resH))
	r.uniform.Vec2(float32(p.Width), float32(p.Height))
	r.uniform.Float32(float32(r.host.Opacity()))
	r.pending = append(r.pending, materialDraw{
		material: mat,
		first:    first,
		textures: textures,
		uniforms: append([]byte(nil), r.uniform.Bytes()...),
	})
}

func (r *MaterialRenderer) HasPendingDraws() bool { return len(r.pending) > 0 }

func (r *MaterialRenderer) Flush() error {
	err := r.err
	r.err = nil
	if len(r.pending) == 0 {
		return err
	}
	defer func() {
		clear(r.pending)
		r.pending = r.pending[:0]
		r.data.Reset()
	}()
	if uerr := r.data.Upload(r.dev); uerr != nil {
		return fmt.Errorf("material renderer: upload: %w", uerr)
	}
	for _, d := range r.pending {
		if derr := r.dev.Draw(&gpu.DrawCommand{
			Program:       d.material.Program,
			Vertices:      r.data.Buffer(),
			FirstVertex:   d.first,
			VertexCount:   6,
			InstanceCount: 1,
			Textures:      d.textures,
			Uniforms:      d.uniforms,
		}); derr != nil {
			return fmt.Errorf("material renderer: draw %s: %w", d.material.Name, derr)
		}
		stats := r.host.Stats()
		stats.DrawCalls++
		stats.DrawnImages++
	}
	return err
}

func (r *MaterialRenderer) Dispose() {
	if r.data != nil {
		r.data.Destroy(r.dev)
		r.data = nil
	}
	r.pending = nil
	r.host = nil
}
