package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

// DefaultMaxParticles is the instance capacity of one particle batch.
const DefaultMaxParticles = 10_000

const particleUniformSize = 80

// ParticleLayout is the per-instance layout of the particle program.
var ParticleLayout = gpu.NewVertexLayout(gputypes.VertexStepModeInstance,
	gpu.Attribute{Name: "mat_col1", Components: 2},
	gpu.Attribute{Name: "mat_col2", Components: 2},
	gpu.Attribute{Name: "mat_col3", Components: 2},
	gpu.Attribute{Name: "position", Components: 2},
	gpu.Attribute{Name: "size", Components: 1},
	gpu.Attribute{Name: "rotation", Components: 1},
	gpu.Attribute{Name: "color", Components: 4},
)

// ParticleRenderer draws particle systems as instanced quads. A batch
// shares one optional texture; a command with a different texture flushes
// the batch first.
type ParticleRenderer struct {
	maxParticles int

	dev     gpu.Device
	host    render.Host
	program gpu.Program
	data    *gpu.VertexBuffer
	uniform *gpu.UniformWriter

	count   int
	source  *texture.Source
	texture gpu.Texture
	err     error
}

var _ render.Plugin = (*ParticleRenderer)(nil)

// NewParticleRenderer creates a particle renderer holding up to
// maxParticles instances per batch; zero selects DefaultMaxParticles.
func NewParticleRenderer(maxParticles int) *ParticleRenderer {
	if maxParticles <= 0 {
		maxParticles = DefaultMaxParticles
	}
	return &ParticleRenderer{maxParticles: maxParticles}
}

func (r *ParticleRenderer) Type() string  { return render.ParticleType }
func (r *ParticleRenderer) Priority() int { return 0 }

func (r *ParticleRenderer) Initialize(dev gpu.Device, host render.Host) error {
	r.dev, r.host = dev, host
	var err error
	r.program, err = dev.CreateProgram(gpu.ProgramDescriptor{
		Label:         render.ParticleType,
		Source:        particleShaderSource,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Layout:        ParticleLayout,
		TextureSlots:  1,
		UniformSize:   particleUniformSize,
	})
	if err != nil {
		return fmt.Errorf("particle renderer: %w", err)
	}
	r.data, err = gpu.NewVertexBuffer(dev, render.ParticleType, ParticleLayout, r.maxParticles)
	if err != nil {
		dev.DestroyProgram(r.program)
		return fmt.Errorf("particle renderer: %w", err)
	}
	r.uniform = gpu.NewUniformWriter(particleUniformSize)
	return nil
}

func sameSource(a, b *texture.Source) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID() == b.ID()
}

func (r *ParticleRenderer) Draw(cmd render.Command) {
	c, ok := cmd.(*render.ParticleCommand)
	if !ok {
		render.Unexpected(r, cmd)
	}
	if len(c.Particles) == 0 {
		return
	}
	if r.count > 0 && !sameSource(r.source, c.Source) {
		r.flushDeferred()
	}
	r.bind(c.Source)

	m := r.host.Transform().Columns()
	opacity := r.host.Opacity()
	for i := range c.Particles {
		if r.count >= r.maxParticles {
			r.flushDeferred()
			r.bind(c.Source)
		}
		p := &c.Particles[i]
		col := p.Color.Normalized()
		r.data.Put(
			m[0], m[1], m[2], m[3], m[4], m[5],
			float32(p.Position.X), float32(p.Position.Y),
			float32(p.Size), float32(p.Rotation),
			col[0], col[1], col[2], col[3]*float32(p.Opacity*opacity),
		)
		r.count++
	}
}

func (r *ParticleRenderer) bind(src *texture.Source) {
	r.source = src
	r.texture = nil
	if src == nil {
		return
	}
	h := r.host.Textures().Load(src, src.Meta.Options, src.Meta.ForceUpload)
	src.Meta.ForceUpload = false
	if h != nil {
		r.texture = h.Texture
	}
}

func (r *ParticleRenderer) flushDeferred() {
	if err := r.Flush(); err != nil {
		r.err = err
	}
}

func (r *ParticleRenderer) HasPendingDraws() bool { return r.count > 0 }

func (r *ParticleRenderer) Flush() error {
	err := r.err
	r.err = nil
	if r.count == 0 {
		return err
	}
	defer func() {
		r.count = 0
		r.data.Reset()
		r.source, r.texture = nil, nil
	}()
	if uerr := r.data.Upload(r.dev); uerr != nil {
		return fmt.Errorf("particle renderer: upload: %w", uerr)
	}
	r.uniform.Reset()
	r.uniform.Mat4(r.host.Projection())
	var textures []gpu.Texture
	var textured uint32
	if r.texture != nil {
		textures = []gpu.Texture{r.texture}
		textured = 1
	}
	r.uniform.Uint32(textured)
	if derr := r.dev.Draw(&gpu.DrawCommand{
		Program:       r.program,
		Vertices:      r.data.Buffer(),
		VertexCount:   6,
		InstanceCount: r.count,
		Textures:      textures,
		Uniforms:      r.uniform.Bytes(),
	}); derr != nil {
		return fmt.Errorf("particle renderer: draw: %w", derr)
	}
	r.host.Stats().DrawCalls++
	return err
}

func (r *ParticleRenderer) Dispose() {
	if r.data != nil {
		r.data.Destroy(r.dev)
		r.data = nil
	}
	if r.program != nil {
		r.dev.DestroyProgram(r.program)
		r.program = nil
	}
	r.host = nil
}
