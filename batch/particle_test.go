package batch

import (
	"testing"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu/gputest"
	"github.com/gogpu/gx/render"
)

func particles(n int) []render.Particle {
	ps := make([]render.Particle, n)
	for i := range ps {
		ps[i] = render.Particle{Position: gx.Pt(float64(i), 0), Size: 2, Color: gx.White, Opacity: 0.5}
	}
	return ps
}

func TestParticleRenderer(t *testing.T) {
	r := NewParticleRenderer(0)
	dev, host := initPlugin(t, r, defaultLimits())
	host.opacity = 0.5

	r.Draw(&render.ParticleCommand{})
	if r.HasPendingDraws() {
		t.Fatal("empty command should not be batched")
	}
	r.Draw(&render.ParticleCommand{Particles: particles(3)})
	mustFlush(t, r)

	d := dev.Draws[0]
	if d.InstanceCount != 3 || len(d.Textures) != 0 {
		t.Errorf("draw = %+v", d)
	}
	f := gputest.Floats(d.Vertices)
	off, _ := ParticleLayout.Offset("color")
	if a := f[off+3]; a != 0.25 {
		t.Errorf("alpha = %v, want 0.25", a)
	}
	if b := d.Uniforms[64]; b != 0 {
		t.Errorf("textured flag = %d, want 0", b)
	}
}

func TestParticleTextureChangeFlushes(t *testing.T) {
	r := NewParticleRenderer(0)
	dev, _ := initPlugin(t, r, defaultLimits())
	a, b := newSource(2, 2), newSource(2, 2)

	r.Draw(&render.ParticleCommand{Particles: particles(2), Source: a})
	r.Draw(&render.ParticleCommand{Particles: particles(2), Source: a})
	r.Draw(&render.ParticleCommand{Particles: particles(1), Source: b})
	mustFlush(t, r)

	if len(dev.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(dev.Draws))
	}
	if dev.Draws[0].InstanceCount != 4 || dev.Draws[1].InstanceCount != 1 {
		t.Errorf("instances = %d, %d", dev.Draws[0].InstanceCount, dev.Draws[1].InstanceCount)
	}
	if dev.Draws[1].Uniforms[64] != 1 {
		t.Error("textured flag not set")
	}
}

func TestParticleCapacity(t *testing.T) {
	r := NewParticleRenderer(4)
	dev, _ := initPlugin(t, r, defaultLimits())
	r.Draw(&render.ParticleCommand{Particles: particles(10)})
	mustFlush(t, r)
	var counts []int
	for _, d := range dev.Draws {
		counts = append(counts, d.InstanceCount)
	}
	if len(counts) != 3 || counts[2] != 2 {
		t.Errorf("instance counts = %v, want [4 4 2]", counts)
	}
}
