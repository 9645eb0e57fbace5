// Package gputest provides an in-memory gpu.Device for tests.
package gputest

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
)

// Texture is a texture created by a Recorder.
type Texture struct {
	ID      int
	Label   string
	W, H    int
	Sampler gpu.SamplerState

	// Pixels holds the last uploaded image.
	Pixels *image.RGBA

	// Uploads counts WriteTexture calls for this texture.
	Uploads   int
	Destroyed bool
}

func (t *Texture) Width() int  { return t.W }
func (t *Texture) Height() int { return t.H }

// Buffer is a buffer created by a Recorder.
type Buffer struct {
	ID        int
	Label     string
	Data      []byte
	size      int
	Destroyed bool
}

func (b *Buffer) Size() int { return b.size }

// Program is a program created by a Recorder.
type Program struct {
	Desc      gpu.ProgramDescriptor
	Destroyed bool
}

func (p *Program) Label() string { return p.Desc.Label }

// Draw is a snapshot of one draw call.
type Draw struct {
	Program       *Program
	FirstVertex   int
	VertexCount   int
	InstanceCount int
	Textures      []*Texture

	// Vertices is a copy of the vertex buffer contents at draw time.
	Vertices []byte
	Uniforms []byte
}

// Recorder is a gpu.Device that keeps every resource and draw in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	limits gpu.Limits
	nextID int

	Textures []*Texture
	Buffers  []*Buffer
	Programs []*Program
	Draws    []Draw
	Clears   []gx.RGBA

	Width, Height int

	// FailCompile makes CreateProgram fail for programs with this label.
	// An empty string never matches.
	FailCompile string
}

var _ gpu.Device = (*Recorder)(nil)

// New returns a Recorder reporting limits.
func New(limits gpu.Limits) *Recorder {
	return &Recorder{limits: limits}
}

// NewDefault returns a Recorder with small limits: 4096 pixel textures and
// 8 texture units.
func NewDefault() *Recorder {
	return New(gpu.Limits{MaxTextureSize: 4096, MaxTextureUnits: 8, MaxBufferSize: 1 << 28})
}

func (r *Recorder) id() int {
	r.nextID++
	return r.nextID
}

func (r *Recorder) Limits() gpu.Limits { return r.limits }

func (r *Recorder) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &Texture{ID: r.id(), Label: desc.Label, W: desc.Width, H: desc.Height, Sampler: desc.Sampler}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Recorder) WriteTexture(tex gpu.Texture, img *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := tex.(*Texture)
	if !ok || t.Destroyed {
		return gpu.ErrInvalidHandle
	}
	if b := img.Bounds(); b.Dx() != t.W || b.Dy() != t.H {
		return fmt.Errorf("gputest: upload %dx%d into %dx%d texture", b.Dx(), b.Dy(), t.W, t.H)
	}
	t.Pixels = img
	t.Uploads++
	return nil
}

func (r *Recorder) SetSampler(tex gpu.Texture, s gpu.SamplerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := tex.(*Texture)
	if !ok || t.Destroyed {
		return gpu.ErrInvalidHandle
	}
	t.Sampler = s
	return nil
}

func (r *Recorder) DestroyTexture(tex gpu.Texture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := tex.(*Texture); ok {
		t.Destroyed = true
	}
}

func (r *Recorder) CreateBuffer(label string, size int) (gpu.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limits.MaxBufferSize > 0 && size > r.limits.MaxBufferSize {
		return nil, fmt.Errorf("gputest: buffer %q of %d bytes exceeds limit %d", label, size, r.limits.MaxBufferSize)
	}
	b := &Buffer{ID: r.id(), Label: label, size: size}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf gpu.Buffer, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := buf.(*Buffer)
	if !ok || b.Destroyed {
		return gpu.ErrInvalidHandle
	}
	if len(data) > b.size {
		return fmt.Errorf("gputest: write of %d bytes into %d byte buffer", len(data), b.size)
	}
	b.Data = append(b.Data[:0], data...)
	return nil
}

func (r *Recorder) DestroyBuffer(buf gpu.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := buf.(*Buffer); ok {
		b.Destroyed = true
	}
}

func (r *Recorder) CreateProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCompile != "" && desc.Label == r.FailCompile {
		return nil, fmt.Errorf("%w: %s", gpu.ErrShaderCompile, desc.Label)
	}
	p := &Program{Desc: desc}
	r.Programs = append(r.Programs, p)
	return p, nil
}

func (r *Recorder) DestroyProgram(p gpu.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rp, ok := p.(*Program); ok {
		rp.Destroyed = true
	}
}

func (r *Recorder) Draw(cmd *gpu.DrawCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := cmd.Program.(*Program)
	if !ok || p.Destroyed {
		return gpu.ErrInvalidHandle
	}
	d := Draw{
		Program:       p,
		FirstVertex:   cmd.FirstVertex,
		VertexCount:   cmd.VertexCount,
		InstanceCount: cmd.InstanceCount,
		Uniforms:      append([]byte(nil), cmd.Uniforms...),
	}
	if b, ok := cmd.Vertices.(*Buffer); ok {
		d.Vertices = append([]byte(nil), b.Data...)
	}
	for _, tex := range cmd.Textures {
		t, ok := tex.(*Texture)
		if !ok || t.Destroyed {
			return gpu.ErrInvalidHandle
		}
		d.Textures = append(d.Textures, t)
	}
	r.Draws = append(r.Draws, d)
	return nil
}

func (r *Recorder) Clear(c gx.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clears = append(r.Clears, c)
	return nil
}

func (r *Recorder) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = width, height
	return nil
}

// Live returns the number of textures that have not been destroyed.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.Textures {
		if !t.Destroyed {
			n++
		}
	}
	return n
}

// DrawsFor returns the draws issued with the program labeled label.
func (r *Recorder) DrawsFor(label string) []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Draw
	for _, d := range r.Draws {
		if d.Program.Desc.Label == label {
			out = append(out, d)
		}
	}
	return out
}

// ResetDraws forgets recorded draws and clears.
func (r *Recorder) ResetDraws() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Draws = nil
	r.Clears = nil
}
