// Package halgpu implements gpu.Device on top of the wgpu hardware
// abstraction layer.
//
// Each Draw records and submits its own command buffer into an offscreen
// render target and waits on a fence before returning. Clear and Resize
// operate on the same target, which can be read back with Target.
package halgpu

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHAL is returned by NewFromProvider when the provider does not expose
// HAL device and queue objects.
var ErrNoHAL = errors.New("halgpu: provider does not expose HAL types")

// fenceTimeout bounds how long a submission may take before Draw fails.
const fenceTimeout = 5 * time.Second

// Options configures a Device.
type Options struct {
	// Width and Height size the render target.
	Width  int
	Height int

	// MaxTextureUnits caps textures per draw. Zero selects 16.
	MaxTextureUnits int

	// Format is the render target format.
	Format gputypes.TextureFormat

	// Label prefixes the labels of created GPU objects.
	Label string
}

// DefaultOptions returns options for an 800x600 RGBA8 target.
func DefaultOptions() Options {
	return Options{
		Width:           800,
		Height:          600,
		MaxTextureUnits: 16,
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Label:           "gx",
	}
}

type texture struct {
	owner   *Device
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	state   gpu.SamplerState
	label   string
	w, h    int
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

type buffer struct {
	owner *Device
	buf   hal.Buffer
	size  int
}

func (b *buffer) Size() int { return b.size }

type program struct {
	owner    *Device
	label    string
	layout   gpu.VertexLayout
	slots    int
	module   hal.ShaderModule
	bgl      hal.BindGroupLayout
	pipeLay  hal.PipelineLayout
	pipeline hal.RenderPipeline
	uniform  hal.Buffer
	uSize    int
}

func (p *program) Label() string { return p.label }

// Device draws into an offscreen texture through a hal.Device.
type Device struct {
	device hal.Device
	queue  hal.Queue
	opts   Options
	limits gpu.Limits

	target     hal.Texture
	targetView hal.TextureView
	width      int
	height     int

	white *texture
	lost  bool
}

// New wraps a HAL device and queue. The caller keeps ownership of both.
func New(device hal.Device, queue hal.Queue, opts Options) (*Device, error) {
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.MaxTextureUnits <= 0 {
		opts.MaxTextureUnits = def.MaxTextureUnits
	}
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = def.Format
	}
	if opts.Label == "" {
		opts.Label = def.Label
	}

	d := &Device{
		device: device,
		queue:  queue,
		opts:   opts,
		limits: gpu.DefaultLimits(),
	}
	d.limits.MaxTextureUnits = min(opts.MaxTextureUnits, d.limits.MaxTextureUnits)

	if err := d.createTarget(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	white, err := d.CreateTexture(gpu.TextureDescriptor{Label: "white", Width: 1, Height: 1})
	if err != nil {
		d.destroyTarget()
		return nil, err
	}
	px := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(px.Pix, []byte{0xff, 0xff, 0xff, 0xff})
	if err := d.WriteTexture(white, px); err != nil {
		d.DestroyTexture(white)
		d.destroyTarget()
		return nil, err
	}
	d.white = white.(*texture)

	gx.Logger().Debug("halgpu: device ready",
		"width", opts.Width, "height", opts.Height, "format", opts.Format)
	return d, nil
}

// NewFromProvider creates a Device on the HAL objects of an externally
// managed GPU context. The provider surface format overrides opts.Format
// unless it is undefined.
func NewFromProvider(provider gpucontext.DeviceProvider, opts Options) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts.Format = f
	}
	return New(device, queue, opts)
}

// Limits implements gpu.Device.
func (d *Device) Limits() gpu.Limits { return d.limits }

// Size returns the render target size.
func (d *Device) Size() (width, height int) { return d.width, d.height }

// Target returns the render target texture.
func (d *Device) Target() hal.Texture { return d.target }

func (d *Device) label(s string) string { return d.opts.Label + "_" + s }

func (d *Device) createTarget(w, h int) error {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label("target"),
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.opts.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create target: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: d.label("target_view")})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("halgpu: create target view: %w", err)
	}
	d.target, d.targetView = tex, view
	d.width, d.height = w, h
	return nil
}

func (d *Device) destroyTarget() {
	if d.targetView != nil {
		d.device.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.device.DestroyTexture(d.target)
		d.target = nil
	}
}

// Resize implements gpu.Device. The target contents are discarded.
func (d *Device) Resize(width, height int) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("halgpu: invalid size %dx%d", width, height)
	}
	if width == d.width && height == d.height {
		return nil
	}
	d.destroyTarget()
	return d.createTarget(width, height)
}

func (d *Device) createSampler(label string, s gpu.SamplerState) (hal.Sampler, error) {
	filter := s.Filter
	return d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: s.AddressU,
		AddressModeV: s.AddressV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if d.lost {
		return nil, gpu.ErrDeviceLost
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > d.limits.MaxTextureSize || desc.Height > d.limits.MaxTextureSize {
		return nil, fmt.Errorf("halgpu: texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	label := d.label("tex_" + desc.Label)
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("halgpu: create texture view %q: %w", desc.Label, err)
	}
	sampler, err := d.createSampler(label+"_sampler", desc.Sampler)
	if err != nil {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("halgpu: create sampler %q: %w", desc.Label, err)
	}
	return &texture{
		owner:   d,
		tex:     tex,
		view:    view,
		sampler: sampler,
		state:   desc.Sampler,
		label:   label,
		w:       desc.Width,
		h:       desc.Height,
	}, nil
}

func (d *Device) texture(t gpu.Texture) (*texture, error) {
	tex, ok := t.(*texture)
	if !ok || tex.owner != d || tex.tex == nil {
		return nil, gpu.ErrInvalidHandle
	}
	return tex, nil
}

// WriteTexture implements gpu.Device.
func (d *Device) WriteTexture(t gpu.Texture, img *image.RGBA) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	tex, err := d.texture(t)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() != tex.w || b.Dy() != tex.h {
		return fmt.Errorf("halgpu: texture is %dx%d, image is %dx%d", tex.w, tex.h, b.Dx(), b.Dy())
	}
	start := img.PixOffset(b.Min.X, b.Min.Y)
	end := start + (tex.h-1)*img.Stride + tex.w*4
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex.tex, MipLevel: 0},
		img.Pix[start:end],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(tex.h),
		},
		&hal.Extent3D{Width: uint32(tex.w), Height: uint32(tex.h), DepthOrArrayLayers: 1},
	)
	return nil
}

// SetSampler implements gpu.Device. The sampler is only recreated when the
// state changes.
func (d *Device) SetSampler(t gpu.Texture, s gpu.SamplerState) error {
	tex, err := d.texture(t)
	if err != nil {
		return err
	}
	if tex.state == s {
		return nil
	}
	sampler, err := d.createSampler(tex.label+"_sampler", s)
	if err != nil {
		return fmt.Errorf("halgpu: set sampler: %w", err)
	}
	d.device.DestroySampler(tex.sampler)
	tex.sampler, tex.state = sampler, s
	return nil
}

// DestroyTexture implements gpu.Device. Destroying twice is a no-op.
func (d *Device) DestroyTexture(t gpu.Texture) {
	tex, err := d.texture(t)
	if err != nil {
		return
	}
	d.device.DestroySampler(tex.sampler)
	d.device.DestroyTextureView(tex.view)
	d.device.DestroyTexture(tex.tex)
	tex.sampler, tex.view, tex.tex = nil, nil, nil
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(label string, size int) (gpu.Buffer, error) {
	if d.lost {
		return nil, gpu.ErrDeviceLost
	}
	if size <= 0 || size > d.limits.MaxBufferSize {
		return nil, fmt.Errorf("halgpu: buffer %q: invalid size %d", label, size)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: d.label("vb_" + label),
		Size:  uint64(size),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create buffer %q: %w", label, err)
	}
	return &buffer{owner: d, buf: buf, size: size}, nil
}

func (d *Device) buffer(b gpu.Buffer) (*buffer, error) {
	buf, ok := b.(*buffer)
	if !ok || buf.owner != d || buf.buf == nil {
		return nil, gpu.ErrInvalidHandle
	}
	return buf, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(b gpu.Buffer, data []byte) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	buf, err := d.buffer(b)
	if err != nil {
		return err
	}
	if len(data) > buf.size {
		return fmt.Errorf("halgpu: write of %d bytes into %d byte buffer", len(data), buf.size)
	}
	if len(data) == 0 {
		return nil
	}
	d.queue.WriteBuffer(buf.buf, 0, data)
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(b gpu.Buffer) {
	buf, err := d.buffer(b)
	if err != nil {
		return
	}
	d.device.DestroyBuffer(buf.buf)
	buf.buf = nil
}

// CreateProgram implements gpu.Device. The WGSL source is validated with
// naga before any GPU object is created.
func (d *Device) CreateProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	if d.lost {
		return nil, gpu.ErrDeviceLost
	}
	if desc.TextureSlots > d.limits.MaxTextureUnits {
		return nil, fmt.Errorf("halgpu: program %q: %d texture slots exceeds %d",
			desc.Label, desc.TextureSlots, d.limits.MaxTextureUnits)
	}
	if _, err := naga.Compile(desc.Source); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gpu.ErrShaderCompile, desc.Label, err)
	}

	p := &program{
		owner:  d,
		label:  desc.Label,
		layout: desc.Layout,
		slots:  desc.TextureSlots,
		uSize:  desc.UniformSize,
	}
	if err := d.buildProgram(p, desc); err != nil {
		d.destroyProgram(p)
		return nil, err
	}
	gx.Logger().Debug("halgpu: program compiled", "label", desc.Label, "textures", desc.TextureSlots)
	return p, nil
}

func (d *Device) buildProgram(p *program, desc gpu.ProgramDescriptor) error {
	label := d.label("prog_" + desc.Label)

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{WGSL: desc.Source},
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", gpu.ErrShaderCompile, desc.Label, err)
	}
	p.module = module

	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for i := range desc.TextureSlots {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(1 + 2*i),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    uint32(2 + 2*i),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	p.bgl, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bgl",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("halgpu: %s: bind group layout: %w", desc.Label, err)
	}

	p.pipeLay, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bgl},
	})
	if err != nil {
		return fmt.Errorf("halgpu: %s: pipeline layout: %w", desc.Label, err)
	}

	// Uniform buffers are at least 16 bytes so an empty block still binds.
	p.uSize = max(16, (desc.UniformSize+15)&^15)
	p.uniform, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniforms",
		Size:  uint64(p.uSize),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("halgpu: %s: uniform buffer: %w", desc.Label, err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLay,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: desc.VertexEntry,
			Buffers:    []gputypes.VertexBufferLayout{desc.Layout.BufferLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    d.opts.Format,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %s: pipeline: %w", gpu.ErrShaderCompile, desc.Label, err)
	}
	return nil
}

func (d *Device) destroyProgram(p *program) {
	if p.pipeline != nil {
		d.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.uniform != nil {
		d.device.DestroyBuffer(p.uniform)
		p.uniform = nil
	}
	if p.pipeLay != nil {
		d.device.DestroyPipelineLayout(p.pipeLay)
		p.pipeLay = nil
	}
	if p.bgl != nil {
		d.device.DestroyBindGroupLayout(p.bgl)
		p.bgl = nil
	}
	if p.module != nil {
		d.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// DestroyProgram implements gpu.Device.
func (d *Device) DestroyProgram(prog gpu.Program) {
	p, ok := prog.(*program)
	if !ok || p.owner != d {
		return
	}
	d.destroyProgram(p)
}

// Draw implements gpu.Device. The call blocks until the GPU has finished.
func (d *Device) Draw(cmd *gpu.DrawCommand) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	p, ok := cmd.Program.(*program)
	if !ok || p.owner != d || p.pipeline == nil {
		return gpu.ErrInvalidHandle
	}
	vb, err := d.buffer(cmd.Vertices)
	if err != nil {
		return err
	}
	if len(cmd.Textures) > p.slots {
		return fmt.Errorf("halgpu: %s: %d textures bound to %d slots", p.label, len(cmd.Textures), p.slots)
	}
	if cmd.VertexCount <= 0 || cmd.InstanceCount <= 0 {
		return nil
	}

	if len(cmd.Uniforms) > p.uSize {
		return fmt.Errorf("halgpu: %s: uniform block is %d bytes, want at most %d", p.label, len(cmd.Uniforms), p.uSize)
	}
	if len(cmd.Uniforms) > 0 {
		d.queue.WriteBuffer(p.uniform, 0, cmd.Uniforms)
	}

	bg, err := d.bindGroup(p, cmd.Textures)
	if err != nil {
		return err
	}
	defer d.device.DestroyBindGroup(bg)

	return d.submit(p.label, gputypes.LoadOpLoad, gputypes.Color{}, func(rp hal.RenderPassEncoder) {
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(0, bg, nil)
		rp.SetVertexBuffer(0, vb.buf, 0)
		rp.Draw(uint32(cmd.VertexCount), uint32(cmd.InstanceCount), uint32(cmd.FirstVertex), 0)
	})
}

func (d *Device) bindGroup(p *program, textures []gpu.Texture) (hal.BindGroup, error) {
	entries := []gputypes.BindGroupEntry{{
		Binding:  0,
		Resource: gputypes.BufferBinding{Buffer: p.uniform.NativeHandle(), Offset: 0, Size: uint64(p.uSize)},
	}}
	for i := range p.slots {
		tex := d.white
		if i < len(textures) && textures[i] != nil {
			t, err := d.texture(textures[i])
			if err != nil {
				return nil, fmt.Errorf("halgpu: %s: texture slot %d: %w", p.label, i, err)
			}
			tex = t
		}
		entries = append(entries,
			gputypes.BindGroupEntry{
				Binding:  uint32(1 + 2*i),
				Resource: gputypes.TextureViewBinding{TextureView: gputypes.TextureViewHandle(tex.view.NativeHandle())},
			},
			gputypes.BindGroupEntry{
				Binding:  uint32(2 + 2*i),
				Resource: gputypes.SamplerBinding{Sampler: gputypes.SamplerHandle(tex.sampler.NativeHandle())},
			},
		)
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   d.label("bg_" + p.label),
		Layout:  p.bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: %s: bind group: %w", p.label, err)
	}
	return bg, nil
}

// Clear implements gpu.Device.
func (d *Device) Clear(c gx.RGBA) error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	n := c.Normalized()
	// The target holds premultiplied color.
	cv := gputypes.Color{
		R: float64(n[0] * n[3]),
		G: float64(n[1] * n[3]),
		B: float64(n[2] * n[3]),
		A: float64(n[3]),
	}
	return d.submit("clear", gputypes.LoadOpClear, cv, func(hal.RenderPassEncoder) {})
}

func (d *Device) submit(label string, load gputypes.LoadOp, clear gputypes.Color, record func(hal.RenderPassEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: d.label(label + "_encoder")})
	if err != nil {
		return fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label(label)); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: d.label(label + "_pass"),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.targetView,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	record(rp)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		d.lost = true
		return fmt.Errorf("%w: wait: %w", gpu.ErrDeviceLost, err)
	}
	if !ok {
		return fmt.Errorf("halgpu: %s: GPU did not finish within %v", label, fenceTimeout)
	}
	return nil
}

// Destroy releases the render target and fallback texture. Resources
// created through the Device must be destroyed by their owners first.
// The HAL device and queue are left open.
func (d *Device) Destroy() {
	if d.target == nil {
		return
	}
	if d.white != nil {
		d.DestroyTexture(d.white)
		d.white = nil
	}
	d.destroyTarget()
	d.lost = true
}

var _ gpu.Device = (*Device)(nil)
