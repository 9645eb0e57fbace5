// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

const (
	// DefaultMaxImages is the instance capacity of one image batch.
	DefaultMaxImages = 20_000

	// DefaultUVPadding insets texture coordinates by this many texels.
	DefaultUVPadding = 0.01

	// MaxShaderTextures caps the texture slots of generated programs at the
	// WebGPU default for sampled textures per shader stage.
	MaxShaderTextures = 16

	imageUniformSize = 80
)

// ImageLayout is the per-instance layout of the image program:
// 22 floats, 88 bytes per image.
var ImageLayout = gpu.NewVertexLayout(gputypes.VertexStepModeInstance,
	gpu.Attribute{Name: "offset", Components: 2},
	gpu.Attribute{Name: "mat_col1", Components: 2},
	gpu.Attribute{Name: "mat_col2", Components: 2},
	gpu.Attribute{Name: "mat_col3", Components: 2},
	gpu.Attribute{Name: "opacity", Components: 1},
	gpu.Attribute{Name: "res", Components: 2},
	gpu.Attribute{Name: "size", Components: 2},
	gpu.Attribute{Name: "texture_index", Components: 1},
	gpu.Attribute{Name: "uv_min", Components: 2},
	gpu.Attribute{Name: "uv_max", Components: 2},
	gpu.Attribute{Name: "tint", Components: 4},
)

// ImageOptions configure an ImageRenderer.
type ImageOptions struct {
	// PixelArtSampler enables anti-aliased nearest sampling for scaled
	// pixel art.
	PixelArtSampler bool

	// UVPadding insets texture coordinates, in texels, to avoid sampling
	// neighboring atlas regions under linear filtering.
	UVPadding float64

	// MaxImages overrides DefaultMaxImages when positive.
	MaxImages int
}

// ImageRenderer batches images into instanced draw calls sharing up to
// the device's texture units.
type ImageRenderer struct {
	opts ImageOptions

	dev     gpu.Device
	host    render.Host
	program gpu.Program
	data    *gpu.VertexBuffer
	uniform *gpu.UniformWriter

	maxImages   int
	maxTextures int

	count    int
	textures []gpu.Texture
	slots    map[texture.SourceID]int

	// err holds an implicit flush failure until the next Flush.
	err error
}

var _ render.Plugin = (*ImageRenderer)(nil)

// NewImageRenderer creates an uninitialized image renderer.
func NewImageRenderer(opts ImageOptions) *ImageRenderer {
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	return &ImageRenderer{
		opts:  opts,
		slots: make(map[texture.SourceID]int),
	}
}

func (r *ImageRenderer) Type() string  { return render.ImageType }
func (r *ImageRenderer) Priority() int { return 0 }

// MaxTextures returns the number of texture slots per batch.
func (r *ImageRenderer) MaxTextures() int { return r.maxTextures }

// MaxImages returns the instance capacity per batch.
func (r *ImageRenderer) MaxImages() int { return r.maxImages }

func (r *ImageRenderer) Initialize(dev gpu.Device, host render.Host) error {
	r.dev, r.host = dev, host
	r.maxTextures = min(max(dev.Limits().MaxTextureUnits, 1), MaxShaderTextures)

	r.maxImages = r.opts.MaxImages
	if limit := dev.Limits().MaxBufferSize; limit > 0 {
		r.maxImages = min(r.maxImages, limit/ImageLayout.Stride())
	}

	src, err := ImageShaderSource(r.maxTextures)
	if err != nil {
		return err
	}
	r.program, err = dev.CreateProgram(gpu.ProgramDescriptor{
		Label:         render.ImageType,
		Source:        src,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Layout:        ImageLayout,
		TextureSlots:  r.maxTextures,
		UniformSize:   imageUniformSize,
	})
	if err != nil {
		return fmt.Errorf("image renderer: %w", err)
	}
	r.data, err = gpu.NewVertexBuffer(dev, render.ImageType, ImageLayout, r.maxImages)
	if err != nil {
		dev.DestroyProgram(r.program)
		return fmt.Errorf("image renderer: %w", err)
	}
	r.uniform = gpu.NewUniformWriter(imageUniformSize)
	r.textures = make([]gpu.Texture, 0, r.maxTextures)
	return nil
}

// isFull reports whether src cannot join the current batch.
func (r *ImageRenderer) isFull(src *texture.Source) bool {
	if r.count >= r.maxImages {
		return true
	}
	if len(r.textures) < r.maxTextures {
		return false
	}
	_, bound := r.slots[src.ID()]
	return !bound
}

// slot returns the texture slot of src in the current batch, loading the
// texture on first use. It returns -1 if the source has no texture.
func (r *ImageRenderer) slot(src *texture.Source) int {
	if s, ok := r.slots[src.ID()]; ok {
		return s
	}
	h := r.host.Textures().Load(src, src.Meta.Options, src.Meta.ForceUpload)
	src.Meta.ForceUpload = false
	if h == nil {
		return -1
	}
	s := len(r.textures)
	r.textures = append(r.textures, h.Texture)
	r.slots[src.ID()] = s
	return s
}

func (r *ImageRenderer) Draw(cmd render.Command) {
	c, ok := cmd.(*render.ImageCommand)
	if !ok {
		render.Unexpected(r, cmd)
	}
	src := c.Source
	if r.isFull(src) {
		if err := r.Flush(); err != nil {
			r.err = err
		}
	}

	slot := r.slot(src)

	imgW, imgH := float64(src.Width()), float64(src.Height())
	if imgW == 0 && c.HasSize {
		imgW = c.SW
	}
	if imgH == 0 && c.HasSize {
		imgH = c.SH
	}
	p := c.Place(imgW, imgH)

	dest := p.Dest
	if r.host.SnapToPixel() {
		dest.X = render.Snap(dest.X)
		dest.Y = render.Snap(dest.Y)
	}

	texW, texH := imgW, imgH
	if texW == 0 {
		texW = p.Width
	}
	if texH == 0 {
		texH = p.Height
	}
	pad := r.opts.UVPadding
	u0, v0 := uv(p.View.X+pad, texW), uv(p.View.Y+pad, texH)
	u1, v1 := uv(p.View.Right()-pad, texW), uv(p.View.Bottom()-pad, texH)

	m := r.host.Transform().Columns()
	tint := r.host.Tint().Normalized()
	r.data.Put(
		float32(dest.X), float32(dest.Y),
		m[0], m[1], m[2], m[3], m[4], m[5],
		float32(r.host.Opacity()),
		float32(p.Width), float32(p.Height),
		float32(imgW), float32(imgH),
		float32(slot),
		u0, v0, u1, v1,
		tint[0], tint[1], tint[2], tint[3],
	)
	r.count++
}

func uv(px, size float64) float32 {
	if size == 0 {
		return 0
	}
	return float32(px / size)
}

func (r *ImageRenderer) HasPendingDraws() bool { return r.count > 0 }

func (r *ImageRenderer) Flush() error {
	err := r.err
	r.err = nil
	if r.count == 0 {
		return err
	}
	defer r.reset()

	if uerr := r.data.Upload(r.dev); uerr != nil {
		return fmt.Errorf("image renderer: upload: %w", uerr)
	}
	r.uniform.Reset()
	r.uniform.Mat4(r.host.Projection())
	var pixelArt uint32
	if r.opts.PixelArtSampler {
		pixelArt = 1
	}
	r.uniform.Uint32(pixelArt)

	if derr := r.dev.Draw(&gpu.DrawCommand{
		Program:       r.program,
		Vertices:      r.data.Buffer(),
		VertexCount:   6,
		InstanceCount: r.count,
		Textures:      r.textures,
		Uniforms:      r.uniform.Bytes(),
	}); derr != nil {
		return fmt.Errorf("image renderer: draw: %w", derr)
	}
	stats := r.host.Stats()
	stats.DrawCalls++
	stats.DrawnImages += r.count
	return err
}

func (r *ImageRenderer) reset() {
	r.count = 0
	r.data.Reset()
	r.textures = r.textures[:0]
	clear(r.slots)
}

func (r *ImageRenderer) Dispose() {
	if r.data != nil {
		r.data.Destroy(r.dev)
		r.data = nil
	}
	if r.program != nil {
		r.dev.DestroyProgram(r.program)
		r.program = nil
	}
	r.textures = nil
	r.host = nil
}

