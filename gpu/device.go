// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx"
)

// Device errors.
var (
	// ErrShaderCompile is returned when a program fails to compile or link.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrDeviceLost is returned by operations on a destroyed device.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrInvalidHandle is returned when a handle does not belong to the device.
	ErrInvalidHandle = errors.New("gpu: invalid handle")
)

// Texture is a device texture. Handles are only valid on the device that
// created them.
type Texture interface {
	Width() int
	Height() int
}

// Buffer is a device vertex buffer.
type Buffer interface {
	Size() int
}

// Program is a compiled vertex+fragment program.
type Program interface {
	Label() string
}

// Limits reports device capabilities that bound batching.
type Limits struct {
	// MaxTextureSize is the largest width or height of a 2D texture.
	MaxTextureSize int

	// MaxTextureUnits is the number of textures one draw call can sample.
	MaxTextureUnits int

	// MaxBufferSize is the largest vertex buffer in bytes.
	MaxBufferSize int
}

// DefaultLimits returns limits derived from the WebGPU defaults.
func DefaultLimits() Limits {
	l := gputypes.DefaultLimits()
	return Limits{
		MaxTextureSize:  int(l.MaxTextureDimension2D),
		MaxTextureUnits: 16,
		MaxBufferSize:   int(l.MaxBufferSize),
	}
}

// SamplerState selects filtering and addressing for a texture.
type SamplerState struct {
	Filter   gputypes.FilterMode
	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
}

// TextureDescriptor describes a 2D RGBA8 texture.
type TextureDescriptor struct {
	Label   string
	Width   int
	Height  int
	Sampler SamplerState
}

// ProgramDescriptor describes a program written in WGSL.
//
// Uniforms live at binding 0 of group 0. Texture slot i is bound at
// binding 1+2i with its sampler at 2+2i.
type ProgramDescriptor struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string

	// Layout describes the single vertex buffer the program reads.
	Layout VertexLayout

	// TextureSlots is the number of texture bindings the program declares.
	TextureSlots int

	// UniformSize is the size in bytes of the uniform block.
	UniformSize int
}

// DrawCommand is one draw call.
type DrawCommand struct {
	Program Program

	// Vertices holds the packed vertex or instance data.
	Vertices Buffer

	FirstVertex   int
	VertexCount   int
	InstanceCount int

	// Textures are bound to slots in order. Unused slots get a 1x1 white
	// texture.
	Textures []Texture

	// Uniforms is the raw uniform block. It must be UniformSize bytes.
	Uniforms []byte
}

// Device is the GPU surface the renderer draws through. All methods are
// called from the single frame-processing goroutine.
type Device interface {
	Limits() Limits

	CreateTexture(desc TextureDescriptor) (Texture, error)
	// WriteTexture uploads img into tex. img must match the texture size.
	WriteTexture(tex Texture, img *image.RGBA) error
	// SetSampler changes the sampler state of an existing texture.
	SetSampler(tex Texture, s SamplerState) error
	DestroyTexture(tex Texture)

	CreateBuffer(label string, size int) (Buffer, error)
	WriteBuffer(buf Buffer, data []byte) error
	DestroyBuffer(buf Buffer)

	// CreateProgram compiles a program. Failures wrap ErrShaderCompile.
	CreateProgram(desc ProgramDescriptor) (Program, error)
	DestroyProgram(p Program)

	Draw(cmd *DrawCommand) error

	// Clear fills the render target with c.
	Clear(c gx.RGBA) error

	// Resize changes the render target size.
	Resize(width, height int) error
}
