// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/texture"
)

// Plugin errors. Both indicate a programming defect.
var (
	// ErrUnknownRenderer is returned when no plugin is registered for a tag.
	ErrUnknownRenderer = errors.New("render: unknown renderer")

	// ErrUnexpectedCommand is the panic value (wrapped) when a plugin
	// receives a command it does not handle.
	ErrUnexpectedCommand = errors.New("render: unexpected command")
)

// PixelSnapEpsilon is added to coordinates before truncation when snapping
// to pixels, so values like 9.99999 land on 10.
const PixelSnapEpsilon = 0.0001

// Snap truncates v toward zero after adding PixelSnapEpsilon.
func Snap(v float64) float64 {
	return float64(int64(v + PixelSnapEpsilon))
}

// Plugin batches one kind of draw request.
type Plugin interface {
	// Type returns the unique tag of the plugin.
	Type() string

	// Priority breaks z ties when sorting; lower draws first.
	Priority() int

	// Initialize creates device resources. It is called once, before the
	// first Draw. An error is fatal for the context.
	Initialize(dev gpu.Device, host Host) error

	// Draw records cmd using the current Host state. It may flush
	// implicitly when the batch is full. It panics with an error wrapping
	// ErrUnexpectedCommand if cmd is not a command the plugin handles.
	Draw(cmd Command)

	// HasPendingDraws reports whether Flush would issue draw calls.
	HasPendingDraws() bool

	// Flush submits pending draws and resets the batch. It is a no-op when
	// nothing is pending.
	Flush() error

	// Dispose releases device resources. The plugin is unusable afterwards.
	Dispose()
}

// Host is the graphics context as seen by plugins.
type Host interface {
	Transform() gx.Matrix
	Opacity() float64
	Tint() gx.RGBA
	Material() *Material
	SnapToPixel() bool

	// Projection returns the current orthographic projection.
	Projection() gx.Matrix4

	// Resolution returns the render target size in pixels.
	Resolution() (width, height int)

	// Textures returns the texture registry of the context.
	Textures() *texture.Loader

	// Stats returns the frame diagnostics to update on flush.
	Stats() *Stats
}

// Unexpected panics with an ErrUnexpectedCommand for plugin p.
func Unexpected(p Plugin, cmd Command) {
	panic(fmt.Errorf("%w: %s cannot draw %T", ErrUnexpectedCommand, p.Type(), cmd))
}

// Stats counts device work for one frame.
type Stats struct {
	DrawCalls   int
	DrawnImages int
}

// Reset zeroes the counters.
func (s *Stats) Reset() { *s = Stats{} }

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Frame[%d draw calls, %d images]", s.DrawCalls, s.DrawnImages)
}

// Material is a custom program used in place of the image renderer.
type Material struct {
	Name    string
	Program gpu.Program

	// Color is passed to the program as a uniform.
	Color gx.RGBA

	// Images are bound to texture slots 1 and up; slot 0 is the drawn image.
	Images []*texture.Source
}
