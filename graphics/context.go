// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graphics

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/batch"
	"github.com/gogpu/gx/gc"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

// MaxSafeResolution is the largest width or height CheckResolutionSupported
// accepts.
const MaxSafeResolution = 4096

// ErrNoDevice is returned by operations that need a device when the context
// was created without one.
var ErrNoDevice = errors.New("graphics: no device")

// Factory constructs a plugin on first use. See Context.LazyRegister.
type Factory func() render.Plugin

// drawCall is a recorded draw request with the state it was issued under.
type drawCall struct {
	z        float64
	priority int
	tag      string
	cmd      render.Command

	transform gx.Matrix
	state     state
}

// Context coordinates one frame of drawing: it owns the transform and
// state stacks, routes draw requests to renderer plugins and flushes them
// in z order.
//
// A Context is not safe for concurrent use.
type Context struct {
	opts options
	dev  gpu.Device

	transform  gx.Matrix
	transforms []gx.Matrix
	state      state
	states     []state

	plugins map[string]render.Plugin
	order   []string
	lazy    map[string]Factory

	calls   []drawCall
	current render.Plugin
	err     error

	textures   *texture.Loader
	materials  []*render.Material
	processors []PostProcessor
	elapsed    time.Duration

	width, height int
	ortho         gx.Matrix4
	stats         render.Stats

	inLifecycle bool
	once        gx.LogOnce
	debug       *Debug
}

var _ render.Host = (*Context)(nil)

// New creates a context drawing to dev and registers the built-in
// renderers. A nil dev yields a context that keeps state but drops draws.
func New(dev gpu.Device, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		opts:      o,
		dev:       dev,
		transform: gx.Identity(),
		state:     defaultState(),
		plugins:   make(map[string]render.Plugin),
		lazy:      make(map[string]Factory),
		textures:  texture.NewLoader(dev, o.textures),
	}
	c.debug = &Debug{ctx: c}
	c.textures.SetInUse(func(texture.SourceID) bool { return c.hasPendingDraws() })
	if err := c.UpdateViewport(o.width, o.height); err != nil {
		return nil, fmt.Errorf("graphics: %w", err)
	}

	if err := c.Register(batch.NewImageRenderer(batch.ImageOptions{
		PixelArtSampler: o.pixelArt,
		UVPadding:       o.uvPadding,
		MaxImages:       o.maxImages,
	})); err != nil {
		c.Dispose()
		return nil, err
	}
	if err := c.Register(batch.NewMaterialRenderer(0)); err != nil {
		c.Dispose()
		return nil, err
	}
	c.LazyRegister(render.RectangleType, func() render.Plugin { return batch.NewRectangleRenderer(0) })
	c.LazyRegister(render.CircleType, func() render.Plugin { return batch.NewCircleRenderer(0) })
	c.LazyRegister(render.ParticleType, func() render.Plugin { return batch.NewParticleRenderer(0) })

	if col := o.textures.Collector; col != nil && !col.Running() {
		col.Start()
	}
	return c, nil
}

// Device returns the device the context draws to, or nil.
func (c *Context) Device() gpu.Device { return c.dev }

// Register adds p under its type tag and initializes it. A plugin already
// registered under the same tag is disposed and replaced.
func (c *Context) Register(p render.Plugin) error {
	tag := p.Type()
	if c.dev != nil {
		if err := p.Initialize(c.dev, c); err != nil {
			return fmt.Errorf("graphics: initialize %s: %w", tag, err)
		}
	}
	if old, ok := c.plugins[tag]; ok {
		c.flushPlugin(old)
		old.Dispose()
		if c.current == old {
			c.current = nil
		}
	} else {
		c.order = append(c.order, tag)
	}
	delete(c.lazy, tag)
	c.plugins[tag] = p
	return nil
}

// LazyRegister defers construction of the plugin for tag until it is first
// looked up. It has no effect if tag is already registered.
func (c *Context) LazyRegister(tag string, f Factory) {
	if _, ok := c.plugins[tag]; ok {
		return
	}
	c.lazy[tag] = f
}

// Renderer returns the plugin registered for tag, constructing a lazily
// registered one on first use.
func (c *Context) Renderer(tag string) (render.Plugin, error) {
	if p, ok := c.plugins[tag]; ok {
		return p, nil
	}
	f, ok := c.lazy[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", render.ErrUnknownRenderer, tag)
	}
	gx.Logger().Debug("graphics: initializing lazy renderer", "type", tag)
	if err := c.Register(f()); err != nil {
		return nil, err
	}
	return c.plugins[tag], nil
}

// BeginDrawLifecycle marks the start of a frame's drawing and resets the
// frame statistics.
func (c *Context) BeginDrawLifecycle() {
	c.inLifecycle = true
	c.stats.Reset()
}

// EndDrawLifecycle marks the end of a frame's drawing.
func (c *Context) EndDrawLifecycle() {
	c.inLifecycle = false
}

// Draw routes cmd to the plugin registered for tag. It panics with an
// error wrapping render.ErrUnknownRenderer if there is none.
//
// With draw sorting enabled the request is recorded with the current
// transform and state and replayed on Flush. Otherwise it is handed to the
// plugin immediately, flushing the previously used plugin first.
func (c *Context) Draw(tag string, cmd render.Command) {
	if !c.inLifecycle {
		c.once.Warn("lifecycle", "graphics: drawing outside BeginDrawLifecycle/EndDrawLifecycle is not supported")
	}
	p, err := c.Renderer(tag)
	if err != nil {
		panic(err)
	}
	if c.dev == nil {
		c.once.Error("nodev:"+tag, "graphics: unable to draw without a device", "type", tag)
		return
	}

	if c.opts.sorting {
		c.calls = append(c.calls, drawCall{
			z:         c.state.z,
			priority:  p.Priority(),
			tag:       tag,
			cmd:       cmd,
			transform: c.transform,
			state:     c.state,
		})
		return
	}

	if c.current != nil && c.current != p {
		c.flushPlugin(c.current)
	}
	p.Draw(cmd)
	c.current = p
}

// flushPlugin flushes p, keeping the first error for the next Flush.
func (c *Context) flushPlugin(p render.Plugin) {
	if err := p.Flush(); err != nil && c.err == nil {
		c.err = err
	}
}

// Flush submits every pending draw. With sorting enabled, recorded draws
// are replayed ordered by z, then renderer priority, then submission
// order, flushing a plugin whenever the next draw belongs to another one.
// Flushing with nothing pending does nothing.
func (c *Context) Flush() error {
	if c.dev == nil {
		return nil
	}
	if c.opts.sorting && len(c.calls) > 0 {
		c.replay()
	}
	for _, tag := range c.order {
		if p := c.plugins[tag]; p.HasPendingDraws() {
			c.flushPlugin(p)
		}
	}
	err := c.err
	c.err = nil
	return err
}

func (c *Context) replay() {
	slices.SortStableFunc(c.calls, func(a, b drawCall) int {
		if n := cmp.Compare(a.z, b.z); n != 0 {
			return n
		}
		return cmp.Compare(a.priority, b.priority)
	})

	// Plugins are looked up by tag at replay time; one registered under
	// the same tag since the draw was recorded receives it.
	savedTransform, savedState := c.transform, c.state
	var current render.Plugin
	for i := range c.calls {
		call := &c.calls[i]
		p, ok := c.plugins[call.tag]
		if !ok {
			continue
		}
		c.transform, c.state = call.transform, call.state
		if current != nil && p != current {
			c.flushPlugin(current)
		}
		current = p
		current.Draw(call.cmd)
	}
	if current != nil && current.HasPendingDraws() {
		c.flushPlugin(current)
	}
	c.transform, c.state = savedTransform, savedState

	clear(c.calls)
	c.calls = c.calls[:0]
}

// PendingDraws returns the number of draws recorded for the next Flush in
// sorted mode.
func (c *Context) PendingDraws() int { return len(c.calls) }

// hasPendingDraws reports whether a recorded draw or a plugin batch is
// waiting for Flush.
func (c *Context) hasPendingDraws() bool {
	if len(c.calls) > 0 {
		return true
	}
	for _, p := range c.plugins {
		if p.HasPendingDraws() {
			return true
		}
	}
	return false
}

// CollectTextures flushes pending draws and then runs one collection pass
// over idle textures. Call it between frames; textures bound by a pending
// batch are never collected. It returns the number of textures released
// and the flush error, if any. Without a collector it only flushes.
func (c *Context) CollectTextures() (int, error) {
	err := c.Flush()
	return c.Collector().Collect(), err
}

// Clear fills the render target with the background color. It does not
// affect pending draws.
func (c *Context) Clear() error {
	if c.dev == nil {
		return nil
	}
	return c.dev.Clear(c.opts.background)
}

// Background returns the color used by Clear.
func (c *Context) Background() gx.RGBA { return c.opts.background }

// SetBackground sets the color used by Clear.
func (c *Context) SetBackground(bg gx.RGBA) { c.opts.background = bg }

// UpdateViewport resizes the render target and recomputes the projection.
func (c *Context) UpdateViewport(width, height int) error {
	c.setViewport(width, height)
	if c.dev == nil {
		return nil
	}
	return c.dev.Resize(width, height)
}

func (c *Context) setViewport(width, height int) {
	c.width, c.height = width, height
	c.ortho = gx.Ortho(0, float64(width), float64(height), 0, 400, -400)
}

// CheckResolutionSupported reports whether a render target of the given
// size is expected to work on every device.
func (c *Context) CheckResolutionSupported(width, height int) bool {
	limit := MaxSafeResolution
	if c.dev != nil {
		limit = min(limit, c.dev.Limits().MaxTextureSize)
	}
	if width > limit || height > limit {
		gx.Logger().Warn("graphics: resolution exceeds the supported size",
			"width", width, "height", height, "max", limit)
		return false
	}
	return true
}

// Width returns the render target width in pixels.
func (c *Context) Width() int { return c.width }

// Height returns the render target height in pixels.
func (c *Context) Height() int { return c.height }

// Dispose releases every plugin, material and texture. The context is
// unusable afterwards.
func (c *Context) Dispose() {
	for _, tag := range c.order {
		c.plugins[tag].Dispose()
	}
	clear(c.plugins)
	clear(c.lazy)
	c.order = nil
	c.calls = nil
	c.current = nil

	for _, m := range c.materials {
		if m.Program != nil && c.dev != nil {
			c.dev.DestroyProgram(m.Program)
		}
	}
	c.materials = nil
	c.processors = nil

	if col := c.opts.textures.Collector; col != nil {
		col.Stop()
	}
	c.textures.Dispose()
	c.dev = nil
}

// Projection implements render.Host.
func (c *Context) Projection() gx.Matrix4 { return c.ortho }

// Resolution implements render.Host.
func (c *Context) Resolution() (int, int) { return c.width, c.height }

// SnapToPixel reports whether positions are truncated to whole pixels.
func (c *Context) SnapToPixel() bool { return c.opts.snapToPixel }

// Textures returns the texture registry.
func (c *Context) Textures() *texture.Loader { return c.textures }

// Collector returns the texture collector, or nil if none was configured.
// Prefer CollectTextures for running a pass.
func (c *Context) Collector() *gc.Collector[texture.SourceID] {
	return c.opts.textures.Collector
}

// Stats returns the counters of the current frame.
func (c *Context) Stats() *render.Stats { return &c.stats }

// Debug returns the debug drawing helper.
func (c *Context) Debug() *Debug { return c.debug }
