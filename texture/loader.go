// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gc"
	"github.com/gogpu/gx/gpu"
)

// CollectorKind is the kind under which textures are tracked by a
// gc.Collector.
const CollectorKind = "texture"

// MobileSafeSize is the largest texture dimension expected to work on every
// device.
const MobileSafeSize = 4096

// Config replaces process-wide texture defaults. The zero Config is not
// useful; start from DefaultConfig.
type Config struct {
	Filtering Filtering
	WrapX     Wrapping
	WrapY     Wrapping

	// MobileSafeSize is the dimension above which a warning is logged even
	// when the device supports the texture.
	MobileSafeSize int

	// Collector, if set, reclaims textures idle for CollectInterval.
	Collector       *gc.Collector[SourceID]
	CollectInterval time.Duration
}

// DefaultConfig returns blended filtering, clamped wrapping on both axes
// and a 60 second collection interval.
func DefaultConfig() Config {
	return Config{
		Filtering:       FilteringBlended,
		WrapX:           WrapClamp,
		WrapY:           WrapClamp,
		MobileSafeSize:  MobileSafeSize,
		CollectInterval: gc.DefaultInterval,
	}
}

// Handle is a resident texture.
type Handle struct {
	ID      SourceID
	Texture gpu.Texture
	Width   int
	Height  int
	Options Options
}

// Stats contains loader statistics.
type Stats struct {
	Resident  int
	Created   uint64
	Uploads   uint64
	Deleted   uint64
	Collected uint64
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("Textures[%d resident, %d created, %d uploads, %d deleted, %d collected]",
		s.Resident, s.Created, s.Uploads, s.Deleted, s.Collected)
}

// Loader uploads sources to device textures and caches the result by
// SourceID. It is not safe for concurrent use.
type Loader struct {
	dev      gpu.Device
	cfg      Config
	maxSize  int
	textures map[SourceID]*Handle
	stats    Stats
	inUse    func(SourceID) bool
}

// NewLoader creates a loader for dev. A nil dev yields a loader whose Load
// always returns nil, which is valid for GPU-less contexts.
func NewLoader(dev gpu.Device, cfg Config) *Loader {
	l := &Loader{
		dev:      dev,
		cfg:      cfg,
		maxSize:  MobileSafeSize,
		textures: make(map[SourceID]*Handle),
	}
	if l.cfg.MobileSafeSize <= 0 {
		l.cfg.MobileSafeSize = MobileSafeSize
	}
	if dev != nil {
		l.maxSize = dev.Limits().MaxTextureSize
	}
	if cfg.Collector != nil {
		gx.Logger().Debug("texture: collection interval", "interval", cfg.CollectInterval)
		cfg.Collector.Register(CollectorKind, cfg.CollectInterval, l.collect)
	}
	return l
}

// SetInUse installs a check consulted by collection passes. Textures for
// which inUse reports true are kept and offered again on a later pass.
// Renderers with pending draws use it to keep their bound textures alive
// until they flush.
func (l *Loader) SetInUse(inUse func(SourceID) bool) { l.inUse = inUse }

// Config returns the loader configuration.
func (l *Loader) Config() Config { return l.cfg }

// Load returns the texture for src, creating and uploading it on first use.
// A resident texture is touched and returned as is, unless forceUpdate is
// set, in which case the pixels are uploaded again. opts override the
// sampling parameters of a new texture; zero fields use the configuration.
//
// Load returns nil when the loader has no device or the texture could not
// be created. Failures are logged, never returned, so one bad image does not
// stop a frame.
func (l *Loader) Load(src *Source, opts Options, forceUpdate bool) *Handle {
	if l.dev == nil || src == nil {
		return nil
	}
	if h, ok := l.textures[src.id]; ok {
		if forceUpdate {
			l.reupload(h, src)
		}
		if c := l.cfg.Collector; c != nil {
			c.Touch(src.id)
		}
		return h
	}

	w, h := src.Width(), src.Height()
	if w == 0 || h == 0 {
		gx.Logger().Warn("texture: empty image", "source", src.name())
		return nil
	}
	l.CheckImageSize(src.name(), w, h)

	resolved := opts.resolve(l.cfg)
	tex, err := l.dev.CreateTexture(gpu.TextureDescriptor{
		Label:   src.name(),
		Width:   w,
		Height:  h,
		Sampler: resolved.Sampler(),
	})
	if err != nil {
		gx.Logger().Error("texture: create failed", "source", src.name(), "err", err)
		return nil
	}
	handle := &Handle{ID: src.id, Texture: tex, Width: w, Height: h, Options: resolved}
	l.stats.Created++
	if err := l.upload(handle, src.img); err != nil {
		gx.Logger().Error("texture: upload failed", "source", src.name(), "err", err)
	}
	l.textures[src.id] = handle
	if c := l.cfg.Collector; c != nil {
		c.Add(CollectorKind, src.id)
	}
	return handle
}

func (l *Loader) reupload(h *Handle, src *Source) {
	w, ht := src.Width(), src.Height()
	if w == 0 || ht == 0 {
		return
	}
	if w != h.Width || ht != h.Height {
		tex, err := l.dev.CreateTexture(gpu.TextureDescriptor{
			Label:   src.name(),
			Width:   w,
			Height:  ht,
			Sampler: h.Options.Sampler(),
		})
		if err != nil {
			gx.Logger().Error("texture: resize failed", "source", src.name(), "err", err)
			return
		}
		l.dev.DestroyTexture(h.Texture)
		h.Texture, h.Width, h.Height = tex, w, ht
		l.stats.Created++
	}
	if err := l.upload(h, src.img); err != nil {
		gx.Logger().Error("texture: upload failed", "source", src.name(), "err", err)
	}
}

func (l *Loader) upload(h *Handle, img image.Image) error {
	l.stats.Uploads++
	return l.dev.WriteTexture(h.Texture, toRGBA(img))
}

// toRGBA returns img as a premultiplied RGBA image anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Get returns the resident texture for src, or nil.
func (l *Loader) Get(src *Source) *Handle {
	if src == nil {
		return nil
	}
	return l.textures[src.id]
}

// Has reports whether src has a resident texture.
func (l *Loader) Has(src *Source) bool {
	return l.Get(src) != nil
}

// Len returns the number of resident textures.
func (l *Loader) Len() int { return len(l.textures) }

// Delete destroys the texture for src. Deleting a source without a
// resident texture is a no-op.
func (l *Loader) Delete(src *Source) {
	if src != nil {
		l.DeleteID(src.id)
	}
}

// DeleteID destroys the texture for id, if resident.
func (l *Loader) DeleteID(id SourceID) {
	h, ok := l.textures[id]
	if !ok {
		return
	}
	delete(l.textures, id)
	if l.dev != nil {
		l.dev.DestroyTexture(h.Texture)
	}
	if c := l.cfg.Collector; c != nil {
		c.Remove(id)
	}
	l.stats.Deleted++
}

// collect is the gc.CollectFunc for textures.
func (l *Loader) collect(id SourceID) bool {
	if l.dev == nil {
		return false
	}
	if l.inUse != nil && l.inUse(id) {
		return false
	}
	gx.Logger().Debug("texture: collected", "id", id)
	l.DeleteID(id)
	l.stats.Collected++
	return true
}

// Dispose destroys every resident texture. The loader is unusable
// afterwards.
func (l *Loader) Dispose() {
	for id := range l.textures {
		l.DeleteID(id)
	}
	l.dev = nil
}

// CheckImageSize logs an error if a w by h image exceeds the device maximum
// texture size, or a warning if it exceeds the cross-device safe size. It
// reports whether the device supports the size.
func (l *Loader) CheckImageSize(name string, w, h int) bool {
	switch {
	case w > l.maxSize || h > l.maxSize:
		gx.Logger().Error("texture: image exceeds the device maximum texture size and will likely render blank",
			"source", name, "width", w, "height", h, "max", l.maxSize)
		return false
	case w > l.cfg.MobileSafeSize || h > l.cfg.MobileSafeSize:
		gx.Logger().Warn("texture: image may not render on all devices, resize to fit the safe size",
			"source", name, "width", w, "height", h, "safe", l.cfg.MobileSafeSize)
	}
	return true
}

// Stats returns a snapshot of loader statistics.
func (l *Loader) Stats() Stats {
	s := l.stats
	s.Resident = len(l.textures)
	return s
}
