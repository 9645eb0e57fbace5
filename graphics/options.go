package graphics

import (
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/batch"
	"github.com/gogpu/gx/gc"
	"github.com/gogpu/gx/texture"
)

// Default context settings.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// DefaultBackground is the color Clear fills with unless WithBackground is
// given.
var DefaultBackground = gx.Hex("#176BAA")

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := graphics.New(dev,
//		graphics.WithSize(1280, 720),
//		graphics.WithSnapToPixel(true),
//	)
type Option func(*options)

type options struct {
	width, height int
	snapToPixel   bool
	pixelArt      bool
	uvPadding     float64
	maxImages     int
	background    gx.RGBA
	sorting       bool
	textures      texture.Config
}

func defaultOptions() options {
	return options{
		width:      DefaultWidth,
		height:     DefaultHeight,
		uvPadding:  batch.DefaultUVPadding,
		maxImages:  batch.DefaultMaxImages,
		background: DefaultBackground,
		sorting:    true,
		textures:   texture.DefaultConfig(),
	}
}

// WithSize sets the render target size in pixels. Default 800x600.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithSnapToPixel truncates translations and image positions to whole
// pixels. Default off.
func WithSnapToPixel(snap bool) Option {
	return func(o *options) {
		o.snapToPixel = snap
	}
}

// WithPixelArt enables the anti-aliased nearest sampler of the image
// renderer, for pixel art drawn at non-integer scales. Default off.
func WithPixelArt(enabled bool) Option {
	return func(o *options) {
		o.pixelArt = enabled
	}
}

// WithUVPadding sets the texel inset applied to image texture coordinates.
// Default batch.DefaultUVPadding.
func WithUVPadding(texels float64) Option {
	return func(o *options) {
		o.uvPadding = texels
	}
}

// WithMaxImages sets the instance capacity of one image batch. Default
// batch.DefaultMaxImages.
func WithMaxImages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxImages = n
		}
	}
}

// WithBackground sets the color used by Clear. Default DefaultBackground.
func WithBackground(c gx.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithDrawSorting selects between sorted flushing by z and renderer
// priority (the default) and strict submission order.
func WithDrawSorting(enabled bool) Option {
	return func(o *options) {
		o.sorting = enabled
	}
}

// WithTextureConfig replaces the texture registry defaults. Default
// texture.DefaultConfig().
func WithTextureConfig(cfg texture.Config) Option {
	return func(o *options) {
		o.textures = cfg
	}
}

// WithCollector lets c reclaim textures that were not drawn for the
// configured collection interval.
func WithCollector(c *gc.Collector[texture.SourceID]) Option {
	return func(o *options) {
		o.textures.Collector = c
	}
}
