// Package texture maps decoded images to device textures.
//
// Images enter the package as a *Source. Each Source gets a stable SourceID
// at creation; the Loader keys its texture cache by that id, so at most one
// live texture exists per Source per Loader. Sampling parameters travel with
// the Source in its Metadata.
package texture

import (
	"fmt"
	"image"
	"strings"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx/gpu"
)

// SourceID identifies a Source. The zero value never identifies a Source.
type SourceID uint64

var lastSourceID atomic.Uint64

// NextSourceID allocates a new process-unique SourceID.
func NextSourceID() SourceID {
	return SourceID(lastSourceID.Add(1))
}

// Filtering selects how a texture is sampled between texels.
type Filtering uint8

const (
	// FilteringDefault defers to the Loader configuration.
	FilteringDefault Filtering = iota
	// FilteringPixel samples the nearest texel, for pixel art.
	FilteringPixel
	// FilteringBlended interpolates linearly between texels.
	FilteringBlended
)

// String returns the attribute spelling of f.
func (f Filtering) String() string {
	switch f {
	case FilteringPixel:
		return "Pixel"
	case FilteringBlended:
		return "Blended"
	default:
		return ""
	}
}

// ParseFiltering parses "Pixel" or "Blended" case-insensitively. The empty
// string parses as FilteringDefault.
func ParseFiltering(s string) (Filtering, error) {
	switch strings.ToLower(s) {
	case "":
		return FilteringDefault, nil
	case "pixel":
		return FilteringPixel, nil
	case "blended":
		return FilteringBlended, nil
	}
	return FilteringDefault, fmt.Errorf("texture: unknown filtering %q", s)
}

// FilterMode returns the sampler filter for f.
func (f Filtering) FilterMode() gputypes.FilterMode {
	if f == FilteringPixel {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}

// Wrapping selects how texture coordinates outside [0, 1] are resolved.
type Wrapping uint8

const (
	// WrapDefault defers to the Loader configuration.
	WrapDefault Wrapping = iota
	WrapClamp
	WrapRepeat
	WrapMirror
)

// String returns the attribute spelling of w.
func (w Wrapping) String() string {
	switch w {
	case WrapClamp:
		return "Clamp"
	case WrapRepeat:
		return "Repeat"
	case WrapMirror:
		return "Mirror"
	default:
		return ""
	}
}

// ParseWrapping parses "Clamp", "Repeat" or "Mirror" case-insensitively.
// The empty string parses as WrapDefault.
func ParseWrapping(s string) (Wrapping, error) {
	switch strings.ToLower(s) {
	case "":
		return WrapDefault, nil
	case "clamp":
		return WrapClamp, nil
	case "repeat":
		return WrapRepeat, nil
	case "mirror":
		return WrapMirror, nil
	}
	return WrapDefault, fmt.Errorf("texture: unknown wrapping %q", s)
}

// AddressMode returns the sampler address mode for w.
func (w Wrapping) AddressMode() gputypes.AddressMode {
	switch w {
	case WrapRepeat:
		return gputypes.AddressModeRepeat
	case WrapMirror:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// Options are the sampling parameters of a texture. Zero fields defer to
// the Loader configuration.
type Options struct {
	Filtering Filtering
	WrapX     Wrapping
	WrapY     Wrapping
}

// Wrap returns Options wrapping both axes with w.
func Wrap(f Filtering, w Wrapping) Options {
	return Options{Filtering: f, WrapX: w, WrapY: w}
}

func (o Options) resolve(cfg Config) Options {
	if o.Filtering == FilteringDefault {
		o.Filtering = cfg.Filtering
	}
	if o.WrapX == WrapDefault {
		o.WrapX = cfg.WrapX
	}
	if o.WrapY == WrapDefault {
		o.WrapY = cfg.WrapY
	}
	return o
}

// Sampler converts resolved options to a device sampler state.
func (o Options) Sampler() gpu.SamplerState {
	return gpu.SamplerState{
		Filter:   o.Filtering.FilterMode(),
		AddressU: o.WrapX.AddressMode(),
		AddressV: o.WrapY.AddressMode(),
	}
}

// Metadata travels with a Source across subsystem boundaries.
type Metadata struct {
	Options

	// ForceUpload requests that the next load re-upload pixel data. The
	// image renderer clears it after the upload.
	ForceUpload bool
}

// Attribute keys of the string form of Metadata.
const (
	AttrFiltering   = "filtering"
	AttrWrappingX   = "wrapping-x"
	AttrWrappingY   = "wrapping-y"
	AttrForceUpload = "forceUpload"
)

// Attributes returns m as string attributes. Default values are omitted.
func (m Metadata) Attributes() map[string]string {
	attrs := make(map[string]string, 4)
	if s := m.Filtering.String(); s != "" {
		attrs[AttrFiltering] = s
	}
	if s := m.WrapX.String(); s != "" {
		attrs[AttrWrappingX] = s
	}
	if s := m.WrapY.String(); s != "" {
		attrs[AttrWrappingY] = s
	}
	if m.ForceUpload {
		attrs[AttrForceUpload] = "true"
	}
	return attrs
}

// ParseAttributes builds Metadata from string attributes. Unknown keys are
// ignored.
func ParseAttributes(attrs map[string]string) (Metadata, error) {
	var m Metadata
	var err error
	if m.Filtering, err = ParseFiltering(attrs[AttrFiltering]); err != nil {
		return Metadata{}, err
	}
	if m.WrapX, err = ParseWrapping(attrs[AttrWrappingX]); err != nil {
		return Metadata{}, err
	}
	if m.WrapY, err = ParseWrapping(attrs[AttrWrappingY]); err != nil {
		return Metadata{}, err
	}
	m.ForceUpload = attrs[AttrForceUpload] == "true"
	return m, nil
}

// Source is a decoded image registered for drawing.
type Source struct {
	id  SourceID
	img image.Image

	// Label names the source in log messages.
	Label string

	Meta Metadata
}

// NewSource registers img and assigns it a new SourceID.
func NewSource(label string, img image.Image, opts Options) *Source {
	return &Source{id: NextSourceID(), img: img, Label: label, Meta: Metadata{Options: opts}}
}

// ID returns the stable identifier of s.
func (s *Source) ID() SourceID { return s.id }

// Image returns the current pixels.
func (s *Source) Image() image.Image { return s.img }

// Width returns the image width in pixels, or 0 for a nil image.
func (s *Source) Width() int {
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dx()
}

// Height returns the image height in pixels, or 0 for a nil image.
func (s *Source) Height() int {
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dy()
}

// SetImage replaces the pixels and requests a re-upload.
func (s *Source) SetImage(img image.Image) {
	s.img = img
	s.Meta.ForceUpload = true
}

// RequestUpload asks the next draw to re-upload the current pixels, for
// images mutated in place.
func (s *Source) RequestUpload() { s.Meta.ForceUpload = true }

func (s *Source) name() string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("source#%d", s.id)
}
