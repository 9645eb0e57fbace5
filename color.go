// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gx

import (
	"image/color"
	"strconv"
)

// RGBA is a straight-alpha color. Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGBA2 creates a color from RGBA components.
func RGBA2(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Color converts c to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// RGBA implements color.Color with premultiplied 16-bit components.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	alpha := float64(clamp01(c.A))
	r = uint32(float64(clamp01(c.R))*alpha*65535 + 0.5)
	g = uint32(float64(clamp01(c.G))*alpha*65535 + 0.5)
	b = uint32(float64(clamp01(c.B))*alpha*65535 + 0.5)
	a = uint32(alpha*65535 + 0.5)
	return r, g, b, a
}

// Normalized returns the components clamped to [0, 1] as float32, in the
// order packed into tint attributes.
func (c RGBA) Normalized() [4]float32 {
	return [4]float32{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'. Malformed input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}
	var parts []string
	switch len(hex) {
	case 3, 4:
		for i := range len(hex) {
			parts = append(parts, hex[i:i+1]+hex[i:i+1])
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			parts = append(parts, hex[i:i+2])
		}
	default:
		return Black
	}
	v := [4]float64{0, 0, 0, 1}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Black
		}
		v[i] = float64(n) / 255
	}
	return RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func clamp01(x float64) float32 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return float32(x)
}

func to8(x float64) uint8 {
	return uint8(clamp01(x)*255 + 0.5)
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Yellow      = RGB(1, 1, 0)
	Magenta     = RGB(1, 0, 1)
	Transparent = RGBA2(0, 0, 0, 0)
)
