package anim

import (
	"time"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/graphics"
)

// FromSpriteSheet builds an animation from the sheet sprites at indices,
// in row-major order. Indices outside the sheet are skipped with a
// warning.
func FromSpriteSheet(sheet *graphics.SpriteSheet, indices []int, durationPerFrame time.Duration, strategy Strategy) *Animation {
	var frames []Frame
	var invalid []int
	for _, i := range indices {
		if i < 0 || i >= len(sheet.Sprites) {
			invalid = append(invalid, i)
			continue
		}
		frames = append(frames, Frame{Graphic: sheet.Sprites[i], Duration: durationPerFrame})
	}
	if len(invalid) > 0 {
		gx.Logger().Warn("anim: sprite sheet indices out of range, frames will not be shown",
			"indices", invalid, "sprites", len(sheet.Sprites))
	}
	return New(Options{Frames: frames, Strategy: strategy})
}

// Coordinate selects one sprite sheet cell for FromCoordinates.
type Coordinate struct {
	X, Y int

	// Duration overrides the default frame duration when positive.
	Duration time.Duration
}

// CoordinateOptions configure FromCoordinates.
type CoordinateOptions struct {
	Sheet       *graphics.SpriteSheet
	Coordinates []Coordinate

	// DurationPerFrame is the default frame duration. Zero selects
	// DefaultFrameDuration.
	DurationPerFrame time.Duration

	Speed    float64
	Strategy Strategy
	Reverse  bool
	Data     map[string]any
}

// FromCoordinates builds an animation from sheet cells addressed by
// column and row. Cells outside the sheet are skipped with a warning.
func FromCoordinates(opts CoordinateOptions) *Animation {
	def := opts.DurationPerFrame
	if def <= 0 {
		def = DefaultFrameDuration
	}
	frames := make([]Frame, 0, len(opts.Coordinates))
	for _, c := range opts.Coordinates {
		sp := opts.Sheet.Sprite(c.X, c.Y)
		if sp == nil {
			gx.Logger().Warn("anim: skipping frame, sprite sheet has no such cell", "x", c.X, "y", c.Y)
			continue
		}
		d := c.Duration
		if d <= 0 {
			d = def
		}
		frames = append(frames, Frame{Graphic: sp, Duration: d})
	}
	return New(Options{
		Frames:   frames,
		Speed:    opts.Speed,
		Strategy: opts.Strategy,
		Reverse:  opts.Reverse,
		Data:     opts.Data,
	})
}
