// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package anim

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/graphics"
)

// DefaultFrameDuration is used for frames without their own duration.
const DefaultFrameDuration = 100 * time.Millisecond

// Frame is one step of an animation.
type Frame struct {
	Graphic graphics.Graphic

	// Duration overrides the animation's frame duration when positive.
	Duration time.Duration
}

// Options configure New.
type Options struct {
	Frames []Frame

	// Speed multiplies elapsed time. Zero selects 1; negative values are
	// made positive.
	Speed float64

	// Reverse starts with the frame order reversed.
	Reverse bool

	// FrameDuration is the default frame duration. Zero selects
	// DefaultFrameDuration.
	FrameDuration time.Duration

	// TotalDuration, when positive, is spread evenly over the frames and
	// overrides FrameDuration.
	TotalDuration time.Duration

	Strategy Strategy
	Data     map[string]any
}

type subscription struct {
	id   int
	kind EventKind
	fn   func(Event)
}

// Animation shows a sequence of graphics, advanced by Tick.
//
// An Animation is driven from the frame loop and is not safe for
// concurrent use.
type Animation struct {
	graphics.Base

	frames        []Frame
	Strategy      Strategy
	FrameDuration time.Duration
	Data          map[string]any

	token     int64
	firstTick bool
	current   int
	timeLeft  time.Duration
	pingPong  int
	done      bool
	playing   bool
	speed     float64
	reversed  bool

	// resetInNext is set by Reset so that a frame advance in progress
	// keeps the post-reset frame.
	resetInNext bool

	subs   []subscription
	nextID int
}

var _ graphics.Graphic = (*Animation)(nil)

// New returns a playing animation positioned on its first frame.
func New(opts Options) *Animation {
	a := &Animation{
		Base:          graphics.DefaultBase(),
		frames:        opts.Frames,
		Strategy:      opts.Strategy,
		FrameDuration: DefaultFrameDuration,
		Data:          opts.Data,
		token:         -1,
		firstTick:     true,
		pingPong:      1,
		playing:       true,
		speed:         1,
	}
	if opts.Speed != 0 {
		a.SetSpeed(opts.Speed)
	}
	switch {
	case opts.TotalDuration > 0 && len(opts.Frames) > 0:
		a.FrameDuration = opts.TotalDuration / time.Duration(len(opts.Frames))
	case opts.FrameDuration > 0:
		a.FrameDuration = opts.FrameDuration
	}
	if a.Data == nil {
		a.Data = make(map[string]any)
	}
	if opts.Reverse {
		a.Reverse()
	}
	a.GoToFrame(0, 0)
	return a
}

// On registers fn for events of kind and returns a function that removes
// it. Handlers may call any method of the animation, including Reset.
func (a *Animation) On(kind EventKind, fn func(Event)) (off func()) {
	a.nextID++
	id := a.nextID
	a.subs = append(a.subs, subscription{id: id, kind: kind, fn: fn})
	return func() {
		a.subs = slices.DeleteFunc(a.subs, func(s subscription) bool { return s.id == id })
	}
}

func (a *Animation) emit(e Event) {
	e.Animation = a
	for _, s := range slices.Clone(a.subs) {
		if s.kind == e.Kind {
			s.fn(e)
		}
	}
}

func (a *Animation) emitFrame() {
	f, _ := a.CurrentFrame()
	a.emit(Event{Kind: EventFrame, Frame: f, FrameIndex: a.current})
}

// Frames returns the frames in play order.
func (a *Animation) Frames() []Frame { return a.frames }

// Speed returns the elapsed time multiplier.
func (a *Animation) Speed() float64 { return a.speed }

// SetSpeed sets the elapsed time multiplier to |v|.
func (a *Animation) SetSpeed(v float64) { a.speed = math.Abs(v) }

// CurrentFrame returns the current frame, or false once an End animation
// has finished.
func (a *Animation) CurrentFrame() (Frame, bool) {
	if a.current >= 0 && a.current < len(a.frames) {
		return a.frames[a.current], true
	}
	return Frame{}, false
}

func (a *Animation) CurrentFrameIndex() int              { return a.current }
func (a *Animation) CurrentFrameTimeLeft() time.Duration { return a.timeLeft }
func (a *Animation) Playing() bool                       { return a.playing }
func (a *Animation) Reversed() bool                      { return a.reversed }
func (a *Animation) Done() bool                          { return a.done }

// Reverse reverses the frame order. The frame slice passed to New is not
// modified.
func (a *Animation) Reverse() {
	frames := slices.Clone(a.frames)
	slices.Reverse(frames)
	a.frames = frames
	a.reversed = !a.reversed
}

// Direction reports Backward while a reversed animation plays toward its
// last frame.
func (a *Animation) Direction() Direction {
	if a.reversed && a.pingPong == 1 {
		return Backward
	}
	return Forward
}

// Play resumes ticking.
func (a *Animation) Play() { a.playing = true }

// Pause stops ticking. The next Tick after Play emits the current frame.
func (a *Animation) Pause() {
	a.playing = false
	a.firstTick = true
}

// Reset returns to the first frame and clears Done. It is safe to call
// from an event handler.
func (a *Animation) Reset() {
	a.resetInNext = true
	a.done = false
	a.firstTick = true
	a.current = 0
	a.timeLeft = a.frameDuration(0)
}

// CanFinish reports whether the strategy ever finishes.
func (a *Animation) CanFinish() bool {
	return a.Strategy == End || a.Strategy == Freeze
}

// frameDuration returns the duration of frame i, falling back to the
// animation's frame duration.
func (a *Animation) frameDuration(i int) time.Duration {
	if i >= 0 && i < len(a.frames) && a.frames[i].Duration > 0 {
		return a.frames[i].Duration
	}
	return a.FrameDuration
}

// GoToFrame makes frame index current. A positive duration overrides the
// time the frame is shown. A frame event is emitted unless the index is
// out of range or the animation is done.
func (a *Animation) GoToFrame(index int, duration time.Duration) {
	a.current = index
	if duration <= 0 {
		duration = a.frameDuration(index)
	}
	a.timeLeft = duration
	if _, ok := a.CurrentFrame(); ok && !a.done {
		a.emitFrame()
	}
}

// nextFrame computes the index that follows the current one, emitting
// loop and end events on the way.
func (a *Animation) nextFrame() int {
	a.resetInNext = false
	cur, n := a.current, len(a.frames)
	if a.done || n == 0 {
		return cur
	}

	next := cur
	switch a.Strategy {
	case Loop:
		next = (cur + 1) % n
		if next == 0 {
			a.emit(Event{Kind: EventLoop})
		}
	case End:
		next = cur + 1
		if next >= n {
			a.done = true
			a.current = n
			a.emit(Event{Kind: EventEnd})
		}
	case Freeze:
		next = min(cur+1, n-1)
		if cur+1 >= n {
			a.done = true
			a.emit(Event{Kind: EventEnd})
		}
	case PingPong:
		if n == 1 {
			next = 0
			a.emit(Event{Kind: EventLoop})
			break
		}
		if cur+a.pingPong >= n {
			a.pingPong = -1
			a.emit(Event{Kind: EventLoop})
		}
		if cur+a.pingPong < 0 {
			a.pingPong = 1
			a.emit(Event{Kind: EventLoop})
		}
		next = cur + a.pingPong
	}

	if a.resetInNext {
		a.resetInNext = false
		return a.current
	}
	return next
}

// Tick advances the animation by elapsed scaled by its speed. Repeated
// calls with the same token are ignored, so the animation advances at most
// once per frame however many owners tick it.
func (a *Animation) Tick(elapsed time.Duration, token int64) {
	if token == a.token {
		return
	}
	a.token = token
	if !a.playing {
		return
	}
	if a.firstTick {
		a.firstTick = false
		a.emitFrame()
	}
	a.timeLeft -= time.Duration(float64(elapsed) * a.speed)
	if a.timeLeft <= 0 {
		a.GoToFrame(a.nextFrame(), 0)
	}
}

// Width returns the scaled width of the current frame, or 0.
func (a *Animation) Width() float64 { return a.LocalBounds().Width }

// Height returns the scaled height of the current frame, or 0.
func (a *Animation) Height() float64 { return a.LocalBounds().Height }

func (a *Animation) size() (float64, float64) {
	f, ok := a.CurrentFrame()
	if !ok || f.Graphic == nil {
		return 0, 0
	}
	b := f.Graphic.LocalBounds()
	return b.Width, b.Height
}

// LocalBounds returns the bounds of the current frame.
func (a *Animation) LocalBounds() gx.Rect {
	w, h := a.size()
	b := a.Bounds(w, h)
	b.Width, b.Height = math.Abs(b.Width), math.Abs(b.Height)
	return b
}

// Draw draws the current frame, if any. It does not advance the
// animation.
func (a *Animation) Draw(ctx *graphics.Context, x, y float64) {
	f, ok := a.CurrentFrame()
	if !ok || f.Graphic == nil {
		return
	}
	w, h := a.size()
	a.DrawWith(ctx, x, y, w, h, func(ctx *graphics.Context) {
		f.Graphic.Draw(ctx, 0, 0)
	})
}

// Clone returns a *Animation with the same frames, settings and data,
// positioned on its first frame with no handlers. The frame order, speed
// and reversed flag carry over; each frame graphic is cloned, so changes
// to one animation's frames do not show in the other.
func (a *Animation) Clone() graphics.Graphic { return a.Copy() }

// Copy is Clone with a concrete result.
func (a *Animation) Copy() *Animation {
	frames := make([]Frame, len(a.frames))
	for i, f := range a.frames {
		frames[i] = f
		if f.Graphic != nil {
			frames[i].Graphic = f.Graphic.Clone()
		}
	}
	c := New(Options{
		Frames:        frames,
		Speed:         a.speed,
		FrameDuration: a.FrameDuration,
		Strategy:      a.Strategy,
		Data:          maps.Clone(a.Data),
	})
	c.speed = a.speed
	c.reversed = a.reversed
	c.Base = a.Base
	return c
}
