// Command gxdemo drives the gx sprite renderer through a number of
// simulated frames and reports batching statistics.
//
// Usage:
//
//	gxdemo -frames 120 -sprites 500 -textures 6
//	gxdemo -backend noop -v
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/anim"
	"github.com/gogpu/gx/gc"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/gpu/gputest"
	"github.com/gogpu/gx/gpu/halgpu"
	"github.com/gogpu/gx/graphics"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
	"github.com/gogpu/wgpu/hal/noop"
)

const frameTime = 16 * time.Millisecond

func main() {
	var (
		frames   = flag.Int("frames", 60, "number of frames to simulate")
		sprites  = flag.Int("sprites", 200, "sprites drawn per frame")
		textures = flag.Int("textures", 4, "distinct sprite textures")
		sorting  = flag.Bool("sort", true, "sort draws by z-index")
		backend  = flag.String("backend", "record", "device backend: record or noop")
		width    = flag.Int("width", 800, "viewport width")
		height   = flag.Int("height", 600, "viewport height")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		gx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	dev, closeDev, err := openDevice(*backend, *width, *height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gxdemo: %v\n", err)
		os.Exit(1)
	}
	defer closeDev()

	if err := run(dev, *frames, *sprites, max(1, *textures), *sorting, *width, *height); err != nil {
		fmt.Fprintf(os.Stderr, "gxdemo: %v\n", err)
		os.Exit(1)
	}
}

func openDevice(backend string, width, height int) (gpu.Device, func(), error) {
	switch backend {
	case "record":
		return gputest.NewDefault(), func() {}, nil
	case "noop":
		instance, err := noop.API{}.CreateInstance(nil)
		if err != nil {
			return nil, nil, fmt.Errorf("create instance: %w", err)
		}
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			instance.Destroy()
			return nil, nil, fmt.Errorf("no adapters")
		}
		open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
		if err != nil {
			instance.Destroy()
			return nil, nil, fmt.Errorf("open adapter: %w", err)
		}
		opts := halgpu.DefaultOptions()
		opts.Width, opts.Height = width, height
		dev, err := halgpu.New(open.Device, open.Queue, opts)
		if err != nil {
			open.Device.Destroy()
			instance.Destroy()
			return nil, nil, err
		}
		return dev, func() {
			dev.Destroy()
			open.Device.Destroy()
			instance.Destroy()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

type sprite struct {
	graphic graphics.Graphic
	pos     gx.Point
	vel     gx.Point
	z       float64
}

func run(dev gpu.Device, frames, count, textures int, sorting bool, width, height int) error {
	ctx, err := graphics.New(dev,
		graphics.WithSize(width, height),
		graphics.WithDrawSorting(sorting),
		graphics.WithSnapToPixel(true),
		graphics.WithCollector(gc.New[texture.SourceID]()),
	)
	if err != nil {
		return err
	}
	defer ctx.Dispose()

	sources := make([]*texture.Source, textures)
	for i := range sources {
		sources[i] = texture.NewSource(fmt.Sprintf("checker-%d", i), checker(32, 32, hue(float64(i)/float64(textures))), texture.Options{})
	}

	// A 4x1 strip of frames, animated on a loop.
	strip := graphics.NewSpriteSheet(
		texture.NewSource("strip", checker(64, 16, gx.Hex("#F2A65A").Color()), texture.Options{Filtering: texture.FilteringPixel}),
		graphics.SheetGrid{Rows: 1, Columns: 4, SpriteWidth: 16, SpriteHeight: 16},
	)
	walk := anim.FromSpriteSheet(strip, []int{0, 1, 2, 3}, 100*time.Millisecond, anim.Loop)
	loops := 0
	walk.On(anim.EventLoop, func(anim.Event) { loops++ })

	label := graphics.NewText("gx demo", gx.White)

	sprites := make([]sprite, count)
	for i := range sprites {
		f := float64(i)
		var g graphics.Graphic = graphics.NewSprite(sources[i%textures])
		if i%10 == 0 {
			g = walk.Copy()
		}
		sprites[i] = sprite{
			graphic: g,
			pos:     gx.Pt(math.Mod(f*37, float64(width)), math.Mod(f*53, float64(height))),
			vel:     gx.Pt(math.Cos(f)*60, math.Sin(f)*60),
			z:       float64(i % 3),
		}
	}

	particles := make([]render.Particle, 64)
	var total render.Stats
	for frame := range frames {
		ctx.BeginDrawLifecycle()
		if err := ctx.Clear(); err != nil {
			return err
		}
		walk.Tick(frameTime, int64(frame))

		for i := range sprites {
			s := &sprites[i]
			s.pos = s.pos.Add(s.vel.Mul(frameTime.Seconds()))
			s.pos.X = wrap(s.pos.X, float64(width))
			s.pos.Y = wrap(s.pos.Y, float64(height))
			if a, ok := s.graphic.(*anim.Animation); ok {
				a.Tick(frameTime, int64(frame))
			}

			ctx.Save()
			ctx.SetZ(s.z)
			s.graphic.Draw(ctx, s.pos.X, s.pos.Y)
			ctx.Restore()
		}

		for i := range particles {
			angle := float64(i)/float64(len(particles))*2*math.Pi + float64(frame)*0.05
			particles[i] = render.Particle{
				Position: gx.Pt(float64(width)/2+math.Cos(angle)*120, float64(height)/2+math.Sin(angle)*120),
				Size:     6,
				Color:    gx.Hex("#FFD166"),
				Opacity:  0.8,
			}
		}
		ctx.DrawParticles(particles, nil)
		ctx.DrawRectangle(gx.Pt(8, 8), 120, 28, gx.RGBA{A: 0.5}, gx.White, 1)
		label.Draw(ctx, 16, 16)

		if _, err := ctx.CollectTextures(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		ctx.EndDrawLifecycle()
		ctx.UpdatePostProcessors(frameTime)

		stats := *ctx.Stats()
		total.DrawCalls += stats.DrawCalls
		total.DrawnImages += stats.DrawnImages
		if frame%30 == 0 {
			slog.Info("frame", "n", frame, "stats", stats.String())
		}
	}

	fmt.Printf("frames:   %d\n", frames)
	fmt.Printf("average:  %.1f draw calls, %.1f images per frame\n",
		float64(total.DrawCalls)/float64(max(1, frames)), float64(total.DrawnImages)/float64(max(1, frames)))
	fmt.Printf("textures: %s\n", ctx.Textures().Stats())
	fmt.Printf("gc:       %s\n", ctx.Collector().Stats())
	fmt.Printf("loops:    %d\n", loops)
	return nil
}

func wrap(v, limit float64) float64 {
	v = math.Mod(v, limit)
	if v < 0 {
		v += limit
	}
	return v
}

func hue(h float64) color.Color {
	r := 0.5 + 0.5*math.Cos(2*math.Pi*h)
	g := 0.5 + 0.5*math.Cos(2*math.Pi*(h-1.0/3))
	b := 0.5 + 0.5*math.Cos(2*math.Pi*(h-2.0/3))
	return gx.RGB(r, g, b).Color()
}

func checker(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, c)
			} else {
				img.Set(x, y, color.RGBA{A: 0xff})
			}
		}
	}
	return img
}
