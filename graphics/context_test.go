package graphics

import (
	"bytes"
	"errors"
	"image"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/batch"
	"github.com/gogpu/gx/gc"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/gpu/gputest"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

func newContext(t *testing.T, opts ...Option) (*Context, *gputest.Recorder) {
	t.Helper()
	dev := gputest.NewDefault()
	ctx, err := New(dev, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(ctx.Dispose)
	ctx.BeginDrawLifecycle()
	return ctx, dev
}

func newSource(w, h int) *texture.Source {
	return texture.NewSource("", image.NewRGBA(image.Rect(0, 0, w, h)), texture.Options{})
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := gx.Logger()
	t.Cleanup(func() { gx.SetLogger(orig) })
	var buf bytes.Buffer
	gx.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func mustFlush(t *testing.T, ctx *Context) {
	t.Helper()
	if err := ctx.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// instanceFloat returns attribute attr of image instance i in draw d.
func instanceFloat(d gputest.Draw, i int, attr string) float32 {
	off, _ := batch.ImageLayout.Offset(attr)
	return gputest.Floats(d.Vertices)[i*batch.ImageLayout.Floats()+off]
}

// labels returns the program labels of the recorded draws.
func labels(dev *gputest.Recorder) []string {
	out := make([]string, len(dev.Draws))
	for i, d := range dev.Draws {
		out[i] = d.Program.Desc.Label
	}
	return out
}

func TestNewRegistersRenderers(t *testing.T) {
	ctx, dev := newContext(t)
	if len(dev.Programs) != 1 || dev.Programs[0].Desc.Label != render.ImageType {
		t.Fatalf("programs after New = %d, want only the image program", len(dev.Programs))
	}
	for _, tag := range []string{render.ImageType, render.MaterialType} {
		if _, err := ctx.Renderer(tag); err != nil {
			t.Errorf("Renderer(%q): %v", tag, err)
		}
	}

	p, err := ctx.Renderer(render.CircleType)
	if err != nil {
		t.Fatalf("lazy Renderer: %v", err)
	}
	if p.Type() != render.CircleType || len(dev.Programs) != 2 {
		t.Errorf("lazy renderer not initialized on first lookup")
	}
	again, _ := ctx.Renderer(render.CircleType)
	if again != p || len(dev.Programs) != 2 {
		t.Error("lazy renderer constructed twice")
	}
}

func TestUnknownRenderer(t *testing.T) {
	ctx, _ := newContext(t)
	if _, err := ctx.Renderer("nope"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Errorf("Renderer() error = %v, want ErrUnknownRenderer", err)
	}
	defer func() {
		err, _ := recover().(error)
		if !errors.Is(err, render.ErrUnknownRenderer) {
			t.Errorf("Draw panic = %v, want ErrUnknownRenderer", err)
		}
	}()
	ctx.Draw("nope", &render.ImageCommand{})
}

func TestNewFailsOnCompileError(t *testing.T) {
	dev := gputest.NewDefault()
	dev.FailCompile = render.ImageType
	if _, err := New(dev); !errors.Is(err, gpu.ErrShaderCompile) {
		t.Errorf("New() error = %v, want ErrShaderCompile", err)
	}
}

func TestFlushNothingPending(t *testing.T) {
	ctx, dev := newContext(t)
	mustFlush(t, ctx)
	mustFlush(t, ctx)
	if len(dev.Draws) != 0 {
		t.Errorf("draws = %d, want 0", len(dev.Draws))
	}
}

func TestSortedByZ(t *testing.T) {
	ctx, dev := newContext(t)
	src := newSource(4, 4)

	ctx.SetZ(2)
	ctx.DrawImage(src, 20, 0)
	ctx.SetZ(1)
	ctx.DrawImage(src, 10, 0)
	ctx.SetZ(2)
	ctx.DrawImage(src, 30, 0)
	if ctx.PendingDraws() != 3 {
		t.Fatalf("PendingDraws() = %d, want 3", ctx.PendingDraws())
	}
	mustFlush(t, ctx)

	if len(dev.Draws) != 1 {
		t.Fatalf("draws = %d, want one batch", len(dev.Draws))
	}
	d := dev.Draws[0]
	for i, want := range []float32{10, 20, 30} {
		if got := instanceFloat(d, i, "offset"); got != want {
			t.Errorf("instance %d x = %v, want %v", i, got, want)
		}
	}
	if ctx.PendingDraws() != 0 {
		t.Error("draw calls not reclaimed")
	}
}

func TestSortingGroupsRenderers(t *testing.T) {
	tests := []struct {
		name    string
		sorting bool
		want    []string
	}{
		{"sorted", true, []string{render.RectangleType, render.ImageType}},
		{"unsorted", false, []string{render.ImageType, render.RectangleType, render.ImageType}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dev := newContext(t, WithDrawSorting(tt.sorting))
			src := newSource(4, 4)

			ctx.SetZ(1)
			ctx.DrawImage(src, 0, 0)
			ctx.SetZ(0)
			ctx.DrawRectangle(gx.Pt(0, 0), 5, 5, gx.Red, gx.Transparent, 0)
			ctx.SetZ(1)
			ctx.DrawImage(src, 8, 0)
			mustFlush(t, ctx)

			got := labels(dev)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("draw order = %v, want %v", got, tt.want)
			}
		})
	}
}

// stubPlugin records the commands it receives.
type stubPlugin struct {
	tag      string
	priority int
	log      *[]string
	pending  int
	host     render.Host
}

func (p *stubPlugin) Type() string  { return p.tag }
func (p *stubPlugin) Priority() int { return p.priority }

func (p *stubPlugin) Initialize(_ gpu.Device, host render.Host) error {
	p.host = host
	return nil
}

func (p *stubPlugin) Draw(render.Command) { p.pending++ }

func (p *stubPlugin) HasPendingDraws() bool { return p.pending > 0 }

func (p *stubPlugin) Flush() error {
	if p.pending > 0 {
		*p.log = append(*p.log, p.tag)
		p.pending = 0
	}
	return nil
}

func (p *stubPlugin) Dispose() {}

func TestSortedByPriorityThenSubmission(t *testing.T) {
	ctx, _ := newContext(t)
	var log []string
	for _, p := range []*stubPlugin{
		{tag: "late", priority: 1, log: &log},
		{tag: "early", priority: -1, log: &log},
		{tag: "mid", priority: 0, log: &log},
	} {
		if err := ctx.Register(p); err != nil {
			t.Fatal(err)
		}
	}

	ctx.Draw("late", &render.PointCommand{})
	ctx.Draw("mid", &render.PointCommand{})
	ctx.Draw("early", &render.PointCommand{})
	ctx.SetZ(-1)
	ctx.Draw("late", &render.PointCommand{})
	mustFlush(t, ctx)

	want := "late,early,mid,late"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("flush order = %s, want %s", got, want)
	}
}

func TestReplayHydratesState(t *testing.T) {
	ctx, dev := newContext(t)
	src := newSource(4, 4)

	ctx.Save()
	ctx.Translate(100, 50)
	ctx.SetOpacity(0.5)
	ctx.SetTint(gx.Red)
	ctx.DrawImage(src, 0, 0)
	ctx.Restore()
	ctx.DrawImage(src, 0, 0)
	mustFlush(t, ctx)

	d := dev.Draws[0]
	if x := instanceFloat(d, 0, "mat_col3"); x != 100 {
		t.Errorf("first translation = %v, want 100", x)
	}
	if o := instanceFloat(d, 0, "opacity"); o != 0.5 {
		t.Errorf("first opacity = %v, want 0.5", o)
	}
	if r := instanceFloat(d, 0, "tint"); r != 1 {
		t.Errorf("first tint red = %v, want 1", r)
	}
	if x := instanceFloat(d, 1, "mat_col3"); x != 0 {
		t.Errorf("second translation = %v, want 0", x)
	}
	if o := instanceFloat(d, 1, "opacity"); o != 1 {
		t.Errorf("second opacity = %v, want 1", o)
	}
	if ctx.Opacity() != 1 || !ctx.Transform().IsIdentity() {
		t.Error("Flush leaked replayed state")
	}
}

func TestSaveRestore(t *testing.T) {
	ctx, _ := newContext(t)
	ctx.Restore() // empty stack

	ctx.SetZ(3)
	ctx.Save()
	ctx.SetZ(5)
	ctx.Scale(2, 2)
	ctx.SetMaterial(&render.Material{Name: "m"})
	ctx.Save()
	ctx.Rotate(1)
	ctx.Restore()
	if ctx.Transform() != gx.Scale(2, 2) {
		t.Errorf("inner Restore transform = %v", ctx.Transform())
	}
	ctx.Restore()
	if ctx.Z() != 3 || ctx.Material() != nil || !ctx.Transform().IsIdentity() {
		t.Errorf("outer Restore: z=%v material=%v transform=%v", ctx.Z(), ctx.Material(), ctx.Transform())
	}
}

func TestTranslateSnapsToPixel(t *testing.T) {
	ctx, _ := newContext(t, WithSnapToPixel(true))
	ctx.Translate(10.7, 3.99999)
	if m := ctx.Transform(); m.C != 10 || m.F != 4 {
		t.Errorf("translation = (%v, %v), want (10, 4)", m.C, m.F)
	}
}

func TestDrawImageEarlyExits(t *testing.T) {
	buf := captureLogs(t)
	ctx, _ := newContext(t)
	src := newSource(4, 4)

	ctx.DrawImageSized(src, 0, 0, 0, 4)
	ctx.DrawImageRect(src, 0, 0, 4, 4, 0, 0, 4, 0)
	ctx.DrawImage(newSource(0, 3), 0, 0)
	ctx.DrawImage(nil, 0, 0)
	if n := ctx.PendingDraws(); n != 0 {
		t.Errorf("PendingDraws() = %d, want 0", n)
	}
	if !strings.Contains(buf.String(), "nil image") {
		t.Errorf("nil image not logged: %s", buf.String())
	}
}

func TestDrawOutsideLifecycleWarnsOnce(t *testing.T) {
	buf := captureLogs(t)
	ctx, _ := newContext(t)
	ctx.EndDrawLifecycle()
	src := newSource(2, 2)
	ctx.DrawImage(src, 0, 0)
	ctx.DrawImage(src, 0, 0)

	if n := strings.Count(buf.String(), "outside BeginDrawLifecycle"); n != 1 {
		t.Errorf("lifecycle warnings = %d, want 1", n)
	}
	if ctx.PendingDraws() != 2 {
		t.Error("draws outside the lifecycle should still be recorded")
	}
}

func TestMaterialRouting(t *testing.T) {
	ctx, dev := newContext(t)
	m, err := ctx.CreateMaterial("glow", "")
	if err != nil {
		t.Fatal(err)
	}
	src := newSource(4, 4)
	ctx.SetMaterial(m)
	ctx.DrawImage(src, 0, 0)
	ctx.SetMaterial(nil)
	ctx.DrawImage(src, 0, 0)
	mustFlush(t, ctx)

	if got := labels(dev); len(got) != 2 || got[0] != "gx.material:glow" || got[1] != render.ImageType {
		t.Errorf("draws = %v", got)
	}

	ctx.Dispose()
	if !dev.Programs[1].Destroyed {
		t.Error("material program not released by Dispose")
	}
}

func TestNilDevice(t *testing.T) {
	buf := captureLogs(t)
	ctx, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx.BeginDrawLifecycle()
	ctx.DrawImage(newSource(2, 2), 0, 0)
	ctx.DrawCircle(gx.Pt(1, 1), 1, gx.White, gx.Transparent, 0)
	if err := ctx.Flush(); err != nil {
		t.Errorf("Flush() = %v", err)
	}
	if err := ctx.Clear(); err != nil {
		t.Errorf("Clear() = %v", err)
	}
	if _, err := ctx.CreateMaterial("m", ""); !errors.Is(err, ErrNoDevice) {
		t.Errorf("CreateMaterial() error = %v, want ErrNoDevice", err)
	}
	if !strings.Contains(buf.String(), "without a device") {
		t.Error("dropped draw not logged")
	}
	ctx.Dispose()
}

func TestClearAndViewport(t *testing.T) {
	bg := gx.RGB(0.1, 0.2, 0.3)
	ctx, dev := newContext(t, WithBackground(bg), WithSize(320, 240))
	if w, h := ctx.Resolution(); w != 320 || h != 240 {
		t.Errorf("Resolution() = %d, %d", w, h)
	}
	if dev.Width != 320 || dev.Height != 240 {
		t.Errorf("device not sized by New: %dx%d", dev.Width, dev.Height)
	}
	if err := ctx.Clear(); err != nil {
		t.Fatal(err)
	}
	if len(dev.Clears) != 1 || dev.Clears[0] != bg {
		t.Errorf("clears = %v", dev.Clears)
	}

	if err := ctx.UpdateViewport(640, 480); err != nil {
		t.Fatal(err)
	}
	if dev.Width != 640 || dev.Height != 480 {
		t.Errorf("device size = %dx%d", dev.Width, dev.Height)
	}
	if x, y := ctx.Projection().Apply(640, 480); math.Abs(x-1) > 1e-6 || math.Abs(y+1) > 1e-6 {
		t.Errorf("projection maps bottom-right to (%v, %v), want (1, -1)", x, y)
	}
}

func TestCheckResolutionSupported(t *testing.T) {
	ctx, _ := newContext(t)
	tests := []struct {
		w, h int
		want bool
	}{
		{1920, 1080, true},
		{4096, 4096, true},
		{4097, 10, false},
		{10, 5000, false},
	}
	for _, tt := range tests {
		if got := ctx.CheckResolutionSupported(tt.w, tt.h); got != tt.want {
			t.Errorf("CheckResolutionSupported(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	ctx, _ := newContext(t)
	src := newSource(2, 2)
	for range 3 {
		ctx.DrawImage(src, 0, 0)
	}
	ctx.DrawLine(gx.Pt(0, 0), gx.Pt(5, 5), gx.White, 1)
	mustFlush(t, ctx)

	if got := ctx.Stats().String(); got != "Frame[2 draw calls, 3 images]" {
		t.Errorf("Stats() = %s", got)
	}
	ctx.BeginDrawLifecycle()
	if ctx.Stats().DrawCalls != 0 {
		t.Error("BeginDrawLifecycle should reset stats")
	}
}

func TestDebugDraw(t *testing.T) {
	ctx, dev := newContext(t)
	d := ctx.Debug()
	d.DrawRect(0, 0, 10, 10, gx.Green, 1)
	d.DrawPoint(gx.Pt(5, 5), gx.Red, 3)
	d.DrawCircle(gx.Pt(5, 5), 4, gx.Blue, gx.Transparent, 0)
	mustFlush(t, ctx)

	rects := dev.DrawsFor(render.RectangleType)
	if len(rects) != 1 || rects[0].VertexCount != 5*6 {
		t.Errorf("rectangle draws = %+v", rects)
	}
	if len(dev.DrawsFor(render.CircleType)) != 1 {
		t.Error("circle not drawn")
	}
}

func TestParticles(t *testing.T) {
	ctx, dev := newContext(t)
	ctx.DrawParticles(nil, nil)
	if ctx.PendingDraws() != 0 {
		t.Fatal("empty particle set recorded")
	}
	ctx.DrawParticles([]render.Particle{{Size: 1, Color: gx.White, Opacity: 1}}, newSource(2, 2))
	mustFlush(t, ctx)
	if d := dev.DrawsFor(render.ParticleType); len(d) != 1 || len(d[0].Textures) != 1 {
		t.Errorf("particle draws = %+v", d)
	}
}

type countingProcessor struct {
	initialized bool
	updates     int
	total       time.Duration
}

func (p *countingProcessor) Initialize(*Context) { p.initialized = true }

func (p *countingProcessor) Update(_, total time.Duration) {
	p.updates++
	p.total = total
}

func TestPostProcessors(t *testing.T) {
	ctx, _ := newContext(t)
	a, b := &countingProcessor{}, &countingProcessor{}
	ctx.AddPostProcessor(a)
	ctx.AddPostProcessor(b)
	if !a.initialized || !b.initialized {
		t.Fatal("AddPostProcessor should initialize")
	}

	ctx.UpdatePostProcessors(10 * time.Millisecond)
	ctx.RemovePostProcessor(a)
	ctx.RemovePostProcessor(a)
	ctx.UpdatePostProcessors(5 * time.Millisecond)

	if a.updates != 1 || b.updates != 2 {
		t.Errorf("updates = %d, %d; want 1, 2", a.updates, b.updates)
	}
	if b.total != 15*time.Millisecond {
		t.Errorf("total = %v, want 15ms", b.total)
	}
	ctx.ClearPostProcessors()
	if len(ctx.PostProcessors()) != 0 {
		t.Error("ClearPostProcessors left processors")
	}
}

func TestCollectorReclaimsIdleTextures(t *testing.T) {
	now := time.Unix(0, 0)
	col := gc.New[texture.SourceID](gc.WithClock(func() time.Time { return now }))
	cfg := texture.DefaultConfig()
	cfg.CollectInterval = time.Second
	ctx, dev := newContext(t, WithTextureConfig(cfg), WithCollector(col))
	if ctx.Collector() != col || !col.Running() {
		t.Fatal("collector not started")
	}

	ctx.DrawImage(newSource(2, 2), 0, 0)
	mustFlush(t, ctx)
	if ctx.Textures().Len() != 1 {
		t.Fatal("texture not resident after flush")
	}

	now = now.Add(2 * time.Second)
	if n := col.Collect(); n != 1 {
		t.Errorf("Collect() = %d, want 1", n)
	}
	if ctx.Textures().Len() != 0 || dev.Live() != 0 {
		t.Error("idle texture not released")
	}
}

func TestCollectWithoutCollector(t *testing.T) {
	ctx, _ := newContext(t)
	if ctx.Collector() != nil {
		t.Fatal("Collector() != nil without WithCollector")
	}
	if n := ctx.Collector().Collect(); n != 0 {
		t.Errorf("Collect() = %d, want 0", n)
	}
	ctx.DrawImage(newSource(2, 2), 0, 0)
	n, err := ctx.CollectTextures()
	if n != 0 || err != nil {
		t.Errorf("CollectTextures() = %d, %v; want 0, nil", n, err)
	}
	if ctx.PendingDraws() != 0 {
		t.Error("CollectTextures did not flush")
	}
}

func TestReplaceRendererWithPendingDraws(t *testing.T) {
	ctx, dev := newContext(t)
	ctx.DrawImage(newSource(2, 2), 0, 0)

	if err := ctx.Register(batch.NewImageRenderer(batch.ImageOptions{})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !dev.Programs[0].Destroyed {
		t.Error("replaced renderer's program not destroyed")
	}
	mustFlush(t, ctx)

	draws := dev.DrawsFor(render.ImageType)
	if len(draws) != 1 {
		t.Fatalf("image draws = %d, want 1", len(draws))
	}
	if draws[0].Program != dev.Programs[len(dev.Programs)-1] {
		t.Error("recorded draw did not reach the replacement renderer")
	}
}

func TestCollectKeepsTexturesOfPendingBatch(t *testing.T) {
	for _, sorted := range []bool{false, true} {
		now := time.Unix(0, 0)
		col := gc.New[texture.SourceID](gc.WithClock(func() time.Time { return now }))
		cfg := texture.DefaultConfig()
		cfg.CollectInterval = time.Second
		ctx, dev := newContext(t, WithTextureConfig(cfg), WithCollector(col), WithDrawSorting(sorted))

		ctx.DrawImage(newSource(2, 2), 0, 0)
		now = now.Add(2 * time.Second)
		if n := col.Collect(); n != 0 {
			t.Errorf("sorted=%v: Collect() with pending draws = %d, want 0", sorted, n)
		}
		if err := ctx.Flush(); err != nil {
			t.Fatalf("sorted=%v: Flush: %v", sorted, err)
		}
		if len(dev.DrawsFor(render.ImageType)) != 1 {
			t.Errorf("sorted=%v: image draws = %d, want 1", sorted, len(dev.DrawsFor(render.ImageType)))
		}

		// Sorted draws load their textures on flush, so they are not idle yet.
		want := 1
		if sorted {
			want = 0
		}
		n, err := ctx.CollectTextures()
		if n != want || err != nil {
			t.Errorf("sorted=%v: CollectTextures() = %d, %v; want %d, nil", sorted, n, err, want)
		}
		if dev.Live() != 1-want {
			t.Errorf("sorted=%v: live textures = %d, want %d", sorted, dev.Live(), 1-want)
		}
	}
}

func TestNewFailureReleasesContext(t *testing.T) {
	dev := gputest.NewDefault()
	dev.FailCompile = render.ImageType
	col := gc.New[texture.SourceID]()
	col.Start()
	if _, err := New(dev, WithCollector(col)); err == nil {
		t.Fatal("New succeeded with a failing image program")
	}
	if col.Running() {
		t.Error("collector still running after failed New")
	}
	if len(dev.Programs) != 0 || dev.Live() != 0 {
		t.Error("failed New left device resources")
	}
}
