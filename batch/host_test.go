package batch

import (
	"image"
	"testing"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/gpu"
	"github.com/gogpu/gx/gpu/gputest"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

// testHost is a render.Host with directly settable state.
type testHost struct {
	transform gx.Matrix
	opacity   float64
	tint      gx.RGBA
	material  *render.Material
	snap      bool
	w, h      int
	loader    *texture.Loader
	stats     render.Stats
}

func newTestHost(dev gpu.Device) *testHost {
	return &testHost{
		transform: gx.Identity(),
		opacity:   1,
		tint:      gx.White,
		w:         800,
		h:         600,
		loader:    texture.NewLoader(dev, texture.DefaultConfig()),
	}
}

func (h *testHost) Transform() gx.Matrix       { return h.transform }
func (h *testHost) Opacity() float64           { return h.opacity }
func (h *testHost) Tint() gx.RGBA              { return h.tint }
func (h *testHost) Material() *render.Material { return h.material }
func (h *testHost) SnapToPixel() bool          { return h.snap }
func (h *testHost) Projection() gx.Matrix4     { return gx.Ortho(0, float64(h.w), float64(h.h), 0, 400, -400) }
func (h *testHost) Resolution() (int, int)     { return h.w, h.h }
func (h *testHost) Textures() *texture.Loader  { return h.loader }
func (h *testHost) Stats() *render.Stats       { return &h.stats }

func newSource(w, h int) *texture.Source {
	return texture.NewSource("", image.NewRGBA(image.Rect(0, 0, w, h)), texture.Options{})
}

// initPlugin initializes p against a fresh recorder and host.
func initPlugin(t *testing.T, p render.Plugin, limits gpu.Limits) (*gputest.Recorder, *testHost) {
	t.Helper()
	dev := gputest.New(limits)
	host := newTestHost(dev)
	if err := p.Initialize(dev, host); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(p.Dispose)
	return dev, host
}

func defaultLimits() gpu.Limits {
	return gpu.Limits{MaxTextureSize: 4096, MaxTextureUnits: 8, MaxBufferSize: 1 << 28}
}

func mustFlush(t *testing.T, p render.Plugin) {
	t.Helper()
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	fn()
}
