package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// Attribute is one named float vector attribute of a vertex layout.
type Attribute struct {
	Name       string
	Components int // 1 to 4
}

// VertexLayout maps a packed float32 buffer to shader input locations.
// Attributes are laid out back to back in declaration order; the attribute
// at index i is bound to shader location i.
type VertexLayout struct {
	StepMode   gputypes.VertexStepMode
	Attributes []Attribute

	offsets []int
	floats  int
}

// NewVertexLayout computes offsets and stride for attrs.
// It panics if an attribute has fewer than 1 or more than 4 components.
func NewVertexLayout(step gputypes.VertexStepMode, attrs ...Attribute) VertexLayout {
	l := VertexLayout{StepMode: step, Attributes: attrs, offsets: make([]int, len(attrs))}
	for i, a := range attrs {
		if a.Components < 1 || a.Components > 4 {
			panic(fmt.Sprintf("gpu: attribute %q has %d components", a.Name, a.Components))
		}
		l.offsets[i] = l.floats
		l.floats += a.Components
	}
	return l
}

// Floats returns the number of float32 values per vertex.
func (l VertexLayout) Floats() int { return l.floats }

// Stride returns the size of one vertex in bytes.
func (l VertexLayout) Stride() int { return l.floats * 4 }

// Offset returns the float offset of the named attribute.
func (l VertexLayout) Offset(name string) (int, bool) {
	for i, a := range l.Attributes {
		if a.Name == name {
			return l.offsets[i], true
		}
	}
	return 0, false
}

// BufferLayout converts l to the gputypes description used by pipelines.
func (l VertexLayout) BufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         floatFormat(a.Components),
			Offset:         uint64(l.offsets[i] * 4),
			ShaderLocation: uint32(i),
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(l.Stride()),
		StepMode:    l.StepMode,
		Attributes:  attrs,
	}
}

func floatFormat(n int) gputypes.VertexFormat {
	switch n {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// VertexBuffer is a CPU-side packed float32 array with a device buffer
// behind it. Data is appended with Put and uploaded with Upload, which
// sends only the populated prefix.
type VertexBuffer struct {
	Layout VertexLayout

	data    []float32
	cursor  int
	staging []byte
	buf     Buffer
}

// NewVertexBuffer allocates room for capacity vertices of layout on dev.
func NewVertexBuffer(dev Device, label string, layout VertexLayout, capacity int) (*VertexBuffer, error) {
	size := capacity * layout.Stride()
	buf, err := dev.CreateBuffer(label, size)
	if err != nil {
		return nil, fmt.Errorf("gpu: create vertex buffer %q: %w", label, err)
	}
	return &VertexBuffer{
		Layout:  layout,
		data:    make([]float32, capacity*layout.Floats()),
		staging: make([]byte, size),
		buf:     buf,
	}, nil
}

// Buffer returns the device buffer.
func (vb *VertexBuffer) Buffer() Buffer { return vb.buf }

// Capacity returns the number of vertices the buffer can hold.
func (vb *VertexBuffer) Capacity() int { return len(vb.data) / vb.Layout.Floats() }

// Len returns the number of complete vertices written so far.
func (vb *VertexBuffer) Len() int { return vb.cursor / vb.Layout.Floats() }

// Put appends values at the cursor. Values that do not fit are dropped;
// callers flush before the buffer fills.
func (vb *VertexBuffer) Put(values ...float32) {
	vb.cursor += copy(vb.data[vb.cursor:], values)
}

// Data returns the populated prefix.
func (vb *VertexBuffer) Data() []float32 { return vb.data[:vb.cursor] }

// Upload writes the populated prefix to the device buffer.
func (vb *VertexBuffer) Upload(dev Device) error {
	if vb.cursor == 0 {
		return nil
	}
	n := vb.cursor * 4
	for i, v := range vb.data[:vb.cursor] {
		binary.LittleEndian.PutUint32(vb.staging[i*4:], math.Float32bits(v))
	}
	return dev.WriteBuffer(vb.buf, vb.staging[:n])
}

// Reset rewinds the cursor. Stale data past the cursor is never uploaded.
func (vb *VertexBuffer) Reset() { vb.cursor = 0 }

// Destroy releases the device buffer.
func (vb *VertexBuffer) Destroy(dev Device) {
	if vb.buf != nil {
		dev.DestroyBuffer(vb.buf)
		vb.buf = nil
	}
}

// UniformWriter packs a uniform block with WGSL alignment rules for the
// scalar, vec4 and mat4x4 types gx programs use.
type UniformWriter struct {
	buf []byte
}

// NewUniformWriter returns a writer for a block of size bytes.
func NewUniformWriter(size int) *UniformWriter {
	return &UniformWriter{buf: make([]byte, 0, size)}
}

// Reset empties the writer, keeping its storage.
func (w *UniformWriter) Reset() { w.buf = w.buf[:0] }

func (w *UniformWriter) align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

// Float32 appends a scalar f32.
func (w *UniformWriter) Float32(v float32) {
	w.align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// Uint32 appends a scalar u32.
func (w *UniformWriter) Uint32(v uint32) {
	w.align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Vec2 appends a vec2<f32>.
func (w *UniformWriter) Vec2(x, y float32) {
	w.align(8)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(x))
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(y))
}

// Vec4 appends a vec4<f32>.
func (w *UniformWriter) Vec4(v [4]float32) {
	w.align(16)
	for _, f := range v {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(f))
	}
}

// Mat4 appends a column-major mat4x4<f32>.
func (w *UniformWriter) Mat4(m [16]float32) {
	w.align(16)
	for _, f := range m {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(f))
	}
}

// Bytes pads the block to a multiple of 16 bytes and returns it.
func (w *UniformWriter) Bytes() []byte {
	w.align(16)
	return w.buf
}
