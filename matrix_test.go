package gx

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -2), Pt(1, 1), Pt(11, -1)},
		{"scale", Scale(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"translate then scale local", Translate(10, 10).Scaled(2, 2), Pt(1, 1), Pt(12, 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, 7).Rotated(0.3).Scaled(2, 0.5)
	p := m.Invert().TransformPoint(m.TransformPoint(Pt(3, -9)))
	if !near(p.X, 3) || !near(p.Y, -9) {
		t.Errorf("round trip = %v, want (3, -9)", p)
	}
	if got := (Matrix{}).Invert(); !got.IsIdentity() {
		t.Errorf("singular Invert() = %+v, want identity", got)
	}
}

func TestMatrixColumns(t *testing.T) {
	m := Matrix{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	want := [6]float32{1, 4, 2, 5, 3, 6}
	if got := m.Columns(); got != want {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestOrthoScreenCorners(t *testing.T) {
	o := Ortho(0, 800, 600, 0, 400, -400)
	tests := []struct {
		x, y   float64
		wx, wy float64
	}{
		{0, 0, -1, 1},
		{800, 600, 1, -1},
		{400, 300, 0, 0},
	}
	for _, tt := range tests {
		x, y := o.Apply(tt.x, tt.y)
		if math.Abs(x-tt.wx) > 1e-6 || math.Abs(y-tt.wy) > 1e-6 {
			t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wx, tt.wy)
		}
	}
}

func TestRectUnion(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(5, -5, 10, 10)
	got := a.Union(b)
	if got != R(0, -5, 15, 15) {
		t.Errorf("Union = %+v", got)
	}
	if got := (Rect{}).Union(a); got != a {
		t.Errorf("empty Union = %+v, want %+v", got, a)
	}
}
