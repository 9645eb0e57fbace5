package gx

import "math"

// Matrix is a 2D affine transform stored row-major:
//
//	| a  b  c |
//	| d  e  f |
//
// mapping x' = a*x + b*y + c and y' = d*x + e*y + f.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation transform.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a scaling transform.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate returns a rotation transform (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Multiply returns m * other, so other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Translated returns m with a translation applied in local space.
func (m Matrix) Translated(x, y float64) Matrix { return m.Multiply(Translate(x, y)) }

// Rotated returns m with a rotation applied in local space.
func (m Matrix) Rotated(angle float64) Matrix { return m.Multiply(Rotate(angle)) }

// Scaled returns m with a scale applied in local space.
func (m Matrix) Scaled(x, y float64) Matrix { return m.Multiply(Scale(x, y)) }

// TransformPoint applies the transform to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Invert returns the inverse transform, or the identity if m is singular.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity()
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Columns returns the transform in column-major order as three 2-component
// columns: (a, d), (b, e), (c, f). This is the layout packed into
// per-instance vertex attributes.
func (m Matrix) Columns() [6]float32 {
	return [6]float32{
		float32(m.A), float32(m.D),
		float32(m.B), float32(m.E),
		float32(m.C), float32(m.F),
	}
}

// Matrix4 is a 4x4 matrix in column-major order, as consumed by shader
// uniforms.
type Matrix4 [16]float32

// Ortho returns an orthographic projection. For a screen of w by h pixels
// with the origin in the top-left corner use Ortho(0, w, h, 0, 400, -400).
func Ortho(left, right, bottom, top, near, far float64) Matrix4 {
	var m Matrix4
	m[0] = float32(2 / (right - left))
	m[5] = float32(2 / (top - bottom))
	m[10] = float32(-2 / (far - near))
	m[12] = float32(-(right + left) / (right - left))
	m[13] = float32(-(top + bottom) / (top - bottom))
	m[14] = float32(-(far + near) / (far - near))
	m[15] = 1
	return m
}

// Apply transforms the point (x, y, 0, 1) and returns the resulting x and y.
func (m Matrix4) Apply(x, y float64) (float64, float64) {
	fx, fy := float32(x), float32(y)
	return float64(m[0]*fx + m[4]*fy + m[12]), float64(m[1]*fx + m[5]*fy + m[13])
}
