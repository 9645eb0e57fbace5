package graphics

import (
	"github.com/gogpu/gx"
	"github.com/gogpu/gx/render"
)

// state is the drawing state saved and restored with the transform.
type state struct {
	z        float64
	opacity  float64
	tint     gx.RGBA
	material *render.Material
}

func defaultState() state {
	return state{opacity: 1, tint: gx.White}
}

// Save pushes the current transform and state. Changes made until the
// matching Restore are discarded by it.
func (c *Context) Save() {
	c.transforms = append(c.transforms, c.transform)
	c.states = append(c.states, c.state)
}

// Restore pops the transform and state pushed by the last Save. It does
// nothing if the stack is empty.
func (c *Context) Restore() {
	if len(c.states) == 0 {
		return
	}
	n := len(c.states) - 1
	c.transform, c.state = c.transforms[n], c.states[n]
	c.transforms, c.states = c.transforms[:n], c.states[:n]
}

// Translate moves the origin. With snap to pixel enabled, x and y are
// truncated to whole pixels first.
func (c *Context) Translate(x, y float64) {
	if c.opts.snapToPixel {
		x, y = render.Snap(x), render.Snap(y)
	}
	c.transform = c.transform.Translated(x, y)
}

// Rotate rotates the coordinate system by angle radians.
func (c *Context) Rotate(angle float64) {
	c.transform = c.transform.Rotated(angle)
}

// Scale scales the coordinate system.
func (c *Context) Scale(x, y float64) {
	c.transform = c.transform.Scaled(x, y)
}

// Multiply post-multiplies the current transform by m.
func (c *Context) Multiply(m gx.Matrix) {
	c.transform = c.transform.Multiply(m)
}

// SetTransform replaces the current transform.
func (c *Context) SetTransform(m gx.Matrix) { c.transform = m }

// ResetTransform sets the current transform to the identity.
func (c *Context) ResetTransform() { c.transform = gx.Identity() }

// Transform returns the current transform.
func (c *Context) Transform() gx.Matrix { return c.transform }

func (c *Context) Opacity() float64     { return c.state.opacity }
func (c *Context) SetOpacity(o float64) { c.state.opacity = o }
func (c *Context) Tint() gx.RGBA        { return c.state.tint }
func (c *Context) SetTint(t gx.RGBA)    { c.state.tint = t }
func (c *Context) Z() float64           { return c.state.z }
func (c *Context) SetZ(z float64)       { c.state.z = z }

// Material returns the material images are drawn with, or nil for the
// image renderer.
func (c *Context) Material() *render.Material { return c.state.material }

// SetMaterial routes subsequent images through m. Nil restores the image
// renderer.
func (c *Context) SetMaterial(m *render.Material) { c.state.material = m }
