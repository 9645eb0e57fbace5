package graphics

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gx"
	"github.com/gogpu/gx/batch"
	"github.com/gogpu/gx/render"
	"github.com/gogpu/gx/texture"
)

// PostProcessor is a screen effect driven by the context clock.
type PostProcessor interface {
	// Initialize is called once when the processor is added.
	Initialize(ctx *Context)

	// Update advances the effect by elapsed; total is the time accumulated
	// by UpdatePostProcessors since the context was created.
	Update(elapsed, total time.Duration)
}

// AddPostProcessor initializes p and appends it to the processor list.
func (c *Context) AddPostProcessor(p PostProcessor) {
	c.processors = append(c.processors, p)
	p.Initialize(c)
}

// RemovePostProcessor removes p if present.
func (c *Context) RemovePostProcessor(p PostProcessor) {
	if i := slices.Index(c.processors, p); i >= 0 {
		c.processors = slices.Delete(c.processors, i, i+1)
	}
}

// ClearPostProcessors removes every processor.
func (c *Context) ClearPostProcessors() {
	clear(c.processors)
	c.processors = c.processors[:0]
}

// PostProcessors returns the processors in the order they were added.
func (c *Context) PostProcessors() []PostProcessor { return c.processors }

// UpdatePostProcessors advances the context clock by elapsed and updates
// every processor.
func (c *Context) UpdatePostProcessors(elapsed time.Duration) {
	c.elapsed += elapsed
	for _, p := range c.processors {
		p.Update(elapsed, c.elapsed)
	}
}

// CreateMaterial compiles fragment into a material program. The fragment
// declares fs_main and may use the bindings of batch.MaterialPrelude;
// images are bound after the drawn image. The program is released by
// Dispose.
func (c *Context) CreateMaterial(name, fragment string, images ...*texture.Source) (*render.Material, error) {
	if c.dev == nil {
		return nil, ErrNoDevice
	}
	if fragment == "" {
		fragment = batch.MaterialDefaultFragment
	}
	prog, err := c.dev.CreateProgram(batch.MaterialDescriptor(name, fragment, len(images)))
	if err != nil {
		return nil, fmt.Errorf("graphics: material %q: %w", name, err)
	}
	m := &render.Material{Name: name, Program: prog, Color: gx.White, Images: images}
	c.materials = append(c.materials, m)
	return m, nil
}
