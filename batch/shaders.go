package batch

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// Embedded WGSL sources.

//go:embed shaders/image.wgsl.tmpl
var imageShaderTemplate string

//go:embed shaders/shape.wgsl
var shapeShaderSource string

//go:embed shaders/circle.wgsl
var circleShaderSource string

//go:embed shaders/particle.wgsl
var particleShaderSource string

// MaterialPrelude declares the bindings and vertex stage shared by every
// material program. A material supplies only fs_main.
//
//go:embed shaders/material_prelude.wgsl
var MaterialPrelude string

var imageShader = template.Must(template.New("image").Parse(imageShaderTemplate))

// textureSlot is the binding pair of one texture slot.
type textureSlot struct {
	Index          int
	TextureBinding int
	SamplerBinding int
}

func textureSlots(n int) []textureSlot {
	slots := make([]textureSlot, n)
	for i := range slots {
		slots[i] = textureSlot{Index: i, TextureBinding: 1 + 2*i, SamplerBinding: 2 + 2*i}
	}
	return slots
}

// ImageShaderSource returns the image program for n texture slots. The
// fragment stage selects a slot with an if/else chain because WGSL cannot
// index separate texture bindings dynamically.
func ImageShaderSource(n int) (string, error) {
	var b strings.Builder
	if err := imageShader.Execute(&b, textureSlots(n)); err != nil {
		return "", fmt.Errorf("batch: image shader: %w", err)
	}
	return b.String(), nil
}
