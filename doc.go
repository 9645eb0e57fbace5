// Package gx is a batched 2D sprite renderer for the GoGPU ecosystem.
//
// # Overview
//
// gx turns the draw requests a game issues every frame (images, shapes,
// particles, custom materials) into as few GPU draw calls as possible. Images
// are packed as per-instance vertex records into a shared buffer and drawn
// with one instanced call per batch, sharing up to the device's maximum number
// of texture units.
//
// The root package holds the value types shared by every layer: [Matrix]
// (2D affine transforms), [Matrix4] (projection), [RGBA], [Point], [Rect],
// and the logger configured with [SetLogger].
//
// # Packages
//
//   - gpu: the device contract, vertex layouts and instance buffers
//   - gpu/halgpu: a device backed by gogpu/wgpu
//   - texture: uploads images to textures, keyed by a stable source id
//   - gc: the cooperative resource collector
//   - render: the renderer plugin contract
//   - batch: the built-in renderer plugins
//   - graphics: the per-frame graphics context and drawable graphics
//   - anim: frame-based animations
//
// # Quick Start
//
//	dev, err := halgpu.NewFromProvider(provider)
//	ctx, err := graphics.New(dev, graphics.WithSize(800, 600))
//
//	ctx.BeginDrawLifecycle()
//	ctx.Clear()
//	ctx.DrawImage(src, 10, 20)
//	err = ctx.Flush()
//	ctx.EndDrawLifecycle()
package gx
