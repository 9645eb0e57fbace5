// Package graphics provides the per-frame drawing context.
//
// A Context owns a transform stack and a drawing state (z, opacity, tint,
// material), routes draw requests to renderer plugins and flushes them to
// the device. A frame looks like:
//
//	ctx.BeginDrawLifecycle()
//	ctx.Clear()
//	ctx.Save()
//	ctx.Translate(100, 100)
//	ctx.SetZ(1)
//	ctx.DrawImage(src, 0, 0)
//	ctx.Restore()
//	err := ctx.Flush()
//	ctx.EndDrawLifecycle()
//
// With draw sorting enabled (the default) the draws of a frame are
// replayed on Flush ordered by z, then renderer priority, then submission
// order. Disabling it hands each draw to its renderer immediately.
//
// Graphic values (Sprite, SpriteSheet, Group, Text) draw themselves into
// a Context.
package graphics
