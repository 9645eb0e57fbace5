// Package render defines the contract between the graphics context and the
// renderer plugins that batch draw requests into device draw calls.
//
// A Plugin accumulates Commands of one kind and turns them into as few draw
// calls as possible when flushed. Every Plugin is keyed by a unique type tag.
// The Host is the graphics context seen from a plugin: it supplies the
// current transform, opacity, tint and material for each Command, which is
// why a plugin reads Host state inside Draw rather than storing it.
package render
