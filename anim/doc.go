// Package anim implements frame animations driven by a game loop tick.
package anim
