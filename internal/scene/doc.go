// Package scene owns the metaball sources and grid configuration and
// keeps the contour in step with them.
//
// Every mutation that can change the field marks the contour stale. The
// step operations ([Scene.Advance], [Scene.Revert]) move all sources and
// recompute the full grid before returning, so a caller never observes
// sources and contour out of sync.
//
// # Thread Safety
//
// Scene instances are NOT thread-safe. The presentation layer drives one
// scene from a single goroutine.
package scene
