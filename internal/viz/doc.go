// Package viz draws metaball contours in the terminal.
//
// A [Canvas] holds braille characters with 2x4 dots each, and [Rasterize]
// scales a contour result onto it. [Model] is a Bubble Tea program that
// drives a scene. [Picker] puts a preset menu in front of a Model.
//
// # Key Bindings
//
//	Space   - Play/pause
//	←/→     - Revert/advance one step
//	,/.     - Fine revert/advance
//	Tab     - Select next source
//	hjkl    - Nudge the selected source's offset
//	+/-     - Change cell size
//	a/x     - Add/delete a source
//	r       - Edit the selected radius
//	f       - Toggle filled cells
//	t       - Cycle color themes
//	?       - Show help overlay
package viz
