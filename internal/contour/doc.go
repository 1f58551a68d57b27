// Package contour extracts the iso-contour of a metaball field with
// marching squares.
//
// The viewport is cut into square cells. Each cell samples the field at
// its four corners, classifies them against [field.Threshold] and looks
// the resulting 4-bit pattern up in [Cases] to decide which edges the
// contour crosses. Crossing points are placed with [Interpolate].
//
// Corner layout:
//
//	A ─ top ── B
//	│          │
//	left     right
//	│          │
//	C ─ bottom D
//
// # Saddle cells
//
// The two diagonal patterns (A+D inside, B+C inside) are not
// disambiguated. They are drawn as two independent single-corner
// crossings, which is an approximation of the true contour.
package contour
