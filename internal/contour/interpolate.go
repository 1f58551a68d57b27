package contour

import "github.com/san-kum/metaballs/internal/field"

// Interpolate places the threshold crossing between coordinates a and b
// whose field values are va and vb. The result is undefined when va == vb.
func Interpolate(a, b, va, vb float64) float64 {
	return a + (field.Threshold-va)/(vb-va)*(b-a)
}
