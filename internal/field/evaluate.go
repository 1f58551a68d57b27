package field

import "math"

// Threshold separates inside from outside.
const Threshold = 1.0

// Evaluate returns Σ r / ‖p − effective‖ over sources. A point sitting
// exactly on a source yields +Inf.
func Evaluate(p Vec2, sources []Source) float64 {
	total := 0.0
	for i := range sources {
		e := sources[i].Effective()
		dx := p.X - e.X
		dy := p.Y - e.Y
		total += sources[i].Radius / math.Sqrt(dx*dx+dy*dy)
	}
	return total
}

// Inside reports whether v is above the threshold. NaN is outside.
func Inside(v float64) bool {
	return v > Threshold
}
