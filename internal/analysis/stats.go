package analysis

import "github.com/san-kum/metaballs/internal/contour"

// FrameStats summarises one contour pass.
type FrameStats struct {
	Step     int     `json:"step"`
	Segments int     `json:"segments"`
	Filled   int     `json:"filled"`
	Length   float64 `json:"length"`
}

func Stats(step int, r contour.Result) FrameStats {
	return FrameStats{
		Step:     step,
		Segments: len(r.Segments),
		Filled:   len(r.Filled),
		Length:   r.Length(),
	}
}

// Metric selects one value out of FrameStats.
type Metric func(FrameStats) float64

func Length(s FrameStats) float64   { return s.Length }
func Segments(s FrameStats) float64 { return float64(s.Segments) }
func Filled(s FrameStats) float64   { return float64(s.Filled) }

func Series(stats []FrameStats, m Metric) []float64 {
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = m(s)
	}
	return out
}
