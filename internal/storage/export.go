package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/metaballs/internal/contour"
)

type ExportData struct {
	*RunMetadata
	Contours []ExportFrame `json:"contours"`
}

type ExportFrame struct {
	Step     int            `json:"step"`
	Segments [][4]float64  `json:"segments"`
	Filled   []contour.Cell `json:"filled"`
}

// ExportJSON writes a run and all its frames as one JSON document.
// Segments with a non-finite endpoint are left out.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []Frame) error {
	data := ExportData{
		RunMetadata: meta,
		Contours:    make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		r := f.Result.Finite()
		ef := ExportFrame{
			Step:     f.Step,
			Segments: make([][4]float64, len(r.Segments)),
			Filled:   r.Filled,
		}
		for k, s := range r.Segments {
			ef.Segments[k] = [4]float64{s.P.X, s.P.Y, s.Q.X, s.Q.Y}
		}
		if ef.Filled == nil {
			ef.Filled = []contour.Cell{}
		}
		data.Contours[i] = ef
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
