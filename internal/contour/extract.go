package contour

import "github.com/san-kum/metaballs/internal/field"

// Segment is one contour line in viewport space.
type Segment struct {
	P, Q field.Vec2
}

func (s Segment) Len() float64 { return s.Q.Sub(s.P).Len() }

// IsFinite reports whether both endpoints are finite. A source sitting
// on a grid vertex can give NaN crossings on the edges next to it.
func (s Segment) IsFinite() bool { return s.P.IsFinite() && s.Q.IsFinite() }

// Cell addresses a grid cell by column and row.
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Result is the output of one contour pass. Filled lists the cells whose
// corners are all inside; it is a rendering hint, not contour.
type Result struct {
	Segments []Segment
	Filled   []Cell
}

// Length returns the summed length of all finite segments.
func (r Result) Length() float64 {
	total := 0.0
	for _, s := range r.Segments {
		if s.IsFinite() {
			total += s.Len()
		}
	}
	return total
}

// Finite returns r without segments that have a non-finite endpoint.
// Filled is shared with r.
func (r Result) Finite() Result {
	out := Result{Filled: r.Filled}
	for _, s := range r.Segments {
		if s.IsFinite() {
			out.Segments = append(out.Segments, s)
		}
	}
	return out
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	var out Result
	if r.Segments != nil {
		out.Segments = append(make([]Segment, 0, len(r.Segments)), r.Segments...)
	}
	if r.Filled != nil {
		out.Filled = append(make([]Cell, 0, len(r.Filled)), r.Filled...)
	}
	return out
}

func (r Result) Empty() bool {
	return len(r.Segments) == 0 && len(r.Filled) == 0
}

// Corners holds the position and field value of a cell's four samples,
// indexed by Corner.
type Corners struct {
	Pos [4]field.Vec2
	Val [4]float64
}

// CornerValues samples the field at the corners of cell (i, j).
func CornerValues(sources []field.Source, size, i, j int) Corners {
	x0, y0 := float64(i*size), float64(j*size)
	x1, y1 := float64(i*size+size), float64(j*size+size)

	var c Corners
	c.Pos[A] = field.Vec2{X: x0, Y: y0}
	c.Pos[B] = field.Vec2{X: x1, Y: y0}
	c.Pos[C] = field.Vec2{X: x0, Y: y1}
	c.Pos[D] = field.Vec2{X: x1, Y: y1}
	for k := range c.Pos {
		c.Val[k] = field.Evaluate(c.Pos[k], sources)
	}
	return c
}

// Classify builds the corner pattern for four field values.
func Classify(values [4]float64) Config {
	var cfg Config
	for k := A; k <= D; k++ {
		if field.Inside(values[k]) {
			cfg |= 1 << (3 - uint(k))
		}
	}
	return cfg
}

// Crossing returns the interpolated point where the contour crosses e.
func (c Corners) Crossing(e Edge) field.Vec2 {
	p, q := e.Corners()
	switch e {
	case Top, Bottom:
		return field.Vec2{
			X: Interpolate(c.Pos[p].X, c.Pos[q].X, c.Val[p], c.Val[q]),
			Y: c.Pos[p].Y,
		}
	default:
		return field.Vec2{
			X: c.Pos[p].X,
			Y: Interpolate(c.Pos[p].Y, c.Pos[q].Y, c.Val[p], c.Val[q]),
		}
	}
}

// Extract runs one full marching-squares pass over g. Cells are visited
// row by row; the returned Result shares no memory with earlier calls.
func Extract(sources []field.Source, g Grid) Result {
	var r Result
	extractRows(&r, sources, g, 0, g.Rows())
	return r
}

func extractRows(r *Result, sources []field.Source, g Grid, from, to int) {
	cols := g.Columns()
	for j := from; j < to; j++ {
		for i := 0; i < cols; i++ {
			extractCell(r, sources, g.CellSize, i, j)
		}
	}
}

func extractCell(r *Result, sources []field.Source, size, i, j int) {
	segs, filled := CornerValues(sources, size, i, j).Emit()
	if filled {
		r.Filled = append(r.Filled, Cell{I: i, J: j})
		return
	}
	r.Segments = append(r.Segments, segs...)
}

// Emit classifies the corners and returns the segments for the matching
// case, or filled when every corner is inside.
func (c Corners) Emit() ([]Segment, bool) {
	cs := Cases[Classify(c.Val)]
	if cs.Filled {
		return nil, true
	}
	var segs []Segment
	for _, pair := range cs.Pairs {
		segs = append(segs, Segment{P: c.Crossing(pair[0]), Q: c.Crossing(pair[1])})
	}
	return segs, false
}
