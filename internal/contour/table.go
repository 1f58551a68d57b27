package contour

import "strings"

// Corner indexes the four samples of a cell.
type Corner int

const (
	A Corner = iota // top-left
	B               // top-right
	C               // bottom-left
	D               // bottom-right
)

func (c Corner) String() string {
	return [...]string{"A", "B", "C", "D"}[c]
}

// Edge identifies a cell side by its two corners.
type Edge int

const (
	Top    Edge = iota // A–B
	Left               // A–C
	Right              // B–D
	Bottom             // C–D
)

func (e Edge) String() string {
	return [...]string{"top", "left", "right", "bottom"}[e]
}

// Corners returns the endpoints of e.
func (e Edge) Corners() (Corner, Corner) {
	switch e {
	case Top:
		return A, B
	case Left:
		return A, C
	case Right:
		return B, D
	default:
		return C, D
	}
}

// Config is the inside/outside pattern of a cell: A is bit 3, B bit 2,
// C bit 1 and D bit 0.
type Config uint8

func (c Config) Inside(k Corner) bool {
	return c&(1<<(3-uint(k))) != 0
}

// String draws the pattern as the cell looks on screen, '#' inside.
func (c Config) String() string {
	var b strings.Builder
	for k := A; k <= D; k++ {
		if c.Inside(k) {
			b.WriteByte('#')
		} else {
			b.WriteByte('-')
		}
		if k == B {
			b.WriteByte('/')
		}
	}
	return b.String()
}

// EdgePair is one output segment: from the crossing on the first edge to
// the crossing on the second.
type EdgePair [2]Edge

// Case is the marching-squares output for one corner pattern.
type Case struct {
	Pairs  []EdgePair
	Filled bool
}

// Cases maps every corner pattern to its crossed edges. The entries are
// enumerated by hand; pattern 9 and 6 are saddles and split into the
// single-corner cases of their inside corners.
var Cases = [16]Case{
	0b0000: {},
	0b1000: {Pairs: []EdgePair{{Left, Top}}},    // #- / --
	0b0100: {Pairs: []EdgePair{{Right, Top}}},   // -# / --
	0b0010: {Pairs: []EdgePair{{Bottom, Left}}}, // -- / #-
	0b0001: {Pairs: []EdgePair{{Bottom, Right}}},

	0b1100: {Pairs: []EdgePair{{Left, Right}}}, // ## / --
	0b0011: {Pairs: []EdgePair{{Left, Right}}}, // -- / ##
	0b1010: {Pairs: []EdgePair{{Top, Bottom}}}, // #- / #-
	0b0101: {Pairs: []EdgePair{{Top, Bottom}}}, // -# / -#

	0b1001: {Pairs: []EdgePair{{Left, Top}, {Bottom, Right}}},
	0b0110: {Pairs: []EdgePair{{Right, Top}, {Bottom, Left}}},

	0b0111: {Pairs: []EdgePair{{Left, Top}}},    // A outside
	0b1011: {Pairs: []EdgePair{{Right, Top}}},   // B outside
	0b1101: {Pairs: []EdgePair{{Left, Bottom}}}, // C outside
	0b1110: {Pairs: []EdgePair{{Right, Bottom}}},

	0b1111: {Filled: true},
}
