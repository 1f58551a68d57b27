package viz

import (
	"math"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
)

// Rasterize scales a contour result from viewport space onto the canvas.
// Filled cells are painted only when fill is set. The canvas is not
// cleared first.
func Rasterize(r contour.Result, g contour.Grid, c *Canvas, fill bool) {
	if g.Width <= 0 || g.Height <= 0 || c.Width == 0 || c.Height == 0 {
		return
	}
	sx := float64(c.PixelWidth()) / float64(g.Width)
	sy := float64(c.PixelHeight()) / float64(g.Height)

	project := func(p field.Vec2) (int, int) {
		return int(math.Floor(p.X * sx)), int(math.Floor(p.Y * sy))
	}

	if fill {
		size := float64(g.CellSize)
		for _, cell := range r.Filled {
			x0, y0 := project(field.Vec2{X: float64(cell.I) * size, Y: float64(cell.J) * size})
			x1, y1 := project(field.Vec2{X: float64(cell.I+1) * size, Y: float64(cell.J+1) * size})
			c.FillRect(x0, y0, max(x1, x0+1), max(y1, y0+1))
		}
	}

	for _, s := range r.Segments {
		if !s.IsFinite() {
			continue
		}
		x0, y0 := project(s.P)
		x1, y1 := project(s.Q)
		c.DrawLine(x0, y0, x1, y1)
	}
}
