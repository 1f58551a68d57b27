package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/viz"
)

// Style controls SVG contour output.
type Style struct {
	Stroke      string
	StrokeWidth float64
	Fill        bool
	FillColor   string
	Background  string
}

func DefaultStyle() Style {
	return Style{
		Stroke:      "#cc00ff",
		StrokeWidth: 1.5,
		FillColor:   "#5f00af",
		Background:  "#0a0a0a",
	}
}

// SegmentsToSVG draws a contour result at viewport scale. Each segment is
// one move-to/line-to pair in a single path. Segments with a non-finite
// endpoint are skipped.
func SegmentsToSVG(r contour.Result, g contour.Grid, style Style) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, g.Width, g.Height, g.Width, g.Height)
	if style.Background != "" {
		fmt.Fprintf(&sb, "<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", style.Background)
	}

	if style.Fill && len(r.Filled) > 0 {
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n", style.FillColor)
		for _, c := range r.Filled {
			fmt.Fprintf(&sb, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\"/>\n",
				c.I*g.CellSize, c.J*g.CellSize, g.CellSize, g.CellSize)
		}
		sb.WriteString("</g>\n")
	}

	if segs := r.Finite().Segments; len(segs) > 0 {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="%.1f" d="`, style.Stroke, style.StrokeWidth)
		for i, s := range segs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "M%.2f,%.2f L%.2f,%.2f", s.P.X, s.P.Y, s.Q.X, s.Q.Y)
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, color)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
