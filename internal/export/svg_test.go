package export

import (
	"strings"
	"testing"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
	"github.com/san-kum/metaballs/internal/viz"
)

func TestSegmentsToSVG(t *testing.T) {
	g := contour.Grid{CellSize: 10, Width: 100, Height: 50}
	r := contour.Result{
		Segments: []contour.Segment{
			{P: field.Vec2{X: 0, Y: 5}, Q: field.Vec2{X: 5, Y: 0}},
			{P: field.Vec2{X: 10, Y: 10}, Q: field.Vec2{X: 20, Y: 15.5}},
		},
		Filled: []contour.Cell{{I: 2, J: 3}},
	}

	tests := []struct {
		name    string
		fill    bool
		want    []string
		notWant []string
	}{
		{
			name: "outline",
			want: []string{
				`width="100" height="50"`,
				`stroke="#cc00ff"`,
				"M0.00,5.00 L5.00,0.00 M10.00,10.00 L20.00,15.50",
			},
			notWant: []string{`<rect x=`},
		},
		{
			name: "filled",
			fill: true,
			want: []string{`<rect x="20" y="30" width="10" height="10"/>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultStyle()
			style.Fill = tt.fill
			svg := SegmentsToSVG(r, g, style)
			for _, w := range tt.want {
				if !strings.Contains(svg, w) {
					t.Errorf("expected %q in output", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(svg, w) {
					t.Errorf("did not expect %q in output", w)
				}
			}
			if !strings.HasSuffix(svg, "</svg>") {
				t.Error("expected closing svg tag")
			}
		})
	}
}

func TestSegmentsToSVGEmpty(t *testing.T) {
	svg := SegmentsToSVG(contour.Result{}, contour.Grid{CellSize: 1, Width: 10, Height: 10}, DefaultStyle())
	if strings.Contains(svg, "<path") {
		t.Error("expected no path for empty result")
	}
}

func TestSegmentsToSVGSourceOnVertex(t *testing.T) {
	g, err := contour.NewGrid(10, 200, 200)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	r := contour.Extract([]field.Source{field.NewSource(100, 100, 5, 0, 0)}, g)

	svg := SegmentsToSVG(r, g, DefaultStyle())
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Errorf("expected only finite coordinates, got %s", svg)
	}
	if !strings.Contains(svg, "<path") {
		t.Error("expected the finite segments to be drawn")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2, "#fff") != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2, "#00ff00")
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="1.0" cy="1.0"`) {
		t.Error("expected first dot centred at (1,1)")
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Error("expected 8x8 output for a 4x4 dot canvas at scale 2")
	}
}
