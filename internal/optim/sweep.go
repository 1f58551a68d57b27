// Package optim searches grid settings for a scene.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
)

var ErrNoSizes = errors.New("optim: no cell sizes to sweep")

// Sample is one contour pass at a given cell size.
type Sample struct {
	CellSize int
	Segments int
	Filled   int
	Length   float64
	Elapsed  time.Duration
}

// SweepCellSizes extracts the contour once per cell size, finest first.
// Sizes below 1 are rejected before any work is done.
func SweepCellSizes(ctx context.Context, sources []field.Source, width, height int, sizes []int) ([]Sample, error) {
	if len(sizes) == 0 {
		return nil, ErrNoSizes
	}
	grids := make([]contour.Grid, 0, len(sizes))
	for _, n := range sizes {
		g, err := contour.NewGrid(n, width, height)
		if err != nil {
			return nil, fmt.Errorf("cell size %d: %w", n, err)
		}
		grids = append(grids, g)
	}
	sort.Slice(grids, func(i, j int) bool { return grids[i].CellSize < grids[j].CellSize })

	samples := make([]Sample, 0, len(grids))
	for _, g := range grids {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		start := time.Now()
		r := contour.Extract(sources, g)
		samples = append(samples, Sample{
			CellSize: g.CellSize,
			Segments: len(r.Segments),
			Filled:   len(r.Filled),
			Length:   r.Length(),
			Elapsed:  time.Since(start),
		})
	}
	return samples, nil
}

// Coarsest returns the largest cell size whose contour length stays within
// tol (relative) of the finest sample. samples must be sorted finest first,
// as SweepCellSizes returns them.
func Coarsest(samples []Sample, tol float64) (Sample, bool) {
	if len(samples) == 0 {
		return Sample{}, false
	}
	ref := samples[0].Length
	best := samples[0]
	for _, s := range samples[1:] {
		if relErr(s.Length, ref) <= tol {
			best = s
		}
	}
	return best, true
}

// RelativeError reports |v-ref|/ref, or |v| when ref is zero.
func RelativeError(v, ref float64) float64 { return relErr(v, ref) }

func relErr(v, ref float64) float64 {
	if ref == 0 {
		return math.Abs(v)
	}
	return math.Abs(v-ref) / math.Abs(ref)
}
