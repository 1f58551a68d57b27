package contour

import (
	"context"
	"runtime"

	"github.com/san-kum/metaballs/internal/field"
	"golang.org/x/sync/errgroup"
)

// minBandRows keeps small grids on a single goroutine.
const minBandRows = 8

// ExtractParallel splits the grid into row bands and extracts them
// concurrently. Bands are gathered in row order, so the result equals
// Extract. workers <= 0 uses GOMAXPROCS.
func ExtractParallel(ctx context.Context, sources []field.Source, g Grid, workers int) (Result, error) {
	rows := g.Rows()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if rows/minBandRows < workers {
		workers = rows / minBandRows
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return Extract(sources, g), nil
	}

	bandSize := (rows + workers - 1) / workers
	bands := make([]Result, workers)

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * bandSize
		end := min(start+bandSize, rows)
		band := &bands[w]
		eg.Go(func() error {
			for j := start; j < end; j++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				extractRows(band, sources, g, j, j+1)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	var out Result
	for _, b := range bands {
		out.Segments = append(out.Segments, b.Segments...)
		out.Filled = append(out.Filled, b.Filled...)
	}
	return out, nil
}
