package contour

import "errors"

var (
	// ErrCellSize indicates a cell size below 1.
	ErrCellSize = errors.New("contour: cell size must be at least 1")

	// ErrViewport indicates a negative viewport dimension.
	ErrViewport = errors.New("contour: viewport dimensions must be non-negative")
)
