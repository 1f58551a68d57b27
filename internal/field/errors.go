package field

import "errors"

var (
	// ErrNonFinite indicates a NaN or Inf in a source field.
	ErrNonFinite = errors.New("field: non-finite source value")

	// ErrIndex indicates a source index outside the collection.
	ErrIndex = errors.New("field: source index out of range")
)
