package contour

import "fmt"

// Grid partitions a viewport into square cells of CellSize pixels.
type Grid struct {
	CellSize int
	Width    int
	Height   int
}

func NewGrid(cellSize, width, height int) (Grid, error) {
	g := Grid{CellSize: 1}
	if err := g.SetCellSize(cellSize); err != nil {
		return Grid{}, err
	}
	if err := g.Resize(width, height); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// SetCellSize updates the cell size. Values below 1 are rejected and the
// previous size is kept.
func (g *Grid) SetCellSize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrCellSize, n)
	}
	g.CellSize = n
	return nil
}

func (g *Grid) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: got %dx%d", ErrViewport, width, height)
	}
	g.Width, g.Height = width, height
	return nil
}

// Columns drops a partial trailing cell.
func (g Grid) Columns() int {
	if g.CellSize < 1 {
		return 0
	}
	return g.Width / g.CellSize
}

func (g Grid) Rows() int {
	if g.CellSize < 1 {
		return 0
	}
	return g.Height / g.CellSize
}

func (g Grid) Cells() int { return g.Columns() * g.Rows() }

func (g Grid) Validate() error {
	if g.CellSize < 1 {
		return fmt.Errorf("%w: got %d", ErrCellSize, g.CellSize)
	}
	if g.Width < 0 || g.Height < 0 {
		return fmt.Errorf("%w: got %dx%d", ErrViewport, g.Width, g.Height)
	}
	return nil
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d cells of %dpx (%dx%d)", g.Columns(), g.Rows(), g.CellSize, g.Width, g.Height)
}
