package field

import "fmt"

// Sources is an ordered collection of metaballs. Indices are only stable
// until the next Remove.
type Sources struct {
	items []Source
}

func NewSources(src ...Source) *Sources {
	items := make([]Source, len(src))
	copy(items, src)
	return &Sources{items: items}
}

func (c *Sources) Len() int { return len(c.items) }

// Add appends s and returns its index.
func (c *Sources) Add(s Source) int {
	c.items = append(c.items, s)
	return len(c.items) - 1
}

// At returns a pointer for in-place edits. It panics on an invalid index.
func (c *Sources) At(i int) *Source {
	c.check(i)
	return &c.items[i]
}

// Remove deletes the source at i, shifting later sources down. It panics
// on an invalid index.
func (c *Sources) Remove(i int) Source {
	c.check(i)
	s := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return s
}

func (c *Sources) Advance(scale float64) {
	for i := range c.items {
		c.items[i].Advance(scale)
	}
}

func (c *Sources) Revert(scale float64) {
	for i := range c.items {
		c.items[i].Revert(scale)
	}
}

// All exposes the backing slice for read-only evaluation.
func (c *Sources) All() []Source { return c.items }

func (c *Sources) Clone() *Sources {
	return NewSources(c.items...)
}

func (c *Sources) check(i int) {
	if i < 0 || i >= len(c.items) {
		panic(fmt.Errorf("%w: %d (len %d)", ErrIndex, i, len(c.items)))
	}
}
