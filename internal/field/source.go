package field

import (
	"fmt"
	"math"
)

// Vec2 is a point or displacement in viewport space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Source is a single metaball.
type Source struct {
	Position Vec2
	Radius   float64
	Velocity Vec2
	// Offset displaces the source without touching Position or Velocity.
	Offset Vec2
}

func NewSource(x, y, r, dx, dy float64) Source {
	return Source{
		Position: Vec2{x, y},
		Radius:   r,
		Velocity: Vec2{dx, dy},
	}
}

// Effective returns the position the field is evaluated against.
func (s Source) Effective() Vec2 {
	return s.Position.Add(s.Offset)
}

// Advance moves the source by one step of its velocity scaled by scale.
// Revert applies the same delta in the opposite direction.
func (s *Source) Advance(scale float64) {
	s.Position.X += s.Velocity.X * scale
	s.Position.Y += s.Velocity.Y * scale
}

func (s *Source) Revert(scale float64) {
	s.Position.X -= s.Velocity.X * scale
	s.Position.Y -= s.Velocity.Y * scale
}

// Validate reports non-finite fields. Evaluate never calls it.
func (s Source) Validate() error {
	switch {
	case !s.Position.IsFinite():
		return fmt.Errorf("%w: position %v", ErrNonFinite, s.Position)
	case math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0):
		return fmt.Errorf("%w: radius %v", ErrNonFinite, s.Radius)
	case !s.Velocity.IsFinite():
		return fmt.Errorf("%w: velocity %v", ErrNonFinite, s.Velocity)
	case !s.Offset.IsFinite():
		return fmt.Errorf("%w: offset %v", ErrNonFinite, s.Offset)
	}
	return nil
}

func (s Source) String() string {
	return fmt.Sprintf("(%.1f, %.1f) r=%.1f v=(%.1f, %.1f)",
		s.Position.X, s.Position.Y, s.Radius, s.Velocity.X, s.Velocity.Y)
}
