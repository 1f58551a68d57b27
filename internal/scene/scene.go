package scene

import (
	"context"
	"fmt"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
	"go.uber.org/zap"
)

// Observer is notified after every step with the fresh contour. The result
// is shared with the scene and must not be modified.
type Observer interface {
	OnStep(step int, r contour.Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, r contour.Result)

func (f ObserverFunc) OnStep(step int, r contour.Result) { f(step, r) }

type Scene struct {
	sources   *field.Sources
	grid      contour.Grid
	result    contour.Result
	stale     bool
	step      int
	observers []Observer
	workers   int
	logger    *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers extracts contours on n goroutines. n <= 1 stays sequential.
func WithWorkers(n int) Option {
	return func(s *Scene) { s.workers = n }
}

func WithObserver(o Observer) Option {
	return func(s *Scene) { s.observers = append(s.observers, o) }
}

// New builds a scene over a validated grid. The sources are copied.
func New(grid contour.Grid, sources []field.Source, opts ...Option) (*Scene, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		sources: field.NewSources(sources...),
		grid:    grid,
		stale:   true,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scene) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Scene) Grid() contour.Grid { return s.grid }
func (s *Scene) Step() int          { return s.step }
func (s *Scene) Len() int           { return s.sources.Len() }

// Sources returns a copy of the current sources.
func (s *Scene) Sources() []field.Source {
	out := make([]field.Source, s.sources.Len())
	copy(out, s.sources.All())
	return out
}

// Source returns a copy of the source at i. It panics on an invalid index.
func (s *Scene) Source(i int) field.Source { return *s.sources.At(i) }

// Contours returns a copy of the current contour, recomputing it if a
// mutation made it stale.
func (s *Scene) Contours() contour.Result {
	if s.stale {
		s.recompute()
	}
	return s.result.Clone()
}

// Advance moves every source by its velocity and recomputes the contour.
func (s *Scene) Advance() contour.Result { return s.AdvanceFine(1) }

// Revert undoes one Advance.
func (s *Scene) Revert() contour.Result { return s.RevertFine(1) }

// AdvanceFine moves every source by scale times its velocity.
func (s *Scene) AdvanceFine(scale float64) contour.Result {
	s.sources.Advance(scale)
	s.step++
	return s.afterStep()
}

func (s *Scene) RevertFine(scale float64) contour.Result {
	s.sources.Revert(scale)
	s.step--
	return s.afterStep()
}

func (s *Scene) afterStep() contour.Result {
	s.recompute()
	for _, o := range s.observers {
		o.OnStep(s.step, s.result)
	}
	return s.result.Clone()
}

func (s *Scene) recompute() {
	if s.workers > 1 {
		r, err := contour.ExtractParallel(context.Background(), s.sources.All(), s.grid, s.workers)
		if err != nil {
			s.logger.Warn("parallel extraction failed, falling back", zap.Error(err))
			r = contour.Extract(s.sources.All(), s.grid)
		}
		s.result = r
	} else {
		s.result = contour.Extract(s.sources.All(), s.grid)
	}
	s.stale = false
	s.logger.Debug("contour pass",
		zap.Int("step", s.step),
		zap.Int("sources", s.sources.Len()),
		zap.Int("cells", s.grid.Cells()),
		zap.Int("segments", len(s.result.Segments)),
		zap.Int("filled", len(s.result.Filled)),
	)
}

// SetCellSize rejects sizes below 1 and keeps the previous value.
func (s *Scene) SetCellSize(n int) error {
	if err := s.grid.SetCellSize(n); err != nil {
		s.logger.Debug("cell size rejected", zap.Int("requested", n), zap.Int("kept", s.grid.CellSize))
		return err
	}
	s.stale = true
	return nil
}

func (s *Scene) Resize(width, height int) error {
	if err := s.grid.Resize(width, height); err != nil {
		return err
	}
	s.stale = true
	return nil
}

// AddSource appends src and returns its index.
func (s *Scene) AddSource(src field.Source) int {
	s.stale = true
	return s.sources.Add(src)
}

// RemoveSource deletes the source at i. It panics on an invalid index.
func (s *Scene) RemoveSource(i int) field.Source {
	src := s.sources.Remove(i)
	s.stale = true
	return src
}

func (s *Scene) SetPosition(i int, x, y float64) {
	s.sources.At(i).Position = field.Vec2{X: x, Y: y}
	s.stale = true
}

func (s *Scene) SetRadius(i int, r float64) {
	s.sources.At(i).Radius = r
	s.stale = true
}

func (s *Scene) SetVelocity(i int, dx, dy float64) {
	s.sources.At(i).Velocity = field.Vec2{X: dx, Y: dy}
}

// SetOffset replaces the fine displacement of source i without touching
// its position or velocity.
func (s *Scene) SetOffset(i int, dx, dy float64) {
	s.sources.At(i).Offset = field.Vec2{X: dx, Y: dy}
	s.stale = true
}

// Nudge adds to the offset of source i.
func (s *Scene) Nudge(i int, dx, dy float64) {
	src := s.sources.At(i)
	src.Offset = src.Offset.Add(field.Vec2{X: dx, Y: dy})
	s.stale = true
}

// Run advances the scene steps times, calling cb with each contour. It
// stops early when cb returns false or ctx is done. A negative steps value
// reverts instead.
func (s *Scene) Run(ctx context.Context, steps int, scale float64, cb func(step int, r contour.Result) bool) error {
	if scale <= 0 {
		return fmt.Errorf("scene: step scale must be positive, got %f", scale)
	}
	dir := 1
	if steps < 0 {
		dir, steps = -1, -steps
	}
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var r contour.Result
		if dir > 0 {
			r = s.AdvanceFine(scale)
		} else {
			r = s.RevertFine(scale)
		}
		if cb != nil && !cb(s.step, r) {
			return nil
		}
	}
	return nil
}
