package scene

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
)

func newTestScene(t *testing.T, opts ...Option) *Scene {
	t.Helper()
	s, err := New(contour.Grid{CellSize: 10, Width: 200, Height: 200},
		[]field.Source{field.NewSource(100, 100, 50, 5, 0)}, opts...)
	if err != nil {
		t.Fatalf("new scene: %v", err)
	}
	return s
}

func TestContoursReturnsCopy(t *testing.T) {
	s := newTestScene(t)
	want := s.Contours()
	if len(want.Segments) == 0 || len(want.Filled) == 0 {
		t.Fatal("expected a non-empty contour")
	}

	got := s.Contours()
	got.Segments[0] = contour.Segment{}
	got.Filled[0] = contour.Cell{I: -1, J: -1}
	if again := s.Contours(); !reflect.DeepEqual(again, want) {
		t.Error("modifying a returned contour changed the scene")
	}

	stepped := s.Advance()
	first := stepped.Segments[0]
	stepped.Segments[0] = contour.Segment{}
	if again := s.Contours(); again.Segments[0] != first {
		t.Errorf("expected first segment %+v, got %+v", first, again.Segments[0])
	}
}

func TestNewRejectsBadGrid(t *testing.T) {
	_, err := New(contour.Grid{CellSize: 0, Width: 10, Height: 10}, nil)
	if !errors.Is(err, contour.ErrCellSize) {
		t.Errorf("expected ErrCellSize, got %v", err)
	}
}

func TestAdvanceRevertRestoresPosition(t *testing.T) {
	s := newTestScene(t)
	before := s.Contours()

	s.Advance()
	if got := s.Source(0).Position; got != (field.Vec2{X: 105, Y: 100}) {
		t.Fatalf("after advance: %v", got)
	}

	after := s.Revert()
	if got := s.Source(0).Position; got != (field.Vec2{X: 100, Y: 100}) {
		t.Errorf("after revert: %v, want (100, 100)", got)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("contour differs after advance+revert")
	}
	if s.Step() != 0 {
		t.Errorf("step counter: %d", s.Step())
	}
}

func TestAdvanceFineScales(t *testing.T) {
	s := newTestScene(t)
	s.AdvanceFine(0.5)
	if got := s.Source(0).Position.X; got != 102.5 {
		t.Errorf("expected 102.5, got %v", got)
	}
	s.RevertFine(0.5)
	if got := s.Source(0).Position.X; got != 100 {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestSetCellSizeGuard(t *testing.T) {
	s := newTestScene(t)
	before := s.Contours()

	for _, n := range []int{0, -3} {
		if err := s.SetCellSize(n); !errors.Is(err, contour.ErrCellSize) {
			t.Errorf("SetCellSize(%d): expected ErrCellSize, got %v", n, err)
		}
		if s.Grid().CellSize != 10 {
			t.Errorf("SetCellSize(%d) changed size to %d", n, s.Grid().CellSize)
		}
	}
	if !reflect.DeepEqual(before, s.Contours()) {
		t.Error("rejected cell size changed the contour")
	}

	if err := s.SetCellSize(5); err != nil {
		t.Fatal(err)
	}
	if len(s.Contours().Segments) <= len(before.Segments) {
		t.Error("finer grid should produce more segments")
	}
}

func TestOffsetLeavesPositionAndVelocity(t *testing.T) {
	s := newTestScene(t)
	before := s.Contours()

	s.SetOffset(0, 3, -2)
	src := s.Source(0)
	if src.Position != (field.Vec2{X: 100, Y: 100}) || src.Velocity != (field.Vec2{X: 5, Y: 0}) {
		t.Errorf("offset mutated committed state: %+v", src)
	}
	if src.Effective() != (field.Vec2{X: 103, Y: 98}) {
		t.Errorf("effective position: %v", src.Effective())
	}
	if reflect.DeepEqual(before, s.Contours()) {
		t.Error("offset did not affect the contour")
	}

	s.Nudge(0, -3, 2)
	if !reflect.DeepEqual(before, s.Contours()) {
		t.Error("nudging back should restore the contour")
	}
}

func TestEmptySceneHasNoContour(t *testing.T) {
	s, err := New(contour.Grid{CellSize: 3, Width: 90, Height: 60}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r := s.Advance(); !r.Empty() {
		t.Errorf("expected empty result, got %d segments", len(r.Segments))
	}
}

func TestRemoveSourceInvalidPanics(t *testing.T) {
	s := newTestScene(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid index")
		}
	}()
	s.RemoveSource(3)
}

func TestObserversSeeEveryStep(t *testing.T) {
	var steps []int
	s := newTestScene(t, WithObserver(ObserverFunc(func(step int, r contour.Result) {
		steps = append(steps, step)
	})))

	s.Advance()
	s.Advance()
	s.Revert()

	want := []int{1, 2, 1}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("observed %v, want %v", steps, want)
	}
}

func TestRun(t *testing.T) {
	s := newTestScene(t)

	calls := 0
	err := s.Run(context.Background(), 4, 1, func(step int, r contour.Result) bool {
		calls++
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 4 || s.Source(0).Position.X != 120 {
		t.Errorf("calls=%d x=%v", calls, s.Source(0).Position.X)
	}

	if err := s.Run(context.Background(), -4, 1, nil); err != nil {
		t.Fatal(err)
	}
	if s.Source(0).Position.X != 100 {
		t.Errorf("reverse run: x=%v", s.Source(0).Position.X)
	}
}

func TestRunStopsEarly(t *testing.T) {
	s := newTestScene(t)
	err := s.Run(context.Background(), 10, 1, func(step int, r contour.Result) bool {
		return step < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Step() != 3 {
		t.Errorf("expected to stop at step 3, got %d", s.Step())
	}
}

func TestRunCanceled(t *testing.T) {
	s := newTestScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, 10, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Step() != 0 {
		t.Errorf("canceled run should not step, got %d", s.Step())
	}
}

func TestRunRejectsScale(t *testing.T) {
	s := newTestScene(t)
	if err := s.Run(context.Background(), 1, 0, nil); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestWorkersMatchSequential(t *testing.T) {
	grid := contour.Grid{CellSize: 2, Width: 400, Height: 400}
	src := []field.Source{field.NewSource(131, 170, 60, 3, 1), field.NewSource(250, 230, 45, -2, 4)}

	seq, _ := New(grid, src)
	par, _ := New(grid, src, WithWorkers(4))

	for i := 0; i < 3; i++ {
		if !reflect.DeepEqual(seq.Advance(), par.Advance()) {
			t.Fatalf("step %d: parallel scene diverged", i+1)
		}
	}
}
