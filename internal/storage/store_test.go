package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/metaballs/internal/config"
	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
)

func testFrames() []Frame {
	return []Frame{
		{
			Step: 0,
			Result: contour.Result{
				Segments: []contour.Segment{
					{P: field.Vec2{X: 0, Y: 10}, Q: field.Vec2{X: 10, Y: 0}},
					{P: field.Vec2{X: 20, Y: 5.5}, Q: field.Vec2{X: 20, Y: 15.25}},
				},
				Filled: []contour.Cell{{I: 3, J: 4}},
			},
		},
		{Step: 1},
		{
			Step: 2,
			Result: contour.Result{
				Segments: []contour.Segment{
					{P: field.Vec2{X: 1, Y: 2}, Q: field.Vec2{X: 3, Y: 4}},
				},
			},
		},
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Preset:  "pair",
		Grid:    config.GridConfig{CellSize: 10, Width: 100, Height: 100},
		Sources: []config.SourceConfig{{X: 50, Y: 50, R: 20, DX: 1}},
		Steps:   3,
		Fine:    0.1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir(), nil)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testFrames())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "pair_") {
		t.Errorf("expected id prefixed with preset, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %q, got %q", runID, meta.ID)
	}
	if meta.Grid.CellSize != 10 {
		t.Errorf("expected cell size 10, got %d", meta.Grid.CellSize)
	}
	if len(meta.Frames) != 3 {
		t.Fatalf("expected 3 frame stats, got %d", len(meta.Frames))
	}
	if meta.Frames[0].Segments != 2 || meta.Frames[0].Filled != 1 {
		t.Errorf("unexpected stats for frame 0: %+v", meta.Frames[0])
	}

	for _, name := range []string{metadataFile, segmentsFile, filledFile} {
		if _, err := os.Stat(filepath.Join(st.baseDir, runID, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestStoreLoadFrames(t *testing.T) {
	st := New(t.TempDir(), nil)
	want := testFrames()

	runID, err := st.Save(testMeta(), want)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}

	for i := range want {
		if got[i].Step != want[i].Step {
			t.Errorf("frame %d: expected step %d, got %d", i, want[i].Step, got[i].Step)
		}
		if len(got[i].Result.Segments) != len(want[i].Result.Segments) {
			t.Errorf("frame %d: expected %d segments, got %d", i, len(want[i].Result.Segments), len(got[i].Result.Segments))
			continue
		}
		for k, s := range want[i].Result.Segments {
			if got[i].Result.Segments[k] != s {
				t.Errorf("frame %d segment %d: expected %v, got %v", i, k, s, got[i].Result.Segments[k])
			}
		}
		if len(got[i].Result.Filled) != len(want[i].Result.Filled) {
			t.Errorf("frame %d: expected %d filled cells, got %d", i, len(want[i].Result.Filled), len(got[i].Result.Filled))
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir(), nil)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty store failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	for i := 0; i < 3; i++ {
		if _, err := st.Save(testMeta(), testFrames()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("expected runs sorted oldest first")
		}
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir(), nil)

	_, err := st.Load("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadFrames("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from LoadFrames, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	meta := testMeta()
	meta.ID = "pair_abcd1234"

	var buf bytes.Buffer
	if err := ExportJSON(&buf, &meta, testFrames()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}
	if decoded["id"] != "pair_abcd1234" {
		t.Errorf("expected embedded metadata id, got %v", decoded["id"])
	}
	contours, ok := decoded["contours"].([]any)
	if !ok || len(contours) != 3 {
		t.Fatalf("expected 3 contour frames, got %v", decoded["contours"])
	}
	empty := contours[1].(map[string]any)
	if filled, ok := empty["filled"].([]any); !ok || len(filled) != 0 {
		t.Errorf("expected empty filled list for frame 1, got %v", empty["filled"])
	}
}

func TestStoreSaveSourceOnVertex(t *testing.T) {
	g, err := contour.NewGrid(10, 200, 200)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	res := contour.Extract([]field.Source{field.NewSource(100, 100, 5, 0, 0)}, g)
	frames := []Frame{{Step: 0, Result: res}}

	meta := testMeta()
	meta.Grid = config.GridConfig{CellSize: 10, Width: 200, Height: 200}
	meta.Sources = []config.SourceConfig{{X: 100, Y: 100, R: 5}}
	meta.Steps = 1

	st := New(t.TempDir(), nil)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	runID, err := st.Save(meta, frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if l := loaded.Frames[0].Length; math.IsNaN(l) || math.IsInf(l, 0) {
		t.Errorf("expected finite length, got %v", l)
	}

	got, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := len(res.Finite().Segments)
	if want == 0 {
		t.Fatal("expected some finite segments")
	}
	if len(got[0].Result.Segments) != want {
		t.Errorf("expected %d segments, got %d", want, len(got[0].Result.Segments))
	}
	for _, seg := range got[0].Result.Segments {
		if !seg.IsFinite() {
			t.Errorf("expected finite segment, got %+v", seg)
		}
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, loaded, frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Error("expected no NaN in exported json")
	}
}

func TestStoreSaveFailureRemovesRunDir(t *testing.T) {
	base := t.TempDir()
	st := New(base, nil)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := testMeta()
	meta.Fine = math.NaN()
	if _, err := st.Save(meta, testFrames()); err == nil {
		t.Fatal("expected error for unencodable metadata")
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directories left, got %d", len(entries))
	}
}

func TestStoreSegmentsRoundTripExactly(t *testing.T) {
	seg := contour.Segment{
		P: field.Vec2{X: 1.0 / 3, Y: 2.0 / 3},
		Q: field.Vec2{X: 123.456789012345, Y: 1e-9},
	}
	frames := []Frame{{Step: 0, Result: contour.Result{Segments: []contour.Segment{seg}}}}

	st := New(t.TempDir(), nil)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	runID, err := st.Save(testMeta(), frames)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Result.Segments) != 1 {
		t.Fatalf("expected one segment back, got %+v", got)
	}
	if got[0].Result.Segments[0] != seg {
		t.Errorf("expected %+v, got %+v", seg, got[0].Result.Segments[0])
	}
}
