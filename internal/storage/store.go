package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/metaballs/internal/analysis"
	"github.com/san-kum/metaballs/internal/config"
	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
	"go.uber.org/zap"
)

// ErrNotFound indicates an unknown run id.
var ErrNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	segmentsFile = "segments.csv"
	filledFile   = "filled.csv"
)

type Store struct {
	baseDir string
	logger  *zap.Logger
}

func New(baseDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Frame is one recorded contour pass.
type Frame struct {
	Step   int
	Result contour.Result
}

type RunMetadata struct {
	ID        string                `json:"id"`
	Preset    string                `json:"preset"`
	Timestamp time.Time             `json:"timestamp"`
	Grid      config.GridConfig     `json:"grid"`
	Sources   []config.SourceConfig `json:"sources"`
	Steps     int                   `json:"steps"`
	Fine      float64               `json:"fine"`
	Elapsed   time.Duration         `json:"elapsed_ns"`
	Frames    []analysis.FrameStats `json:"frames"`
}

// Save writes a run to a fresh directory and returns its id. ID, Timestamp
// and Frames in meta are filled in here. Segments with a non-finite
// endpoint are not stored. On failure the run directory is removed.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	name := meta.Preset
	if name == "" {
		name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	finite := make([]Frame, len(frames))
	meta.Frames = make([]analysis.FrameStats, len(frames))
	for i, f := range frames {
		finite[i] = Frame{Step: f.Step, Result: f.Result.Finite()}
		meta.Frames[i] = analysis.Stats(f.Step, finite[i].Result)
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, meta, finite); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			s.logger.Warn("failed to remove partial run", zap.String("dir", runDir), zap.Error(rmErr))
		}
		return "", err
	}

	s.logger.Info("run saved", zap.String("id", meta.ID), zap.Int("frames", len(frames)), zap.String("dir", runDir))
	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, frames []Frame) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeSegments(filepath.Join(runDir, segmentsFile), frames); err != nil {
		return fmt.Errorf("write segments: %w", err)
	}
	if err := writeFilled(filepath.Join(runDir, filledFile), frames); err != nil {
		return fmt.Errorf("write filled cells: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSegments(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "x1", "y1", "x2", "y2"}); err != nil {
		return err
	}
	for _, fr := range frames {
		step := strconv.Itoa(fr.Step)
		for _, seg := range fr.Result.Segments {
			row := []string{step, formatFloat(seg.P.X), formatFloat(seg.P.Y), formatFloat(seg.Q.X), formatFloat(seg.Q.Y)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeFilled(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "i", "j"}); err != nil {
		return err
	}
	for _, fr := range frames {
		step := strconv.Itoa(fr.Step)
		for _, c := range fr.Result.Filled {
			if err := w.Write([]string{step, strconv.Itoa(c.I), strconv.Itoa(c.J)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", zap.String("name", entry.Name()), zap.Error(err))
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames rebuilds every recorded frame of a run. Frames with no
// segments and no filled cells are still returned, in step order.
func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, len(meta.Frames))
	index := make(map[int]int, len(meta.Frames))
	for i, st := range meta.Frames {
		frames[i].Step = st.Step
		index[st.Step] = i
	}

	runDir := filepath.Join(s.baseDir, runID)
	err = readCSV(filepath.Join(runDir, segmentsFile), 5, func(rec []string) error {
		i, ok, err := frameIndex(index, rec[0])
		if err != nil || !ok {
			return err
		}
		var v [4]float64
		for k := range v {
			if v[k], err = strconv.ParseFloat(rec[k+1], 64); err != nil {
				return err
			}
		}
		frames[i].Result.Segments = append(frames[i].Result.Segments, contour.Segment{
			P: field.Vec2{X: v[0], Y: v[1]},
			Q: field.Vec2{X: v[2], Y: v[3]},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}

	err = readCSV(filepath.Join(runDir, filledFile), 3, func(rec []string) error {
		i, ok, err := frameIndex(index, rec[0])
		if err != nil || !ok {
			return err
		}
		ci, err := strconv.Atoi(rec[1])
		if err != nil {
			return err
		}
		cj, err := strconv.Atoi(rec[2])
		if err != nil {
			return err
		}
		frames[i].Result.Filled = append(frames[i].Result.Filled, contour.Cell{I: ci, J: cj})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read filled cells: %w", err)
	}

	return frames, nil
}

func frameIndex(index map[int]int, s string) (int, bool, error) {
	step, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	i, ok := index[step]
	return i, ok, nil
}

func readCSV(path string, fields int, fn func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
