package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
	"github.com/san-kum/metaballs/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCellSize = 20
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultSteps    = 60
	DefaultFine     = 0.1
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Preset  string         `yaml:"preset,omitempty"`
	Grid    GridConfig     `yaml:"grid"`
	Sources []SourceConfig `yaml:"sources"`
	Steps   int            `yaml:"steps"`
	// Fine is the velocity fraction used for sub-step moves.
	Fine    float64   `yaml:"fine"`
	Workers int       `yaml:"workers"`
	Log     LogConfig `yaml:"log"`
}

type GridConfig struct {
	CellSize int `yaml:"cell_size" json:"cell_size"`
	Width    int `yaml:"width" json:"width"`
	Height   int `yaml:"height" json:"height"`
}

type SourceConfig struct {
	X  float64 `yaml:"x" json:"x"`
	Y  float64 `yaml:"y" json:"y"`
	R  float64 `yaml:"r" json:"r"`
	DX float64 `yaml:"dx" json:"dx"`
	DY float64 `yaml:"dy" json:"dy"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// DefaultConfig is the four-ball scene on a 20px grid.
func DefaultConfig() *Config {
	cfg := *Presets["default"]
	cfg.Sources = append([]SourceConfig(nil), cfg.Sources...)
	cfg.Log = DefaultLogConfig()
	return &cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := contour.NewGrid(c.Grid.CellSize, c.Grid.Width, c.Grid.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalid, c.Steps)
	}
	if c.Fine <= 0 || c.Fine > 1 {
		return fmt.Errorf("%w: fine must be in (0, 1], got %g", ErrInvalid, c.Fine)
	}
	for i, s := range c.Sources {
		if err := s.Source().Validate(); err != nil {
			return fmt.Errorf("%w: source %d: %w", ErrInvalid, i, err)
		}
	}
	return nil
}

func (s SourceConfig) Source() field.Source {
	return field.NewSource(s.X, s.Y, s.R, s.DX, s.DY)
}

func (c *Config) FieldSources() []field.Source {
	out := make([]field.Source, len(c.Sources))
	for i, s := range c.Sources {
		out[i] = s.Source()
	}
	return out
}

func (c *Config) ContourGrid() contour.Grid {
	return contour.Grid{CellSize: c.Grid.CellSize, Width: c.Grid.Width, Height: c.Grid.Height}
}

// Scene builds a scene from the configured grid and sources.
func (c *Config) Scene(opts ...scene.Option) (*scene.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Workers > 1 {
		opts = append(opts, scene.WithWorkers(c.Workers))
	}
	return scene.New(c.ContourGrid(), c.FieldSources(), opts...)
}
