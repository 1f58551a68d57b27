package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Preset: "default",
		Grid:   GridConfig{CellSize: DefaultCellSize, Width: DefaultWidth, Height: DefaultHeight},
		Sources: []SourceConfig{
			{X: 400, Y: 400, R: 100, DX: 0, DY: -5},
			{X: 1000, Y: 400, R: 150, DX: -5, DY: 0},
			{X: 1000, Y: 600, R: 50, DX: 5, DY: 10},
			{X: 500, Y: 100, R: 50, DX: 0, DY: 5},
		},
		Steps: DefaultSteps, Fine: DefaultFine,
	},
	"single": {
		Preset:  "single",
		Grid:    GridConfig{CellSize: 10, Width: 200, Height: 200},
		Sources: []SourceConfig{{X: 100, Y: 100, R: 50}},
		Steps:   1, Fine: DefaultFine,
	},
	"pair": {
		Preset: "pair",
		Grid:   GridConfig{CellSize: 8, Width: 640, Height: 360},
		Sources: []SourceConfig{
			{X: 180, Y: 180, R: 60, DX: 4, DY: 0},
			{X: 460, Y: 180, R: 60, DX: -4, DY: 0},
		},
		Steps: 70, Fine: DefaultFine,
	},
	"swarm": {
		Preset: "swarm",
		Grid:   GridConfig{CellSize: 12, Width: 960, Height: 540},
		Sources: []SourceConfig{
			{X: 120, Y: 90, R: 30, DX: 6, DY: 3},
			{X: 840, Y: 90, R: 35, DX: -5, DY: 4},
			{X: 120, Y: 450, R: 25, DX: 7, DY: -3},
			{X: 840, Y: 450, R: 40, DX: -6, DY: -4},
			{X: 480, Y: 270, R: 55, DX: 0, DY: 0},
			{X: 300, Y: 270, R: 20, DX: 2, DY: -6},
		},
		Steps: 90, Fine: DefaultFine,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Sources = append([]SourceConfig(nil), p.Sources...)
	if cfg.Log == (LogConfig{}) {
		cfg.Log = DefaultLogConfig()
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetInfo is a one-line description per preset.
var PresetInfo = map[string]string{
	"default": "four balls drifting apart",
	"single":  "one static ball",
	"pair":    "two balls merging",
	"swarm":   "six balls crossing",
}
