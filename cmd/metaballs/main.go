package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/metaballs/internal/analysis"
	"github.com/san-kum/metaballs/internal/config"
	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/export"
	"github.com/san-kum/metaballs/internal/logging"
	"github.com/san-kum/metaballs/internal/optim"
	"github.com/san-kum/metaballs/internal/scene"
	"github.com/san-kum/metaballs/internal/storage"
	"github.com/san-kum/metaballs/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	preset     string
	cellSize   int
	width      int
	height     int
	steps      int
	fine       float64
	workers    int
	logLevel   string
	logFormat  string
	logFile    string
	// render and export
	svgOut    string
	outFile   string
	fill      bool
	at        int
	cols      int
	rows      int
	theme     string
	benchIter int
	sizes     []int
	tolerance float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "metaballs",
		Short:         "animated metaball contours in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".metaballs", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset scene")
	pf.IntVar(&cellSize, "cell", config.DefaultCellSize, "grid cell size in viewport units")
	pf.IntVar(&width, "width", config.DefaultWidth, "viewport width")
	pf.IntVar(&height, "height", config.DefaultHeight, "viewport height")
	pf.IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	pf.Float64Var(&fine, "fine", config.DefaultFine, "velocity fraction for fine steps")
	pf.IntVar(&workers, "workers", 0, "contour workers (0 or 1 is sequential)")
	pf.StringVar(&logLevel, "log-level", "info", "log level")
	pf.StringVar(&logFormat, "log-format", "console", "log format (console|json)")
	pf.StringVar(&logFile, "log-file", "", "also log to a rotating file")
	pf.StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one frame as braille or svg",
		Args:  cobra.NoArgs,
		RunE:  renderFrame,
	}
	renderCmd.Flags().StringVar(&svgOut, "svg", "", "write svg to this path instead of printing")
	renderCmd.Flags().BoolVar(&fill, "fill", false, "draw fully inside cells")
	renderCmd.Flags().IntVar(&at, "at", 0, "advance this many steps first")
	renderCmd.Flags().IntVar(&cols, "cols", 80, "canvas columns")
	renderCmd.Flags().IntVar(&rows, "rows", 24, "canvas rows")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and store every frame",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot segment count and contour length",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of contour length",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [frame]",
		Short: "export one stored frame to svg",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output path (default stdout)")
	exportSVGCmd.Flags().BoolVar(&fill, "fill", false, "draw fully inside cells")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with all frames as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output path (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCES\tCELL\tVIEWPORT\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%dx%d\t%s\n",
					name, len(p.Sources), p.Grid.CellSize, p.Grid.Width, p.Grid.Height, config.PresetInfo[name])
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time sequential and parallel extraction",
		Args:  cobra.NoArgs,
		RunE:  benchExtract,
	}
	benchCmd.Flags().IntVar(&benchIter, "iter", 50, "passes per measurement")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "find the coarsest cell size that keeps the contour length",
		Args:  cobra.NoArgs,
		RunE:  sweepCells,
	}
	sweepCmd.Flags().IntSliceVar(&sizes, "sizes", []int{2, 4, 5, 8, 10, 16, 20, 25, 40}, "cell sizes to try")
	sweepCmd.Flags().Float64Var(&tolerance, "tol", 0.02, "allowed relative length error")

	rootCmd.AddCommand(liveCmd, renderCmd, runCmd, listCmd, plotCmd, analyzeCmd,
		exportSVGCmd, exportJSONCmd, presetsCmd, benchCmd, sweepCmd)
	return rootCmd
}

// resolveConfig layers defaults, then a preset, then the config file, then
// any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("cell") {
		cfg.Grid.CellSize = cellSize
	}
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("fine") {
		cfg.Fine = fine
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if cfg.Workers < 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewStderr(cfg.Log), nil
}

// wantsPicker reports whether the live view should open on the preset
// picker. Any flag that shapes the scene means the user already chose one.
func wantsPicker(cmd *cobra.Command) bool {
	if preset != "" || configFile != "" {
		return false
	}
	flags := cmd.Flags()
	for _, name := range []string{"cell", "width", "height", "fine"} {
		if flags.Changed(name) {
			return false
		}
	}
	return true
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// The TUI owns the terminal, so only the file sink is kept.
	logger := logging.NewFile(cfg.Log)
	defer logger.Sync()

	var model tea.Model
	if !wantsPicker(cmd) {
		s, err := cfg.Scene(scene.WithLogger(logger))
		if err != nil {
			return err
		}
		model = viz.NewModel(s, cfg.Fine).WithTheme(theme)
	} else {
		choices := make([]viz.Choice, 0, len(config.Presets))
		for _, name := range config.ListPresets() {
			choices = append(choices, viz.Choice{Name: name, Info: config.PresetInfo[name]})
		}
		build := func(name string) (*scene.Scene, error) {
			p := config.GetPreset(name)
			p.Workers = cfg.Workers
			return p.Scene(scene.WithLogger(logger))
		}
		model = viz.NewPicker(choices, build, cfg.Fine, theme)
	}

	logger.Info("starting live view", zap.String("preset", cfg.Preset))
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func renderFrame(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	s, err := cfg.Scene(scene.WithLogger(logger))
	if err != nil {
		return err
	}
	if at != 0 {
		if err := s.Run(cmd.Context(), at, 1, nil); err != nil {
			return err
		}
	}
	result := s.Contours()

	if svgOut != "" {
		style := export.DefaultStyle()
		style.Fill = fill
		if err := os.WriteFile(svgOut, []byte(export.SegmentsToSVG(result, s.Grid(), style)), 0644); err != nil {
			return err
		}
		logger.Info("svg written", zap.String("path", svgOut), zap.Int("segments", len(result.Segments)))
		return nil
	}

	canvas := viz.NewCanvas(cols, rows)
	viz.Rasterize(result, s.Grid(), canvas, fill)
	fmt.Print(canvas.String())
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := cfg.Scene(scene.WithLogger(logger))
	if err != nil {
		return err
	}

	frames := make([]storage.Frame, 0, cfg.Steps+1)
	frames = append(frames, storage.Frame{Step: s.Step(), Result: s.Contours()})

	start := time.Now()
	err = s.Run(ctx, cfg.Steps, 1, func(step int, r contour.Result) bool {
		frames = append(frames, storage.Frame{Step: step, Result: r})
		return true
	})
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted, saving partial frames", zap.Int("frames", len(frames)))
	}

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Preset:  cfg.Preset,
		Grid:    cfg.Grid,
		Sources: cfg.Sources,
		Steps:   len(frames) - 1,
		Fine:    cfg.Fine,
		Elapsed: elapsed,
	}
	runID, err := st.Save(meta, frames)
	if err != nil {
		return err
	}

	fmt.Printf("run saved: %s\n", runID)
	fmt.Printf("frames: %d\n", len(frames))
	fmt.Printf("elapsed: %v\n", elapsed.Round(time.Microsecond))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tCELL\tSOURCES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Frames),
			run.Grid.CellSize,
			len(run.Sources),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if len(meta.Frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", len(meta.Frames))

	for _, p := range []struct {
		caption string
		metric  analysis.Metric
	}{
		{"segments per frame", analysis.Segments},
		{"contour length per frame", analysis.Length},
		{"filled cells per frame", analysis.Filled},
	} {
		graph := asciigraph.Plot(analysis.Series(meta.Frames, p.metric),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, nil)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if len(meta.Frames) < 4 {
		return fmt.Errorf("need at least 4 frames, run has %d", len(meta.Frames))
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	series := analysis.Series(meta.Frames, analysis.Length)
	ps := analysis.PowerSpectrum(series)
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (contour length)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(series)
	fmt.Printf("dominant frequency: %.4f cycles/step\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.1f steps\n", 1.0/freq)
	}
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	step, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid frame %q: %w", args[1], err)
	}

	st := storage.New(dataDir, nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	for _, f := range frames {
		if f.Step != step {
			continue
		}
		w, closeFn, err := output()
		if err != nil {
			return err
		}
		style := export.DefaultStyle()
		style.Fill = fill
		g := contour.Grid{CellSize: meta.Grid.CellSize, Width: meta.Grid.Width, Height: meta.Grid.Height}
		if _, err := io.WriteString(w, export.SegmentsToSVG(f.Result, g, style)+"\n"); err != nil {
			closeFn()
			return err
		}
		return closeFn()
	}
	return fmt.Errorf("run %s has no frame %d", runID, step)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir, nil)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, frames); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func benchExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sources := cfg.FieldSources()
	g := cfg.ContourGrid()
	fmt.Printf("benchmarking %s: %d sources, %s\n\n", cfg.Preset, len(sources), g)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tWORKERS\tPASSES\tTIME/PASS\tCELLS/SEC")

	measure := func(mode string, n int, pass func() error) error {
		start := time.Now()
		for i := 0; i < benchIter; i++ {
			if err := pass(); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)
		perPass := elapsed / time.Duration(max(benchIter, 1))
		rate := float64(g.Cells()*benchIter) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", mode, n, benchIter, perPass, rate)
		return nil
	}

	if err := measure("sequential", 1, func() error {
		contour.Extract(sources, g)
		return nil
	}); err != nil {
		return err
	}

	counts := []int{2, 4, runtime.GOMAXPROCS(0)}
	if cfg.Workers > 1 {
		counts = append(counts, cfg.Workers)
	}
	for _, n := range counts {
		if err := measure("parallel", n, func() error {
			_, err := contour.ExtractParallel(cmd.Context(), sources, g, n)
			return err
		}); err != nil {
			return err
		}
	}
	return w.Flush()
}

func sweepCells(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	samples, err := optim.SweepCellSizes(cmd.Context(), cfg.FieldSources(), cfg.Grid.Width, cfg.Grid.Height, sizes)
	if err != nil {
		return err
	}

	ref := samples[0].Length
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CELL\tSEGMENTS\tFILLED\tLENGTH\tERROR\tTIME")
	for _, s := range samples {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.2f%%\t%v\n",
			s.CellSize, s.Segments, s.Filled, s.Length, optim.RelativeError(s.Length, ref)*100, s.Elapsed.Round(time.Microsecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, _ := optim.Coarsest(samples, tolerance)
	fmt.Printf("\ncoarsest within %.1f%%: %d\n", tolerance*100, best.CellSize)
	logger.Debug("sweep done", zap.Int("samples", len(samples)), zap.Int("coarsest", best.CellSize))
	return nil
}
