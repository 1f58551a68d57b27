package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/metaballs/internal/contour"
	"github.com/san-kum/metaballs/internal/field"
	"github.com/san-kum/metaballs/internal/scene"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	panelWidth      = 44
	historyCapacity = 120
	tickInterval    = time.Second / 30

	// Defaults for sources added from the keyboard.
	newSourceRadius = 40.0
	newSourceSpeed  = 2.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of a scene. It owns everything the scene does
// not: the selected source, the radius editor and play state.
type Model struct {
	scene    *scene.Scene
	canvas   *Canvas
	input    textinput.Model
	editing  bool
	selected int
	running  bool
	fill     bool
	fine     float64
	theme    int
	showHelp bool
	history  []float64
	status   string
}

func NewModel(s *scene.Scene, fine float64) Model {
	ti := textinput.New()
	ti.Placeholder = "radius"
	ti.CharLimit = 16
	ti.Width = 12

	if fine <= 0 {
		fine = 0.1
	}
	m := Model{
		scene:   s,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		input:   ti,
		running: true,
		fine:    fine,
		history: make([]float64, 0, historyCapacity),
	}
	m.record(s.Contours())
	return m
}

// WithTheme selects a theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = themeIndex(name)
	return m
}

func (m Model) Scene() *scene.Scene { return m.scene }
func (m Model) Selected() int       { return m.selected }
func (m Model) Running() bool       { return m.running }
func (m Model) Editing() bool       { return m.editing }
func (m Model) Status() string      { return m.status }
func (m Model) Theme() Theme        { return Themes[m.theme] }

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		w := max(size.Width-panelWidth-6, 10)
		h := max(size.Height-4, 4)
		m.canvas = NewCanvas(w, h)
		return m, nil
	}
	if m.editing {
		return m.updateRadiusInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.record(m.scene.Advance())
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "right", "n":
		m.running = false
		m.record(m.scene.Advance())
	case "left", "p":
		m.running = false
		m.record(m.scene.Revert())
	case ".":
		m.running = false
		m.record(m.scene.AdvanceFine(m.fine))
	case ",":
		m.running = false
		m.record(m.scene.RevertFine(m.fine))
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "h":
		m.nudge(-1, 0)
	case "l":
		m.nudge(1, 0)
	case "k":
		m.nudge(0, -1)
	case "j":
		m.nudge(0, 1)
	case "0":
		if m.hasSelection() {
			m.scene.SetOffset(m.selected, 0, 0)
		}
	case "+", "=":
		m.resizeCells(1)
	case "-", "_":
		m.resizeCells(-1)
	case "a":
		g := m.scene.Grid()
		src := field.NewSource(float64(g.Width)/2, float64(g.Height)/2, newSourceRadius, newSourceSpeed, newSourceSpeed)
		m.selected = m.scene.AddSource(src)
	case "x", "delete":
		if m.hasSelection() {
			m.scene.RemoveSource(m.selected)
			m.selected = min(m.selected, max(m.scene.Len()-1, 0))
		}
	case "r", "enter":
		if m.hasSelection() {
			m.editing = true
			m.running = false
			m.input.SetValue("")
			m.input.Placeholder = strconv.FormatFloat(m.scene.Source(m.selected).Radius, 'f', -1, 64)
			return m, m.input.Focus()
		}
	case "f":
		m.fill = !m.fill
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) updateRadiusInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.applyRadius(strings.TrimSpace(m.input.Value()))
			m.closeInput()
			return m, nil
		case "esc":
			m.closeInput()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	if _, ok := msg.(TickMsg); ok {
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.editing = false
	m.input.Reset()
	m.input.Blur()
}

// applyRadius accepts only finite positive values; anything else leaves
// the source unchanged.
func (m *Model) applyRadius(text string) {
	if text == "" {
		return
	}
	r, err := strconv.ParseFloat(text, 64)
	if err != nil || r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		m.status = fmt.Sprintf("invalid radius %q", text)
		return
	}
	m.scene.SetRadius(m.selected, r)
	m.record(m.scene.Contours())
}

func (m *Model) hasSelection() bool {
	return m.selected >= 0 && m.selected < m.scene.Len()
}

func (m *Model) cycle(dir int) {
	n := m.scene.Len()
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

// nudge shifts the selected source's offset by a quarter cell per press.
func (m *Model) nudge(dx, dy float64) {
	if !m.hasSelection() {
		return
	}
	step := max(float64(m.scene.Grid().CellSize)/4, 1)
	m.scene.Nudge(m.selected, dx*step, dy*step)
}

func (m *Model) resizeCells(delta int) {
	size := m.scene.Grid().CellSize + delta
	if err := m.scene.SetCellSize(size); err != nil {
		m.status = err.Error()
		return
	}
	m.record(m.scene.Contours())
}

func (m *Model) record(r contour.Result) {
	m.history = append(m.history, float64(len(r.Segments)))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m Model) View() string {
	theme := Themes[m.theme]
	st := theme.Styles()
	result := m.scene.Contours()
	grid := m.scene.Grid()

	m.canvas.Clear()
	Rasterize(result, grid, m.canvas, m.fill)
	canvasView := st.Canvas.Render(m.canvas.String())
	if m.hasSelection() {
		canvasView = st.Canvas.Render(m.markSelection(grid))
	}

	var s strings.Builder
	s.WriteString(st.Header.Render("METABALLS") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(st.Status.Render(status) + "\n\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Segments"))
		s.WriteString(st.Graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Step", strconv.Itoa(m.scene.Step()))
	row("Cell", fmt.Sprintf("%dpx (%dx%d)", grid.CellSize, grid.Columns(), grid.Rows()))
	row("Segments", strconv.Itoa(len(result.Segments)))
	row("Filled", strconv.Itoa(len(result.Filled)))
	row("Length", fmt.Sprintf("%.1f", result.Length()))
	row("Theme", theme.Name)

	s.WriteString("\nSOURCES\n")
	if m.scene.Len() == 0 {
		s.WriteString(st.Label.Render("  (none)") + "\n")
	}
	for i, src := range m.scene.Sources() {
		line := fmt.Sprintf("%d (%.0f,%.0f) r=%.1f", i, src.Effective().X, src.Effective().Y, src.Radius)
		if i == m.selected {
			s.WriteString(st.Selected.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.Value.Render(line) + "\n")
		}
	}

	if m.editing {
		s.WriteString("\n" + st.Status.Render("Radius: ") + m.input.View() + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + st.Warning.Render(m.status) + "\n")
	}

	s.WriteString(st.Help.Render(st.Separator(panelWidth-6) + "\nSP:Play ←→:Step ,.:Fine Q:Quit\nTAB:Select hjkl:Nudge ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(s.String()))
	if m.showHelp {
		return st.Panel.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

// markSelection renders the canvas with the selected source's cell
// highlighted.
func (m Model) markSelection(g contour.Grid) string {
	if g.Width <= 0 || g.Height <= 0 {
		return m.canvas.String()
	}
	p := m.scene.Source(m.selected).Effective()
	col := int(math.Floor(p.X / float64(g.Width) * float64(m.canvas.Width)))
	row := int(math.Floor(p.Y / float64(g.Height) * float64(m.canvas.Height)))
	if col < 0 || row < 0 || col >= m.canvas.Width || row >= m.canvas.Height {
		return m.canvas.String()
	}

	sel := Themes[m.theme].Styles().Selected
	var b strings.Builder
	for i, line := range m.canvas.Grid {
		if i == row {
			b.WriteString(string(line[:col]))
			b.WriteString(sel.Render("●"))
			b.WriteString(string(line[col+1:]))
		} else {
			b.WriteString(string(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

const helpText = `KEYBOARD SHORTCUTS
Space      play / pause
→ / n      advance one step
← / p      revert one step
. / ,      fine advance / revert
Tab        select next source
h j k l    nudge selected offset
0          clear selected offset
+ / -      grow / shrink cells
a / x      add / delete source
r / Enter  edit selected radius
f          toggle filled cells
t          cycle themes
q          quit`
