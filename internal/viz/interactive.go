package viz

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/metaballs/internal/scene"
)

// Choice is one entry in the preset menu.
type Choice struct {
	Name string
	Info string
}

// BuildFunc creates the scene for a chosen preset.
type BuildFunc func(name string) (*scene.Scene, error)

const (
	stateMenu = iota
	stateSim
)

// Picker lists presets and hands the chosen one to a live Model.
type Picker struct {
	state     int
	cursor    int
	choices   []Choice
	build     BuildFunc
	fine      float64
	theme     string
	err       error
	liveModel Model
	size      *tea.WindowSizeMsg
}

func NewPicker(choices []Choice, build BuildFunc, fine float64, theme string) Picker {
	return Picker{choices: choices, build: build, fine: fine, theme: theme}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.liveModel.Update(msg)
		m.liveModel = next.(Model)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.menuKey(msg)
	case tea.WindowSizeMsg:
		m.size = &msg
	}
	return m, nil
}

func (m Picker) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.choices) == 0 {
			return m, nil
		}
		return m.start()
	}
	return m, nil
}

func (m Picker) start() (tea.Model, tea.Cmd) {
	s, err := m.build(m.choices[m.cursor].Name)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.liveModel = NewModel(s, m.fine).WithTheme(m.theme)
	if m.size != nil {
		next, _ := m.liveModel.Update(*m.size)
		m.liveModel = next.(Model)
	}
	m.state = stateSim
	return m, m.liveModel.Init()
}

// Live returns the running model once a preset has been chosen.
func (m Picker) Live() (Model, bool) {
	return m.liveModel, m.state == stateSim
}

func (m Picker) View() string {
	if m.state == stateSim {
		return m.liveModel.View()
	}

	st := GetTheme(m.theme).Styles()
	title := st.Header.UnsetMarginBottom()
	var b string
	b += "\n\n    " + title.Render("METABALLS") + "\n    " + st.Help.UnsetMarginTop().Render("pick a scene") + "\n    " + st.Separator(25) + "\n\n"
	for i, c := range m.choices {
		if i == m.cursor {
			b += fmt.Sprintf("    %s %s  %s\n", st.Selected.Render("▸"), st.Value.Bold(true).Render(fmt.Sprintf("%-10s", c.Name)), st.Status.UnsetBold().Render(c.Info))
		} else {
			b += fmt.Sprintf("      %s  %s\n", st.Label.UnsetWidth().Render(fmt.Sprintf("%-10s", c.Name)), st.Label.UnsetWidth().Render(c.Info))
		}
	}
	if m.err != nil {
		b += "\n    " + st.Warning.Render(m.err.Error()) + "\n"
	}
	key := lipgloss.NewStyle().Foreground(GetTheme(m.theme).Accent).Bold(true)
	hint := st.Label.UnsetWidth()
	b += "\n    " + key.Render("j/k") + hint.Render(" navigate  ") + key.Render("enter") + hint.Render(" start  ") + key.Render("q") + hint.Render(" quit") + "\n"
	return b
}
