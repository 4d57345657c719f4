package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/massim/internal/config"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/scenario"
)

const (
	stageScenario = iota
	stagePreset
	stageLive
)

// Menu picks a scenario and preset, then hands over to a live Model.
type Menu struct {
	registry  *scenario.Registry
	logger    *slog.Logger
	stage     int
	cursor    int
	scenarios []string
	presets   []string
	selected  string
	live      Model
	err       error
}

func NewMenu(reg *scenario.Registry, logger *slog.Logger) Menu {
	if logger == nil {
		logger = slog.Default()
	}
	return Menu{registry: reg, logger: logger, scenarios: reg.List()}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.stage == stageLive {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.live.stopRecording()
			m.stage = stagePreset
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	items := m.items()
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.stage == stagePreset {
			m.stage, m.cursor = stageScenario, 0
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(items) == 0 {
			return m, nil
		}
		if m.stage == stageScenario {
			m.selected = items[m.cursor]
			m.presets = config.ListPresets(m.selected)
			m.stage, m.cursor = stagePreset, 0
			if len(m.presets) == 0 {
				return m.start(config.DefaultConfig())
			}
			return m, nil
		}
		return m.start(config.GetPreset(m.selected, items[m.cursor]))
	}
	return m, nil
}

func (m Menu) items() []string {
	if m.stage == stagePreset {
		return m.presets
	}
	return m.scenarios
}

func (m Menu) start(cfg *config.Config) (tea.Model, tea.Cmd) {
	cfg.Scenario = m.selected
	live, err := NewLiveModel(m.registry, cfg, 1, "", m.logger)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.live = live
	m.stage = stageLive
	return m, live.Init()
}

// NewLiveModel wires a scenario configuration into a live view.
func NewLiveModel(reg *scenario.Registry, cfg *config.Config, stepsPerTick int, theme string, logger *slog.Logger) (Model, error) {
	var ground *float64
	if cfg.World.Ground {
		h := cfg.World.GroundHeight
		ground = &h
	}
	factory := func() (dynamo.Simulation, error) {
		return reg.Build(cfg.Scenario, cfg.Clone(), logger)
	}
	return NewModel(factory, Options{
		Name:         cfg.Scenario,
		Dt:           cfg.Dt,
		StepsPerTick: stepsPerTick,
		Ground:       ground,
		Theme:        theme,
		Logger:       logger,
	})
}

func (m Menu) View() string {
	if m.stage == stageLive {
		return m.live.View()
	}

	st := newStyles(Themes[0])
	var b strings.Builder
	title, sub := "MASSIM", "mass aggregate simulations"
	if m.stage == stagePreset {
		title, sub = strings.ToUpper(m.selected), m.registry.Describe(m.selected)
	}
	b.WriteString("\n\n    " + st.header.Render(title) + "\n    " + st.dim.Render(sub) + "\n\n")

	for i, name := range m.items() {
		desc := ""
		if m.stage == stageScenario {
			desc = m.registry.Describe(name)
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.active.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-14s", name)), st.active.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.dim.Render(fmt.Sprintf("%-14s", name)), st.dim.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.warn.Render(m.err.Error()) + "\n")
	}

	key := lipgloss.NewStyle().Foreground(Themes[0].Primary).Bold(true)
	b.WriteString("\n    " + key.Render("j/k") + st.dim.Render(" navigate  ") +
		key.Render("enter") + st.dim.Render(" select  ") +
		key.Render("esc") + st.dim.Render(" back  ") +
		key.Render("q") + st.dim.Render(" quit") + "\n")
	return b.String()
}

// RunMenu starts the interactive scenario picker.
func RunMenu(reg *scenario.Registry, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewMenu(reg, logger), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view for one configuration.
func RunLive(reg *scenario.Registry, cfg *config.Config, stepsPerTick int, theme string, logger *slog.Logger) error {
	m, err := NewLiveModel(reg, cfg, stepsPerTick, theme, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
