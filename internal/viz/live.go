package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/metrics"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
	maxStepsPerTick = 16
)

// Factory builds a fresh simulation; the live view calls it again on reset.
type Factory func() (dynamo.Simulation, error)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options configures a live view.
type Options struct {
	Name         string
	Dt           float64
	StepsPerTick int
	Ground       *float64
	GIFPath      string
	Theme        string
	Logger       *slog.Logger
}

// Model is a bubbletea model that steps a simulation and draws its frames.
type Model struct {
	factory  Factory
	opts     Options
	sim      dynamo.Simulation
	frame    dynamo.Frame
	err      error
	canvas   *Canvas
	camera   *Camera
	theme    Theme
	styles   styles
	running  bool
	showHelp bool
	steps    int
	energy   []float64
	recorder *Recorder
}

// NewModel builds the first simulation from factory.
func NewModel(factory Factory, opts Options) (Model, error) {
	if opts.Dt <= 0 {
		return Model{}, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidArgument, opts.Dt)
	}
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "simulation.gif"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	theme := GetTheme(opts.Theme)
	m := Model{
		factory: factory,
		opts:    opts,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
		theme:   theme,
		styles:  newStyles(theme),
		running: true,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	sim, err := m.factory()
	if err != nil {
		return err
	}
	m.sim = sim
	m.frame = sim.Frame()
	m.err = nil
	m.energy = m.energy[:0]
	m.camera.Fit(m.frame)
	return nil
}

func (m Model) Init() tea.Cmd { return tick() }

// Frame is the most recently drawn frame.
func (m Model) Frame() dynamo.Frame { return m.frame }

func (m Model) Err() error { return m.err }

func (m Model) Running() bool { return m.running }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			for i := 0; i < m.opts.StepsPerTick && m.err == nil; i++ {
				m.step()
			}
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stopRecording()
		return m, tea.Quit
	case " ":
		m.running = !m.running && m.err == nil
	case "n":
		if !m.running {
			m.step()
			m.draw()
		}
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
		m.running = m.err == nil
	case "f":
		m.camera.Fit(m.frame)
	case "left", "h":
		m.camera.RotateY(-0.1)
	case "right", "l":
		m.camera.RotateY(0.1)
	case "up", "k":
		m.camera.RotateX(-0.1)
	case "down", "j":
		m.camera.RotateX(0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case ".":
		m.opts.StepsPerTick = min(maxStepsPerTick, m.opts.StepsPerTick*2)
	case ",":
		m.opts.StepsPerTick = max(1, m.opts.StepsPerTick/2)
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = newStyles(m.theme)
	case "g":
		if m.recorder != nil {
			m.stopRecording()
		} else {
			m.recorder = NewRecorder()
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(m.opts.GIFPath); err != nil {
		m.opts.Logger.Error("saving recording failed", "path", m.opts.GIFPath, "err", err)
	} else {
		m.opts.Logger.Info("recording saved", "path", m.opts.GIFPath, "frames", m.recorder.Len())
	}
	m.recorder = nil
}

// step advances the simulation once and pauses on failure.
func (m *Model) step() {
	if err := m.sim.Step(m.opts.Dt); err != nil {
		m.err = err
		m.running = false
		m.opts.Logger.Warn("simulation stopped", "err", err)
		return
	}
	m.steps++
	m.frame = m.sim.Frame()
	m.energy = append(m.energy, metrics.FrameKinetic(m.frame))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	RenderFrame(m.canvas, m.frame, m.camera, m.opts.Ground)
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render(strings.ToUpper(m.opts.Name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.warn.Render("STOPPED") + "\n" + st.dim.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString("RUNNING\n\n")
	default:
		s.WriteString("PAUSED\n\n")
	}
	if m.recorder != nil {
		s.WriteString(st.warn.Render(fmt.Sprintf("● REC %d", m.recorder.Len())) + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Kinetic energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.frame.Time))
	row("Step", fmt.Sprintf("%d", m.frame.Step))
	row("Particles", fmt.Sprintf("%d", len(m.frame.Positions)))
	row("Links", fmt.Sprintf("%d", len(m.frame.Links)))
	row("Speed", fmt.Sprintf("%dx", m.opts.StepsPerTick))
	if n := len(m.energy); n > 0 {
		row("Kinetic", fmt.Sprintf("%.3f", m.energy[n-1]))
		row("", Sparkline(m.energy[max(0, n-56):], 28))
	}
	row("Theme", m.theme.Name)

	s.WriteString(st.help.Render("SP:pause N:step R:reset Q:quit\nhjkl:orbit +/-:zoom F:fit\n,/.:speed T:theme G:gif ?:help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space    pause or resume
  N        single step while paused
  R        rebuild the scenario
  h/l      orbit around y
  j/k      orbit around x
  + / -    zoom
  F        fit camera to the particles
  , / .    halve or double steps per tick
  T        cycle themes
  G        start or stop GIF recording
  Q        quit
`
