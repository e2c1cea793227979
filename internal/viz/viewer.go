package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/semo00000/champ-electrostatique/internal/colormap"
	"github.com/semo00000/champ-electrostatique/internal/config"
	"github.com/semo00000/champ-electrostatique/internal/core"
	"github.com/semo00000/champ-electrostatique/internal/export"
	"github.com/semo00000/champ-electrostatique/internal/fieldlines"
	"github.com/semo00000/champ-electrostatique/internal/particles"
	"github.com/semo00000/champ-electrostatique/internal/perf"
	"github.com/semo00000/champ-electrostatique/internal/physics"
	"github.com/semo00000/champ-electrostatique/internal/raster"
	"github.com/semo00000/champ-electrostatique/internal/scene"
	"github.com/semo00000/champ-electrostatique/internal/view"
)

const (
	panelWidth    = 46
	worldSpan     = 5.0 // world units across the canvas
	fpsCapacity   = 120
	terminalLines = 8
	terminalSteps = 400
	flowCount     = 60
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Viewer is the Bubble Tea model of the terminal host.
type Viewer struct {
	scene    *scene.Scene
	gov      *perf.Governor
	flow     *particles.Flow
	canvas   *Canvas
	tr       view.Transform
	paths    [][]r2.Vec
	profile  []export.Row
	presets  []string
	preset   int
	seed     int64
	selected int
	running  bool
	showHelp bool
	status   string
	fps      []float64
	last     time.Time
}

// NewViewer opens on the named preset. Unknown names fall back to the first
// preset.
func NewViewer(sc *scene.Scene, gov *perf.Governor, preset string, seed int64) Viewer {
	v := Viewer{
		scene:   sc,
		gov:     gov,
		flow:    particles.NewFlow(seed),
		presets: config.ListPresets(),
		seed:    seed,
		running: true,
	}
	for i, n := range v.presets {
		if n == preset {
			v.preset = i
		}
	}
	v.resize(80+panelWidth, 26)
	v.loadPreset()
	return v
}

func (m Viewer) Init() tea.Cmd { return tick() }

func (m Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.retrace()
		return m, nil
	case TickMsg:
		now := time.Time(msg)
		m.measure(now)
		if m.running {
			m.flow.Step(m.scene.Settings().Speed)
		}
		if m.scene.TakeDirty() {
			m.retrace()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m Viewer) handleKey(msg tea.KeyMsg) (Viewer, tea.Cmd) {
	m.status = ""
	id, hasSel := m.selectedID()
	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "?":
		m.showHelp = !m.showHelp
	case "n":
		m.preset = (m.preset + 1) % len(m.presets)
		m.loadPreset()
	case "p":
		m.preset = (m.preset + len(m.presets) - 1) % len(m.presets)
		m.loadPreset()
	case "tab":
		if n := m.scene.Len(); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case "up", "down", "left", "right":
		if hasSel {
			c, _ := m.scene.Charge(id)
			d := map[string]r2.Vec{"up": {Y: 1}, "down": {Y: -1}, "left": {X: -1}, "right": {X: 1}}[msg.String()]
			err = m.scene.MoveCharge(id, c.X+d.X*scene.SnapStep, c.Y+d.Y*scene.SnapStep)
			if err == nil {
				m.scene.Commit()
			}
		}
	case "+", "=", "-":
		if hasSel {
			c, _ := m.scene.Charge(id)
			step := .5
			if msg.String() == "-" {
				step = -.5
			}
			q := c.Q + step
			if q == 0 {
				q += step
			}
			err = m.scene.SetChargeValue(id, q)
		}
	case "l":
		if hasSel {
			c, _ := m.scene.Charge(id)
			err = m.scene.LockCharge(id, !c.Locked)
		}
	case "x":
		if hasSel {
			err = m.scene.RemoveCharge(id)
		}
	case "m":
		err = m.scene.SetToggle("mirror", !m.scene.Toggles().Mirror)
	case "u":
		err = m.scene.Undo()
	case "r":
		err = m.scene.Redo()
	}
	if err != nil {
		m.status = err.Error()
	}
	m.clampSelection()
	return m, nil
}

func (m *Viewer) selectedID() (string, bool) {
	cs := m.scene.Charges()
	if m.selected < 0 || m.selected >= len(cs) {
		return "", false
	}
	return cs[m.selected].ID, true
}

func (m *Viewer) clampSelection() {
	if n := m.scene.Len(); m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m *Viewer) loadPreset() {
	p, err := config.GetPreset(m.presets[m.preset])
	if err != nil {
		m.status = err.Error()
		return
	}
	m.scene.ReplaceCharges(p.Charges(m.seed))
	m.selected = 0
	m.retrace()
}

// resize fits the canvas into the terminal next to the side panel, keeping
// the braille dots square.
func (m *Viewer) resize(w, h int) {
	cw := max(20, w-panelWidth-4)
	ch := max(8, h-2)
	m.canvas = NewCanvas(cw, ch)
	dw, dh := m.canvas.Dots()
	m.tr = view.New(dw, dh)
	m.tr.PixelsPerUnit = float64(dw) / worldSpan
}

// retrace recomputes everything derived from the charges.
func (m *Viewer) retrace() {
	cs := m.scene.Effective()
	m.paths = nil
	if len(cs) > 0 {
		p := fieldlines.DefaultParams(m.tr.VisibleRect(), terminalSteps)
		m.paths = raster.ScreenPaths(m.tr, fieldlines.TraceAll(cs, p, terminalLines))
	}
	m.flow.Init(flowCount, cs, m.tr, 0)
	half := worldSpan / 2
	m.profile, _ = export.SampleLine(r2.Vec{X: -half}, r2.Vec{X: half}, export.LineSamples, cs)
	m.draw()
}

func (m *Viewer) measure(now time.Time) {
	m.gov.Frame(now)
	if !m.last.IsZero() {
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			m.fps = append(m.fps, 1/dt)
			if len(m.fps) > fpsCapacity {
				m.fps = m.fps[1:]
			}
		}
	}
	m.last = now
}

func (m *Viewer) draw() {
	m.canvas.Clear()
	for _, p := range m.paths {
		m.canvas.DrawPolyline(p)
	}
	for _, p := range m.flow.Particles() {
		s := m.tr.WorldToScreen(p.Pos)
		m.canvas.Set(int(s.X), int(s.Y))
	}
	for _, c := range m.scene.Effective() {
		s := m.tr.WorldToScreen(c.Pos())
		glyph := '+'
		switch {
		case physics.IsMirror(c):
			glyph = '\''
		case c.Q < 0:
			glyph = '-'
		}
		m.canvas.Put(int(s.X), int(s.Y), glyph)
	}
}

func (m Viewer) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText("CHAMP ÉLECTROSTATIQUE", colormap.PositiveCharge, colormap.NegativeCharge)) + "\n")
	state := "RUNNING"
	if !m.running {
		state = "PAUSED"
	}
	s.WriteString(labelStyle.Render("Preset") + valueStyle.Render(m.presets[m.preset]) + "  " + state + "\n")
	s.WriteString(labelStyle.Render("Tier") + valueStyle.Render(fmt.Sprintf("%d", m.gov.Tier())) + "\n")
	if m.scene.Toggles().Mirror {
		s.WriteString(labelStyle.Render("Mirror") + valueStyle.Render("grounded plane y=0") + "\n")
	}
	s.WriteString("\n")

	cs := m.scene.Charges()
	for i, c := range cs {
		line := fmt.Sprintf("%+5.1f µC  (%5.2f, %5.2f)", c.Q, c.X, c.Y)
		if c.Locked {
			line += " locked"
		}
		style := positiveStyle
		if c.Q < 0 {
			style = negativeStyle
		}
		if i == m.selected {
			s.WriteString(selectedStyle.Render("> ") + style.Render(line) + "\n")
		} else {
			s.WriteString("  " + style.Render(line) + "\n")
		}
	}
	if len(cs) == 0 {
		s.WriteString(labelStyle.Render("  (no charges)") + "\n")
	}

	if len(cs) > 0 {
		centre := physics.SampleAt(r2.Vec{}, m.scene.Effective())
		s.WriteString("\n" + labelStyle.Render("V(0,0)") + valueStyle.Render(physics.FormatSI(centre.Potential, "V")) + "\n")
		s.WriteString(labelStyle.Render("|E|(0,0)") + valueStyle.Render(physics.FormatSI(centre.Magnitude, "V/m")) + "\n")
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(physics.FormatSI(physics.SystemEnergy(cs), "J")) + "\n")
		s.WriteString("\n" + graphStyle.Render(ProfileChart(m.profile, panelWidth-12, 3)) + "\n")
	}
	th := perf.DefaultThresholds()
	s.WriteString("\n" + SparklineChart(m.fps, panelWidth-6, th.LowFPS, th.HighFPS) + "\n")

	if m.status != "" {
		s.WriteString(statusStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause N/P:Preset Tab:Select ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), panelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space  pause/resume      N/P    next/previous preset
  Tab    select charge     Arrows move by 0.25
  + / -  change q by 0.5   L      lock/unlock
  X      delete            M      mirror plane
  U / R  undo / redo       Q      quit
`

// Charges returns the charges currently shown.
func (m Viewer) Charges() []core.Charge { return m.scene.Charges() }
