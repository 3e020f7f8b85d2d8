package viz

import (
	"fmt"
	"image"
	"image/gif"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/celestia/internal/dynamo"
	"github.com/san-kum/celestia/internal/export"
	"github.com/san-kum/celestia/internal/metrics"
	"github.com/san-kum/celestia/internal/scenario"
	"github.com/san-kum/celestia/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 44
	historyCapacity = 600
	trailLength     = 90
	eventLogSize    = 6
	frameRate       = 60
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a session at the frame rate and draws it on a braille canvas.
type Model struct {
	session       *sim.Session
	log           *log.Logger
	canvas        *Canvas
	projector     *Projector
	theme         Theme
	frameDt       float64
	width, height int
	running       bool
	showHelp      bool
	status        string
	trails        map[uint64][]dynamo.Vec3
	energyHistory []float64
	eventLog      []string
	presets       []string
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	svgPath       string
	followCursor  int
}

// NewModel wraps a loaded session. frameDt is the raw delta fed to each tick.
func NewModel(session *sim.Session, frameDt float64, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return Model{
		session:   session,
		log:       logger.With("component", "live"),
		canvas:    NewCanvas(width, height),
		projector: NewProjector(),
		theme:     CurrentTheme,
		frameDt:   frameDt,
		width:     width,
		height:    height,
		running:   true,
		trails:    make(map[uint64][]dynamo.Vec3),
		presets:   scenario.ListPresets(),
		gifPath:   "celestia.gif",
		svgPath:   "celestia.svg",
	}
}

// Run opens the live viewer in the alternate screen.
func Run(session *sim.Session, frameDt float64, logger *log.Logger) error {
	_, err := tea.NewProgram(NewModel(session, frameDt, logger), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Frame(8, 16))
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.reload()
	case "e":
		if err := m.session.Trigger(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "triggered"
		}
	case "f":
		m.followNext()
	case "u":
		m.session.Unfollow()
		m.status = "free camera"
	case "left", "h":
		m.projector.RotateYaw(-0.1)
	case "right", "l":
		m.projector.RotateYaw(0.1)
	case "up", "k":
		m.projector.RotatePitch(0.1)
	case "down", "j":
		m.projector.RotatePitch(-0.1)
	case "+", "=":
		m.projector.ZoomIn()
	case "-", "_":
		m.projector.ZoomOut()
	case "0":
		m.projector.ResetView()
	case "t":
		m.theme = NextTheme(m.theme.Name)
		CurrentTheme = m.theme
	case "g":
		m.toggleRecording()
	case "s":
		m.saveSVG()
	case "?":
		m.showHelp = !m.showHelp
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.presets) {
				m.loadPreset(m.presets[i])
			}
		}
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-panelWidth-8)
	ch := max(8, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// step advances the session one frame and records the panel history.
func (m *Model) step() {
	m.session.Tick(m.frameDt)
	for _, e := range m.session.Events() {
		m.log.Debug("event", "kind", e.Kind, "body", e.BodyID, "t", e.Time)
		m.eventLog = append(m.eventLog, e.String())
		if e.Kind == sim.EventDisposed || e.Kind == sim.EventDestroyed {
			delete(m.trails, e.BodyID)
		}
	}
	if n := len(m.eventLog); n > eventLogSize {
		m.eventLog = m.eventLog[n-eventLogSize:]
	}

	m.energyHistory = append(m.energyHistory, metrics.KineticEnergy(m.session.Accounted()))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	for _, b := range m.session.World().Live() {
		trail := append(m.trails[b.ID], b.Position)
		if len(trail) > trailLength {
			trail = trail[1:]
		}
		m.trails[b.ID] = trail
	}
}

func (m *Model) clearHistory() {
	m.trails = make(map[uint64][]dynamo.Vec3)
	m.energyHistory = m.energyHistory[:0]
	m.eventLog = m.eventLog[:0]
	m.followCursor = 0
}

func (m *Model) reload() {
	if err := m.session.Reload(); err != nil {
		m.status = err.Error()
		return
	}
	m.clearHistory()
	m.status = "reloaded"
}

func (m *Model) loadPreset(name string) {
	desc, err := scenario.Preset(name)
	if err == nil {
		err = m.session.Load(desc)
	}
	if err != nil {
		m.log.Error("load preset", "name", name, "err", err)
		m.status = err.Error()
		return
	}
	m.clearHistory()
	m.status = "loaded " + name
}

// followNext cycles the camera through the live bodies in ID order.
func (m *Model) followNext() {
	live := m.session.World().Live()
	if len(live) == 0 {
		m.status = "nothing to follow"
		return
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	b := live[m.followCursor%len(live)]
	m.followCursor++
	if err := m.session.Follow(b.ID); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "following " + b.Name
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.log.Error("save gif", "err", err)
		m.status = err.Error()
	} else if len(m.frames) > 0 {
		m.status = "saved " + m.gifPath
	}
	m.frames = nil
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteGIF(f, m.frames, 2)
}

// saveSVG writes the current canvas as a vector snapshot.
func (m *Model) saveSVG() {
	if err := os.WriteFile(m.svgPath, []byte(export.BrailleToSVG(m.canvas.Grid, 4)), 0o644); err != nil {
		m.log.Error("save svg", "err", err)
		m.status = err.Error()
		return
	}
	m.status = "saved " + m.svgPath
}

// WriteGIF encodes frames as a looping animation, delay in 1/100 s.
func WriteGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

type projectedBody struct {
	x, y, r int
	depth   float64
	state   sim.BodyState
}

func (m *Model) draw() {
	m.canvas.Clear()
	pw, ph := m.canvas.PixelSize()
	snap := m.session.Snapshot()
	view := m.projector.Resolve(snap.Camera, pw, ph)

	wf := NewWireframe()
	for _, trail := range m.trails {
		for i := 1; i < len(trail); i++ {
			wf.AddEdge(trail[i-1], trail[i])
		}
	}
	if snap.Mode == scenario.ModeOrbit.String() {
		addOrbitRings(wf, snap)
	}
	Render3D(m.canvas, wf, view)

	bodies := make([]projectedBody, 0, len(snap.Bodies))
	for _, b := range snap.Bodies {
		x, y, depth, ok := view.Project(b.Position)
		if depth <= view.near {
			continue
		}
		r := view.Radius(b.Radius*b.Scale, depth)
		if !ok && (x+r < 0 || x-r >= pw || y+r < 0 || y-r >= ph) {
			continue
		}
		bodies = append(bodies, projectedBody{x, y, r, depth, b})
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].depth > bodies[j].depth })
	for _, b := range bodies {
		switch {
		case b.state.IsStar:
			m.canvas.Disc(b.x, b.y, b.r)
		default:
			m.canvas.Circle(b.x, b.y, b.r)
			if b.state.Deform > 0 {
				// squash marker along the contact direction
				tip := b.state.Position.Add(b.state.DeformDirection.Scale(b.state.Radius * b.state.Scale))
				if dx, dy, _, ok := view.Project(tip); ok {
					m.canvas.DrawLine(b.x, b.y, dx, dy)
				}
			}
		}
		if b.state.ID == snap.Following {
			m.bracket(b.x, b.y, b.r+3)
		}
	}
}

// addOrbitRings traces each planet's current orbital radius around the star.
func addOrbitRings(wf *Wireframe, snap sim.Snapshot) {
	var star *sim.BodyState
	for i := range snap.Bodies {
		if snap.Bodies[i].IsStar {
			star = &snap.Bodies[i]
			break
		}
	}
	if star == nil {
		return
	}
	for _, b := range snap.Bodies {
		if b.ID == star.ID {
			continue
		}
		off := b.Position.Sub(star.Position)
		wf.AddRing(star.Position, math.Hypot(off.X, off.Z), 64)
	}
}

func (m *Model) bracket(x, y, r int) {
	for _, c := range [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		cx, cy := x+c[0]*r, y+c[1]*r
		m.canvas.DrawLine(cx, cy, cx-c[0]*2, cy)
		m.canvas.DrawLine(cx, cy, cx, cy-c[1]*2)
	}
}

func (m Model) View() string {
	snap := m.session.Snapshot()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	title := "CELESTIA · " + strings.ToUpper(strings.ReplaceAll(snap.Mode, "_", " "))
	s.WriteString(GradientText(title, m.theme.Primary, m.theme.Secondary) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += " " + StatusRecording.Render("● REC")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Clock", fmt.Sprintf("%.2fs", snap.Clock))
	row("Time scale", fmt.Sprintf("%.2fx", snap.TimeScale))
	if d := m.session.Director(); d.Playing() || snap.Phase != 0 {
		row("Phase", snap.Phase.String())
		s.WriteString(labelStyle.Render("") + ProgressBar(d.Elapsed()/8, 20) + "\n")
	}
	row("Bodies", fmt.Sprintf("%d (+%d pending)", len(snap.Bodies), m.session.PendingSpawns()))
	row("Mass", fmt.Sprintf("%.2f", metrics.TotalMass(m.session.Accounted())))
	if b, ok := snap.Find(snap.Following); ok {
		row("Following", b.Name)
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-6) + "\n")
	shown := snap.Bodies
	if len(shown) > 8 {
		shown = shown[:8]
	}
	for _, b := range shown {
		name := lipgloss.NewStyle().Foreground(m.theme.BodyColor(b)).Render(fmt.Sprintf("%-10s", b.Name))
		s.WriteString(fmt.Sprintf("%s %s m=%.1f r=%.2f\n", name, MetricLabel.Render(b.Kind.String()), b.Mass, b.Radius*b.Scale))
	}

	if len(m.eventLog) > 0 {
		s.WriteString("\n" + MetricLabel.Render("EVENTS") + "\n")
		for _, e := range m.eventLog {
			s.WriteString(Subtle.Render(e) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + MetricValue.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reload E:Trigger Q:Quit\nF:Follow U:Free 1-9:Preset ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return Panel.Render(m.helpText()) + "\n" + mainView
	}
	return mainView
}

func (m Model) helpText() string {
	var b strings.Builder
	b.WriteString(KeyHint.Render("KEYBOARD SHORTCUTS") + "\n")
	for _, kv := range [][2]string{
		{"Space", "Pause/resume"},
		{"R", "Reload scenario"},
		{"E", "Trigger eclipse"},
		{"F / U", "Follow next body / free camera"},
		{"Arrows", "Orbit view"},
		{"+ / -", "Zoom"},
		{"0", "Reset view"},
		{"T", "Cycle themes"},
		{"G", "Toggle GIF recording"},
		{"S", "Save SVG snapshot"},
		{"Q", "Quit"},
	} {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", kv[0], kv[1]))
	}
	for i, name := range m.presets {
		if i >= 9 {
			break
		}
		b.WriteString(fmt.Sprintf("  %-8d %s\n", i+1, name))
	}
	return b.String()
}
