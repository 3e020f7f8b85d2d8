package viz

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/celestia/internal/config"
	"github.com/san-kum/celestia/internal/scenario"
	"github.com/san-kum/celestia/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// tunable is one physics knob exposed on the config screen.
type tunable struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var tunables = []tunable{
	{"gravity G", 10, func(c *config.Config) float64 { return c.Physics.G }, func(c *config.Config, v float64) { c.Physics.G = max(0, v) }},
	{"merge delay", 0.05, func(c *config.Config) float64 { return c.Physics.MergeDelay }, func(c *config.Config, v float64) { c.Physics.MergeDelay = max(0, v) }},
	{"impactor speed", 5, func(c *config.Config) float64 { return c.Cinematic.ImpactorSpeed }, func(c *config.Config, v float64) { c.Cinematic.ImpactorSpeed = max(1, v) }},
	{"max substeps", 1, func(c *config.Config) float64 { return float64(c.Physics.MaxSubsteps) }, func(c *config.Config, v float64) { c.Physics.MaxSubsteps = max(1, int(v)) }},
}

// App picks a scenario preset, lets the user tune a few physics knobs and
// then hands over to the live viewer.
type App struct {
	state, cursor int
	paramCursor   int
	presets       []string
	selected      string
	cfg           config.Config
	log           *log.Logger
	err           error
	width, height int
	live          Model
}

func NewApp(cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		state:   stateMenu,
		presets: scenario.ListPresets(),
		cfg:     *cfg,
		log:     logger,
		width:   80,
		height:  24,
	}
}

// RunInteractive starts the picker in the alternate screen.
func RunInteractive(cfg *config.Config, logger *log.Logger) error {
	_, err := tea.NewProgram(NewApp(cfg, logger), tea.WithAltScreen()).Run()
	return err
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateSim {
			a.live.resize(msg.Width, msg.Height)
		}
		return a, nil
	default:
		if a.state == stateSim {
			return a, a.forward(msg)
		}
	}
	return a, nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	next, cmd := a.live.Update(msg)
	a.live = next.(Model)
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case stateConfig:
		return a.configKey(msg)
	default:
		if msg.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		return a, a.forward(msg)
	}
}

func (a *App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.presets[a.cursor]
		a.state, a.paramCursor, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a *App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "q":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(tunables)-1 {
			a.paramCursor++
		}
	case "right", "l", "+":
		t := tunables[a.paramCursor]
		t.set(&a.cfg, t.get(&a.cfg)+t.step)
	case "left", "h", "-":
		t := tunables[a.paramCursor]
		t.set(&a.cfg, t.get(&a.cfg)-t.step)
	case "enter", " ":
		if err := a.launch(); err != nil {
			a.err = err
			return a, nil
		}
		a.state = stateSim
		return a, a.live.Init()
	}
	return a, nil
}

func (a *App) launch() error {
	desc, err := scenario.Preset(a.selected)
	if err != nil {
		return err
	}
	cfg := a.cfg
	session, err := sim.NewSession(&cfg, a.log)
	if err != nil {
		return err
	}
	if err := session.Load(desc); err != nil {
		return err
	}
	a.live = NewModel(session, cfg.Dt, a.log)
	a.live.resize(a.width, a.height)
	a.log.Info("launch", "preset", a.selected, "G", cfg.Physics.G)
	return nil
}

func (a *App) View() string {
	switch a.state {
	case stateConfig:
		return a.configView()
	case stateSim:
		return a.live.View()
	}
	return a.menuView()
}

func (a *App) menuView() string {
	var b strings.Builder
	b.WriteString(GradientText("CELESTIA", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n")
	b.WriteString(dim.Render("celestial scenario simulator") + "\n\n")
	for i, name := range a.presets {
		desc, err := scenario.Preset(name)
		info := ""
		if err == nil {
			info = fmt.Sprintf("%s, %d objects", desc.ScenarioType, len(desc.Objects))
		}
		if i == a.cursor {
			b.WriteString(cyan.Render("▸ "+fmt.Sprintf("%-16s", name)) + dim.Render(info) + "\n")
		} else {
			b.WriteString(white.Render("  "+fmt.Sprintf("%-16s", name)) + dim.Render(info) + "\n")
		}
	}
	b.WriteString("\n" + KeyHint.Render("↑↓ select · enter configure · q quit"))
	return Panel.Render(b.String())
}

func (a *App) configView() string {
	var b strings.Builder
	b.WriteString(cyan.Render(strings.ToUpper(a.selected)) + "\n\n")
	for i, t := range tunables {
		line := fmt.Sprintf("%-16s %8.3f", t.name, t.get(&a.cfg))
		if i == a.paramCursor {
			b.WriteString(green.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("  " + white.Render(line) + "\n")
		}
	}
	if a.err != nil {
		b.WriteString("\n" + yellow.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("↑↓ select · ←→ adjust · enter launch · esc back"))
	return Panel.Render(b.String())
}
