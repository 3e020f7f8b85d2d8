package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/celestia/internal/physics"
	"github.com/san-kum/celestia/internal/sim"
)

// Theme colours the title gradient and the side panel's body list by kind.
type Theme struct {
	Name string
	// Primary and Secondary are the two ends of the title gradient.
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	Star   lipgloss.Color
	Planet lipgloss.Color
	Merged lipgloss.Color
	Molten lipgloss.Color
}

// Themes cycles in this order under the theme key.
var Themes = []Theme{
	{"deep_space", "#7aa2f7", "#bb9af7", "#ffd866", "#7dcfff", "#ff9e64", "#f7768e"},
	{"nebula", "#ff79c6", "#8be9fd", "#f1fa8c", "#bd93f9", "#ffb86c", "#ff5555"},
	{"solar", "#ffb000", "#ff6000", "#fff4b0", "#d0a060", "#e07030", "#ff2a00"},
	{"phosphor", "#33ff66", "#00aa44", "#ccffcc", "#33ff66", "#99ff99", "#ffff66"},
}

var CurrentTheme = Themes[0]

// ThemeByName falls back to the first theme for unknown names.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func (t Theme) BodyColor(b sim.BodyState) lipgloss.Color {
	switch {
	case b.IsStar:
		return t.Star
	case b.Kind == physics.KindMolten:
		return t.Molten
	case b.Kind == physics.KindMerged:
		return t.Merged
	default:
		return t.Planet
	}
}
