package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name     string
	Canvas   lipgloss.Color
	Selected lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Awake    lipgloss.Color
	Asleep   lipgloss.Color
}

var (
	ThemeRetroGreen = Theme{
		Name:     "retro",
		Canvas:   lipgloss.Color("#00ff00"),
		Selected: lipgloss.Color("#88ff88"),
		Accent:   lipgloss.Color("#00cc00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Awake:    lipgloss.Color("#ffff00"),
		Asleep:   lipgloss.Color("#88ff88"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Canvas:   lipgloss.Color("#ffffff"),
		Selected: lipgloss.Color("#0088ff"),
		Accent:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Awake:    lipgloss.Color("#ffaa00"),
		Asleep:   lipgloss.Color("#00ff00"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Canvas:   lipgloss.Color("#00a8cc"),
		Selected: lipgloss.Color("#ffd700"),
		Accent:   lipgloss.Color("#0077be"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Awake:    lipgloss.Color("#ffcc00"),
		Asleep:   lipgloss.Color("#00ff88"),
	}

	Themes = []Theme{ThemeRetroGreen, ThemeMinimal, ThemeOcean}
)

// GetTheme returns a theme by name, falling back to the first.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// next returns the theme after t, wrapping around.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
