package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Name string

	// Podstawowe kolory
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
	Special   lipgloss.Color
	Error     lipgloss.Color
	StatusBar lipgloss.Color
	Border    lipgloss.Color

	// Panels
	TextColor   lipgloss.Color
	NotifyColor lipgloss.Color
	AliasColor  lipgloss.Color
	WarnColor   lipgloss.Color
}

var (
	currentThemeIndex = 0

	themes = []Theme{
		{
			Name:      "default",
			Subtle:    lipgloss.Color("#6C7086"),
			Highlight: lipgloss.Color("#7DC4E4"),
			Special:   lipgloss.Color("#A6E3A1"),
			Error:     lipgloss.Color("#F38BA8"),
			StatusBar: lipgloss.Color("#313244"),
			Border:    lipgloss.Color("#33B2FF"),

			TextColor:   lipgloss.Color("#E7E7E7"),
			NotifyColor: lipgloss.Color("#FF9E64"),
			AliasColor:  lipgloss.Color("#2DAFFF"),
			WarnColor:   lipgloss.Color("#F9E2AF"),
		},
		{
			// Dracula Classic - motyw inspirowany klasycznym schematem kolorów Dracula
			Name:      "dracula",
			Subtle:    lipgloss.Color("#6272A4"), // Delikatny fioletowy
			Highlight: lipgloss.Color("#8BE9FD"), // Jasny cyan
			Special:   lipgloss.Color("#50FA7B"), // Zielony
			Error:     lipgloss.Color("#FF5555"), // Czerwony
			StatusBar: lipgloss.Color("#44475A"),
			Border:    lipgloss.Color("#BD93F9"), // Jasny fioletowy

			TextColor:   lipgloss.Color("#F8F8F2"),
			NotifyColor: lipgloss.Color("#FFB86C"), // Pomarańczowy
			AliasColor:  lipgloss.Color("#FF79C6"), // Różowy
			WarnColor:   lipgloss.Color("#F1FA8C"), // Żółty
		},
		{
			// VSCodeDark - inspirowany domyślnym motywem VS Code Dark+
			Name:      "vscode",
			Subtle:    lipgloss.Color("#808080"),
			Highlight: lipgloss.Color("#569CD6"),
			Special:   lipgloss.Color("#4EC9B0"),
			Error:     lipgloss.Color("#F44747"),
			StatusBar: lipgloss.Color("#007ACC"),
			Border:    lipgloss.Color("#569CD6"),

			TextColor:   lipgloss.Color("#D4D4D4"),
			NotifyColor: lipgloss.Color("#CE9178"),
			AliasColor:  lipgloss.Color("#9CDCFE"),
			WarnColor:   lipgloss.Color("#DCDCAA"),
		},
		{
			Name:      "molokai",
			Subtle:    lipgloss.Color("#75715E"),
			Highlight: lipgloss.Color("#66D9EF"),
			Special:   lipgloss.Color("#A6E22E"),
			Error:     lipgloss.Color("#F92672"),
			StatusBar: lipgloss.Color("#3E3D32"),
			Border:    lipgloss.Color("#AE81FF"),

			TextColor:   lipgloss.Color("#F8F8F2"),
			NotifyColor: lipgloss.Color("#FD971F"),
			AliasColor:  lipgloss.Color("#66D9EF"),
			WarnColor:   lipgloss.Color("#E6DB74"),
		},
	}
)

func init() {
	updateStyles(themes[currentThemeIndex])
}

// ThemeCount returns how many themes are available.
func ThemeCount() int {
	return len(themes)
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	return themes[currentThemeIndex]
}

// SetTheme selects a theme by index and rebuilds every style.
func SetTheme(index int) error {
	if index < 0 || index >= len(themes) {
		return fmt.Errorf("theme %d out of range (0-%d)", index, len(themes)-1)
	}
	currentThemeIndex = index
	updateStyles(themes[index])
	return nil
}

// SwitchTheme przełącza na następny motyw i aktualizuje wszystkie style
func SwitchTheme() {
	currentThemeIndex = (currentThemeIndex + 1) % len(themes)
	updateStyles(themes[currentThemeIndex])
}

func updateStyles(theme Theme) {
	Subtle = theme.Subtle
	Highlight = theme.Highlight
	Special = theme.Special
	Error = theme.Error
	StatusBar = theme.StatusBar
	Border = theme.Border

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Highlight)

	DescriptionStyle = lipgloss.NewStyle().
		Foreground(Subtle)

	TextStyle = lipgloss.NewStyle().
		Foreground(theme.TextColor)

	NotifyStyle = lipgloss.NewStyle().
		Foreground(theme.NotifyColor).
		Italic(true)

	AliasStyle = lipgloss.NewStyle().
		Foreground(theme.AliasColor).
		Bold(true)

	StatusConnectingStyle = lipgloss.NewStyle().
		Foreground(theme.WarnColor).
		Bold(true)

	StatusConnectedStyle = lipgloss.NewStyle().
		Foreground(Special).
		Bold(true)

	StatusDefaultStyle = lipgloss.NewStyle().
		Foreground(Subtle)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(Special).
		Bold(true)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Subtle)

	FocusedPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(Border)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(Highlight).
		Bold(true).
		Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
		Foreground(theme.TextColor).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(theme.TextColor).
		Background(StatusBar).
		Padding(0, 1)

	CommandBarStyle = lipgloss.NewStyle().
		Foreground(theme.TextColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Border)
}
