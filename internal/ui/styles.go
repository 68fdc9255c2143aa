// internal/ui/styles.go

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"remotail/internal/tail"
)

// Colors and styles below are (re)built by updateStyles from the active theme.
var (
	// Kolory
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
	Special   lipgloss.Color
	Error     lipgloss.Color
	StatusBar lipgloss.Color
	Border    lipgloss.Color

	TitleStyle       lipgloss.Style
	DescriptionStyle lipgloss.Style

	// Panel content
	TextStyle   lipgloss.Style
	NotifyStyle lipgloss.Style
	AliasStyle  lipgloss.Style

	// Statusy
	StatusConnectingStyle lipgloss.Style
	StatusConnectedStyle  lipgloss.Style
	StatusDefaultStyle    lipgloss.Style
	SuccessStyle          lipgloss.Style
	ErrorStyle            lipgloss.Style

	// Kontenery
	PanelStyle        lipgloss.Style
	FocusedPanelStyle lipgloss.Style

	// Tabele
	HeaderStyle lipgloss.Style
	CellStyle   lipgloss.Style

	StatusBarStyle  lipgloss.Style
	CommandBarStyle lipgloss.Style
)

// StateStyle picks the badge style for a worker state.
func StateStyle(state tail.State) lipgloss.Style {
	switch state {
	case tail.StateConnecting:
		return StatusConnectingStyle
	case tail.StateStreaming:
		return StatusConnectedStyle
	case tail.StateErrored:
		return ErrorStyle
	default:
		return StatusDefaultStyle
	}
}

// GetMaxWidth zwraca maksymalną szerokość tekstu w slice'u
func GetMaxWidth(items []string) int {
	maxWidth := 0
	for _, item := range items {
		if w := lipgloss.Width(item); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// CenterText centruje tekst w danej szerokości
func CenterText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}
