// internal/ui/layout.go

package ui

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// BaseLayout zawiera podstawowe wymiary i style dla layoutu
type BaseLayout struct {
	Width         int
	Height        int
	HeaderHeight  int
	FooterHeight  int
	ContentHeight int
}

const minContentHeight = 3

// NewBaseLayout sizes the content area from the rendered header and footer.
func NewBaseLayout(width, height int, header, footer string) BaseLayout {
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)

	content := height - headerHeight - footerHeight
	if content < minContentHeight {
		content = minContentHeight
	}
	return BaseLayout{
		Width:         width,
		Height:        height,
		HeaderHeight:  headerHeight,
		FooterHeight:  footerHeight,
		ContentHeight: content,
	}
}

// HeaderStyleFor tworzy styl dla nagłówka o danej szerokości
func HeaderStyleFor(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
}

// Columns splits the content width into n panel widths; the last column
// absorbs the remainder.
func (l BaseLayout) Columns(n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	base := l.Width / n
	for i := range widths {
		widths[i] = base
	}
	widths[n-1] += l.Width - base*n
	return widths
}

// CreateLipglossTable tworzy tabelę lipgloss z odpowiednimi stylami
func CreateLipglossTable(headers []string, rows [][]string) string {
	tableStyle := func(row, col int) lipgloss.Style {
		switch {
		case row == -1: // Nagłówki
			return HeaderStyle
		case col%2 == 0:
			return CellStyle.Foreground(Highlight)
		default:
			return CellStyle
		}
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		BorderHeader(false).
		StyleFunc(tableStyle).
		Headers(headers...).
		Rows(rows...).
		Render()
}
