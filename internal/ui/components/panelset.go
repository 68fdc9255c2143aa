package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperror "remotail/internal/error"
	"remotail/internal/tail"
	"remotail/internal/ui"
)

// PanelSet keeps one Panel per alias in display order and tracks which one
// has focus. It is owned by the UI goroutine and is not safe for concurrent use.
type PanelSet struct {
	order    []string
	panels   map[string]*Panel
	focus    int
	maxLines int

	width  int
	height int
}

func NewPanelSet(maxLines int) *PanelSet {
	return &PanelSet{
		panels:   make(map[string]*Panel),
		maxLines: maxLines,
	}
}

// Insert appends a panel for alias to the visible order.
func (s *PanelSet) Insert(alias string) error {
	if _, exists := s.panels[alias]; exists {
		return apperror.Newf(apperror.DuplicateAliasError, "panel %q already exists", alias)
	}
	p := NewPanel(alias, s.maxLines)
	s.panels[alias] = p
	s.order = append(s.order, alias)
	s.layout()
	return nil
}

// Remove deletes the panel for alias and closes the gap.
func (s *PanelSet) Remove(alias string) error {
	idx := s.index(alias)
	if idx < 0 {
		return apperror.Newf(apperror.UnknownAliasError, "no panel for %q", alias)
	}
	delete(s.panels, alias)
	s.order = append(s.order[:idx], s.order[idx+1:]...)

	switch {
	case len(s.order) == 0:
		s.focus = 0
	case idx < s.focus:
		s.focus--
	case s.focus >= len(s.order):
		s.focus = len(s.order) - 1
	}
	s.layout()
	return nil
}

func (s *PanelSet) Has(alias string) bool {
	_, ok := s.panels[alias]
	return ok
}

// Append routes msg to its panel. It reports false when no panel exists.
func (s *PanelSet) Append(msg tail.Message) bool {
	p, ok := s.panels[msg.Alias]
	if !ok {
		return false
	}
	p.Append(msg)
	return true
}

func (s *PanelSet) Panel(alias string) (*Panel, bool) {
	p, ok := s.panels[alias]
	return p, ok
}

// Aliases returns the aliases in display order.
func (s *PanelSet) Aliases() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *PanelSet) Len() int {
	return len(s.order)
}

func (s *PanelSet) FocusNext() {
	if len(s.order) == 0 {
		return
	}
	s.focus = (s.focus + 1) % len(s.order)
}

func (s *PanelSet) FocusPrevious() {
	if len(s.order) == 0 {
		return
	}
	s.focus = (s.focus - 1 + len(s.order)) % len(s.order)
}

// Focused returns the focused panel, or nil when the set is empty.
func (s *PanelSet) Focused() *Panel {
	if len(s.order) == 0 {
		return nil
	}
	return s.panels[s.order[s.focus]]
}

func (s *PanelSet) index(alias string) int {
	for i, a := range s.order {
		if a == alias {
			return i
		}
	}
	return -1
}

// SetSize sets the area shared by all panels.
func (s *PanelSet) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.layout()
}

func (s *PanelSet) layout() {
	if s.width <= 0 || len(s.order) == 0 {
		return
	}
	widths := ui.BaseLayout{Width: s.width}.Columns(len(s.order))
	for i, alias := range s.order {
		s.panels[alias].SetSize(widths[i], s.height)
	}
}

// Update forwards msg to the focused panel.
func (s *PanelSet) Update(msg tea.Msg) tea.Cmd {
	if p := s.Focused(); p != nil {
		return p.Update(msg)
	}
	return nil
}

// View renders the panels side by side.
func (s *PanelSet) View() string {
	if len(s.order) == 0 {
		placeholder := ui.DescriptionStyle.Render("no active targets, press : and type enable <target>")
		return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, placeholder)
	}

	columns := make([]string, len(s.order))
	for i, alias := range s.order {
		columns[i] = s.panels[alias].View(i == s.focus)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}
