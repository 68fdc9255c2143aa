package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"remotail/internal/tail"
	"remotail/internal/ui"
)

// DefaultMaxLines caps a panel's scrollback.
const DefaultMaxLines = 5000

type line struct {
	text   string
	notify bool
}

// Panel shows the stream of one alias. Lines are assembled from raw chunks:
// a chunk without a trailing newline is continued by the next one.
type Panel struct {
	alias    string
	state    tail.State
	lines    []line
	partial  bool
	maxLines int

	viewport viewport.Model
	width    int
	height   int
	dirty    bool
}

func NewPanel(alias string, maxLines int) *Panel {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Panel{
		alias:    alias,
		state:    tail.StateConnecting,
		maxLines: maxLines,
		viewport: viewport.New(0, 0),
	}
}

func (p *Panel) Alias() string     { return p.alias }
func (p *Panel) State() tail.State { return p.state }

// Lines returns the displayed lines, oldest first.
func (p *Panel) Lines() []string {
	out := make([]string, len(p.lines))
	for i, l := range p.lines {
		out[i] = l.text
	}
	return out
}

// Append adds msg to the panel and scrolls to the newest line.
func (p *Panel) Append(msg tail.Message) {
	switch msg.Kind {
	case tail.KindNotify:
		p.appendNotify(msg.State, msg.Text)
	default:
		p.appendData(msg.Data)
	}
	p.trim()
	p.dirty = true
}

func (p *Panel) appendData(data []byte) {
	if len(data) == 0 {
		return
	}
	segments := strings.Split(string(data), "\n")
	for i, seg := range segments {
		complete := i < len(segments)-1
		switch {
		case i == 0 && p.partial:
			p.lines[len(p.lines)-1].text += seg
		case complete || seg != "":
			p.lines = append(p.lines, line{text: seg})
		default:
			continue
		}
		if complete {
			last := &p.lines[len(p.lines)-1]
			last.text = strings.TrimSuffix(last.text, "\r")
		}
	}
	p.partial = segments[len(segments)-1] != ""
}

func (p *Panel) appendNotify(state tail.State, text string) {
	p.state = state
	p.partial = false
	p.lines = append(p.lines, line{text: text, notify: true})
}

// trim drops the oldest lines beyond maxLines.
func (p *Panel) trim() {
	over := len(p.lines) - p.maxLines
	if over <= 0 {
		return
	}
	n := copy(p.lines, p.lines[over:])
	for i := n; i < len(p.lines); i++ {
		p.lines[i] = line{}
	}
	p.lines = p.lines[:n]
}

// SetSize sets the outer size of the panel including its border and title.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = max(width-2, 1)
	p.viewport.Height = max(height-3, 1)
	p.dirty = true
}

func (p *Panel) refresh() {
	if !p.dirty {
		return
	}
	p.dirty = false

	clip := lipgloss.NewStyle().MaxWidth(p.viewport.Width)
	rendered := make([]string, len(p.lines))
	for i, l := range p.lines {
		if l.notify {
			rendered[i] = clip.Render(ui.NotifyStyle.Render("» " + l.text))
		} else {
			rendered[i] = clip.Render(ui.TextStyle.Render(l.text))
		}
	}
	p.viewport.SetContent(strings.Join(rendered, "\n"))
	p.viewport.GotoBottom()
}

// Update forwards scroll keys to the viewport.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	p.refresh()
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// AtBottom reports whether the newest line is visible.
func (p *Panel) AtBottom() bool {
	p.refresh()
	return p.viewport.AtBottom()
}

func (p *Panel) View(focused bool) string {
	p.refresh()

	style := ui.PanelStyle
	if focused {
		style = ui.FocusedPanelStyle
	}

	title := lipgloss.JoinHorizontal(lipgloss.Left,
		ui.AliasStyle.Render(p.alias),
		" ",
		ui.StateStyle(p.state).Render("["+p.state.String()+"]"),
	)
	title = lipgloss.NewStyle().MaxWidth(p.viewport.Width).Render(title)

	body := lipgloss.JoinVertical(lipgloss.Left, title, p.viewport.View())
	return style.
		Width(p.viewport.Width).
		Height(p.viewport.Height + 1).
		Render(body)
}
