package views

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	apperror "remotail/internal/error"
	"remotail/internal/tail"
	"remotail/internal/ui"
	"remotail/internal/ui/components"
	"remotail/internal/ui/messages"
)

// Dispatcher drains the message queue into panels.
type Dispatcher interface {
	Queue() *tail.Queue
	Dispatch() error
}

// Executor runs one operator command line.
type Executor interface {
	Execute(line string) (string, error)
}

// Status reprezentuje stan aplikacji
type Status struct {
	Message string
	IsError bool
}

// TailView is the root model: header, one column per panel, the key table,
// a status line and the command line.
type TailView struct {
	dispatcher Dispatcher
	executor   Executor
	panels     *components.PanelSet
	input      textinput.Model
	keys       KeyMap
	log        *zap.Logger

	version     string
	commandMode bool
	status      Status
	width       int
	height      int
}

func NewTailView(dispatcher Dispatcher, executor Executor, panels *components.PanelSet, version string, log *zap.Logger) *TailView {
	if log == nil {
		log = zap.NewNop()
	}
	input := textinput.New()
	input.Prompt = ": "
	input.Placeholder = "enable <alias://user@host/path> | disable <alias> | fetch <alias> <path> | help"
	input.CharLimit = 512

	return &TailView{
		dispatcher: dispatcher,
		executor:   executor,
		panels:     panels,
		input:      input,
		keys:       DefaultKeyMap(),
		log:        log,
		version:    version,
		status:     Status{Message: "press : to enter a command"},
	}
}

// waitForQueue blocks until the queue signals a pending message or closes.
func waitForQueue(q *tail.Queue) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-q.Ready():
			return messages.QueueReadyMsg{}
		case <-q.Done():
			return messages.QueueClosedMsg{}
		}
	}
}

func (v *TailView) Init() tea.Cmd {
	return waitForQueue(v.dispatcher.Queue())
}

func (v *TailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.QueueReadyMsg:
		if err := v.dispatcher.Dispatch(); err != nil && !errors.Is(err, apperror.ErrEmpty) {
			v.log.Error("dispatch failed", zap.Error(err))
		}
		return v, waitForQueue(v.dispatcher.Queue())

	case messages.QueueClosedMsg:
		return v, nil

	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.resize()
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.ForceQuit) {
			return v, tea.Quit
		}
		if v.commandMode {
			return v.updateCommand(msg)
		}
		return v.updateBrowse(msg)
	}

	if v.commandMode {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TailView) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Command):
		v.commandMode = true
		v.input.Reset()
		return v, v.input.Focus()
	case key.Matches(msg, v.keys.Next):
		v.panels.FocusNext()
	case key.Matches(msg, v.keys.Previous):
		v.panels.FocusPrevious()
	case key.Matches(msg, v.keys.Theme):
		ui.SwitchTheme()
		v.resize()
		v.status = Status{Message: fmt.Sprintf("theme: %s", ui.CurrentTheme().Name)}
	case key.Matches(msg, v.keys.Scroll), key.Matches(msg, v.keys.Page):
		return v, v.panels.Update(msg)
	}
	return v, nil
}

func (v *TailView) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Execute):
		line := v.input.Value()
		v.leaveCommandMode()
		v.execute(line)
		return v, nil
	case key.Matches(msg, v.keys.Cancel):
		v.leaveCommandMode()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *TailView) leaveCommandMode() {
	v.commandMode = false
	v.input.Blur()
	v.input.Reset()
}

// execute runs line; failures only change the status line.
func (v *TailView) execute(line string) {
	status, err := v.executor.Execute(line)
	switch {
	case err != nil:
		v.status = Status{Message: err.Error(), IsError: true}
	case status != "":
		v.status = Status{Message: status}
	}
	// enable and disable change the number of columns
	v.resize()
}

// SetStatus replaces the status line.
func (v *TailView) SetStatus(message string, isError bool) {
	v.status = Status{Message: message, IsError: isError}
}

func (v *TailView) resize() {
	if v.width == 0 {
		return
	}
	v.input.Width = max(v.width-lipgloss.Width(v.input.Prompt)-1, 1)
	layout := ui.NewBaseLayout(v.width, v.height, v.renderHeader(), v.renderFooter())
	v.panels.SetSize(v.width, layout.ContentHeight)
}

func (v *TailView) renderHeader() string {
	title := ui.TitleStyle.Render("Remotail " + v.version)
	return ui.HeaderStyleFor(v.width).Render(ui.CenterText(title, v.width))
}

func (v *TailView) renderFooter() string {
	bindings := v.keys.footer()
	headers := make([]string, len(bindings))
	shortcuts := make([]string, len(bindings))
	for i, b := range bindings {
		headers[i] = b.Help().Desc
		shortcuts[i] = b.Help().Key
	}
	keyTable := ui.CreateLipglossTable(headers, [][]string{shortcuts})

	statusStyle := ui.SuccessStyle
	if v.status.IsError {
		statusStyle = ui.ErrorStyle
	}
	status := ui.StatusBarStyle.Width(v.width).MaxHeight(1).Render(statusStyle.Render(v.status.Message))

	commandBar := ui.CommandBarStyle.Width(v.width).Render(v.input.View())
	if !v.commandMode {
		commandBar = ui.CommandBarStyle.Width(v.width).Render(ui.DescriptionStyle.Render(": command"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, keyTable, status, commandBar)
}

func (v *TailView) View() string {
	if v.width == 0 {
		return "starting..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.panels.View(),
		v.renderFooter(),
	)
}
