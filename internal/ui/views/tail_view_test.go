package views

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "remotail/internal/error"
	"remotail/internal/tail"
	"remotail/internal/ui/components"
	"remotail/internal/ui/messages"
)

type fakeDispatcher struct {
	queue      *tail.Queue
	panels     *components.PanelSet
	dispatched int
}

func (f *fakeDispatcher) Queue() *tail.Queue { return f.queue }

func (f *fakeDispatcher) Dispatch() error {
	msg, err := f.queue.GetNowait()
	if err != nil {
		return err
	}
	f.dispatched++
	f.panels.Append(msg)
	return nil
}

type fakeExecutor struct {
	lines  []string
	status string
	err    error
}

func (f *fakeExecutor) Execute(line string) (string, error) {
	f.lines = append(f.lines, line)
	return f.status, f.err
}

func newView(t *testing.T, aliases ...string) (*TailView, *fakeDispatcher, *fakeExecutor) {
	t.Helper()
	panels := components.NewPanelSet(0)
	for _, a := range aliases {
		require.NoError(t, panels.Insert(a))
	}
	d := &fakeDispatcher{queue: tail.NewQueue(), panels: panels}
	e := &fakeExecutor{}
	v := NewTailView(d, e, panels, "v1.0.0", nil)
	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return v, d, e
}

func press(v *TailView, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = v.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTailView_CommandLine(t *testing.T) {
	v, _, e := newView(t)
	e.status = "disabled web"

	press(v, runes(":"))
	require.True(t, v.commandMode)

	press(v, runes("disable web"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, v.commandMode)
	assert.Equal(t, []string{"disable web"}, e.lines)
	assert.Equal(t, Status{Message: "disabled web"}, v.status)
}

func TestTailView_CommandErrorShownInStatus(t *testing.T) {
	v, _, e := newView(t)
	e.err = apperror.Newf(apperror.CommandError, "command not found: restart")

	press(v, runes(":"), runes("restart"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, Status{Message: "command not found: restart", IsError: true}, v.status)
}

func TestTailView_EscapeCancelsCommand(t *testing.T) {
	v, _, e := newView(t)

	press(v, runes(":"), runes("enable x"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.commandMode)
	assert.Empty(t, e.lines)
}

func TestTailView_Quit(t *testing.T) {
	v, _, _ := newView(t)
	assert.True(t, isQuit(press(v, runes("q"))))

	// q is text while typing a command
	v, _, _ = newView(t)
	assert.False(t, isQuit(press(v, runes(":"), runes("q"))))
	assert.True(t, v.commandMode)

	assert.True(t, isQuit(press(v, tea.KeyMsg{Type: tea.KeyCtrlC})))
}

func TestTailView_FocusKeys(t *testing.T) {
	v, _, _ := newView(t, "a", "b", "c")
	panels := v.panels

	press(v, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "b", panels.Focused().Alias())
	press(v, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "c", panels.Focused().Alias())
	press(v, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "a", panels.Focused().Alias())
	press(v, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "c", panels.Focused().Alias())
}

func TestTailView_QueueReadyDispatchesOne(t *testing.T) {
	v, d, _ := newView(t, "web")
	d.queue.Put(tail.DataMessage("web", []byte("line1\n")))
	d.queue.Put(tail.NotifyMessage("web", tail.StateEOF, "EOF"))

	_, cmd := v.Update(messages.QueueReadyMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, d.dispatched)

	// the re-armed wait fires again for the second message
	msg := cmd()
	assert.Equal(t, messages.QueueReadyMsg{}, msg)
	v.Update(msg)
	assert.Equal(t, 2, d.dispatched)

	p, _ := v.panels.Panel("web")
	assert.Equal(t, []string{"line1", "EOF"}, p.Lines())
	assert.Contains(t, v.View(), "line1")
}

func TestTailView_QueueClosed(t *testing.T) {
	v, d, _ := newView(t)
	d.queue.Close()

	msg := v.Init()()
	assert.Equal(t, messages.QueueClosedMsg{}, msg)
	_, cmd := v.Update(msg)
	assert.Nil(t, cmd)
}

func TestTailView_View(t *testing.T) {
	v, _, _ := newView(t, "web")
	v.SetStatus("skipped 1 target", true)

	out := v.View()
	assert.Contains(t, out, "Remotail v1.0.0")
	assert.Contains(t, out, "web")
	assert.Contains(t, out, "next panel")
	assert.Contains(t, out, "skipped 1 target")
}

func TestTailView_ExecutorErrorsDoNotQuit(t *testing.T) {
	v, _, e := newView(t)
	e.err = errors.New("boom")
	cmd := press(v, runes(":"), runes("enable x"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
}
