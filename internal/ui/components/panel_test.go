package components

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"remotail/internal/tail"
)

func data(alias, s string) tail.Message {
	return tail.DataMessage(alias, []byte(s))
}

func TestPanel_LineAssembly(t *testing.T) {
	tests := []struct {
		name   string
		chunks []tail.Message
		want   []string
	}{
		{
			name:   "whole lines",
			chunks: []tail.Message{data("w", "a\nb\n")},
			want:   []string{"a", "b"},
		},
		{
			name:   "line split across chunks",
			chunks: []tail.Message{data("w", "hel"), data("w", "lo\nwor"), data("w", "ld\n")},
			want:   []string{"hello", "world"},
		},
		{
			name:   "crlf stripped",
			chunks: []tail.Message{data("w", "a\r\nb\r"), data("w", "\n")},
			want:   []string{"a", "b"},
		},
		{
			name:   "empty lines kept",
			chunks: []tail.Message{data("w", "a\n\nb\n")},
			want:   []string{"a", "", "b"},
		},
		{
			name:   "empty chunk ignored",
			chunks: []tail.Message{data("w", "par"), data("w", ""), data("w", "tial\n")},
			want:   []string{"partial"},
		},
		{
			name: "notify starts a fresh line",
			chunks: []tail.Message{
				data("w", "half"),
				tail.NotifyMessage("w", tail.StateEOF, "EOF"),
				data("w", "next\n"),
			},
			want: []string{"half", "EOF", "next"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPanel("w", 0)
			for _, m := range tt.chunks {
				p.Append(m)
			}
			assert.Equal(t, tt.want, p.Lines())
		})
	}
}

func TestPanel_NotifyUpdatesState(t *testing.T) {
	p := NewPanel("web", 0)
	assert.Equal(t, tail.StateConnecting, p.State())

	p.Append(tail.NotifyMessage("web", tail.StateStreaming, "connected"))
	assert.Equal(t, tail.StateStreaming, p.State())

	p.Append(data("web", "x\n"))
	assert.Equal(t, tail.StateStreaming, p.State())

	p.Append(tail.NotifyMessage("web", tail.StateErrored, "read failed"))
	assert.Equal(t, tail.StateErrored, p.State())
}

func TestPanel_ScrollbackCap(t *testing.T) {
	p := NewPanel("w", 10)
	for i := 0; i < 25; i++ {
		p.Append(data("w", fmt.Sprintf("%d\n", i)))
	}
	lines := p.Lines()
	assert.Len(t, lines, 10)
	assert.Equal(t, "15", lines[0])
	assert.Equal(t, "24", lines[9])
}

func TestPanel_AppendScrollsToNewest(t *testing.T) {
	p := NewPanel("w", 0)
	p.SetSize(40, 8)
	for i := 0; i < 50; i++ {
		p.Append(data("w", fmt.Sprintf("line-%02d\n", i)))
	}

	view := p.View(true)
	assert.Contains(t, view, "line-49")
	assert.NotContains(t, view, "line-00")
	assert.True(t, p.AtBottom())

	// scroll up, then a new line brings the view back down
	p.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.False(t, p.AtBottom())
	p.Append(data("w", "line-50\n"))
	assert.True(t, p.AtBottom())
	assert.Contains(t, p.View(false), "line-50")
}

func TestPanel_ViewShowsAliasAndState(t *testing.T) {
	p := NewPanel("web", 0)
	p.SetSize(30, 6)
	p.Append(tail.NotifyMessage("web", tail.StateEOF, "EOF"))

	view := p.View(false)
	assert.Contains(t, view, "web")
	assert.Contains(t, view, "[eof]")
	assert.Contains(t, view, "EOF")
	assert.Len(t, strings.Split(view, "\n"), 6)
}
