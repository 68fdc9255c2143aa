package plain

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "remotail/internal/error"
	"remotail/internal/tail"
)

func TestWriter_PrintsCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Insert("web"))
	require.NoError(t, w.Insert("db"))

	assert.True(t, w.Append(tail.DataMessage("web", []byte("line1\nli"))))
	assert.True(t, w.Append(tail.DataMessage("db", []byte("query\r\n"))))
	assert.True(t, w.Append(tail.DataMessage("web", []byte("ne2\n"))))
	assert.True(t, w.Append(tail.NotifyMessage("web", tail.StateEOF, "EOF")))
	assert.False(t, w.Append(tail.DataMessage("ghost", []byte("x\n"))))

	assert.Equal(t,
		"web | line1\n"+
			"db  | query\n"+
			"web | line2\n"+
			"web | » EOF\n",
		buf.String())
}

func TestWriter_RemoveFlushesPartial(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Insert("web"))
	w.Append(tail.DataMessage("web", []byte("no newline")))
	assert.Empty(t, buf.String())

	require.NoError(t, w.Remove("web"))
	assert.Equal(t, "web | no newline\n", buf.String())
	assert.False(t, w.Has("web"))

	assert.ErrorIs(t, w.Remove("web"), apperror.ErrUnknownAlias)
	require.NoError(t, w.Insert("web"))
	assert.ErrorIs(t, w.Insert("web"), apperror.ErrDuplicateAlias)
}

type fakeController struct {
	queue   *tail.Queue
	writer  *Writer
	workers int
}

func (f *fakeController) Queue() *tail.Queue { return f.queue }
func (f *fakeController) Idle() bool         { return f.workers == 0 }
func (f *fakeController) Dispatch() error {
	msg, err := f.queue.GetNowait()
	if err != nil {
		return err
	}
	f.writer.Append(msg)
	if msg.Kind == tail.KindNotify && msg.State.Terminal() {
		f.workers--
	}
	return nil
}

func TestRun_EndsWhenIdle(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Insert("web"))

	ctrl := &fakeController{queue: tail.NewQueue(), writer: w, workers: 1}
	ctrl.queue.Put(tail.DataMessage("web", []byte("hello\n")))
	ctrl.queue.Put(tail.NotifyMessage("web", tail.StateEOF, "EOF"))

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), ctrl) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, "web | hello\nweb | » EOF\n", buf.String())
}

func TestRun_StopsOnContext(t *testing.T) {
	ctrl := &fakeController{queue: tail.NewQueue(), writer: NewWriter(&bytes.Buffer{}), workers: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Run(ctx, ctrl))
}
