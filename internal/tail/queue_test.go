package tail

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "remotail/internal/error"
)

func TestQueue_GetNowaitEmpty(t *testing.T) {
	q := NewQueue()

	_, err := q.GetNowait()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrEmpty)
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Put(DataMessage("a", []byte(fmt.Sprint(i))))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		msg, err := q.GetNowait()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), string(msg.Data))
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ReadyIsLevelTriggered(t *testing.T) {
	q := NewQueue()
	q.Put(NotifyMessage("a", StateStreaming, "one"))
	q.Put(NotifyMessage("a", StateEOF, "two"))

	// one message per readiness signal, until drained
	for _, want := range []string{"one", "two"} {
		select {
		case <-q.Ready():
		case <-time.After(time.Second):
			t.Fatal("queue not ready")
		}
		msg, err := q.GetNowait()
		require.NoError(t, err)
		assert.Equal(t, want, msg.Text)
	}

	select {
	case <-q.Ready():
		t.Fatal("ready with nothing pending")
	default:
	}
}

func TestQueue_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	q := NewQueue()
	producers := []string{"a", "b", "c"}
	const perProducer = 200

	var wg sync.WaitGroup
	for _, alias := range producers {
		wg.Add(1)
		go func(alias string) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Put(DataMessage(alias, []byte(fmt.Sprint(i))))
			}
		}(alias)
	}
	wg.Wait()

	next := map[string]int{}
	for q.Len() > 0 {
		msg, err := q.GetNowait()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(next[msg.Alias]), string(msg.Data))
		next[msg.Alias]++
	}
	for _, alias := range producers {
		assert.Equal(t, perProducer, next[alias])
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue()
	q.Put(DataMessage("a", []byte("kept")))
	q.Close()
	q.Close()

	select {
	case <-q.Done():
	default:
		t.Fatal("done not closed")
	}

	q.Put(DataMessage("a", []byte("dropped")))
	assert.Equal(t, 1, q.Len())

	msg, err := q.GetNowait()
	require.NoError(t, err)
	assert.Equal(t, "kept", string(msg.Data))
}

func TestState(t *testing.T) {
	assert.False(t, StateConnecting.Terminal())
	assert.False(t, StateStreaming.Terminal())
	for _, s := range []State{StateEOF, StateRemoteExited, StateErrored, StateCancelled} {
		assert.True(t, s.Terminal(), s.String())
	}
	assert.Equal(t, "exited", StateRemoteExited.String())
	assert.Equal(t, "unknown", State(42).String())
}
