// internal/tail/worker.go
package tail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperror "remotail/internal/error"
	"remotail/internal/models"
	"remotail/internal/ssh"
)

// DefaultChunkSize is the largest read a worker issues on its channel.
const DefaultChunkSize = 1024

// errCancelled is the reason recorded when a worker is stopped from outside.
var errCancelled = errors.New("cancelled")

// Worker follows one target in its own goroutine and reports everything it
// sees to a Queue. Failures stay inside the worker and become NOTIFY messages.
type Worker struct {
	target    models.Target
	opener    ssh.Opener
	queue     *Queue
	chunkSize int
	log       *zap.Logger
	runID     string

	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once

	mu    sync.RWMutex
	state State
	err   error
}

func NewWorker(target models.Target, opener ssh.Opener, queue *Queue, chunkSize int, log *zap.Logger) *Worker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	return &Worker{
		target:    target,
		opener:    opener,
		queue:     queue,
		chunkSize: chunkSize,
		log:       log.With(zap.String("alias", target.Alias), zap.String("run", runID)),
		runID:     runID,
		cancel:    func() {},
		done:      make(chan struct{}),
		state:     StateConnecting,
	}
}

func (w *Worker) Alias() string         { return w.target.Alias }
func (w *Worker) Target() models.Target { return w.target }
func (w *Worker) RunID() string         { return w.runID }

// Start launches the worker. Calls after the first are ignored.
func (w *Worker) Start(parent context.Context) {
	w.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		w.cancel = cancel
		go w.run(ctx)
	})
}

// Stop requests cancellation. It does not wait; use Done for that.
func (w *Worker) Stop() {
	w.cancel()
}

// Done is closed once the worker has released its channel and exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Err returns why the worker stopped, or nil while it is still running.
func (w *Worker) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// put queues msg attributed to this run.
func (w *Worker) put(msg Message) {
	w.queue.Put(msg.WithRun(w.runID))
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("worker panic recovered",
				zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			w.finish(StateErrored, fmt.Errorf("worker crashed: %v", r))
		}
	}()
	defer w.cancel()

	w.log.Info("connecting", zap.String("target", w.target.String()))

	ch, err := w.opener.Open(ctx, w.target)
	if err != nil {
		if ctx.Err() != nil {
			w.finish(StateCancelled, errCancelled)
			return
		}
		w.finish(StateErrored, err)
		return
	}
	defer func() {
		if err := ch.Close(); err != nil {
			w.log.Debug("channel close", zap.Error(err))
		}
	}()

	// Cancellation closes the channel, which unblocks a pending Read.
	stop := context.AfterFunc(ctx, func() { ch.Close() })
	defer stop()

	if err := ch.Run(w.target.FollowCommand()); err != nil {
		if ctx.Err() != nil {
			w.finish(StateCancelled, errCancelled)
			return
		}
		w.finish(StateErrored, err)
		return
	}

	w.setState(StateStreaming)
	w.put(NotifyMessage(w.target.Alias, StateStreaming, "connected"))
	w.log.Info("streaming", zap.String("command", w.target.FollowCommand()))

	w.stream(ctx, ch)
}

// stream reads chunks until the stream ends, fails, or ctx is cancelled.
func (w *Worker) stream(ctx context.Context, ch ssh.Channel) {
	buf := make([]byte, w.chunkSize)
	for {
		n, err := ch.Read(buf)
		if ctx.Err() != nil {
			w.finish(StateCancelled, errCancelled)
			return
		}
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			w.put(DataMessage(w.target.Alias, chunk))
			if err == nil {
				continue
			}
		}

		var netErr net.Error
		switch {
		case err == nil, errors.Is(err, io.EOF):
			// A zero-length read means the stream ended.
			if ch.ExitStatusReady() {
				w.finish(StateRemoteExited, apperror.Newf(apperror.RemoteExitedError,
					"remote command exited with status %d", ch.ExitStatus()))
			} else {
				w.finish(StateEOF, apperror.Newf(apperror.EOFError, "EOF"))
			}
			return
		case errors.As(err, &netErr) && netErr.Timeout():
			transient := apperror.New(apperror.TransientReadError, "read timeout", err)
			w.log.Warn("transient read error", zap.Error(transient))
			w.put(NotifyMessage(w.target.Alias, StateStreaming, transient.Error()))
		default:
			w.finish(StateErrored, fmt.Errorf("read failed: %w", err))
			return
		}
	}
}

// finish records a terminal state with its reason and reports it once.
func (w *Worker) finish(state State, reason error) {
	w.mu.Lock()
	if w.state.Terminal() {
		w.mu.Unlock()
		return
	}
	w.state = state
	w.err = reason
	w.mu.Unlock()

	if state == StateErrored {
		w.log.Error("worker stopped", zap.Stringer("state", state), zap.Error(reason))
	} else {
		w.log.Info("worker stopped", zap.Stringer("state", state), zap.Error(reason))
	}
	w.put(NotifyMessage(w.target.Alias, state, reason.Error()))
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = state
}
