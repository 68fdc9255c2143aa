// internal/tail/queue.go
package tail

import (
	"sync"

	apperror "remotail/internal/error"
)

// Queue is the fan-in channel between workers and the dispatcher: any number
// of producers, one consumer. Put never blocks. Ready fires while at least one
// message is pending, so a consumer takes one message per signal with GetNowait.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	notify chan struct{}
	done   chan struct{}
	closed bool
}

func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Put appends msg. Messages put after Close are dropped.
func (q *Queue) Put(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, msg)
	q.signal()
}

// signal marks the queue readable. Must be called with mu held.
func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Ready delivers a value whenever messages are pending.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}

// Done is closed by Close.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// GetNowait removes and returns the oldest message, or ErrEmpty.
func (q *Queue) GetNowait() (Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Message{}, apperror.New(apperror.EmptyError, "message queue is empty", nil)
	}
	msg := q.items[0]
	q.items[0] = Message{}
	q.items = q.items[1:]

	// Keep the signal level-triggered: a consumer that drains one message per
	// wake-up must be woken again for the rest.
	if len(q.items) > 0 {
		q.signal()
	}
	return msg, nil
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting messages and releases consumers waiting on Done.
// Pending messages can still be taken with GetNowait.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
