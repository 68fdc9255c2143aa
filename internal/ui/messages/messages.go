package messages

// QueueReadyMsg is delivered once per readiness signal of the message queue.
type QueueReadyMsg struct{}

// QueueClosedMsg is delivered when the message queue has been closed.
type QueueClosedMsg struct{}
