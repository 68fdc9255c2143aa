// internal/tail/message.go
package tail

// Kind tags a Message as streamed content or a lifecycle notice.
type Kind int

const (
	KindData Kind = iota
	KindNotify
)

func (k Kind) String() string {
	if k == KindNotify {
		return "notify"
	}
	return "data"
}

// State is a worker lifecycle state. Every state after StateStreaming is terminal.
type State int

const (
	StateConnecting State = iota
	StateStreaming
	StateEOF
	StateRemoteExited
	StateErrored
	StateCancelled
)

var stateNames = map[State]string{
	StateConnecting:   "connecting",
	StateStreaming:    "streaming",
	StateEOF:          "eof",
	StateRemoteExited: "exited",
	StateErrored:      "error",
	StateCancelled:    "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s > StateStreaming
}

// Message is one event produced by a worker. DATA messages carry raw bytes in
// Data; NOTIFY messages carry Text and the State the worker reports. RunID
// names the worker run that produced the message, so messages left over from
// a previous run of the same alias can be told apart.
type Message struct {
	Alias string
	RunID string
	Kind  Kind
	Data  []byte
	Text  string
	State State
}

// DataMessage wraps a chunk read from the remote stream.
func DataMessage(alias string, data []byte) Message {
	return Message{Alias: alias, Kind: KindData, Data: data, State: StateStreaming}
}

// NotifyMessage builds a lifecycle notice.
func NotifyMessage(alias string, state State, text string) Message {
	return Message{Alias: alias, Kind: KindNotify, Text: text, State: state}
}

// WithRun returns a copy of m attributed to runID.
func (m Message) WithRun(runID string) Message {
	m.RunID = runID
	return m
}

// String renders the payload as display text.
func (m Message) String() string {
	if m.Kind == KindNotify {
		return m.Text
	}
	return string(m.Data)
}
