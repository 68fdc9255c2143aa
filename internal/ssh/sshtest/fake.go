// Package sshtest provides in-memory channels and openers for tests.
package sshtest

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"remotail/internal/models"
	"remotail/internal/ssh"
)

// Step is one scripted Read result. An empty, non-nil Data with no Err is a
// zero-length read.
type Step struct {
	Data []byte
	Err  error
}

// Channel replays Steps, then blocks like a live tail until closed.
type Channel struct {
	mu         sync.Mutex
	steps      []Step
	command    string
	runErr     error
	exitReady  bool
	exitStatus int

	closed    chan struct{}
	closeOnce sync.Once
}

func NewChannel(steps ...Step) *Channel {
	return &Channel{steps: steps, exitStatus: -1, closed: make(chan struct{})}
}

// Lines returns a Channel that yields each line as its own chunk and then a
// zero-length read.
func Lines(lines ...string) *Channel {
	steps := make([]Step, 0, len(lines)+1)
	for _, line := range lines {
		steps = append(steps, Step{Data: []byte(line)})
	}
	return NewChannel(append(steps, Step{Data: []byte{}})...)
}

// WithExit makes the channel report that the remote command exited with status.
func (c *Channel) WithExit(status int) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitReady = true
	c.exitStatus = status
	return c
}

// FailRun makes Run return err.
func (c *Channel) FailRun(err error) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runErr = err
	return c
}

func (c *Channel) Run(command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.command = command
	return c.runErr
}

func (c *Channel) Read(p []byte) (int, error) {
	c.mu.Lock()
	if len(c.steps) > 0 {
		step := c.steps[0]
		c.steps = c.steps[1:]
		c.mu.Unlock()
		return copy(p, step.Data), step.Err
	}
	c.mu.Unlock()

	<-c.closed
	return 0, net.ErrClosed
}

func (c *Channel) ExitStatusReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitReady
}

func (c *Channel) ExitStatus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitStatus
}

func (c *Channel) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Command returns what Run was called with.
func (c *Channel) Command() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command
}

func (c *Channel) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// TimeoutError is a net.Error reporting a timeout.
type TimeoutError struct{}

func (TimeoutError) Error() string   { return "i/o timeout" }
func (TimeoutError) Timeout() bool   { return true }
func (TimeoutError) Temporary() bool { return true }

// Opener hands out scripted Channels by alias. Aliases without a script get a
// Channel that stays silent until closed.
type Opener struct {
	mu       sync.Mutex
	channels map[string]*Channel
	errors   map[string]error
	opened   map[string][]*Channel
	fetched  map[string]string
	panicOn  map[string]bool
}

func NewOpener() *Opener {
	return &Opener{
		channels: make(map[string]*Channel),
		errors:   make(map[string]error),
		opened:   make(map[string][]*Channel),
		fetched:  make(map[string]string),
		panicOn:  make(map[string]bool),
	}
}

// Script sets the Channel returned for the next Open of alias.
func (o *Opener) Script(alias string, ch *Channel) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.channels[alias] = ch
	return o
}

// Fail makes Open of alias return err.
func (o *Opener) Fail(alias string, err error) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors[alias] = err
	return o
}

// Panic makes Open of alias panic.
func (o *Opener) Panic(alias string) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panicOn[alias] = true
	return o
}

func (o *Opener) Open(ctx context.Context, target models.Target) (ssh.Channel, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.panicOn[target.Alias] {
		panic(fmt.Sprintf("open %s", target.Alias))
	}
	if err := o.errors[target.Alias]; err != nil {
		o.opened[target.Alias] = append(o.opened[target.Alias], nil)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch, ok := o.channels[target.Alias]
	if ok {
		delete(o.channels, target.Alias)
	} else {
		ch = NewChannel()
	}
	o.opened[target.Alias] = append(o.opened[target.Alias], ch)
	return ch, nil
}

// Opens counts Open calls for alias.
func (o *Opener) Opens(alias string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened[alias])
}

// Last returns the most recent Channel opened for alias, or nil.
func (o *Opener) Last(alias string) *Channel {
	o.mu.Lock()
	defer o.mu.Unlock()
	chans := o.opened[alias]
	if len(chans) == 0 {
		return nil
	}
	return chans[len(chans)-1]
}

// Fetch writes a placeholder file and records the request.
func (o *Opener) Fetch(ctx context.Context, target models.Target, localPath string) (int64, error) {
	o.mu.Lock()
	err := o.errors[target.Alias]
	o.fetched[target.Alias] = localPath
	o.mu.Unlock()

	if err != nil {
		return 0, err
	}
	content := []byte("snapshot of " + target.RemotePath + "\n")
	if err := os.WriteFile(localPath, content, 0644); err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

// Fetched returns the local path of the last Fetch for alias.
func (o *Opener) Fetched(alias string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	path, ok := o.fetched[alias]
	return path, ok
}
