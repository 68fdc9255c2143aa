// internal/ssh/channel.go
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"remotail/internal/models"
)

// exitGrace is how long Read waits, after stdout ends, for the exit status to arrive.
const exitGrace = 250 * time.Millisecond

// Channel is one remote command session. Close releases the session and the
// connection underneath it and may be called from any goroutine, any number of times.
type Channel interface {
	// Run starts command on the remote side.
	Run(command string) error
	// Read blocks until output is available. io.EOF marks the end of output.
	Read(p []byte) (int, error)
	// ExitStatusReady reports whether the remote command exited with a known status.
	ExitStatusReady() bool
	// ExitStatus is the remote exit code, -1 when unknown. Valid once ExitStatusReady.
	ExitStatus() int
	Close() error
}

// Opener opens a Channel for a target. Implementations convert every failure
// into an error value; they never panic past this boundary.
type Opener interface {
	Open(ctx context.Context, target models.Target) (Channel, error)
}

// Fetcher copies a target's remote file to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, target models.Target, localPath string) (int64, error)
}

type sshChannel struct {
	client    *ssh.Client
	session   *ssh.Session
	stdout    io.Reader
	keepAlive time.Duration
	log       *zap.Logger

	exited    chan struct{}
	stopChan  chan struct{}
	closeOnce sync.Once

	mu         sync.RWMutex
	exitKnown  bool
	exitStatus int
	lastError  error
}

func newChannel(client *ssh.Client, keepAlive time.Duration, log *zap.Logger) (*sshChannel, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, err
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to attach stdout: %w", err)
	}

	return &sshChannel{
		client:     client,
		session:    session,
		stdout:     stdout,
		keepAlive:  keepAlive,
		log:        log,
		exited:     make(chan struct{}),
		exitStatus: -1,
		stopChan:   make(chan struct{}),
	}, nil
}

func (c *sshChannel) Run(command string) error {
	if err := c.session.Start(command); err != nil {
		c.setError(err)
		return fmt.Errorf("failed to start %q: %w", command, err)
	}

	go c.wait()
	if c.keepAlive > 0 {
		go c.keepAliveLoop()
	}
	return nil
}

// wait records the exit status once the session ends. A session torn down
// without an exit-status leaves the status unknown.
func (c *sshChannel) wait() {
	err := c.session.Wait()

	known, status := false, -1
	var exitErr *ssh.ExitError
	switch {
	case err == nil:
		known, status = true, 0
	case errors.As(err, &exitErr):
		known, status = true, exitErr.ExitStatus()
	default:
		c.log.Debug("session ended without exit status", zap.Error(err))
	}

	c.mu.Lock()
	c.exitKnown = known
	c.exitStatus = status
	c.mu.Unlock()
	close(c.exited)
}

func (c *sshChannel) Read(p []byte) (int, error) {
	n, err := c.stdout.Read(p)
	if err == nil {
		return n, nil
	}

	if lastErr := c.GetLastError(); lastErr != nil {
		return n, lastErr
	}
	if errors.Is(err, io.EOF) {
		// Exit status usually follows the end of output closely.
		select {
		case <-c.exited:
		case <-c.stopChan:
		case <-time.After(exitGrace):
		}
		if lastErr := c.GetLastError(); lastErr != nil {
			return n, lastErr
		}
	}
	return n, err
}

func (c *sshChannel) ExitStatusReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exitKnown
}

func (c *sshChannel) ExitStatus() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exitStatus
}

// keepAliveLoop wysyła pakiety keepalive
func (c *sshChannel) keepAliveLoop() {
	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.sendKeepAlive(); err != nil {
				c.setError(fmt.Errorf("keepalive failed: %w", err))
				c.log.Warn("keepalive failed, closing connection", zap.Error(err))
				// Closing the client unblocks a pending Read.
				c.client.Close()
				return
			}
		case <-c.exited:
			return
		case <-c.stopChan:
			return
		}
	}
}

// sendKeepAlive fails when the server does not answer within one keepalive
// interval. A refused request still counts as an answer.
func (c *sshChannel) sendKeepAlive() error {
	reply := make(chan error, 1)
	go func() {
		_, _, err := c.client.SendRequest("keepalive@openssh.com", true, nil)
		reply <- err
	}()

	select {
	case err := <-reply:
		return err
	case <-time.After(c.keepAlive):
		return fmt.Errorf("no reply within %s", c.keepAlive)
	case <-c.stopChan:
		return nil
	}
}

func (c *sshChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)

		var errs []string
		if cerr := c.session.Close(); cerr != nil && !errors.Is(cerr, io.EOF) {
			errs = append(errs, fmt.Sprintf("session close error: %v", cerr))
		}
		if cerr := c.client.Close(); cerr != nil && !isClosedErr(cerr) {
			errs = append(errs, fmt.Sprintf("client close error: %v", cerr))
		}

		if len(errs) > 0 {
			err = fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
		}
	})
	return err
}

func isClosedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "use of closed network connection")
}

func (c *sshChannel) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = err
}

func (c *sshChannel) GetLastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}
