// internal/ssh/client.go
package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	apperror "remotail/internal/error"
	"remotail/internal/models"
	"remotail/internal/utils"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultKeepAlive      = 30 * time.Second
	DefaultKnownHosts     = "~/.ssh/known_hosts"
)

// DefaultIdentityFiles are tried in order when no identity files are configured.
var DefaultIdentityFiles = []string{
	"~/.ssh/id_ed25519",
	"~/.ssh/id_ecdsa",
	"~/.ssh/id_rsa",
}

// Options controls how connections are authenticated and kept alive.
type Options struct {
	KnownHostsPath        string
	StrictHostKeyChecking bool
	IdentityFiles         []string
	UseAgent              bool
	ConnectTimeout        time.Duration
	KeepAlive             time.Duration
	VerifyPath            bool
}

// DefaultOptions accepts unknown hosts with a warning and tries the agent and
// key files before the password.
func DefaultOptions() Options {
	return Options{
		KnownHostsPath: DefaultKnownHosts,
		IdentityFiles:  DefaultIdentityFiles,
		UseAgent:       true,
		ConnectTimeout: DefaultConnectTimeout,
		KeepAlive:      DefaultKeepAlive,
		VerifyPath:     true,
	}
}

// Client opens follow channels over SSH. It is safe for concurrent use; every
// Open dials its own connection.
type Client struct {
	opts Options
	log  *zap.Logger
}

func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{opts: opts, log: log}
}

// Open dials target, optionally verifies the remote path and prepares a session.
// Every failure is returned as a ConnectionError. Cancelling ctx abandons the
// attempt at any stage.
func (c *Client) Open(ctx context.Context, target models.Target) (Channel, error) {
	client, err := c.dial(ctx, target)
	if err != nil {
		return nil, err
	}

	// Closing the connection unblocks a stalled path check or session setup.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	ch, err := c.prepare(client, target)
	if !stop() {
		if ch != nil {
			ch.Close()
		}
		return nil, apperror.New(apperror.ConnectionError,
			fmt.Sprintf("connection to %s abandoned", target.Addr()), ctx.Err())
	}
	if err != nil {
		client.Close()
		return nil, err
	}
	return ch, nil
}

// prepare runs the path check and opens the session on a connected client.
// The client is left open on failure.
func (c *Client) prepare(client *ssh.Client, target models.Target) (*sshChannel, error) {
	if c.opts.VerifyPath {
		if err := verifyRemotePath(client, target.RemotePath); err != nil {
			if !errors.Is(err, errNoSFTP) {
				return nil, apperror.New(apperror.ConnectionError,
					fmt.Sprintf("cannot follow %s", target.RemotePath), err)
			}
			c.log.Debug("sftp unavailable, skipping path check",
				zap.String("alias", target.Alias), zap.Error(err))
		}
	}

	ch, err := newChannel(client, c.opts.KeepAlive, c.log.With(zap.String("alias", target.Alias)))
	if err != nil {
		return nil, apperror.New(apperror.ConnectionError, "failed to create session", err)
	}
	return ch, nil
}

// dial connects and authenticates. The handshake is abandoned when ctx is done
// or the connect timeout passes.
func (c *Client) dial(ctx context.Context, target models.Target) (*ssh.Client, error) {
	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return nil, apperror.New(apperror.ConnectionError, "host key verification unavailable", err)
	}

	auth, closeAuth := c.authMethods(target)
	defer closeAuth()

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.opts.ConnectTimeout,
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	addr := target.Addr()
	dialer := net.Dialer{Timeout: c.opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, apperror.New(apperror.ConnectionError, fmt.Sprintf("failed to dial %s", addr), err)
	}

	type result struct {
		client *ssh.Client
		err    error
	}
	resultChan := make(chan result, 1)

	go func() {
		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
		if err != nil {
			resultChan <- result{err: err}
			return
		}
		resultChan <- result{client: ssh.NewClient(sshConn, chans, reqs)}
	}()

	select {
	case res := <-resultChan:
		if res.err != nil {
			conn.Close()
			return nil, apperror.New(apperror.ConnectionError,
				fmt.Sprintf("ssh handshake with %s@%s failed", target.User, addr), res.err)
		}
		c.log.Info("connected", zap.String("alias", target.Alias), zap.String("addr", addr))
		return res.client, nil
	case <-ctx.Done():
		// Closing the socket unblocks the handshake goroutine.
		conn.Close()
		return nil, apperror.New(apperror.ConnectionError,
			fmt.Sprintf("connection to %s abandoned", addr), ctx.Err())
	}
}

// hostKeyCallback verifies against known_hosts. Without strict checking an
// unknown host (or a missing known_hosts file) is accepted with a warning; a
// changed key is always rejected.
func (c *Client) hostKeyCallback() (ssh.HostKeyCallback, error) {
	path := utils.ExpandHome(c.opts.KnownHostsPath)
	if path == "" {
		path = utils.ExpandHome(DefaultKnownHosts)
	}

	known, err := knownhosts.New(path)
	if err != nil {
		if c.opts.StrictHostKeyChecking {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		c.log.Warn("known_hosts unavailable, accepting host keys", zap.String("path", path), zap.Error(err))
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			c.log.Warn("unverified host key accepted",
				zap.String("host", hostname), zap.String("fingerprint", ssh.FingerprintSHA256(key)))
			return nil
		}, nil
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := known(hostname, remote, key)
		if err == nil {
			return nil
		}
		var keyErr *knownhosts.KeyError
		if errors.As(err, &keyErr) && len(keyErr.Want) == 0 && !c.opts.StrictHostKeyChecking {
			c.log.Warn("unknown host key accepted",
				zap.String("host", hostname), zap.String("fingerprint", ssh.FingerprintSHA256(key)))
			return nil
		}
		return err
	}, nil
}

// authMethods collects agent, key file and password auth for target. The
// returned func releases the agent connection once the handshake is over.
func (c *Client) authMethods(target models.Target) ([]ssh.AuthMethod, func()) {
	var methods []ssh.AuthMethod
	closeFn := func() {}

	if c.opts.UseAgent {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if conn, err := net.Dial("unix", sock); err == nil {
				methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
				closeFn = func() { conn.Close() }
			} else {
				c.log.Debug("ssh agent unreachable", zap.Error(err))
			}
		}
	}

	if signers := c.loadSigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	if target.Password != "" {
		password := target.Password
		methods = append(methods,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	return methods, closeFn
}

func (c *Client) loadSigners() []ssh.Signer {
	files := c.opts.IdentityFiles
	if files == nil {
		files = DefaultIdentityFiles
	}

	var signers []ssh.Signer
	for _, file := range files {
		path := utils.ExpandHome(file)
		key, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			// Passphrase protected keys are left to the agent.
			c.log.Debug("skipping identity file", zap.String("path", path), zap.Error(err))
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}
