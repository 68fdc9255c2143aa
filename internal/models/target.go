// internal/models/target.go

package models

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"os/user"
	"strconv"
	"strings"

	apperror "remotail/internal/error"
	"remotail/internal/utils"
)

const (
	DefaultPort     = 22
	aliasSeparator  = "://"
	followCommandFn = "tail -f %s"
)

// Target describes one remote file to follow. It is immutable once parsed.
type Target struct {
	Alias      string
	Host       string
	Port       int
	User       string
	Password   string
	RemotePath string
}

// currentUser is swapped in tests.
var currentUser = func() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// ParseTarget parses alias://[user[:password]@]host[:port]/remote/path.
func ParseTarget(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)

	idx := strings.Index(raw, aliasSeparator)
	if idx < 0 {
		return Target{}, malformed(raw, "missing alias:// prefix", nil)
	}
	alias := raw[:idx]
	if alias == "" {
		return Target{}, malformed(raw, "alias is empty", nil)
	}
	if strings.ContainsAny(alias, " \t/@:") {
		return Target{}, malformed(raw, "alias contains invalid characters", nil)
	}

	u, err := url.Parse("ssh" + raw[idx:])
	if err != nil {
		return Target{}, malformed(raw, "cannot parse locator", err)
	}

	host := u.Hostname()
	if host == "" {
		return Target{}, malformed(raw, "host is empty", nil)
	}

	port := DefaultPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Target{}, malformed(raw, fmt.Sprintf("invalid port %q", p), nil)
		}
	}

	remotePath := utils.CleanRemotePath(u.Path)
	if remotePath == "" || remotePath == "/" {
		return Target{}, malformed(raw, "remote path is empty", nil)
	}

	t := Target{
		Alias:      alias,
		Host:       host,
		Port:       port,
		RemotePath: remotePath,
	}
	if u.User != nil {
		t.User = u.User.Username()
		t.Password, _ = u.User.Password()
	}
	if t.User == "" {
		t.User = currentUser()
	}
	return t, nil
}

func malformed(raw, reason string, err error) error {
	return apperror.New(apperror.MalformedTargetError,
		fmt.Sprintf("malformed target %q: %s", redact(raw), reason), err)
}

// redact hides a password embedded in a raw target string.
func redact(raw string) string {
	idx := strings.Index(raw, aliasSeparator)
	if idx < 0 {
		return raw
	}
	rest := raw[idx+len(aliasSeparator):]
	at := strings.Index(rest, "@")
	if at < 0 {
		return raw
	}
	creds := rest[:at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return raw[:idx+len(aliasSeparator)] + creds[:colon] + ":***" + rest[at:]
	}
	return raw
}

// Addr returns host:port suitable for dialing.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// FollowCommand is the remote command that streams the file as it grows.
func (t Target) FollowCommand() string {
	return fmt.Sprintf(followCommandFn, shellQuote(t.RemotePath))
}

// WithPassword returns a copy of t carrying password.
func (t Target) WithPassword(password string) Target {
	t.Password = password
	return t
}

// String renders the target without its password.
func (t Target) String() string {
	return fmt.Sprintf("%s://%s@%s%s", t.Alias, t.User, t.Addr(), t.RemotePath)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
