// internal/error/error.go

package error

import (
	"errors"
	"fmt"
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

type ErrorType int

const (
	MalformedTargetError ErrorType = iota
	ConnectionError
	TransientReadError
	EOFError
	RemoteExitedError
	DuplicateAliasError
	UnknownAliasError
	EmptyError
	ConfigError
	CryptoError
	CommandError
)

// Sentinels for errors.Is. An *AppError matches the sentinel of its Type.
var (
	ErrMalformedTarget = errors.New("malformed target")
	ErrConnection      = errors.New("connection failed")
	ErrTransientRead   = errors.New("transient read error")
	ErrEOF             = errors.New("EOF")
	ErrRemoteExited    = errors.New("remote command exited")
	ErrDuplicateAlias  = errors.New("alias already active")
	ErrUnknownAlias    = errors.New("alias not active")
	ErrEmpty           = errors.New("no message pending")
	ErrConfig          = errors.New("configuration error")
	ErrCrypto          = errors.New("crypto error")
	ErrCommand         = errors.New("command not found")
)

var sentinels = map[ErrorType]error{
	MalformedTargetError: ErrMalformedTarget,
	ConnectionError:      ErrConnection,
	TransientReadError:   ErrTransientRead,
	EOFError:             ErrEOF,
	RemoteExitedError:    ErrRemoteExited,
	DuplicateAliasError:  ErrDuplicateAlias,
	UnknownAliasError:    ErrUnknownAlias,
	EmptyError:           ErrEmpty,
	ConfigError:          ErrConfig,
	CryptoError:          ErrCrypto,
	CommandError:         ErrCommand,
}

func (t ErrorType) String() string {
	if s, ok := sentinels[t]; ok {
		return s.Error()
	}
	return "unknown error"
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's type.
func (e *AppError) Is(target error) bool {
	s, ok := sentinels[e.Type]
	return ok && s == target
}

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Newf builds an AppError without a cause.
func Newf(errType ErrorType, format string, args ...interface{}) *AppError {
	return New(errType, fmt.Sprintf(format, args...), nil)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return 0, false
}
