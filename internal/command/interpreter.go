// Package command parses the runtime command line and applies it to the controller.
package command

import (
	"fmt"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
	"go.uber.org/zap"

	apperror "remotail/internal/error"
)

// Controller is the part of the controller the interpreter drives.
type Controller interface {
	Enable(raw string) (string, error)
	Disable(alias string) error
	Fetch(alias, localPath string) error
}

type handler struct {
	usage string
	args  int
	run   func(i *Interpreter, args []string) (string, error)
}

var handlers = map[string]handler{
	"enable": {
		usage: "enable <alias://[user[:password]@]host[:port]/path>",
		args:  1,
		run: func(i *Interpreter, args []string) (string, error) {
			alias, err := i.ctrl.Enable(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("enabled %s", alias), nil
		},
	},
	"disable": {
		usage: "disable <alias>",
		args:  1,
		run: func(i *Interpreter, args []string) (string, error) {
			if err := i.ctrl.Disable(args[0]); err != nil {
				return "", err
			}
			return fmt.Sprintf("disabled %s", args[0]), nil
		},
	},
	"fetch": {
		usage: "fetch <alias> <local-path>",
		args:  2,
		run: func(i *Interpreter, args []string) (string, error) {
			if err := i.ctrl.Fetch(args[0], args[1]); err != nil {
				return "", err
			}
			return fmt.Sprintf("fetching %s to %s", args[0], args[1]), nil
		},
	},
	// help is answered by the interpreter itself
	"help": {usage: "help"},
}

var order = []string{"enable", "disable", "fetch", "help"}

// Help lists the available commands on one line.
func Help() string {
	usages := make([]string, len(order))
	for n, name := range order {
		usages[n] = handlers[name].usage
	}
	return strings.Join(usages, " | ")
}

// Interpreter executes one command line at a time against a Controller.
type Interpreter struct {
	ctrl Controller
	log  *zap.Logger
}

func New(ctrl Controller, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{ctrl: ctrl, log: log}
}

// Execute runs line and returns a status text for the operator. Errors are
// logged here; the caller only has to show them.
func (i *Interpreter) Execute(line string) (string, error) {
	status, err := i.execute(line)
	if err != nil {
		i.log.Warn("command failed", zap.String("line", redact(line)), zap.Error(err))
		return "", err
	}
	if status != "" {
		i.log.Info("command executed", zap.String("line", redact(line)))
	}
	return status, nil
}

func (i *Interpreter) execute(line string) (string, error) {
	fields, err := shlex.Split(line, true)
	if err != nil {
		return "", apperror.New(apperror.CommandError, "cannot parse command", err)
	}
	if len(fields) == 0 {
		return "", nil
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	h, ok := handlers[name]
	if !ok {
		return "", apperror.Newf(apperror.CommandError, "command not found: %s", fields[0])
	}
	if len(args) != h.args {
		return "", apperror.Newf(apperror.CommandError, "usage: %s", h.usage)
	}
	if h.run == nil {
		return Help(), nil
	}
	return h.run(i, args)
}

// redact hides a password in an enable line before it is logged.
func redact(line string) string {
	fields := strings.Fields(line)
	for n, field := range fields {
		scheme := strings.Index(field, "://")
		at := strings.LastIndex(field, "@")
		if scheme < 0 || at < scheme {
			continue
		}
		userinfo := field[scheme+3 : at]
		if colon := strings.Index(userinfo, ":"); colon >= 0 {
			fields[n] = field[:scheme+3] + userinfo[:colon] + ":***" + field[at:]
		}
	}
	return strings.Join(fields, " ")
}
