// Package plain writes target streams as "alias | line" text, for output
// that is not a terminal.
package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	apperror "remotail/internal/error"
	"remotail/internal/tail"
	"remotail/internal/ui"
)

// idlePoll is how often Run checks whether every worker has finished.
const idlePoll = 100 * time.Millisecond

// Writer is a Display that prints complete lines prefixed with their alias.
// Unterminated output is held back until its newline arrives or the alias is
// removed.
type Writer struct {
	out     io.Writer
	partial map[string]string
	width   int
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, partial: make(map[string]string)}
}

func (w *Writer) Insert(alias string) error {
	if w.Has(alias) {
		return apperror.Newf(apperror.DuplicateAliasError, "alias %q already registered", alias)
	}
	w.partial[alias] = ""
	w.width = max(w.width, ui.GetMaxWidth([]string{alias}))
	return nil
}

func (w *Writer) Remove(alias string) error {
	rest, ok := w.partial[alias]
	if !ok {
		return apperror.Newf(apperror.UnknownAliasError, "alias %q not registered", alias)
	}
	if rest != "" {
		w.print(alias, rest)
	}
	delete(w.partial, alias)
	return nil
}

func (w *Writer) Has(alias string) bool {
	_, ok := w.partial[alias]
	return ok
}

func (w *Writer) Append(msg tail.Message) bool {
	rest, ok := w.partial[msg.Alias]
	if !ok {
		return false
	}

	if msg.Kind == tail.KindNotify {
		if rest != "" {
			w.print(msg.Alias, rest)
			w.partial[msg.Alias] = ""
		}
		w.print(msg.Alias, "» "+msg.Text)
		return true
	}

	text := rest + string(msg.Data)
	lines := strings.Split(text, "\n")
	for _, line := range lines[:len(lines)-1] {
		w.print(msg.Alias, strings.TrimSuffix(line, "\r"))
	}
	w.partial[msg.Alias] = lines[len(lines)-1]
	return true
}

func (w *Writer) print(alias, line string) {
	prefix := ui.AliasStyle.Render(fmt.Sprintf("%-*s", w.width, alias))
	fmt.Fprintf(w.out, "%s | %s\n", prefix, line)
}

// Controller is what Run drives.
type Controller interface {
	Queue() *tail.Queue
	Dispatch() error
	Idle() bool
}

// Run dispatches messages until ctx is done or every worker has terminated
// and the queue is drained.
func Run(ctx context.Context, ctrl Controller) error {
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()

	queue := ctrl.Queue()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-queue.Ready():
			if err := ctrl.Dispatch(); err != nil && !errors.Is(err, apperror.ErrEmpty) {
				return err
			}
		case <-ticker.C:
			if ctrl.Idle() && queue.Len() == 0 {
				return nil
			}
		case <-queue.Done():
			return nil
		}
	}
}
