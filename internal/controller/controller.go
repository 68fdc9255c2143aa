// Package controller owns the active targets: one worker and one panel per
// alias, kept in step by Enable and Disable, and the dispatch of worker
// messages to panels.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperror "remotail/internal/error"
	"remotail/internal/models"
	"remotail/internal/ssh"
	"remotail/internal/tail"
)

// ShutdownTimeout bounds how long Shutdown waits for a single worker.
const ShutdownTimeout = 5 * time.Second

// Display is where dispatched messages end up, one panel per alias.
type Display interface {
	Insert(alias string) error
	Remove(alias string) error
	Has(alias string) bool
	Append(msg tail.Message) bool
}

type Config struct {
	Opener    ssh.Opener
	Fetcher   ssh.Fetcher
	Display   Display
	Queue     *tail.Queue
	ChunkSize int
	Logger    *zap.Logger

	// WorkerLogger is handed to workers; defaults to Logger.
	WorkerLogger *zap.Logger
}

// Controller is driven from a single goroutine (the UI loop). Only the Queue
// is shared with workers.
type Controller struct {
	opener    ssh.Opener
	fetcher   ssh.Fetcher
	display   Display
	queue     *tail.Queue
	chunkSize int
	log       *zap.Logger
	workerLog *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	workers map[string]*tail.Worker
	fetches sync.WaitGroup
}

func New(cfg Config) *Controller {
	if cfg.Queue == nil {
		cfg.Queue = tail.NewQueue()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.WorkerLogger == nil {
		cfg.WorkerLogger = cfg.Logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		opener:    cfg.Opener,
		fetcher:   cfg.Fetcher,
		display:   cfg.Display,
		queue:     cfg.Queue,
		chunkSize: cfg.ChunkSize,
		log:       cfg.Logger,
		workerLog: cfg.WorkerLogger,
		ctx:       ctx,
		cancel:    cancel,
		workers:   make(map[string]*tail.Worker),
	}
}

// Queue returns the message channel workers report to.
func (c *Controller) Queue() *tail.Queue {
	return c.queue
}

// Enable parses raw and starts following it. It returns the new alias.
func (c *Controller) Enable(raw string) (string, error) {
	target, err := models.ParseTarget(raw)
	if err != nil {
		c.log.Warn("enable rejected", zap.Error(err))
		return "", err
	}
	if err := c.EnableTarget(target); err != nil {
		return "", err
	}
	return target.Alias, nil
}

// EnableTarget starts following an already parsed target.
func (c *Controller) EnableTarget(target models.Target) error {
	if _, active := c.workers[target.Alias]; active {
		err := apperror.Newf(apperror.DuplicateAliasError, "alias %q is already active", target.Alias)
		c.log.Warn("enable rejected", zap.Error(err))
		return err
	}

	// The panel exists before the worker can produce anything for it.
	if err := c.display.Insert(target.Alias); err != nil {
		return err
	}

	worker := tail.NewWorker(target, c.opener, c.queue, c.chunkSize, c.workerLog)
	c.workers[target.Alias] = worker
	worker.Start(c.ctx)

	c.log.Info("target enabled", zap.String("alias", target.Alias), zap.String("target", target.String()),
		zap.String("run", worker.RunID()))
	return nil
}

// Disable stops the worker for alias, waits for it to release its channel and
// removes its panel.
func (c *Controller) Disable(alias string) error {
	worker, active := c.workers[alias]
	if !active {
		err := apperror.Newf(apperror.UnknownAliasError, "alias %q is not active", alias)
		c.log.Warn("disable rejected", zap.Error(err))
		return err
	}

	worker.Stop()
	<-worker.Done()

	delete(c.workers, alias)
	if err := c.display.Remove(alias); err != nil {
		c.log.Error("panel removal failed", zap.String("alias", alias), zap.Error(err))
	}

	c.log.Info("target disabled", zap.String("alias", alias),
		zap.Stringer("state", worker.State()), zap.NamedError("reason", worker.Err()))
	return nil
}

// Dispatch takes exactly one pending message and routes it to its panel.
// Messages for aliases that are no longer active, or left over from an
// earlier worker of a re-enabled alias, are dropped. It returns ErrEmpty
// when nothing is pending.
func (c *Controller) Dispatch() error {
	msg, err := c.queue.GetNowait()
	if err != nil {
		return err
	}

	worker, active := c.workers[msg.Alias]
	if !active {
		c.log.Debug("message dropped for inactive alias",
			zap.String("alias", msg.Alias), zap.Stringer("kind", msg.Kind))
		return nil
	}
	if msg.RunID != worker.RunID() {
		c.log.Debug("message dropped from previous run",
			zap.String("alias", msg.Alias), zap.String("run", msg.RunID), zap.Stringer("kind", msg.Kind))
		return nil
	}
	if !c.display.Append(msg) {
		c.log.Error("no panel for active alias", zap.String("alias", msg.Alias))
	}
	return nil
}

// Aliases returns the active aliases, sorted.
func (c *Controller) Aliases() []string {
	aliases := make([]string, 0, len(c.workers))
	for alias := range c.workers {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Active reports whether alias has a worker.
func (c *Controller) Active(alias string) bool {
	_, ok := c.workers[alias]
	return ok
}

// State returns the worker state for alias.
func (c *Controller) State(alias string) (tail.State, bool) {
	worker, ok := c.workers[alias]
	if !ok {
		return 0, false
	}
	return worker.State(), true
}

// Idle reports whether every worker has terminated. A controller without
// workers is idle.
func (c *Controller) Idle() bool {
	for _, worker := range c.workers {
		select {
		case <-worker.Done():
		default:
			return false
		}
	}
	return true
}

// Fetch copies alias's remote file to localPath in the background. The outcome
// is reported as a NOTIFY on the alias's panel.
func (c *Controller) Fetch(alias, localPath string) error {
	worker, active := c.workers[alias]
	if !active {
		return apperror.Newf(apperror.UnknownAliasError, "alias %q is not active", alias)
	}
	if c.fetcher == nil {
		return apperror.Newf(apperror.CommandError, "fetch is not available")
	}

	target := worker.Target()
	log := c.log.With(zap.String("alias", alias), zap.String("local", localPath))
	log.Info("fetch started")

	c.fetches.Add(1)
	go func() {
		defer c.fetches.Done()

		n, err := c.fetcher.Fetch(c.ctx, target, localPath)
		text := fmt.Sprintf("fetched %d bytes to %s", n, localPath)
		if err != nil {
			log.Error("fetch failed", zap.Error(err))
			text = fmt.Sprintf("fetch to %s failed: %v", localPath, err)
		}
		c.queue.Put(tail.NotifyMessage(alias, worker.State(), text).WithRun(worker.RunID()))
	}()
	return nil
}

// Shutdown cancels every worker and pending fetch and waits for them to
// release their resources. The worker table and panels are left in place.
func (c *Controller) Shutdown() error {
	c.log.Info("shutting down", zap.Int("workers", len(c.workers)))
	c.cancel()

	var g errgroup.Group
	for alias, worker := range c.workers {
		alias, worker := alias, worker
		g.Go(func() error {
			worker.Stop()
			select {
			case <-worker.Done():
				return nil
			case <-time.After(ShutdownTimeout):
				return fmt.Errorf("worker %s did not stop within %s", alias, ShutdownTimeout)
			}
		})
	}
	err := g.Wait()

	c.fetches.Wait()
	c.queue.Close()

	if err != nil {
		c.log.Error("shutdown incomplete", zap.Error(err))
		return err
	}
	c.log.Info("shutdown complete")
	return nil
}

// IsEmpty reports whether err means the queue had nothing pending.
func IsEmpty(err error) bool {
	return errors.Is(err, apperror.ErrEmpty)
}
