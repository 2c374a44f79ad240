// Package recyclebin holds the list of soft-deleted tasks and restores them.
package recyclebin

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"taskdash/internal/notify"
	"taskdash/internal/service"
)

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the observer for user-visible outcomes.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the debug logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller mirrors the server's deleted-task set. Tasks are kept in server
// order; no filter or sort is applied.
type Controller struct {
	svc      service.Service
	notifier notify.Notifier
	log      logr.Logger

	mu    sync.Mutex
	tasks []service.Task
}

// New creates a Controller with an empty list.
func New(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		notifier: notify.Discard,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the list with the server's deleted tasks.
// On failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.ListDeletedTasks(ctx)
	if err != nil {
		c.fail("Failed to fetch deleted tasks", err)
		return err
	}

	c.mu.Lock()
	c.tasks = append([]service.Task(nil), tasks...)
	c.mu.Unlock()

	c.log.V(1).Info("loaded deleted tasks", "count", len(tasks))
	return nil
}

// Restore asks the server to restore a task, then reloads the list instead
// of splicing it locally.
func (c *Controller) Restore(ctx context.Context, id string) error {
	if err := c.svc.RestoreTask(ctx, id); err != nil {
		c.fail("Failed to restore task", err)
		return err
	}
	c.notifier.Notify(notify.Successf("Task restored successfully"))
	return c.Load(ctx)
}

// Tasks returns a copy of the deleted list.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Task(nil), c.tasks...)
}

func (c *Controller) fail(msg string, err error) {
	c.log.V(1).Info("request failed", "op", msg, "error", err.Error())
	if service.IsAuth(err) {
		c.notifier.Notify(notify.ToLogin(err))
		return
	}
	c.notifier.Notify(notify.Failed(msg, err))
}
