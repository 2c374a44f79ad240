// Package dashboard holds the active-task list and every operation that
// mutates it.
//
// The Controller never fabricates task IDs and never shows a state the server
// has not confirmed: creations and updates fold the server's response into the
// list, completion toggles reload the whole list, and failures leave the list
// exactly as it was.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"taskdash/internal/notify"
	"taskdash/internal/service"
)

var (
	// ErrTitleRequired is returned when a title is empty or whitespace-only.
	// No request is sent.
	ErrTitleRequired = errors.New("title required")

	// ErrActionInProgress is returned when a toggle or delete is already outstanding.
	ErrActionInProgress = errors.New("another action is in progress")

	// ErrNoPendingDelete is returned by ConfirmDelete when nothing is staged.
	ErrNoPendingDelete = errors.New("no task staged for deletion")

	// ErrTaskNotFound is returned when an ID is not in the active list.
	ErrTaskNotFound = errors.New("task not in list")

	// ErrNotEditing is returned by SubmitEdit when no edit is open.
	ErrNotEditing = errors.New("no edit in progress")
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

// Controller is the single source of truth for the active-task list.
type Controller struct {
	svc      service.Service
	notifier notify.Notifier
	log      logr.Logger

	mu          sync.Mutex
	tasks       []service.Task
	pending     *service.Task
	lastDeleted *Snapshot
	editing     *EditDraft

	// busy is one flag for all toggles and deletes, not one per task.
	busy bool
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

// Load replaces the list with the server's active tasks.
// On failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		c.fail("Failed to load tasks", err)
		return err
	}

	c.mu.Lock()
	c.tasks = append([]service.Task(nil), tasks...)
	c.mu.Unlock()

	c.log.V(1).Info("loaded tasks", "count", len(tasks))
	return nil
}

// Create sends a creation request and prepends the server's task.
func (c *Controller) Create(ctx context.Context, in service.NewTask) (service.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		c.notifier.Notify(notify.Failed("Title is required", nil))
		return service.Task{}, ErrTitleRequired
	}

	task, err := c.svc.CreateTask(ctx, in)
	if err != nil {
		c.fail("Failed to create task", err)
		return service.Task{}, err
	}

	c.mu.Lock()
	c.prepend(task)
	c.mu.Unlock()

	c.notifier.Notify(notify.Successf("Task created successfully!"))
	return task, nil
}

// ToggleCompletion flips a task's completed flag on the server, then reloads
// the full list rather than patching it locally.
func (c *Controller) ToggleCompletion(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrActionInProgress
	}
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrTaskNotFound
	}
	completed := !c.tasks[i].Completed
	c.busy = true
	c.mu.Unlock()
	defer c.release()

	if _, err := c.svc.UpdateTask(ctx, id, service.TaskPatch{Completed: &completed}); err != nil {
		c.fail("Failed to update task status", err)
		return err
	}

	if completed {
		c.notifier.Notify(notify.Successf("Marked as done"))
	} else {
		c.notifier.Notify(notify.Successf("Marked as incomplete"))
	}
	return c.Load(ctx)
}

// RequestDelete stages a task for deletion. Nothing is sent.
func (c *Controller) RequestDelete(task service.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrActionInProgress
	}
	staged := task
	c.pending = &staged
	return nil
}

// PendingDelete returns the staged task, if any.
func (c *Controller) PendingDelete() (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return service.Task{}, false
	}
	return *c.pending, true
}

// CancelDelete clears the staged task.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// ConfirmDelete deletes the staged task. On success the task leaves the list
// and its content is kept as the undo snapshot. The stage is cleared either way.
func (c *Controller) ConfirmDelete(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return Snapshot{}, ErrNoPendingDelete
	}
	if c.busy {
		c.mu.Unlock()
		return Snapshot{}, ErrActionInProgress
	}
	target := *c.pending
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = nil
		c.busy = false
		c.mu.Unlock()
	}()

	if err := c.svc.DeleteTask(ctx, target.ID); err != nil {
		c.fail("Delete failed", err)
		return Snapshot{}, err
	}

	snap := SnapshotOf(target)

	c.mu.Lock()
	if i := c.indexOf(target.ID); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	c.lastDeleted = &snap
	c.mu.Unlock()

	c.notifier.Notify(notify.Successf("Task deleted."))
	return snap, nil
}

// LastDeleted returns the undo snapshot of the most recent delete, if any.
func (c *Controller) LastDeleted() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastDeleted == nil {
		return Snapshot{}, false
	}
	return *c.lastDeleted, true
}

// UndoDelete re-creates a task from snap. The new task gets a new ID; this is
// not a restore. On failure the snapshot is kept so the undo can be retried.
func (c *Controller) UndoDelete(ctx context.Context, snap Snapshot) (service.Task, error) {
	task, err := c.svc.CreateTask(ctx, snap.NewTask())
	if err != nil {
		c.fail("Failed to restore task", err)
		return service.Task{}, err
	}

	c.mu.Lock()
	c.prepend(task)
	c.lastDeleted = nil
	c.mu.Unlock()

	c.notifier.Notify(notify.Successf("Task restored"))
	return task, nil
}

// Update sends a partial update and replaces the matching entry in place.
func (c *Controller) Update(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			c.notifier.Notify(notify.Failed("Title is required", nil))
			return service.Task{}, ErrTitleRequired
		}
		patch.Title = &title
	}

	task, err := c.svc.UpdateTask(ctx, id, patch)
	if err != nil {
		c.fail("Failed to update task", err)
		return service.Task{}, err
	}

	c.mu.Lock()
	if i := c.indexOf(task.ID); i >= 0 {
		c.tasks[i] = task
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Successf("Task updated successfully!"))
	return task, nil
}

// Tasks returns a copy of the active list in its current order.
func (c *Controller) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]service.Task(nil), c.tasks...)
}

// Find returns the task with the given ID.
func (c *Controller) Find(id string) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.tasks[i], true
	}
	return service.Task{}, false
}

// Busy reports whether a toggle or delete is outstanding.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// View returns the derived view of the current list.
func (c *Controller) View(q Query) []service.Task {
	return View(c.Tasks(), q)
}

// prepend must be called with mu held.
func (c *Controller) prepend(task service.Task) {
	c.tasks = append([]service.Task{task}, c.tasks...)
}

// indexOf must be called with mu held.
func (c *Controller) indexOf(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// fail reports err. Auth failures become a redirect to login.
func (c *Controller) fail(msg string, err error) {
	c.log.V(1).Info("request failed", "op", msg, "error", err.Error())
	if service.IsAuth(err) {
		c.notifier.Notify(notify.ToLogin(err))
		return
	}
	c.notifier.Notify(notify.Failed(msg, err))
}

// Snapshot is the visible content of a deleted task, kept for undo.
type Snapshot struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *service.Date
}

// SnapshotOf copies the undoable content of t.
func SnapshotOf(t service.Task) Snapshot {
	s := Snapshot{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
	if t.DueDate != nil {
		d := *t.DueDate
		s.DueDate = &d
	}
	return s
}

// NewTask returns the creation request that re-creates the snapshot.
func (s Snapshot) NewTask() service.NewTask {
	return service.NewTask{
		Title:       s.Title,
		Description: s.Description,
		Completed:   s.Completed,
		DueDate:     s.DueDate,
	}
}
