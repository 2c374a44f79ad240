package dashboard

import (
	"context"

	"taskdash/internal/service"
)

// EditDraft is the open edit form for one task, pre-filled from it.
type EditDraft struct {
	taskID string

	Title       string
	Description string

	// DueDate nil means no due date; submitting clears any existing one.
	DueDate *service.Date
}

// TaskID returns the ID of the task being edited.
func (d *EditDraft) TaskID() string {
	return d.taskID
}

// Patch returns the update the draft submits: title, description and due
// date are always sent.
func (d *EditDraft) Patch() service.TaskPatch {
	title := d.Title
	description := d.Description
	p := service.TaskPatch{Title: &title, Description: &description}
	if d.DueDate != nil {
		due := *d.DueDate
		p.DueDate = &due
	} else {
		p.ClearDueDate = true
	}
	return p
}

// BeginEdit opens an edit draft for the task with the given ID, replacing
// any draft already open.
func (c *Controller) BeginEdit(id string) (*EditDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	t := c.tasks[i]
	d := &EditDraft{
		taskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		due := *t.DueDate
		d.DueDate = &due
	}
	c.editing = d
	return d, nil
}

// Editing returns the open draft, if any.
func (c *Controller) Editing() (*EditDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing, c.editing != nil
}

// CancelEdit closes the draft without sending anything.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}

// SubmitEdit sends the open draft. The draft closes on success and stays
// open on failure.
func (c *Controller) SubmitEdit(ctx context.Context) (service.Task, error) {
	d, ok := c.Editing()
	if !ok {
		return service.Task{}, ErrNotEditing
	}
	task, err := c.Update(ctx, d.TaskID(), d.Patch())
	if err != nil {
		return service.Task{}, err
	}
	c.mu.Lock()
	if c.editing == d {
		c.editing = nil
	}
	c.mu.Unlock()
	return task, nil
}
