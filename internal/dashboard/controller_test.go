package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/dashboard"
	"taskdash/internal/notify"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

var errBoom = errors.New("boom")

var errExpired = &service.RequestError{Op: "list tasks", Status: 401, Err: service.ErrUnauthorized}

func newController(t *testing.T, svc *testutil.FakeService) (*dashboard.Controller, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	return dashboard.New(svc, dashboard.WithNotifier(rec)), rec
}

// loaded returns a controller whose list has been loaded from svc.
func loaded(t *testing.T, svc *testutil.FakeService) (*dashboard.Controller, *notify.Recorder) {
	t.Helper()
	c, rec := newController(t, svc)
	require.NoError(t, c.Load(context.Background()))
	svc.ResetCalls()
	return c, rec
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestLoad_ReplacesList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	svc.AddTask("b", "B", true)
	c, rec := newController(t, svc)

	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, []string{"a", "b"}, ids(c.Tasks()))
	assert.Empty(t, rec.All())
}

func TestLoad_FailureKeepsList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)

	svc.AddTask("b", "B", false)
	svc.ListTasksErr = errBoom
	err := c.Load(context.Background())

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a"}, ids(c.Tasks()))
	n, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Failure, n.Kind)
	assert.Equal(t, "Failed to load tasks", n.Message)
}

func TestLoad_AuthFailureRedirects(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errExpired
	c, rec := newController(t, svc)

	err := c.Load(context.Background())

	require.True(t, service.IsAuth(err))
	n, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Redirect, n.Kind)
	assert.Equal(t, notify.LoginTarget, n.Target)
	assert.Zero(t, rec.Count(notify.Failure))
}

func TestCreate_PrependsServerTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)

	task, err := c.Create(context.Background(), service.NewTask{Title: "  Buy milk  ", Description: "two liters"})

	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title, "title is sent trimmed")
	assert.Equal(t, []string{task.ID, "a"}, ids(c.Tasks()))
	assert.Equal(t, []string{"CreateTask"}, svc.Calls())

	n, _ := rec.Last()
	assert.Equal(t, notify.Successf("Task created successfully!"), n)
}

func TestCreate_BlankTitleSendsNothing(t *testing.T) {
	for _, title := range []string{"", " ", "\t\n"} {
		svc := testutil.NewFakeService()
		c, rec := loaded(t, svc)

		_, err := c.Create(context.Background(), service.NewTask{Title: title})

		require.ErrorIs(t, err, dashboard.ErrTitleRequired)
		assert.Empty(t, svc.Calls())
		assert.Empty(t, c.Tasks())
		assert.Equal(t, 1, rec.Count(notify.Failure))
	}
}

func TestCreate_FailureLeavesList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)
	svc.CreateTaskErr = errBoom

	_, err := c.Create(context.Background(), service.NewTask{Title: "B"})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a"}, ids(c.Tasks()))
	n, _ := rec.Last()
	assert.Equal(t, "Failed to create task", n.Message)
}

func TestToggle_FlipsAndReloads(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)

	require.NoError(t, c.ToggleCompletion(context.Background(), "a"))

	got, _ := c.Find("a")
	assert.True(t, got.Completed)
	assert.Equal(t, []string{"UpdateTask", "ListTasks"}, svc.Calls(), "toggle reloads the whole list")
	n, _ := rec.Last()
	assert.Equal(t, "Marked as done", n.Message)
	assert.False(t, c.Busy())
}

func TestToggle_TwiceRestores(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", true)
	c, rec := loaded(t, svc)

	require.NoError(t, c.ToggleCompletion(context.Background(), "a"))
	require.NoError(t, c.ToggleCompletion(context.Background(), "a"))

	got, _ := c.Find("a")
	assert.True(t, got.Completed)
	msgs := []string{}
	for _, n := range rec.All() {
		msgs = append(msgs, n.Message)
	}
	assert.Equal(t, []string{"Marked as incomplete", "Marked as done"}, msgs)
}

func TestToggle_FailureKeepsState(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)
	svc.UpdateTaskErr = errBoom

	err := c.ToggleCompletion(context.Background(), "a")

	require.ErrorIs(t, err, errBoom)
	got, _ := c.Find("a")
	assert.False(t, got.Completed)
	assert.Equal(t, []string{"UpdateTask"}, svc.Calls())
	n, _ := rec.Last()
	assert.Equal(t, "Failed to update task status", n.Message)
	assert.False(t, c.Busy(), "a failed toggle releases the in-flight flag")
}

func TestToggle_UnknownTask(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := loaded(t, svc)

	err := c.ToggleCompletion(context.Background(), "missing")

	require.ErrorIs(t, err, dashboard.ErrTaskNotFound)
	assert.Empty(t, svc.Calls())
}

func TestInFlight_RejectsOverlappingActions(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	b := svc.AddTask("b", "B", false)
	c, _ := loaded(t, svc)

	gate := make(chan struct{})
	svc.UpdateGate = gate

	done := make(chan error, 1)
	go func() { done <- c.ToggleCompletion(context.Background(), "a") }()
	require.Eventually(t, c.Busy, time.Second, time.Millisecond)

	// One flag for every task, not one per task
	assert.ErrorIs(t, c.ToggleCompletion(context.Background(), "b"), dashboard.ErrActionInProgress)
	assert.ErrorIs(t, c.RequestDelete(b), dashboard.ErrActionInProgress)

	close(gate)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.Equal(t, 1, svc.CallCount("UpdateTask"))
}

func TestDelete_RequestAndCancelSendsNothing(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", false)
	c, _ := loaded(t, svc)

	require.NoError(t, c.RequestDelete(a))
	staged, ok := c.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "a", staged.ID)

	c.CancelDelete()

	_, ok = c.PendingDelete()
	assert.False(t, ok)
	assert.Empty(t, svc.Calls())
	assert.Equal(t, []string{"a"}, ids(c.Tasks()))
}

func TestDelete_ConfirmRemovesAndSnapshots(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", true)
	a.Description = "desc"
	due := service.NewDate(2025, 5, 1)
	a.DueDate = &due
	svc.Put(a)
	svc.AddTask("b", "B", false)
	c, rec := loaded(t, svc)

	require.NoError(t, c.RequestDelete(a))
	snap, err := c.ConfirmDelete(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(c.Tasks()))
	assert.Equal(t, dashboard.Snapshot{Title: "A", Description: "desc", Completed: true, DueDate: &due}, snap)
	last, ok := c.LastDeleted()
	require.True(t, ok)
	assert.Equal(t, snap, last)
	_, staged := c.PendingDelete()
	assert.False(t, staged)
	n, _ := rec.Last()
	assert.Equal(t, "Task deleted.", n.Message)
}

func TestDelete_FailureKeepsTask(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)
	svc.DeleteTaskErr = errBoom

	require.NoError(t, c.RequestDelete(a))
	_, err := c.ConfirmDelete(context.Background())

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a"}, ids(c.Tasks()))
	_, staged := c.PendingDelete()
	assert.False(t, staged, "the stage is cleared on failure too")
	_, ok := c.LastDeleted()
	assert.False(t, ok)
	assert.False(t, c.Busy())
	n, _ := rec.Last()
	assert.Equal(t, "Delete failed", n.Message)
}

func TestDelete_ConfirmWithoutStage(t *testing.T) {
	svc := testutil.NewFakeService()
	c, _ := loaded(t, svc)

	_, err := c.ConfirmDelete(context.Background())

	require.ErrorIs(t, err, dashboard.ErrNoPendingDelete)
	assert.Empty(t, svc.Calls())
}

func TestUndo_RecreatesWithNewID(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", true)
	a.Description = "with notes"
	due := service.NewDate(2025, 6, 30)
	a.DueDate = &due
	svc.Put(a)
	svc.AddTask("b", "B", false)
	c, rec := loaded(t, svc)

	require.NoError(t, c.RequestDelete(a))
	snap, err := c.ConfirmDelete(context.Background())
	require.NoError(t, err)

	again, err := c.UndoDelete(context.Background(), snap)

	require.NoError(t, err)
	assert.NotEqual(t, "a", again.ID)
	assert.Equal(t, "A", again.Title)
	assert.True(t, again.Completed, "undo carries the completed flag")
	assert.Equal(t, "with notes", again.Description)
	require.NotNil(t, again.DueDate)
	assert.True(t, again.DueDate.Equal(due))
	assert.Equal(t, []string{again.ID, "b"}, ids(c.Tasks()))
	_, ok := c.LastDeleted()
	assert.False(t, ok)
	n, _ := rec.Last()
	assert.Equal(t, "Task restored", n.Message)

	// The original stays in the recycle bin
	old, _ := svc.Get("a")
	assert.True(t, old.Deleted())
}

func TestUndo_FailureKeepsSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)

	require.NoError(t, c.RequestDelete(a))
	snap, err := c.ConfirmDelete(context.Background())
	require.NoError(t, err)
	svc.CreateTaskErr = errBoom

	_, err = c.UndoDelete(context.Background(), snap)

	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, c.Tasks())
	kept, ok := c.LastDeleted()
	require.True(t, ok)
	assert.Equal(t, snap, kept)
	n, _ := rec.Last()
	assert.Equal(t, "Failed to restore task", n.Message)
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	svc.AddTask("b", "B", false)
	svc.AddTask("c", "C", false)
	c, rec := loaded(t, svc)

	title := "  Bee "
	task, err := c.Update(context.Background(), "b", service.TaskPatch{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "Bee", task.Title)
	assert.Equal(t, []string{"a", "b", "c"}, ids(c.Tasks()))
	got, _ := c.Find("b")
	assert.Equal(t, "Bee", got.Title)
	assert.Equal(t, []string{"UpdateTask"}, svc.Calls(), "update does not reload")
	n, _ := rec.Last()
	assert.Equal(t, "Task updated successfully!", n.Message)
}

func TestUpdate_BlankTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, _ := loaded(t, svc)

	blank := "   "
	_, err := c.Update(context.Background(), "a", service.TaskPatch{Title: &blank})

	require.ErrorIs(t, err, dashboard.ErrTitleRequired)
	assert.Empty(t, svc.Calls())
}

func TestUpdate_AuthFailureRedirects(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c, rec := loaded(t, svc)
	svc.UpdateTaskErr = errExpired

	done := true
	_, err := c.Update(context.Background(), "a", service.TaskPatch{Completed: &done})

	require.True(t, service.IsAuth(err))
	assert.Equal(t, 1, rec.Count(notify.Redirect))
}

// A is deleted, B created, then A undone: both end up active and A has a
// new identity.
func TestScenario_DeleteCreateUndo(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("a", "A", false)
	c, _ := loaded(t, svc)
	ctx := context.Background()

	require.NoError(t, c.RequestDelete(a))
	snap, err := c.ConfirmDelete(ctx)
	require.NoError(t, err)
	b, err := c.Create(ctx, service.NewTask{Title: "B"})
	require.NoError(t, err)
	a2, err := c.UndoDelete(ctx, snap)
	require.NoError(t, err)

	assert.Equal(t, []string{a2.ID, b.ID}, ids(c.Tasks()))
	assert.NotEqual(t, "a", a2.ID)

	// A reload agrees on membership; the server keeps its own order
	require.NoError(t, c.Load(ctx))
	assert.ElementsMatch(t, []string{a2.ID, b.ID}, ids(c.Tasks()))
}
