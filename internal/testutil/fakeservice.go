// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskdash/internal/service"
)

// Epoch is the CreatedAt of the first task created by a FakeService.
// Each later task is one minute newer.
var Epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// Token returns a signed credential carrying the given display claims.
// The signature is real but nothing in the client verifies it.
func Token(name, email string) string {
	claims := jwt.MapClaims{
		"name":  name,
		"email": email,
		"iat":   Epoch.Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("testutil"))
	if err != nil {
		panic(err)
	}
	return s
}

type fakeUser struct {
	name     string
	password string
}

// FakeService is an in-memory stand-in for the remote task service.
// It assigns IDs and timestamps and keeps soft-deleted tasks for restore.
type FakeService struct {
	mu    sync.RWMutex
	users map[string]fakeUser // email -> user
	tasks []service.Task      // server order, active and deleted
	now   time.Time
	calls []string

	// Error injection for testing
	LoginErr       error
	RegisterErr    error
	ListTasksErr   error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	ListDeletedErr error
	RestoreTaskErr error

	// UpdateGate, if set, blocks UpdateTask until it receives or is closed.
	UpdateGate chan struct{}
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users: make(map[string]fakeUser),
		now:   Epoch,
	}
}

// AddUser registers a user directly.
func (f *FakeService) AddUser(name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(email)] = fakeUser{name: name, password: password}
}

// AddTask adds an active task with a fixed ID and returns it.
func (f *FakeService) AddTask(id, title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: id, Title: title, Completed: completed, CreatedAt: f.tick()}
	f.tasks = append(f.tasks, t)
	return t
}

// Put stores t as-is, replacing any task with the same ID.
func (f *FakeService) Put(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return
		}
	}
	f.tasks = append(f.tasks, t)
}

// Get returns the stored task with the given ID, active or deleted.
func (f *FakeService) Get(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Calls returns the names of the Service methods called so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times the named method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// tick must be called with mu held.
func (f *FakeService) tick() time.Time {
	t := f.now
	f.now = f.now.Add(time.Minute)
	return t
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (string, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.RLock()
	u, ok := f.users[strings.ToLower(creds.Email)]
	f.mu.RUnlock()
	if !ok || u.password != creds.Password {
		return "", &service.RequestError{Op: "login", Status: 400, Message: "Invalid credentials", Err: service.ErrUnauthorized}
	}
	return Token(u.name, creds.Email), nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(reg.Email)
	if _, exists := f.users[key]; exists {
		return &service.RequestError{Op: "register", Status: 400, Message: "User already exists"}
	}
	f.users[key] = fakeUser{name: reg.Name, password: reg.Password}
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.filter(false), nil
}

// ListDeletedTasks implements service.Service.
func (f *FakeService) ListDeletedTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListDeletedTasks")
	if f.ListDeletedErr != nil {
		return nil, f.ListDeletedErr
	}
	return f.filter(true), nil
}

func (f *FakeService) filter(deleted bool) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := []service.Task{}
	for _, t := range f.tasks {
		if t.Deleted() == deleted {
			result = append(result, t)
		}
	}
	return result
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.NewTask) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if strings.TrimSpace(in.Title) == "" {
		return service.Task{}, &service.RequestError{Op: "create task", Status: 400, Message: "Title is required"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		CreatedAt:   f.tick(),
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateGate != nil {
		select {
		case <-f.UpdateGate:
		case <-ctx.Done():
			return service.Task{}, ctx.Err()
		}
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.activeIndex(id)
	if i < 0 {
		return service.Task{}, &service.RequestError{Op: "update task", Status: 404, Err: service.ErrNotFound}
	}
	t := &f.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		d := *patch.DueDate
		t.DueDate = &d
	}
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.activeIndex(id)
	if i < 0 {
		return &service.RequestError{Op: "delete task", Status: 404, Err: service.ErrNotFound}
	}
	at := f.tick()
	f.tasks[i].DeletedAt = &at
	return nil
}

// RestoreTask implements service.Service.
func (f *FakeService) RestoreTask(ctx context.Context, id string) error {
	f.record("RestoreTask")
	if f.RestoreTaskErr != nil {
		return f.RestoreTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id && f.tasks[i].Deleted() {
			f.tasks[i].DeletedAt = nil
			return nil
		}
	}
	return &service.RequestError{Op: "restore task", Status: 404, Err: service.ErrNotFound}
}

// activeIndex must be called with mu held.
func (f *FakeService) activeIndex(id string) int {
	for i, t := range f.tasks {
		if t.ID == id && !t.Deleted() {
			return i
		}
	}
	return -1
}
