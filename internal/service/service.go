package service

import "context"

// Service defines the interface for the remote task service.
// All REST calls go through this interface; controllers and commands never
// talk HTTP directly.
type Service interface {
	// Login exchanges credentials for a bearer token.
	// Bad credentials are reported as ErrUnauthorized.
	Login(ctx context.Context, creds Credentials) (string, error)

	// Register creates a user account. It does not log in.
	Register(ctx context.Context, reg Registration) error

	// ListTasks returns the current user's active tasks in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns the server's representation,
	// including the assigned ID and CreatedAt.
	CreateTask(ctx context.Context, in NewTask) (Task, error)

	// UpdateTask applies a partial update and returns the updated task.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask soft-deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// ListDeletedTasks returns soft-deleted tasks in server order.
	ListDeletedTasks(ctx context.Context) ([]Task, error)

	// RestoreTask clears a task's deletion flag, keeping its ID.
	RestoreTask(ctx context.Context, id string) error
}
