package task

import (
	"context"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
)

// CreateTaskRequest is the request for creating a task. DueDate is the raw
// text sent by the client; empty means no due date.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate,omitempty"`
	Completed   bool   `json:"completed"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for a partial task update.
type UpdateTaskRequest struct {
	TaskID string       `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct{}

// TaskResult is the envelope for operations returning a single task.
type TaskResult = Result[*domain.Task]

// TaskListResult is the envelope for listing tasks.
type TaskListResult = Result[[]*domain.Task]

// DeleteResult is the envelope for deleting a task.
type DeleteResult = Result[bool]

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the HTTP API use it to reach the core domain.
// A returned error means the call itself failed; domain failures are
// reported inside the envelope.
type TaskPort interface {
	ListTasks(ctx context.Context) (*TaskListResult, error)
	GetTask(ctx context.Context, taskID string) (*TaskResult, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResult, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResult, error)
	DeleteTask(ctx context.Context, taskID string) (*DeleteResult, error)
}
