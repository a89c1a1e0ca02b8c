package api

import (
	"bytes"
	"encoding/json"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
)

// CreateTaskRequest is the HTTP request for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest is the HTTP request for updating a task. Absent fields
// are left unchanged.
type UpdateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	DueDate     optionalTime `json:"dueDate"`
	Completed   *bool        `json:"completed"`
}

// toPatch converts the request into a domain patch. A null or empty dueDate
// clears the due date.
func (r *UpdateTaskRequest) toPatch() (domain.Patch, error) {
	p := domain.Patch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.DueDate.Set {
		if r.DueDate.Null || r.DueDate.Raw == "" {
			p.ClearDueDate = true
		} else {
			due, err := domain.ParseDueDate(r.DueDate.Raw)
			if err != nil {
				return domain.Patch{}, err
			}
			p.DueDate = due
		}
	}
	return p, nil
}

// optionalTime tells an absent JSON field apart from an explicit null.
type optionalTime struct {
	Set  bool
	Null bool
	Raw  string
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &o.Raw); err != nil {
		return domain.ErrInvalidDueDate
	}
	return nil
}

// MessageResponse is the HTTP response for operations without a body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
