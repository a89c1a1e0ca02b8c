package task

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Repository is the persistence port for tasks. Exactly one adapter backs it
// per deployment; all adapters share the absence semantics below.
type Repository interface {
	// FindAll returns every task, newest created first. It returns an empty
	// slice when the store holds no tasks.
	FindAll(ctx context.Context) ([]*Task, error)

	// FindByID returns (nil, nil) when no task has the given id.
	FindByID(ctx context.Context, id string) (*Task, error)

	// Create stores the task and returns it with its assigned id.
	Create(ctx context.Context, t *Task) (*Task, error)

	// Update applies only the fields set in the patch and returns the
	// stored task, or (nil, nil) when no task has the given id.
	Update(ctx context.Context, id string, p Patch) (*Task, error)

	// Delete reports whether a task existed and was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Validate enforces the store-level constraints on the supplied fields.
func (p Patch) Validate() error {
	var msgs []string
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			msgs = append(msgs, MsgTitleRequired)
		}
		if utf8.RuneCountInString(strings.TrimSpace(*p.Title)) > MaxTitleLength {
			msgs = append(msgs, MsgTitleTooLong)
		}
	}
	if p.Description != nil && utf8.RuneCountInString(strings.TrimSpace(*p.Description)) > MaxDescriptionLength {
		msgs = append(msgs, MsgDescriptionTooLong)
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		msgs = append(msgs, MsgInvalidDueDate)
	}
	if len(msgs) > 0 {
		return NewValidationError(msgs...)
	}
	return nil
}

// Apply copies the patched fields onto t. Text fields are trimmed the way
// the stores normalise them.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Normalize trims the text fields of a task before it is stored.
func Normalize(t *Task) {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
}
