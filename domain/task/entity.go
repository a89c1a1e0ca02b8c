package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits enforced by Validate and by the store adapters.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Validation messages, in the order Validate reports them.
const (
	MsgTitleRequired       = "O título da tarefa é obrigatório"
	MsgTitleTooLong        = "O título não pode ter mais de 200 caracteres"
	MsgDescriptionTooLong  = "A descrição não pode ter mais de 1000 caracteres"
	MsgInvalidDueDate      = "Data inválida"
	MsgCompletedNotBoolean = "O campo completed deve ser um booleano"
)

// Task is the core domain entity representing a todo item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`

	// rawDueDate keeps due date text that could not be parsed so that
	// Validate can report it.
	rawDueDate string
}

// Fields is the raw field bag a task is constructed from.
type Fields struct {
	Title       string
	Description string
	DueDate     string
	Completed   bool
	CreatedAt   time.Time
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// New builds a Task from a field bag. An empty DueDate means no due date;
// text that does not parse is kept and reported by Validate.
func New(f Fields) *Task {
	t := &Task{
		Title:       f.Title,
		Description: f.Description,
		Completed:   f.Completed,
		CreatedAt:   f.CreatedAt,
	}
	if strings.TrimSpace(f.DueDate) != "" {
		due, err := ParseDueDate(f.DueDate)
		if err != nil {
			t.rawDueDate = f.DueDate
		} else {
			t.DueDate = due
		}
	}
	return t
}

// Validate checks the task against the domain rules. It never panics and
// reports every violation in a fixed order.
func (t *Task) Validate() ValidationResult {
	errs := make([]string, 0)

	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, MsgTitleRequired)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		errs = append(errs, MsgTitleTooLong)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		errs = append(errs, MsgDescriptionTooLong)
	}
	if t.rawDueDate != "" || (t.DueDate != nil && t.DueDate.IsZero()) {
		errs = append(errs, MsgInvalidDueDate)
	}
	// completed is a bool by construction; untyped input is checked where it
	// is decoded (see MsgCompletedNotBoolean).

	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// MarkCompleted sets the task as done.
func (t *Task) MarkCompleted() {
	t.Completed = true
}

// MarkIncomplete sets the task as pending.
func (t *Task) MarkIncomplete() {
	t.Completed = false
}

// ToggleCompleted flips the completion state.
func (t *Task) ToggleCompleted() {
	t.Completed = !t.Completed
}

// ToMap returns the task as a plain field mapping using the JSON field names.
func (t *Task) ToMap() map[string]any {
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     due,
		"completed":   t.Completed,
		"createdAt":   t.CreatedAt,
	}
}
