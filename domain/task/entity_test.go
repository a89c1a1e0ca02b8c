package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	task := New(Fields{Title: "Buy milk"})

	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "", task.Description)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.Completed)
	assert.Empty(t, task.ID)
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		wantErrs []string
	}{
		{
			name:     "valid minimal task",
			fields:   Fields{Title: "Buy milk"},
			wantErrs: []string{},
		},
		{
			name:     "empty title",
			fields:   Fields{Title: ""},
			wantErrs: []string{MsgTitleRequired},
		},
		{
			name:     "whitespace title",
			fields:   Fields{Title: "   \t"},
			wantErrs: []string{MsgTitleRequired},
		},
		{
			name:     "title at limit",
			fields:   Fields{Title: strings.Repeat("a", 200)},
			wantErrs: []string{},
		},
		{
			name:     "title over limit",
			fields:   Fields{Title: strings.Repeat("a", 201)},
			wantErrs: []string{MsgTitleTooLong},
		},
		{
			name:     "multibyte title at limit",
			fields:   Fields{Title: strings.Repeat("ç", 200)},
			wantErrs: []string{},
		},
		{
			name:     "description at limit",
			fields:   Fields{Title: "ok", Description: strings.Repeat("d", 1000)},
			wantErrs: []string{},
		},
		{
			name:     "description over limit",
			fields:   Fields{Title: "ok", Description: strings.Repeat("d", 1001)},
			wantErrs: []string{MsgDescriptionTooLong},
		},
		{
			name:     "invalid due date",
			fields:   Fields{Title: "ok", DueDate: "not-a-date"},
			wantErrs: []string{MsgInvalidDueDate},
		},
		{
			name:   "errors are reported in order",
			fields: Fields{Title: strings.Repeat(" ", 201), Description: strings.Repeat("d", 1001), DueDate: "32/13/2024"},
			wantErrs: []string{
				MsgTitleRequired,
				MsgTitleTooLong,
				MsgDescriptionTooLong,
				MsgInvalidDueDate,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(tt.fields).Validate()

			assert.Equal(t, len(tt.wantErrs) == 0, result.IsValid)
			assert.Equal(t, tt.wantErrs, result.Errors)
		})
	}
}

func TestTask_ToggleCompleted(t *testing.T) {
	for _, initial := range []bool{true, false} {
		task := New(Fields{Title: "x", Completed: initial})

		task.ToggleCompleted()
		assert.Equal(t, !initial, task.Completed)

		task.ToggleCompleted()
		assert.Equal(t, initial, task.Completed)
	}
}

func TestTask_MarkCompleted(t *testing.T) {
	task := New(Fields{Title: "x"})

	task.MarkCompleted()
	assert.True(t, task.Completed)

	task.MarkCompleted()
	assert.True(t, task.Completed)

	task.MarkIncomplete()
	assert.False(t, task.Completed)
}

func TestTask_ToMap(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("round trip keeps field values", func(t *testing.T) {
		task := New(Fields{
			Title:       "Write report",
			Description: "Quarterly numbers",
			DueDate:     "2025-03-10",
			Completed:   true,
			CreatedAt:   created,
		})
		task.ID = "abc"

		m := task.ToMap()

		assert.Equal(t, "abc", m["id"])
		assert.Equal(t, "Write report", m["title"])
		assert.Equal(t, "Quarterly numbers", m["description"])
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), m["dueDate"])
		assert.Equal(t, true, m["completed"])
		assert.Equal(t, created, m["createdAt"])
	})

	t.Run("missing due date is nil", func(t *testing.T) {
		m := New(Fields{Title: "x"}).ToMap()
		assert.Nil(t, m["dueDate"])
	})
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-01-15", want: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{in: "2025-01-15T09:30", want: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{in: "2025-01-15T09:30:00Z", want: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{in: "2025-01-15T09:30:00.123Z", want: time.Date(2025, 1, 15, 9, 30, 0, 123000000, time.UTC)},
		{in: "2025-01-15T09:30:00-03:00", want: time.Date(2025, 1, 15, 12, 30, 0, 0, time.UTC)},
		{in: "", wantErr: true},
		{in: "tomorrow", wantErr: true},
		{in: "2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDueDate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDueDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", got, tt.want)
		})
	}
}
