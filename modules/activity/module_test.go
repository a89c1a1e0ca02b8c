package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Frsoul7/simple-task-manager/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_RecordsEventsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewModule(&mockLogger{})
	require.NoError(t, m.Start(ctx))

	now := time.Now()
	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: "t1", Title: "Buy milk", CreatedAt: now}, nil))
	require.NoError(t, m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: "t1", Title: "Buy milk", Completed: true, UpdatedAt: now}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "t1", DeletedAt: now}, nil))

	entries := m.Recent(0)
	require.Len(t, entries, 3)
	assert.Equal(t, TypeTaskDeleted, entries[0].Type)
	assert.Equal(t, TypeTaskUpdated, entries[1].Type)
	assert.Equal(t, "Tarefa 'Buy milk' concluída", entries[1].Message)
	assert.Equal(t, TypeTaskCreated, entries[2].Type)
	assert.Equal(t, "Tarefa 'Buy milk' criada", entries[2].Message)

	assert.Len(t, m.Recent(2), 2)
	assert.NoError(t, m.Stop(ctx))
}

func TestModule_DropsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewModule(&mockLogger{})

	for i := 0; i < DefaultCapacity+5; i++ {
		id := fmt.Sprintf("t%d", i)
		require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: id}, nil))
	}

	entries := m.Recent(0)
	require.Len(t, entries, DefaultCapacity)
	assert.Equal(t, fmt.Sprintf("t%d", DefaultCapacity+4), entries[0].TaskID)
	assert.Equal(t, "t5", entries[len(entries)-1].TaskID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestModule_ListActivity(t *testing.T) {
	ctx := context.Background()
	m := NewModule(&mockLogger{})

	empty, err := m.listActivity(ctx, ListRequest{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Entries)
	assert.Equal(t, 0, empty.Total)

	for i := 0; i < 3; i++ {
		_ = m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: fmt.Sprintf("t%d", i), Title: "x"}, nil)
	}

	resp, err := m.listActivity(ctx, ListRequest{Limit: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "t2", resp.Entries[0].TaskID)
}
