// Package activity keeps a bounded feed of recent task activity built from
// the task domain events.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Frsoul7/simple-task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ServiceList is the request-reply service that returns the feed.
const ServiceList = "list-activity"

// DefaultCapacity is the number of entries kept before the oldest is dropped.
const DefaultCapacity = 100

// Entry types.
const (
	TypeTaskCreated = "task_created"
	TypeTaskUpdated = "task_updated"
	TypeTaskDeleted = "task_deleted"
)

// ActivityModule records task events as a driven adapter.
type ActivityModule struct {
	entries  []Entry
	capacity int
	mu       sync.RWMutex
	logger   types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

// NewModule creates an ActivityModule holding at most DefaultCapacity entries.
func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		entries:  make([]Entry, 0, DefaultCapacity),
		capacity: DefaultCapacity,
		logger:   logger,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"TaskCreated", "TaskUpdated", "TaskDeleted"})
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.listActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task created", "task_id", event.TaskID, "title", event.Title)
	m.record(event.TaskID, TypeTaskCreated, fmt.Sprintf("Tarefa '%s' criada", event.Title), event.CreatedAt)
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task updated", "task_id", event.TaskID, "completed", event.Completed)
	msg := fmt.Sprintf("Tarefa '%s' atualizada", event.Title)
	if event.Completed {
		msg = fmt.Sprintf("Tarefa '%s' concluída", event.Title)
	}
	m.record(event.TaskID, TypeTaskUpdated, msg, event.UpdatedAt)
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task deleted", "task_id", event.TaskID)
	m.record(event.TaskID, TypeTaskDeleted, fmt.Sprintf("Tarefa %s removida", event.TaskID), event.DeletedAt)
	return nil
}

func (m *ActivityModule) record(taskID, entryType, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, Entry{
		TaskID:    taskID,
		Type:      entryType,
		Message:   message,
		Timestamp: at.UTC(),
	})
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns every entry kept.
func (m *ActivityModule) Recent(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	result := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *ActivityModule) listActivity(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	entries := m.Recent(req.Limit)
	return ListResponse{Entries: entries, Total: len(entries)}, nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped")
	return nil
}
