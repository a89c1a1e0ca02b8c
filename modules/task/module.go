package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Frsoul7/simple-task-manager/config"
	"github.com/Frsoul7/simple-task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Service names registered by the task module.
const (
	ServiceGetAll = "get-all-tasks"
	ServiceGet    = "get-task"
	ServiceCreate = "create-task"
	ServiceUpdate = "update-task"
	ServiceDelete = "delete-task"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	db       config.Database
	cache    config.Cache
	store    Store
	useCases *UseCases
	eventBus mono.EventBus
	logger   types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a TaskModule that opens its store from the database and
// cache settings on Start.
func NewModule(db config.Database, cache config.Cache, logger types.Logger) *TaskModule {
	return &TaskModule{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// NewModuleWithStore creates a TaskModule over an already open store.
func NewModuleWithStore(store Store, logger types.Logger) *TaskModule {
	return &TaskModule{
		store:    store,
		useCases: NewUseCases(store),
		logger:   logger,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetAll, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetAll, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGet, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGet, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}

	m.logger.Info("Registered task services",
		"services", []string{ServiceGetAll, ServiceGet, ServiceCreate, ServiceUpdate, ServiceDelete})
	return nil
}

// Start opens the store unless one was injected and builds the use-cases.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.store == nil {
		driver, err := config.DatabaseDriver(m.db.URL)
		if err != nil {
			return err
		}
		m.logger.Info("Connecting to task store", "driver", driver, "cache", m.cache.Enabled())

		store, err := OpenCachedStore(ctx, m.db, m.cache, m.logger)
		if err != nil {
			return fmt.Errorf("failed to open task store: %w", err)
		}
		m.store = store
		m.useCases = NewUseCases(store)
	}

	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, task events will not be published")
	}
	m.logger.Info("Task module started")
	return nil
}

// Stop closes the store connection.
func (m *TaskModule) Stop(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	m.logger.Info("Closing task store...")
	if err := m.store.Close(ctx); err != nil {
		return err
	}
	m.logger.Info("Task store closed")
	return nil
}

// Health pings the store.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	status := mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
	if cached, ok := m.store.(*CachedStore); ok {
		status.Details = map[string]any{"cache": cached.Stats()}
	}
	return status
}
