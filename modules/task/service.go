package task

import (
	"context"
	"time"

	"github.com/Frsoul7/simple-task-manager/events"
	"github.com/go-monolith/mono"
)

// listTasks handles the get-all-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (TaskListResult, error) {
	return m.useCases.GetAll.Execute(ctx), nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResult, error) {
	return m.useCases.Get.Execute(ctx, req.TaskID), nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResult, error) {
	res := m.useCases.Create.Execute(ctx, req)
	if !res.Success {
		m.logger.Debug("Task not created", "kind", res.Kind, "error", res.Error)
		return res, nil
	}

	created := res.Data
	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    created.ID,
			Title:     created.Title,
			Task:      created.ToMap(),
			CreatedAt: created.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			m.logger.Warn("Failed to publish TaskCreated event", "task_id", created.ID, "error", err)
		}
	}
	return res, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResult, error) {
	res := m.useCases.Update.Execute(ctx, req.TaskID, req.Patch)
	if !res.Success {
		m.logger.Debug("Task not updated", "task_id", req.TaskID, "kind", res.Kind, "error", res.Error)
		return res, nil
	}

	updated := res.Data
	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Title:     updated.Title,
			Completed: updated.Completed,
			UpdatedAt: time.Now(),
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskUpdated event", "task_id", updated.ID, "error", err)
		}
	}
	return res, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteResult, error) {
	res := m.useCases.Delete.Execute(ctx, req.TaskID)
	if !res.Success {
		m.logger.Debug("Task not deleted", "task_id", req.TaskID, "kind", res.Kind, "error", res.Error)
		return res, nil
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskDeleted event", "task_id", req.TaskID, "error", err)
		}
	}
	return res, nil
}
