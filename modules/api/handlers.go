package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/Frsoul7/simple-task-manager/modules/task"
	"github.com/gofiber/fiber/v2"
)

const msgInvalidBody = "Corpo da requisição inválido"

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api")

	tasks := api.Group("/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	api.Get("/activity", m.listActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: m.cfg.Server.Env,
	})
}

// listTasks handles GET /api/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	res, err := m.taskAdapter.ListTasks(c.UserContext())
	if err != nil {
		return err
	}
	if !res.Success {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: res.Error})
	}

	tasks := res.Data
	if search := c.Query("search"); search != "" {
		tasks = domain.Search(tasks, search)
	}
	if sortKey := c.Query("sort"); sortKey != "" {
		tasks = domain.SortBy(tasks, sortKey)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return c.JSON(tasks)
}

// getTask handles GET /api/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	res, err := m.taskAdapter.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !res.Success {
		status := fiber.StatusInternalServerError
		if isNotFound(res.Kind, res.Error) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(ErrorResponse{Error: res.Error})
	}
	return c.JSON(res.Data)
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	res, err := m.taskAdapter.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		status := fiber.StatusInternalServerError
		if res.Kind == task.KindValidation {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(ErrorResponse{Error: res.Error})
	}
	return c.Status(fiber.StatusCreated).JSON(res.Data)
}

// updateTask handles PUT /api/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	patch, err := req.toPatch()
	if err != nil {
		return badBody(c, err)
	}

	res, err := m.taskAdapter.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		TaskID: c.Params("id"),
		Patch:  patch,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return c.Status(mutationStatus(res.Kind, res.Error)).JSON(ErrorResponse{Error: res.Error})
	}
	return c.JSON(res.Data)
}

// deleteTask handles DELETE /api/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	res, err := m.taskAdapter.DeleteTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !res.Success {
		return c.Status(mutationStatus(res.Kind, res.Error)).JSON(ErrorResponse{Error: res.Error})
	}
	return c.JSON(MessageResponse{Message: res.Message})
}

// listActivity handles GET /api/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	resp, err := m.activityAdapter.ListActivity(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// badBody answers 400 for a request body that could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	msg := msgInvalidBody

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field == "completed":
		msg = domain.MsgCompletedNotBoolean
	case errors.Is(err, domain.ErrInvalidDueDate):
		msg = domain.MsgInvalidDueDate
	}
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// mutationStatus maps a failed update or delete to 404 or 400.
func mutationStatus(kind task.ErrorKind, msg string) int {
	if isNotFound(kind, msg) {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadRequest
}

func isNotFound(kind task.ErrorKind, msg string) bool {
	return kind == task.KindNotFound || strings.Contains(msg, "não encontrada")
}
