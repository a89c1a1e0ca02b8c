package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Frsoul7/simple-task-manager/config"
	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/Frsoul7/simple-task-manager/modules/activity"
	"github.com/Frsoul7/simple-task-manager/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
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

// localTaskPort runs the task use-cases in-process.
type localTaskPort struct {
	uc *task.UseCases
}

func (p *localTaskPort) ListTasks(ctx context.Context) (*task.TaskListResult, error) {
	res := p.uc.GetAll.Execute(ctx)
	return &res, nil
}

func (p *localTaskPort) GetTask(ctx context.Context, id string) (*task.TaskResult, error) {
	res := p.uc.Get.Execute(ctx, id)
	return &res, nil
}

func (p *localTaskPort) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskResult, error) {
	res := p.uc.Create.Execute(ctx, *req)
	return &res, nil
}

func (p *localTaskPort) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResult, error) {
	res := p.uc.Update.Execute(ctx, req.TaskID, req.Patch)
	return &res, nil
}

func (p *localTaskPort) DeleteTask(ctx context.Context, id string) (*task.DeleteResult, error) {
	res := p.uc.Delete.Execute(ctx, id)
	return &res, nil
}

// brokenTaskPort fails every call, or panics when panics is set.
type brokenTaskPort struct {
	panics bool
}

func (p *brokenTaskPort) fail() error {
	if p.panics {
		panic("connection reset")
	}
	return errors.New("create-task service call failed: nats: timeout")
}

func (p *brokenTaskPort) ListTasks(context.Context) (*task.TaskListResult, error) {
	return nil, p.fail()
}

func (p *brokenTaskPort) GetTask(context.Context, string) (*task.TaskResult, error) {
	return nil, p.fail()
}

func (p *brokenTaskPort) CreateTask(context.Context, *task.CreateTaskRequest) (*task.TaskResult, error) {
	return nil, p.fail()
}

func (p *brokenTaskPort) UpdateTask(context.Context, *task.UpdateTaskRequest) (*task.TaskResult, error) {
	return nil, p.fail()
}

func (p *brokenTaskPort) DeleteTask(context.Context, string) (*task.DeleteResult, error) {
	return nil, p.fail()
}

type stubActivityPort struct {
	entries []activity.Entry
}

func (p *stubActivityPort) ListActivity(_ context.Context, limit int) (*activity.ListResponse, error) {
	entries := p.entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return &activity.ListResponse{Entries: entries, Total: len(entries)}, nil
}

func newTestApp(t *testing.T, port task.TaskPort) *fiber.App {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	m := NewModule(cfg, &mockLogger{})
	m.taskAdapter = port
	m.activityAdapter = &stubActivityPort{entries: []activity.Entry{
		{TaskID: "t2", Type: activity.TypeTaskDeleted},
		{TaskID: "t1", Type: activity.TypeTaskCreated},
	}}
	return m.newApp()
}

func newLocalApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestApp(t, &localTaskPort{uc: task.NewUseCases(task.NewMemoryRepository())})
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeError(t *testing.T, data []byte) string {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e))
	return e.Error
}

func createTask(t *testing.T, app *fiber.App, body string) domain.Task {
	t.Helper()
	status, data := doRequest(t, app, http.MethodPost, "/api/tasks", body)
	require.Equal(t, http.StatusCreated, status, string(data))

	var created domain.Task
	require.NoError(t, json.Unmarshal(data, &created))
	return created
}

func TestHealth(t *testing.T) {
	app := newLocalApp(t)

	status, data := doRequest(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Environment)
	assert.False(t, health.Timestamp.IsZero())
}

func TestListTasks_Empty(t *testing.T) {
	app := newLocalApp(t)

	status, data := doRequest(t, app, http.MethodGet, "/api/tasks", "")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCreateTask(t *testing.T) {
	app := newLocalApp(t)

	created := createTask(t, app, `{"title":"Buy milk"}`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "", created.Description)
	assert.Nil(t, created.DueDate)
	assert.False(t, created.Completed)

	withDue := createTask(t, app, `{"title":"Pay rent","dueDate":"2025-05-01","completed":true}`)
	require.NotNil(t, withDue.DueDate)
	assert.Equal(t, 2025, withDue.DueDate.Year())
	assert.True(t, withDue.Completed)

	status, data := doRequest(t, app, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, status)
	var list []domain.Task
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list, 2)
}

func TestCreateTask_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "empty title", body: `{"title":""}`, wantMsg: "título"},
		{name: "missing title", body: `{"description":"x"}`, wantMsg: domain.MsgTitleRequired},
		{name: "long title", body: `{"title":"` + strings.Repeat("a", 201) + `"}`, wantMsg: domain.MsgTitleTooLong},
		{name: "invalid due date", body: `{"title":"x","dueDate":"not a date"}`, wantMsg: domain.MsgInvalidDueDate},
		{name: "completed not boolean", body: `{"title":"x","completed":"yes"}`, wantMsg: domain.MsgCompletedNotBoolean},
		{name: "malformed json", body: `{"title":`, wantMsg: msgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLocalApp(t)

			status, data := doRequest(t, app, http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, decodeError(t, data), tt.wantMsg)
		})
	}
}

func TestGetTask(t *testing.T) {
	app := newLocalApp(t)
	created := createTask(t, app, `{"title":"Find me"}`)

	status, data := doRequest(t, app, http.MethodGet, "/api/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, status)
	var got domain.Task
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Find me", got.Title)

	status, data = doRequest(t, app, http.MethodGet, "/api/tasks/missing-id", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, domain.MsgNotFound, decodeError(t, data))
}

func TestUpdateTask(t *testing.T) {
	app := newLocalApp(t)
	created := createTask(t, app, `{"title":"Walk dog","description":"park","dueDate":"2025-05-01"}`)
	path := "/api/tasks/" + created.ID

	status, data := doRequest(t, app, http.MethodPut, path, `{"completed":true}`)
	require.Equal(t, http.StatusOK, status, string(data))
	var updated domain.Task
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Walk dog", updated.Title)
	assert.Equal(t, "park", updated.Description)
	require.NotNil(t, updated.DueDate)

	status, data = doRequest(t, app, http.MethodPut, path, `{"dueDate":null,"title":"Walk cat"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	updated = domain.Task{}
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "Walk cat", updated.Title)
	assert.True(t, updated.Completed)
}

func TestUpdateTask_Failures(t *testing.T) {
	app := newLocalApp(t)
	created := createTask(t, app, `{"title":"x"}`)
	path := "/api/tasks/" + created.ID

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "missing task", path: "/api/tasks/missing-id", body: `{"completed":true}`, wantStatus: http.StatusNotFound, wantMsg: "não encontrada"},
		{name: "blank title", path: path, body: `{"title":"  "}`, wantStatus: http.StatusBadRequest, wantMsg: domain.MsgTitleRequired},
		{name: "invalid due date", path: path, body: `{"dueDate":"31/31/2025"}`, wantStatus: http.StatusBadRequest, wantMsg: domain.MsgInvalidDueDate},
		{name: "due date not a string", path: path, body: `{"dueDate":42}`, wantStatus: http.StatusBadRequest, wantMsg: domain.MsgInvalidDueDate},
		{name: "completed not boolean", path: path, body: `{"completed":"true"}`, wantStatus: http.StatusBadRequest, wantMsg: domain.MsgCompletedNotBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := doRequest(t, app, http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, decodeError(t, data), tt.wantMsg)
		})
	}
}

func TestDeleteTask(t *testing.T) {
	app := newLocalApp(t)
	keep := createTask(t, app, `{"title":"keep"}`)
	gone := createTask(t, app, `{"title":"gone"}`)

	status, data := doRequest(t, app, http.MethodDelete, "/api/tasks/"+gone.ID, "")
	require.Equal(t, http.StatusOK, status)
	var msg MessageResponse
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, task.MsgDeleted, msg.Message)

	status, data = doRequest(t, app, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, status)
	var list []domain.Task
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	status, data = doRequest(t, app, http.MethodDelete, "/api/tasks/"+gone.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, decodeError(t, data), "não encontrada")
}

func TestListTasks_SearchAndSort(t *testing.T) {
	app := newLocalApp(t)
	createTask(t, app, `{"title":"banana bread","dueDate":"2025-03-01"}`)
	createTask(t, app, `{"title":"Apple pie","description":"for sunday"}`)
	createTask(t, app, `{"title":"Cherry jam","dueDate":"2025-01-01"}`)

	status, data := doRequest(t, app, http.MethodGet, "/api/tasks?sort=name", "")
	require.Equal(t, http.StatusOK, status)
	var list []domain.Task
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Apple pie", list[0].Title)
	assert.Equal(t, "banana bread", list[1].Title)
	assert.Equal(t, "Cherry jam", list[2].Title)

	status, data = doRequest(t, app, http.MethodGet, "/api/tasks?sort=dueDate", "")
	require.Equal(t, http.StatusOK, status)
	list = nil
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, "Cherry jam", list[0].Title)
	assert.Equal(t, "Apple pie", list[2].Title)

	status, data = doRequest(t, app, http.MethodGet, "/api/tasks?search=SUNDAY", "")
	require.Equal(t, http.StatusOK, status)
	list = nil
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Apple pie", list[0].Title)

	status, data = doRequest(t, app, http.MethodGet, "/api/tasks?search=nothing", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(data))
}

func TestListActivity(t *testing.T) {
	app := newLocalApp(t)

	status, data := doRequest(t, app, http.MethodGet, "/api/activity?limit=1", "")
	require.Equal(t, http.StatusOK, status)

	var resp activity.ListResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "t2", resp.Entries[0].TaskID)
}

func TestUnknownRoute(t *testing.T) {
	app := newLocalApp(t)

	status, data := doRequest(t, app, http.MethodGet, "/api/nothing-here", "")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, msgRouteNotFound, decodeError(t, data))
}

func TestTransportFailuresHideDetails(t *testing.T) {
	tests := []struct {
		name   string
		panics bool
	}{
		{name: "error"},
		{name: "panic", panics: true},
	}

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/tasks", ""},
		{http.MethodGet, "/api/tasks/abc", ""},
		{http.MethodPost, "/api/tasks", `{"title":"x"}`},
		{http.MethodPut, "/api/tasks/abc", `{"completed":true}`},
		{http.MethodDelete, "/api/tasks/abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &brokenTaskPort{panics: tt.panics})

			for _, r := range requests {
				status, data := doRequest(t, app, r.method, r.path, r.body)
				assert.Equal(t, http.StatusInternalServerError, status, r.method+" "+r.path)
				assert.Equal(t, msgInternalError, decodeError(t, data))
			}
		})
	}
}

func TestModule_Lifecycle(t *testing.T) {
	m := NewModule(config.Default(), &mockLogger{})

	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"task", "activity"}, m.Dependencies())
	assert.Error(t, m.Start(context.Background()), "start without dependencies must fail")
	assert.False(t, m.Health(context.Background()).Healthy)
	assert.NoError(t, m.Stop(context.Background()))
}

func TestCORSConfig(t *testing.T) {
	cfg := config.Default()
	m := NewModule(cfg, &mockLogger{})

	c := m.corsConfig()
	assert.Equal(t, "http://localhost:5173,http://localhost:3000", c.AllowOrigins)
	assert.True(t, c.AllowCredentials)

	cfg.CORS.Origins = []string{"*"}
	c = m.corsConfig()
	assert.False(t, c.AllowCredentials)
}
