package task

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
)

// Messages reported by the use-cases.
const (
	msgCreateFailed = "Erro ao criar tarefa"
	msgListFailed   = "Erro ao buscar tarefas"
	msgGetFailed    = "Erro ao buscar tarefa"
	msgUpdateFailed = "Erro ao atualizar tarefa"
	msgDeleteFailed = "Erro ao remover tarefa"

	MsgDeleted = "Tarefa removida com sucesso"
)

// UseCases groups the task use-cases built over one repository.
type UseCases struct {
	GetAll *GetAllTasks
	Get    *GetTask
	Create *CreateTask
	Update *UpdateTask
	Delete *DeleteTask
}

// NewUseCases wires every use-case to repo.
func NewUseCases(repo domain.Repository) *UseCases {
	return &UseCases{
		GetAll: &GetAllTasks{repo: repo},
		Get:    &GetTask{repo: repo},
		Create: &CreateTask{repo: repo},
		Update: &UpdateTask{repo: repo},
		Delete: &DeleteTask{repo: repo},
	}
}

// GetAllTasks lists every task, newest first.
type GetAllTasks struct {
	repo domain.Repository
}

func (uc *GetAllTasks) Execute(ctx context.Context) (res Result[[]*domain.Task]) {
	defer recoverInto(&res, msgListFailed)

	tasks, err := uc.repo.FindAll(ctx)
	if err != nil {
		return failFrom[[]*domain.Task](msgListFailed, err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return Ok(tasks)
}

// GetTask loads a single task.
type GetTask struct {
	repo domain.Repository
}

func (uc *GetTask) Execute(ctx context.Context, id string) (res Result[*domain.Task]) {
	defer recoverInto(&res, msgGetFailed)

	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return failFrom[*domain.Task](msgGetFailed, err)
	}
	if t == nil {
		return notFound[*domain.Task]()
	}
	return Ok(t)
}

// CreateTask validates and stores a new task. Invalid input never reaches
// the repository.
type CreateTask struct {
	repo domain.Repository
}

func (uc *CreateTask) Execute(ctx context.Context, req CreateTaskRequest) (res Result[*domain.Task]) {
	defer recoverInto(&res, msgCreateFailed)

	t := domain.New(domain.Fields{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})

	if v := t.Validate(); !v.IsValid {
		return Fail[*domain.Task](KindValidation, strings.Join(v.Errors, ", "))
	}

	created, err := uc.repo.Create(ctx, t)
	if err != nil {
		return failFrom[*domain.Task](msgCreateFailed, err)
	}
	return Ok(created)
}

// UpdateTask applies a partial update to an existing task.
//
// The existence check and the update are two separate store calls; a
// concurrent delete in between surfaces as not found. The merged record is
// not re-validated here, only the store constraints on the patch apply.
type UpdateTask struct {
	repo domain.Repository
}

func (uc *UpdateTask) Execute(ctx context.Context, id string, patch domain.Patch) (res Result[*domain.Task]) {
	defer recoverInto(&res, msgUpdateFailed)

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return failFrom[*domain.Task](msgUpdateFailed, err)
	}
	if existing == nil {
		return notFound[*domain.Task]()
	}

	updated, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return failFrom[*domain.Task](msgUpdateFailed, err)
	}
	if updated == nil {
		return notFound[*domain.Task]()
	}
	return Ok(updated)
}

// DeleteTask removes an existing task. Same two-step check as UpdateTask.
type DeleteTask struct {
	repo domain.Repository
}

func (uc *DeleteTask) Execute(ctx context.Context, id string) (res Result[bool]) {
	defer recoverInto(&res, msgDeleteFailed)

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return failFrom[bool](msgDeleteFailed, err)
	}
	if existing == nil {
		return notFound[bool]()
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return failFrom[bool](msgDeleteFailed, err)
	}
	if !deleted {
		return notFound[bool]()
	}

	res = Ok(true)
	res.Message = MsgDeleted
	return res
}

func notFound[T any]() Result[T] {
	return Fail[T](KindNotFound, domain.ErrNotFound.Error())
}

// failFrom converts a repository error into a failed result.
func failFrom[T any](prefix string, err error) Result[T] {
	kind := KindPersistence
	if domain.IsValidation(err) {
		kind = KindValidation
	}
	return Fail[T](kind, prefix+": "+err.Error())
}

// recoverInto turns a panic inside a use-case into a failed result.
func recoverInto[T any](res *Result[T], prefix string) {
	if r := recover(); r != nil {
		*res = Fail[T](KindInternal, fmt.Sprintf("%s: %v", prefix, r))
	}
}
