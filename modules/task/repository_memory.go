package task

import (
	"context"
	"slices"
	"sync"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/google/uuid"
)

// MemoryRepository provides in-memory task storage.
type MemoryRepository struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex
}

var _ domain.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory task repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]*domain.Task),
	}
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op; the data is discarded with the repository.
func (r *MemoryRepository) Close(_ context.Context) error {
	return nil
}

// FindAll returns all tasks, newest first.
func (r *MemoryRepository) FindAll(_ context.Context) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		result = append(result, clone(t))
	}
	slices.SortFunc(result, func(a, b *domain.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result, nil
}

// FindByID finds a task by ID.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, found := r.tasks[id]
	if !found {
		return nil, nil
	}
	return clone(t), nil
}

// Create saves a new task and assigns its ID.
func (r *MemoryRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	stored := clone(t)
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	domain.Normalize(stored)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[stored.ID] = stored
	return clone(stored), nil
}

// Update applies a patch to a stored task.
func (r *MemoryRepository) Update(_ context.Context, id string, p domain.Patch) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, found := r.tasks[id]
	if !found {
		return nil, nil
	}
	p.Apply(t)
	return clone(t), nil
}

// Delete deletes a task by ID.
func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[id]; !found {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func clone(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
