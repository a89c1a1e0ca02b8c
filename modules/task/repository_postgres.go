package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = "id::text, title, description, due_date, completed, created_at"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id          UUID PRIMARY KEY,
		title       VARCHAR(200) NOT NULL,
		description VARCHAR(1000) NOT NULL DEFAULT '',
		due_date    TIMESTAMPTZ,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC)`,
}

// PostgresRepository stores tasks in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ domain.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repository over an open pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// OpenPostgres connects to databaseURL and creates the tasks table.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the tasks table and its index when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes every pooled connection.
func (r *PostgresRepository) Close(_ context.Context) error {
	r.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	return &t, nil
}

// FindAll retrieves all tasks, newest first.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY created_at DESC")
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Task, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID. Ids that are not UUIDs cannot exist.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	t, err := scanTask(r.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Op: "find", Err: err}
	}
	return t, nil
}

// Create inserts a new task row.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	stored := *t
	domain.Normalize(&stored)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	created, err := scanTask(r.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, title, description, due_date, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		uuid.New(), stored.Title, stored.Description, stored.DueDate, stored.Completed, stored.CreatedAt,
	))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}
	return created, nil
}

// Update sets the patched columns in one statement and returns the row.
func (r *PostgresRepository) Update(ctx context.Context, id string, p domain.Patch) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var patched domain.Task
	p.Apply(&patched)

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Title != nil {
		set("title", patched.Title)
	}
	if p.Description != nil {
		set("description", patched.Description)
	}
	if p.ClearDueDate || p.DueDate != nil {
		set("due_date", patched.DueDate)
	}
	if p.Completed != nil {
		set("completed", patched.Completed)
	}
	args = append(args, uid)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), taskColumns)

	updated, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Op: "update", Err: err}
	}
	return updated, nil
}

// Delete removes a task by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", uid)
	if err != nil {
		return false, &domain.PersistenceError{Op: "delete", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}
