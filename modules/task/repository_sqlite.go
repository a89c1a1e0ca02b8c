package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/Frsoul7/simple-task-manager/domain/task"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model for the tasks table.
type taskRecord struct {
	ID          string     `gorm:"primarykey;size:36"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"size:1000;not null;default:''"`
	DueDate     *time.Time `gorm:"default:null"`
	Completed   bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time  `gorm:"index"`
}

// TableName returns the table name for the task model.
func (taskRecord) TableName() string {
	return "tasks"
}

func (r *taskRecord) toEntity() *domain.Task {
	t := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// SQLRepository provides task storage through GORM.
type SQLRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a repository over an open GORM connection.
func NewSQLRepository(db *gorm.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// OpenSQLite opens (or creates) the SQLite database at path and runs the
// tasks migration.
func OpenSQLite(path string, debug bool) (*SQLRepository, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := NewSQLRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Migrate creates or updates the tasks table.
func (r *SQLRepository) Migrate() error {
	if err := r.db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection.
func (r *SQLRepository) Close(_ context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// FindAll retrieves all tasks, newest first.
func (r *SQLRepository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	var records []taskRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		tasks = append(tasks, records[i].toEntity())
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var record taskRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, &domain.PersistenceError{Op: "find", Err: err}
	}
	return record.toEntity(), nil
}

// Create saves a new task to the database.
func (r *SQLRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	stored := *t
	domain.Normalize(&stored)

	record := taskRecord{
		ID:          uuid.New().String(),
		Title:       stored.Title,
		Description: stored.Description,
		DueDate:     stored.DueDate,
		Completed:   stored.Completed,
		CreatedAt:   stored.CreatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}
	return record.toEntity(), nil
}

// Update applies a patch to an existing task. A map is used so that false
// and empty values are written too.
func (r *SQLRepository) Update(ctx context.Context, id string, p domain.Patch) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var patched domain.Task
	p.Apply(&patched)

	updates := map[string]any{}
	if p.Title != nil {
		updates["title"] = patched.Title
	}
	if p.Description != nil {
		updates["description"] = patched.Description
	}
	if p.ClearDueDate || p.DueDate != nil {
		updates["due_date"] = patched.DueDate
	}
	if p.Completed != nil {
		updates["completed"] = patched.Completed
	}

	result := r.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id).Updates(updates)
	if err := result.Error; err != nil {
		return nil, &domain.PersistenceError{Op: "update", Err: err}
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes a task by ID.
func (r *SQLRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, &domain.PersistenceError{Op: "delete", Err: err}
	}
	return result.RowsAffected > 0, nil
}
