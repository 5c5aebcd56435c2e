package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow/internal/models"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// PageSize is the fixed number of tasks per result page.
const PageSize = 15

// TaskFilter narrows a task listing. Nil fields impose no constraint;
// supplied predicates combine with AND. Date fields are calendar dates
// normalized to midnight UTC; CompletedFrom and CompletedTo are
// inclusive bounds and each applies on its own.
type TaskFilter struct {
	Status        *string
	UserID        *uint
	CompletedAt   *time.Time
	CompletedFrom *time.Time
	CompletedTo   *time.Time
}

// TaskFields carries the validated fields for a task insert.
type TaskFields struct {
	Header      string
	Description string
	Status      string
	CompletedAt *time.Time
	ProjectID   uint
	UserID      uint
}

// TaskUpdate carries a partial update; nil fields keep their prior value.
type TaskUpdate struct {
	Header      *string
	Description *string
	Status      *string
	CompletedAt *time.Time
	UserID      *uint
}

// TaskPage is one page of tasks plus pagination metadata.
type TaskPage struct {
	Tasks       []models.Task
	Total       int64
	PerPage     int
	CurrentPage int
	LastPage    int
}

// TaskRepository is the persistence contract for tasks. The fixed
// method set replaces the dynamic forwarding of earlier designs: a
// caller asking for an operation the repository does not expose is a
// compile error rather than a runtime failure.
type TaskRepository interface {
	List(ctx context.Context, projectID uint, filter TaskFilter, page int) (*TaskPage, error)
	Get(ctx context.Context, id uint) (*models.Task, error)
	Create(ctx context.Context, fields TaskFields) (*models.Task, error)
	Update(ctx context.Context, task *models.Task, fields TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, task *models.Task) (bool, error)
}

// GormTaskRepository implements TaskRepository on a gorm.DB.
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new task repository.
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// List returns the page of tasks in the project matching every supplied
// filter predicate, with user and project eagerly loaded.
//
// Results are ordered by completed_at descending. NULL placement follows
// the engine's convention and is therefore externally visible: PostgreSQL
// puts tasks without a completion date first, SQLite puts them last.
func (r *GormTaskRepository) List(ctx context.Context, projectID uint, filter TaskFilter, page int) (*TaskPage, error) {
	if page < 1 {
		page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("project_id = ?", projectID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CompletedAt != nil {
		query = query.Where("completed_at = ?", *filter.CompletedAt)
	}
	if filter.CompletedFrom != nil {
		query = query.Where("completed_at >= ?", *filter.CompletedFrom)
	}
	if filter.CompletedTo != nil {
		query = query.Where("completed_at <= ?", *filter.CompletedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	var tasks []models.Task
	err := query.
		Order("completed_at DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Preload("User").
		Preload("Project").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	lastPage := int((total + PageSize - 1) / PageSize)
	if lastPage < 1 {
		lastPage = 1
	}

	return &TaskPage{
		Tasks:       tasks,
		Total:       total,
		PerPage:     PageSize,
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}

// Get fetches a task by ID with its user and project loaded.
func (r *GormTaskRepository) Get(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create inserts a task and returns the persisted row with the
// system-assigned ID and relations loaded.
func (r *GormTaskRepository) Create(ctx context.Context, fields TaskFields) (*models.Task, error) {
	task := models.Task{
		Header:      fields.Header,
		Description: fields.Description,
		Status:      fields.Status,
		CompletedAt: fields.CompletedAt,
		ProjectID:   fields.ProjectID,
		UserID:      fields.UserID,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPlanned
	}

	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return r.Get(ctx, task.ID)
}

// Update applies the supplied fields and returns the refreshed entity as
// persisted, so defaults and triggers applied on write are reflected.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, fields TaskUpdate) (*models.Task, error) {
	updates := map[string]interface{}{}

	if fields.Header != nil {
		updates["header"] = *fields.Header
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.CompletedAt != nil {
		updates["completed_at"] = *fields.CompletedAt
	}
	if fields.UserID != nil {
		updates["user_id"] = *fields.UserID
	}

	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}

	return r.Get(ctx, task.ID)
}

// Delete removes the task row. It reports whether a row was actually
// removed; deleting a missing task is (false, nil), not an error.
func (r *GormTaskRepository) Delete(ctx context.Context, task *models.Task) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, task.ID)
	if result.Error != nil {
		return false, fmt.Errorf("delete task: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
