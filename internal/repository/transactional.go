package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow/internal/models"
)

// TransactionalRepository decorates a TaskRepository so that every call
// runs inside its own database transaction. Writes commit or roll back
// atomically with any side effects performed within the repository call;
// reads pay the transaction-open cost but are otherwise unaffected.
//
// Attachment-store writes happen in the service layer after the wrapped
// call returns and are therefore outside this boundary; see TaskService.
type TransactionalRepository struct {
	db   *gorm.DB
	wrap func(tx *gorm.DB) TaskRepository
}

// NewTransactionalRepository creates a transactional decorator over a
// GORM-backed task repository.
func NewTransactionalRepository(db *gorm.DB) *TransactionalRepository {
	return &TransactionalRepository{
		db: db,
		wrap: func(tx *gorm.DB) TaskRepository {
			return NewGormTaskRepository(tx)
		},
	}
}

func (r *TransactionalRepository) List(ctx context.Context, projectID uint, filter TaskFilter, page int) (*TaskPage, error) {
	var out *TaskPage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		page, err := r.wrap(tx).List(ctx, projectID, filter, page)
		if err != nil {
			return err
		}
		out = page
		return nil
	})
	return out, err
}

func (r *TransactionalRepository) Get(ctx context.Context, id uint) (*models.Task, error) {
	var out *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := r.wrap(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		out = task
		return nil
	})
	return out, err
}

func (r *TransactionalRepository) Create(ctx context.Context, fields TaskFields) (*models.Task, error) {
	var out *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := r.wrap(tx).Create(ctx, fields)
		if err != nil {
			return err
		}
		out = task
		return nil
	})
	return out, err
}

func (r *TransactionalRepository) Update(ctx context.Context, task *models.Task, fields TaskUpdate) (*models.Task, error) {
	var out *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := r.wrap(tx).Update(ctx, task, fields)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

func (r *TransactionalRepository) Delete(ctx context.Context, task *models.Task) (bool, error) {
	var out bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := r.wrap(tx).Delete(ctx, task)
		if err != nil {
			return err
		}
		out = deleted
		return nil
	})
	return out, err
}
