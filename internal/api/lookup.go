package api

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow/internal/models"
)

// Lookup resolves route parameters to entities before the service is
// invoked, mirroring route-model binding: a missing project or task is a
// 404 decided at the boundary.
type Lookup struct {
	db *gorm.DB
}

// NewLookup creates a lookup over the given database.
func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{db: db}
}

// Project fetches a project by ID; (nil, nil) when it does not exist.
func (l *Lookup) Project(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := l.db.WithContext(ctx).First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

// Task fetches a task by ID; (nil, nil) when it does not exist.
func (l *Lookup) Task(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	err := l.db.WithContext(ctx).Preload("User").Preload("Project").First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// UserExists reports whether a user row with the given ID exists.
func (l *Lookup) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return count > 0, nil
}
