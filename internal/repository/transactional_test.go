package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow/internal/models"
)

// createThenFail performs the real insert and then reports an error, so
// the surrounding transaction must roll the insert back.
type createThenFail struct {
	TaskRepository
}

func (r createThenFail) Create(ctx context.Context, fields TaskFields) (*models.Task, error) {
	if _, err := r.TaskRepository.Create(ctx, fields); err != nil {
		return nil, err
	}
	return nil, errors.New("simulated failure after insert")
}

func TestTransactionalRepository_CommitsOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionalRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "dev@example.com")
	project := createProject(t, db, "Tx")

	task, err := repo.Create(ctx, TaskFields{
		Header:      "Committed",
		Description: "Should persist",
		Status:      models.TaskStatusPlanned,
		ProjectID:   project.ID,
		UserID:      user.ID,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransactionalRepository_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionalRepository(db)
	repo.wrap = func(tx *gorm.DB) TaskRepository {
		return createThenFail{TaskRepository: NewGormTaskRepository(tx)}
	}
	ctx := context.Background()

	user := createUser(t, db, "dev@example.com")
	project := createProject(t, db, "TxRollback")

	_, err := repo.Create(ctx, TaskFields{
		Header:      "Doomed",
		Description: "Must not persist",
		Status:      models.TaskStatusPlanned,
		ProjectID:   project.ID,
		UserID:      user.ID,
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "the insert must be rolled back")
}

func TestTransactionalRepository_DelegatesReads(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionalRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "dev@example.com")
	project := createProject(t, db, "TxReads")
	task := createTask(t, db, project, user, models.TaskStatusDone, date(2026, 5, 1))

	found, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)

	page, err := repo.List(ctx, project.ID, TaskFilter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = repo.Get(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionalRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionalRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "dev@example.com")
	project := createProject(t, db, "TxWrite")
	task := createTask(t, db, project, user, models.TaskStatusPlanned, nil)

	header := "Updated in tx"
	updated, err := repo.Update(ctx, task, TaskUpdate{Header: &header})
	require.NoError(t, err)
	assert.Equal(t, "Updated in tx", updated.Header)

	deleted, err := repo.Delete(ctx, task)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, task)
	require.NoError(t, err)
	assert.False(t, deleted)
}
