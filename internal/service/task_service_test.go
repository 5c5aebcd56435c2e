package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/repository"
	"github.com/taskflow/taskflow/pkg/media"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory SQLite exists per connection.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserToken{},
		&models.Project{},
		&models.Task{},
	))

	return db
}

// recordingNotifier captures enqueued notifications.
type recordingNotifier struct {
	users []models.User
	tasks []models.Task
}

func (n *recordingNotifier) TaskCreated(user models.User, task models.Task) {
	n.users = append(n.users, user)
	n.tasks = append(n.tasks, task)
}

type taskServiceFixture struct {
	db       *gorm.DB
	service  *TaskService
	store    media.Store
	notifier *recordingNotifier
	user     *models.User
	project  *models.Project
}

func setupTaskService(t *testing.T) *taskServiceFixture {
	t.Helper()

	db := setupTestDB(t)

	user := models.User{Email: "assignee@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(&user).Error)
	project := models.Project{Name: "Test Project"}
	require.NoError(t, db.Create(&project).Error)

	store := media.NewDiskStore(t.TempDir(), "/storage")
	notifier := &recordingNotifier{}
	svc := NewTaskService(repository.NewTransactionalRepository(db), store, notifier)

	return &taskServiceFixture{
		db:       db,
		service:  svc,
		store:    store,
		notifier: notifier,
		user:     &user,
		project:  &project,
	}
}

func (f *taskServiceFixture) fields() repository.TaskFields {
	return repository.TaskFields{
		Header:      "Write release notes",
		Description: "Summarize the changes",
		Status:      models.TaskStatusPlanned,
		ProjectID:   f.project.ID,
		UserID:      f.user.ID,
	}
}

func TestTaskService_Create_NotifiesAssignee(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	require.Len(t, f.notifier.tasks, 1)
	assert.Equal(t, task.ID, f.notifier.tasks[0].ID)
	assert.Equal(t, f.user.Email, f.notifier.users[0].Email)
}

func TestTaskService_Create_StoresAttachment(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	upload := &media.Upload{Name: "notes.pdf", Content: strings.NewReader("pdf bytes")}
	task, err := f.service.Create(ctx, f.fields(), upload)
	require.NoError(t, err)

	attachments, err := f.service.Attachments(ctx, task)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "notes.pdf", attachments[0].FileName)
	assert.NotEmpty(t, attachments[0].URL)
}

func TestTaskService_Create_WithoutAttachmentHasNone(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	attachments, err := f.service.Attachments(ctx, task)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestTaskService_Update_Partial(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	status := models.TaskStatusDone
	completed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.service.Update(ctx, task, repository.TaskUpdate{
		Status:      &status,
		CompletedAt: &completed,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusDone, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, "2026-06-01", updated.CompletedAt.Format("2006-01-02"))
	// Fields not named in the update keep their value.
	assert.Equal(t, task.Header, updated.Header)
	assert.Equal(t, task.Description, updated.Description)
}

func TestTaskService_Update_ReplacesAttachments(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	// Two files already in the collection.
	owner := mediaOwner(task.ID)
	_, err = f.store.Add(ctx, owner, media.CollectionAttachments, media.Upload{Name: "old-1.txt", Content: strings.NewReader("one")})
	require.NoError(t, err)
	_, err = f.store.Add(ctx, owner, media.CollectionAttachments, media.Upload{Name: "old-2.txt", Content: strings.NewReader("two")})
	require.NoError(t, err)

	upload := &media.Upload{Name: "replacement.txt", Content: strings.NewReader("three")}
	_, err = f.service.Update(ctx, task, repository.TaskUpdate{}, upload)
	require.NoError(t, err)

	attachments, err := f.service.Attachments(ctx, task)
	require.NoError(t, err)
	require.Len(t, attachments, 1, "the new file must replace the whole collection")
	assert.Equal(t, "replacement.txt", attachments[0].FileName)
}

func TestTaskService_Update_WithoutAttachmentKeepsFiles(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	upload := &media.Upload{Name: "keep.txt", Content: strings.NewReader("keep me")}
	task, err := f.service.Create(ctx, f.fields(), upload)
	require.NoError(t, err)

	header := "Renamed"
	_, err = f.service.Update(ctx, task, repository.TaskUpdate{Header: &header}, nil)
	require.NoError(t, err)

	attachments, err := f.service.Attachments(ctx, task)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "keep.txt", attachments[0].FileName)
}

func TestTaskService_Show(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	shown, err := f.service.Show(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, task.ID, shown.ID)
	assert.Equal(t, f.user.Email, shown.User.Email)
	assert.Equal(t, f.project.Name, shown.Project.Name)
}

func TestTaskService_Delete(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	upload := &media.Upload{Name: "gone.txt", Content: strings.NewReader("bye")}
	task, err := f.service.Create(ctx, f.fields(), upload)
	require.NoError(t, err)

	deleted, err := f.service.Delete(ctx, task)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.service.Show(ctx, task)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	attachments, err := f.store.List(ctx, mediaOwner(task.ID), media.CollectionAttachments)
	require.NoError(t, err)
	assert.Empty(t, attachments, "attachments must be cleared with the task")
}

func TestTaskService_Delete_MissingRow(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	deleted, err := f.service.Delete(ctx, &models.Task{ID: 99999})
	require.NoError(t, err)
	assert.False(t, deleted)
}

// failingStore errors on every write operation.
type failingStore struct {
	media.Store
}

func (failingStore) Add(ctx context.Context, owner, collection string, upload media.Upload) (*media.Attachment, error) {
	return nil, errors.New("disk full")
}

func (failingStore) Clear(ctx context.Context, owner, collection string) error {
	return errors.New("disk full")
}

// failingStoreService shares the fixture's database but writes
// attachments through a store that always fails.
func (f *taskServiceFixture) failingStoreService() *TaskService {
	return NewTaskService(repository.NewTransactionalRepository(f.db), failingStore{}, f.notifier)
}

func TestTaskService_Create_AttachmentWriteFailure(t *testing.T) {
	f := setupTaskService(t)
	svc := f.failingStoreService()
	ctx := context.Background()

	upload := &media.Upload{Name: "doomed.txt", Content: strings.NewReader("x")}
	_, err := svc.Create(ctx, f.fields(), upload)
	assert.ErrorIs(t, err, ErrAttachmentWrite)

	// The row write committed before the attachment write failed.
	var count int64
	require.NoError(t, f.db.Model(&models.Task{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the task row must survive a failed attachment write")
}

func TestTaskService_Update_AttachmentWriteFailure(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	upload := &media.Upload{Name: "doomed.txt", Content: strings.NewReader("x")}
	_, err = f.failingStoreService().Update(ctx, task, repository.TaskUpdate{}, upload)
	assert.ErrorIs(t, err, ErrAttachmentWrite)
}

func TestTaskService_Delete_AttachmentWriteFailure(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	task, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	deleted, err := f.failingStoreService().Delete(ctx, task)
	assert.ErrorIs(t, err, ErrAttachmentWrite)
	assert.False(t, deleted)

	// The failed media clear stops the delete before the row is touched.
	_, err = f.service.Show(ctx, task)
	require.NoError(t, err)
}

func TestTaskService_ListFiltered(t *testing.T) {
	f := setupTaskService(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.fields(), nil)
	require.NoError(t, err)

	done := f.fields()
	done.Status = models.TaskStatusDone
	created, err := f.service.Create(ctx, done, nil)
	require.NoError(t, err)

	status := models.TaskStatusDone
	page, err := f.service.ListFiltered(ctx, f.project, repository.TaskFilter{Status: &status}, 1)
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, created.ID, page.Tasks[0].ID)
}
