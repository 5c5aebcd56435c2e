package service

import (
	"context"
	"fmt"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/notify"
	"github.com/taskflow/taskflow/internal/repository"
	"github.com/taskflow/taskflow/pkg/media"
)

// TaskService orchestrates the task repository, the attachment store and
// the notification dispatcher.
//
// Attachment writes run after the repository call returns and are outside
// the repository's transaction: a rollback of the row write cannot undo an
// attachment write and vice versa. The ordering is kept deliberately — the
// row is the source of truth and a stray attachment directory is cheaper
// than a task row pointing at files that were rolled back. Failures on
// that path surface as ErrAttachmentWrite.
type TaskService struct {
	repo     repository.TaskRepository
	media    media.Store
	notifier notify.Notifier
}

// NewTaskService creates a task service.
func NewTaskService(repo repository.TaskRepository, store media.Store, notifier notify.Notifier) *TaskService {
	return &TaskService{
		repo:     repo,
		media:    store,
		notifier: notifier,
	}
}

// mediaOwner is the attachment-store owner key for a task.
func mediaOwner(taskID uint) string {
	return fmt.Sprintf("tasks/%d", taskID)
}

// ListFiltered returns the project's tasks matching the filter.
func (s *TaskService) ListFiltered(ctx context.Context, project *models.Project, filter repository.TaskFilter, page int) (*repository.TaskPage, error) {
	return s.repo.List(ctx, project.ID, filter, page)
}

// Create inserts a task, stores the optional attachment and notifies the
// assignee. The notification is fire-and-forget: enqueueing never fails
// the create.
func (s *TaskService) Create(ctx context.Context, fields repository.TaskFields, attachment *media.Upload) (*models.Task, error) {
	task, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	if attachment != nil {
		if _, err := s.media.Add(ctx, mediaOwner(task.ID), media.CollectionAttachments, *attachment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachmentWrite, err)
		}
	}

	s.notifier.TaskCreated(task.User, *task)

	return task, nil
}

// Update applies a partial update. A supplied attachment replaces the
// whole attachments collection; without one, existing files stay as-is.
func (s *TaskService) Update(ctx context.Context, task *models.Task, fields repository.TaskUpdate, attachment *media.Upload) (*models.Task, error) {
	updated, err := s.repo.Update(ctx, task, fields)
	if err != nil {
		return nil, err
	}

	if attachment != nil {
		owner := mediaOwner(updated.ID)
		if err := s.media.Clear(ctx, owner, media.CollectionAttachments); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachmentWrite, err)
		}
		if _, err := s.media.Add(ctx, owner, media.CollectionAttachments, *attachment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachmentWrite, err)
		}
	}

	return updated, nil
}

// Show fetches the task by identity.
func (s *TaskService) Show(ctx context.Context, task *models.Task) (*models.Task, error) {
	return s.repo.Get(ctx, task.ID)
}

// Delete clears the task's attachments and removes the row. It returns
// the repository's signal of whether a row was actually removed.
func (s *TaskService) Delete(ctx context.Context, task *models.Task) (bool, error) {
	if err := s.media.Clear(ctx, mediaOwner(task.ID), media.CollectionAttachments); err != nil {
		return false, fmt.Errorf("%w: %v", ErrAttachmentWrite, err)
	}

	return s.repo.Delete(ctx, task)
}

// Attachments lists the task's stored attachment metadata.
func (s *TaskService) Attachments(ctx context.Context, task *models.Task) ([]media.Attachment, error) {
	return s.media.List(ctx, mediaOwner(task.ID), media.CollectionAttachments)
}
