package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/repository"
	"github.com/taskflow/taskflow/internal/service"
	"github.com/taskflow/taskflow/pkg/media"
)

const (
	dateLayout        = "2006-01-02"
	maxAttachmentSize = 10 << 20 // 10 MiB
)

// TaskHandlers serves the task CRUD and listing endpoints.
type TaskHandlers struct {
	tasks  *service.TaskService
	lookup *Lookup
}

// NewTaskHandlers creates task handlers.
func NewTaskHandlers(tasks *service.TaskService, lookup *Lookup) *TaskHandlers {
	return &TaskHandlers{tasks: tasks, lookup: lookup}
}

type createTaskRequest struct {
	Header      string `form:"header" binding:"required,max=255"`
	Description string `form:"description" binding:"required"`
	Status      string `form:"status" binding:"required,oneof=planned in_progress done"`
	CompletedAt string `form:"completed_at" binding:"omitempty,datetime=2006-01-02"`
	UserID      uint   `form:"user_id" binding:"required"`
}

type updateTaskRequest struct {
	Header      *string `form:"header" binding:"omitempty,max=255"`
	Description *string `form:"description" binding:"omitempty"`
	Status      *string `form:"status" binding:"omitempty,oneof=planned in_progress done"`
	CompletedAt *string `form:"completed_at" binding:"omitempty,datetime=2006-01-02"`
	UserID      *uint   `form:"user_id" binding:"omitempty"`
}

type filterTaskRequest struct {
	Status        string `form:"status" binding:"omitempty,oneof=planned in_progress done"`
	UserID        *uint  `form:"user_id" binding:"omitempty"`
	CompletedAt   string `form:"completed_at" binding:"omitempty,datetime=2006-01-02"`
	CompletedFrom string `form:"completed_from" binding:"omitempty,datetime=2006-01-02"`
	CompletedTo   string `form:"completed_to" binding:"omitempty,datetime=2006-01-02"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
}

var taskFieldNames = map[string]string{
	"Header":        "header",
	"Description":   "description",
	"Status":        "status",
	"CompletedAt":   "completed_at",
	"CompletedFrom": "completed_from",
	"CompletedTo":   "completed_to",
	"UserID":        "user_id",
	"Page":          "page",
}

var taskMessages = map[string]string{
	"Header.required":        "Task header is required",
	"Header.max":             "Header may not exceed 255 characters",
	"Description.required":   "Task description is required",
	"Status.required":        "Task status is required",
	"Status.oneof":           "Status must be one of: planned, in_progress, done",
	"CompletedAt.datetime":   "Completion date must be a valid date",
	"CompletedFrom.datetime": "Period start must be a valid date",
	"CompletedTo.datetime":   "Period end must be a valid date",
	"UserID.required":        "Task assignee is required",
	"Page.min":               "Page must be a positive number",
}

const (
	msgUserMissing    = "The selected assignee does not exist"
	msgDateInPast     = "Completion date may not be in the past"
	msgRangeInverted  = "Period end must be on or after period start"
	msgAttachmentSize = "Attachment may not exceed 10 MB"
)

// Index handles GET /projects/:project/tasks.
func (h *TaskHandlers) Index(c *gin.Context) {
	project := h.resolveProject(c)
	if project == nil {
		return
	}

	var req filterTaskRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationFailed(c, bindingErrors(err, taskFieldNames, taskMessages))
		return
	}

	errs := fieldErrors{}
	filter := repository.TaskFilter{}

	if req.Status != "" {
		filter.Status = &req.Status
	}
	if req.UserID != nil {
		exists, err := h.lookup.UserExists(c.Request.Context(), *req.UserID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !exists {
			errs.add("user_id", msgUserMissing)
		} else {
			filter.UserID = req.UserID
		}
	}

	filter.CompletedAt = parseDateField(req.CompletedAt)
	filter.CompletedFrom = parseDateField(req.CompletedFrom)
	filter.CompletedTo = parseDateField(req.CompletedTo)

	if filter.CompletedFrom != nil && filter.CompletedTo != nil &&
		filter.CompletedTo.Before(*filter.CompletedFrom) {
		errs.add("completed_to", msgRangeInverted)
	}

	if len(errs) > 0 {
		respondValidationFailed(c, errs)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	result, err := h.tasks.ListFiltered(c.Request.Context(), project, filter, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.taskCollection(c, result))
}

// Store handles POST /projects/:project/tasks.
func (h *TaskHandlers) Store(c *gin.Context) {
	project := h.resolveProject(c)
	if project == nil {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationFailed(c, bindingErrors(err, taskFieldNames, taskMessages))
		return
	}

	errs := fieldErrors{}

	completedAt := parseDateField(req.CompletedAt)
	if completedAt != nil && completedAt.Before(today()) {
		errs.add("completed_at", msgDateInPast)
	}

	exists, err := h.lookup.UserExists(c.Request.Context(), req.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !exists {
		errs.add("user_id", msgUserMissing)
	}

	upload, closeUpload, ok := h.attachmentUpload(c, errs)
	if closeUpload != nil {
		defer closeUpload()
	}
	if !ok || len(errs) > 0 {
		respondValidationFailed(c, errs)
		return
	}

	fields := repository.TaskFields{
		Header:      req.Header,
		Description: req.Description,
		Status:      req.Status,
		CompletedAt: completedAt,
		ProjectID:   project.ID,
		UserID:      req.UserID,
	}

	task, err := h.tasks.Create(c.Request.Context(), fields, upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": h.taskResource(c, task)})
}

// Show handles GET /tasks/:task.
func (h *TaskHandlers) Show(c *gin.Context) {
	task := h.resolveTask(c)
	if task == nil {
		return
	}

	shown, err := h.tasks.Show(c.Request.Context(), task)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.taskResource(c, shown)})
}

// Update handles POST /tasks/:task/update and PUT /tasks/:task.
func (h *TaskHandlers) Update(c *gin.Context) {
	task := h.resolveTask(c)
	if task == nil {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationFailed(c, bindingErrors(err, taskFieldNames, taskMessages))
		return
	}

	errs := fieldErrors{}
	fields := repository.TaskUpdate{
		Header:      req.Header,
		Description: req.Description,
		Status:      req.Status,
	}

	if req.CompletedAt != nil {
		fields.CompletedAt = parseDateField(*req.CompletedAt)
	}
	if req.UserID != nil {
		exists, err := h.lookup.UserExists(c.Request.Context(), *req.UserID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if !exists {
			errs.add("user_id", msgUserMissing)
		} else {
			fields.UserID = req.UserID
		}
	}

	upload, closeUpload, ok := h.attachmentUpload(c, errs)
	if closeUpload != nil {
		defer closeUpload()
	}
	if !ok || len(errs) > 0 {
		respondValidationFailed(c, errs)
		return
	}

	updated, err := h.tasks.Update(c.Request.Context(), task, fields, upload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": h.taskResource(c, updated)})
}

// Destroy handles DELETE /tasks/:task.
func (h *TaskHandlers) Destroy(c *gin.Context) {
	task := h.resolveTask(c)
	if task == nil {
		return
	}

	deleted, err := h.tasks.Delete(c.Request.Context(), task)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// resolveProject resolves the :project route parameter or writes a 404.
func (h *TaskHandlers) resolveProject(c *gin.Context) *models.Project {
	id, ok := parseUintParam(c, "project")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return nil
	}

	project, err := h.lookup.Project(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return nil
	}
	return project
}

// resolveTask resolves the :task route parameter or writes a 404.
func (h *TaskHandlers) resolveTask(c *gin.Context) *models.Task {
	id, ok := parseUintParam(c, "task")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return nil
	}

	task, err := h.lookup.Task(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return nil
	}
	return task
}

// attachmentUpload extracts the optional multipart attachment. A missing
// file (or a non-multipart request) is fine; an oversized file or a body
// that fails to parse records a field error. The returned close function
// must be called after the upload has been consumed.
func (h *TaskHandlers) attachmentUpload(c *gin.Context, errs fieldErrors) (*media.Upload, func(), bool) {
	fh, err := c.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, true
		}
		errs.add("attachment", "Attachment could not be read")
		return nil, nil, false
	}

	if fh.Size > maxAttachmentSize {
		errs.add("attachment", msgAttachmentSize)
		return nil, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		errs.add("attachment", "Attachment could not be read")
		return nil, nil, false
	}

	return &media.Upload{Name: fh.Filename, Content: f}, func() { f.Close() }, true
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// parseDateField parses a pre-validated YYYY-MM-DD string into a
// midnight-UTC time; empty input yields nil.
func parseDateField(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// today returns the current calendar date at midnight UTC.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
