package api

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/repository"
)

// taskResource serializes a task together with its owner, project and
// first attachment URL.
func (h *TaskHandlers) taskResource(c *gin.Context, task *models.Task) gin.H {
	var completedAt any
	if task.CompletedAt != nil {
		completedAt = task.CompletedAt.Format(dateLayout)
	}

	attachmentURL := ""
	attachments, err := h.tasks.Attachments(c.Request.Context(), task)
	if err != nil {
		log.Printf("WARN: listing attachments for task %d: %v", task.ID, err)
	} else if len(attachments) > 0 {
		attachmentURL = attachments[0].URL
	}

	return gin.H{
		"id":           task.ID,
		"header":       task.Header,
		"description":  task.Description,
		"status":       task.Status,
		"completed_at": completedAt,
		"user": gin.H{
			"id":    task.User.ID,
			"email": task.User.Email,
		},
		"project": gin.H{
			"id":   task.Project.ID,
			"name": task.Project.Name,
		},
		"attachment_url": attachmentURL,
	}
}

// taskCollection serializes one page of tasks with pagination metadata.
func (h *TaskHandlers) taskCollection(c *gin.Context, page *repository.TaskPage) gin.H {
	data := make([]gin.H, 0, len(page.Tasks))
	for i := range page.Tasks {
		data = append(data, h.taskResource(c, &page.Tasks[i]))
	}

	return gin.H{
		"data": data,
		"meta": gin.H{
			"total":        page.Total,
			"per_page":     page.PerPage,
			"current_page": page.CurrentPage,
			"last_page":    page.LastPage,
		},
	}
}
