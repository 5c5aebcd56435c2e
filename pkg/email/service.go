package email

import (
	"context"

	"github.com/taskflow/taskflow/internal/models"
)

// Service defines the interface for sending emails.
type Service interface {
	SendTaskCreatedEmail(ctx context.Context, user *models.User, task *models.Task) error
}

// Template represents an email template.
type Template struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Data contains data for template rendering.
type Data struct {
	User    *models.User
	Task    *models.Task
	Status  string
	TaskURL string
	AppName string
}

// Config holds email service configuration.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	BaseURL      string
	AppName      string
}

// Templates holds all email templates.
type Templates struct {
	TaskCreated Template
}

// NewTemplates creates default email templates.
func NewTemplates() *Templates {
	return &Templates{
		TaskCreated: Template{
			Subject: "New task: {{.Task.Header}}",
			HTMLBody: `
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New Task</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; margin-bottom: 30px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; }
        .detail { margin: 10px 0; padding: 10px; background-color: #f8f9fa; border-radius: 5px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>A new task has been assigned to you</h1>
        </div>

        <div class="detail"><strong>Header:</strong> {{.Task.Header}}</div>
        <div class="detail"><strong>Description:</strong> {{.Task.Description}}</div>
        <div class="detail"><strong>Status:</strong> {{.Status}}</div>

        <p style="text-align: center; margin: 30px 0;">
            <a href="{{.TaskURL}}" class="button">View Task</a>
        </p>

        <div class="footer">
            <p>Thank you for using {{.AppName}}!</p>
        </div>
    </div>
</body>
</html>`,
			TextBody: `A new task has been assigned to you.

Header: {{.Task.Header}}
Description: {{.Task.Description}}
Status: {{.Status}}

View task: {{.TaskURL}}

Thank you for using {{.AppName}}!`,
		},
	}
}

// StatusText returns the human-readable label for a task status.
func StatusText(status string) string {
	switch status {
	case models.TaskStatusPlanned:
		return "Planned"
	case models.TaskStatusInProgress:
		return "In progress"
	case models.TaskStatusDone:
		return "Done"
	default:
		return status
	}
}
