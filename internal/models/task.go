package models

import "time"

// Task status constants
const (
	TaskStatusPlanned    = "planned"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task is a unit of work assigned to a user within a project.
// CompletedAt holds a calendar date normalized to midnight UTC; the
// repository's date filters rely on that normalization.
type Task struct {
	ID          uint       `gorm:"primarykey"`
	Header      string     `gorm:"size:255;not null"`
	Description string     `gorm:"not null"`
	Status      string     `gorm:"size:20;not null;default:planned"`
	CompletedAt *time.Time `gorm:"type:date"`
	ProjectID   uint       `gorm:"not null;index"`
	UserID      uint       `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project
	User    User
}

// TableName returns the table name for Task.
func (Task) TableName() string {
	return "tasks"
}
