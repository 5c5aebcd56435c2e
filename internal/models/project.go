package models

import "time"

// Project groups tasks. Referenced by ID from tasks; otherwise opaque
// to this service.
type Project struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for Project.
func (Project) TableName() string {
	return "projects"
}
