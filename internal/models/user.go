package models

import "time"

// User is a registered account and potential task assignee.
type User struct {
	ID           uint   `gorm:"primarykey"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// UserToken is an issued bearer token. The ID doubles as the JWT jti
// claim; deleting the row revokes the token.
type UserToken struct {
	ID        string `gorm:"primarykey;size:36"`
	UserID    uint   `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName returns the table name for UserToken.
func (UserToken) TableName() string {
	return "user_tokens"
}
