package service

import "errors"

var (
	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAttachmentWrite marks a blob-store failure that happened after
	// the task row was already committed; callers must not treat it as a
	// validation or not-found condition.
	ErrAttachmentWrite = errors.New("attachment write failed")
)
