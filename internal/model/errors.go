package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Token related errors
	ErrInvalidToken = errors.New("invalid or expired token")

	// Domain entity errors
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrTeacherNotFound  = errors.New("teacher not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTestNotFound     = errors.New("test not found")
	ErrAlreadyExists    = errors.New("already exists")
)
