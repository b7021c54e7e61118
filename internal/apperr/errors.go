// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidTime   = errors.New("invalid time")
	ErrEmptyTask     = errors.New("empty task")
)
