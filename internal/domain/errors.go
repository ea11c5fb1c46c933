package domain

import "errors"

// Validation errors surfaced by the service layer.
var (
	ErrTitleTooLong   = errors.New("title must be at most 250 characters")
	ErrContentTooLong = errors.New("content must be at most 900 characters")
	ErrEmptyField     = errors.New("required field is empty")
)
