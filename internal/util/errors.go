package util

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation failed")
	ErrAttemptsExhausted    = errors.New("no attempts left for this evaluation")
	ErrConfirmationRequired = errors.New("changing the evaluation type deletes all questions; confirmation required")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this course")
	ErrPaymentRequired      = errors.New("course requires payment")
	ErrMissingFields        = errors.New("missing required fields")
	ErrInvalidVideoExt      = errors.New("unsupported video format")
	ErrInvalidFileType      = errors.New("invalid file type")
)
