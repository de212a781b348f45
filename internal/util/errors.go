package util

import "errors"

// 错误分类，业务错误通过 errors.Is 归类
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrSessionClosed    = errors.New("this section has ended")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
)

var (
	ErrSessionNotFound  = categorized(ErrNotFound, "session not found")
	ErrSectionNotFound  = categorized(ErrNotFound, "section not found")
	ErrQuestionNotFound = categorized(ErrNotFound, "question not found")
	ErrTopicNotFound    = categorized(ErrNotFound, "topic not found")
	ErrCourseNotFound   = categorized(ErrNotFound, "course not found")
	ErrPackageNotFound  = categorized(ErrNotFound, "package not found")

	ErrPayloadKindMismatch = categorized(ErrValidation, "payload kind does not match question type")
	ErrUnknownOption       = categorized(ErrValidation, "option does not belong to question")
	ErrPackageNotOpen      = categorized(ErrValidation, "package is not open yet")
	ErrPackageClosed       = categorized(ErrValidation, "package has ended")
	ErrSessionStillOpen    = categorized(ErrValidation, "review available after the section ends")
	ErrTopicLocked         = categorized(ErrValidation, "topic is locked")
	ErrVideoNotCompleted   = categorized(ErrValidation, "video must be completed before the drill")
	ErrTopicHasNoDrill     = categorized(ErrValidation, "topic has no drill")

	ErrUnknownPayloadKind = categorized(ErrValidation, "payload kind must be choice or essay")

	ErrSessionConflict = categorized(ErrConflict, "session was created concurrently")

	ErrSessionOwnership = categorized(ErrPermissionDenied, "session belongs to another learner")
)

type categoryError struct {
	msg      string
	category error
}

func (e *categoryError) Error() string { return e.msg }

func (e *categoryError) Unwrap() error { return e.category }

func categorized(category error, msg string) error {
	return &categoryError{msg: msg, category: category}
}

// NewValidationError builds a validation error with a custom message.
func NewValidationError(msg string) error {
	return categorized(ErrValidation, msg)
}
