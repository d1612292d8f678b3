package model

import (
	"errors"
	"fmt"
)

// Error codes surfaced in the API error envelope.
const (
	ErrCodeValidation     = "INVALID_FIELD"
	ErrCodeDuplicate      = "DUPLICATE_SUBMISSION"
	ErrCodeCategoryLocked = "CATEGORY_LOCKED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// APIError is a caller-visible domain error. Status is the HTTP status the
// handler layer should respond with; Message is always human-readable.
type APIError struct {
	Code    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationError reports a malformed or missing request field. Detected
// before any hashing or mutation.
func NewValidationError(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeValidation, Status: 400, Message: fmt.Sprintf(format, args...)}
}

// NewDuplicateError reports that byte-identical content is already recorded.
func NewDuplicateError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicate,
		Status:  409,
		Message: "This segment has already been submitted before.",
	}
}

// NewLockedCategoryError reports a non-VIP submission against a moderator
// locked category, including any moderator-supplied reason text.
func NewLockedCategoryError(category Category, reason string) *APIError {
	msg := fmt.Sprintf("New submissions are not allowed for the category '%s'. "+
		"A moderator has decided that all current segments of this category are timed perfectly.", category)
	if reason != "" {
		msg += fmt.Sprintf(" Lock reason: '%s'.", reason)
	}
	return &APIError{Code: ErrCodeCategoryLocked, Status: 403, Message: msg}
}

// NewNotFoundError reports that a read produced zero visible segments.
func NewNotFoundError(message string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Status: 404, Message: message}
}

// NewInternalError reports a store or cache failure. The original error stays
// in the logs, never in the response body.
func NewInternalError(message string) *APIError {
	return &APIError{Code: ErrCodeInternal, Status: 500, Message: message}
}
