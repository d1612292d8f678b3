package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad %s", "field"), ErrCodeValidation, 400},
		{"duplicate", NewDuplicateError(), ErrCodeDuplicate, 409},
		{"locked category", NewLockedCategoryError("sponsor", ""), ErrCodeCategoryLocked, 403},
		{"not found", NewNotFoundError("nothing here"), ErrCodeNotFound, 404},
		{"internal", NewInternalError("Internal server error"), ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
			if tt.err.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestNewLockedCategoryError_IncludesReason(t *testing.T) {
	err := NewLockedCategoryError("sponsor", "existing segment is timed perfectly")
	if !strings.Contains(err.Message, "existing segment is timed perfectly") {
		t.Errorf("moderator reason missing from %q", err.Message)
	}
	if !strings.Contains(err.Message, "sponsor") {
		t.Errorf("category missing from %q", err.Message)
	}
}

func TestAsAPIError(t *testing.T) {
	if _, ok := AsAPIError(errors.New("plain")); ok {
		t.Error("plain error should not unwrap to APIError")
	}

	wrapped := fmt.Errorf("fetch: %w", NewNotFoundError("missing"))
	apiErr, ok := AsAPIError(wrapped)
	if !ok {
		t.Fatal("wrapped APIError not recognized")
	}
	if apiErr.Status != 404 {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
}
