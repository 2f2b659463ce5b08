package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "filter validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "filter validation failed" {
		t.Errorf("expected message 'filter validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("mongo: connection refused")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "Vehicle not found",
			},
			expected: "NOT_FOUND: Vehicle not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("mongo: connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: mongo: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestInvalidReference(t *testing.T) {
	err := InvalidReference("city", "665f1f77bcf86cd799439011")

	if err.Code != CodeInvalidReference {
		t.Errorf("expected code %s, got %s", CodeInvalidReference, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
	if err.Details["resource"] != "city" {
		t.Errorf("expected resource detail 'city', got %v", err.Details["resource"])
	}
	if err.Details["id"] != "665f1f77bcf86cd799439011" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
}

func TestValidation_CarriesAllViolations(t *testing.T) {
	details := map[string]any{
		"start_time": "Must be in the future",
		"end_time":   "Must be after start_time",
		"max_price":  "Must be greater than or equal to min_price",
	}
	err := Validation("Filter validation failed", details)

	if len(err.Details) != 3 {
		t.Fatalf("expected 3 violations reported together, got %d", len(err.Details))
	}
	for field, reason := range details {
		if err.Details[field] != reason {
			t.Errorf("expected %s -> %v, got %v", field, reason, err.Details[field])
		}
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("Assignment already exists for this vehicle and route")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError should return the same AppError")
	}

	wrapped := fmt.Errorf("handler: %w", appErr)
	if got := AsAppError(wrapped); got != appErr {
		t.Errorf("AsAppError should unwrap nested AppError")
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, got.Code)
	}
}

func TestAppError_StatusCode(t *testing.T) {
	if got := NotFound("Interval").StatusCode(); got != http.StatusNotFound {
		t.Errorf("StatusCode() = %d, want %d", got, http.StatusNotFound)
	}
	if got := Conflict("duplicate interval").StatusCode(); got != http.StatusConflict {
		t.Errorf("StatusCode() = %d, want %d", got, http.StatusConflict)
	}
	if got := Forbidden("Access denied").StatusCode(); got != http.StatusForbidden {
		t.Errorf("StatusCode() = %d, want %d", got, http.StatusForbidden)
	}
}
