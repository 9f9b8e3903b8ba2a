package errors

import (
	"errors"
	"net/http"
	"testing"
)

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
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection refused"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := Internal("wrapped", cause)

	if unwrapped := errors.Unwrap(appErr); unwrapped != cause {
		t.Errorf("Unwrap() should return the original error")
	}
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("invalid slot", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("session expired"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("mentor only"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal("boom", errors.New("x")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestStaleVersion(t *testing.T) {
	err := StaleVersion("Booking", 4)

	if err.Code != CodeConflict {
		t.Errorf("Code = %s, want %s", err.Code, CodeConflict)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusConflict)
	}
	if err.Details["stale_version"] != int64(4) {
		t.Errorf("expected stale_version detail 4, got %v", err.Details["stale_version"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource detail 'Booking', got %v", err.Details["resource"])
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Mentor", "66f0a1")

	if err.Details["id"] != "66f0a1" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
	if err.Message != "Mentor not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("nope")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError() should pass through an AppError")
	}

	plain := errors.New("plain")
	wrapped := AsAppError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap plain errors as internal, got %s", wrapped.Code)
	}
	if wrapped.Err != plain {
		t.Errorf("AsAppError() should keep the original cause")
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(Conflict("x")) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if IsAppError(errors.New("x")) {
		t.Errorf("IsAppError() should return false for plain errors")
	}
}
