package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Appointment"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Appointment", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", fmt.Errorf("cause")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("registry"), CodeUnavailable, http.StatusServiceUnavailable},
		{"reference not found", ReferenceNotFound("patient", 7), CodeReferenceNotFound, http.StatusUnprocessableEntity},
		{"validation unavailable", ValidationUnavailable("staff registry", fmt.Errorf("down")), CodeValidationUnavailable, http.StatusServiceUnavailable},
		{"past date time", PastDateTime("2020-01-01", "10:00"), CodePastDateTime, http.StatusUnprocessableEntity},
		{"invalid state", InvalidState("cannot cancel a completed appointment"), CodeInvalidState, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
			if tt.err.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestReferenceNotFoundDetails(t *testing.T) {
	err := ReferenceNotFound("veterinarian", 3)
	if err.Details["kind"] != "veterinarian" {
		t.Errorf("expected kind veterinarian, got %v", err.Details["kind"])
	}
	if err.Details["id"] != int64(3) {
		t.Errorf("expected id 3, got %v", err.Details["id"])
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ValidationUnavailable("patient registry", cause)
	if err.Unwrap() != cause {
		t.Errorf("expected cause to be preserved, got %v", err.Unwrap())
	}
}

func TestWithDetails(t *testing.T) {
	err := Conflict("slot taken").WithDetails(map[string]any{"date": "2025-03-11"})
	if err.Details["date"] != "2025-03-11" {
		t.Errorf("expected details attached, got %v", err.Details)
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Conflict("slot taken"), CodeConflict) {
		t.Error("expected HasCode to match")
	}
	if HasCode(Conflict("slot taken"), CodeNotFound) {
		t.Error("expected HasCode to reject a different code")
	}
	if HasCode(fmt.Errorf("plain error"), CodeConflict) {
		t.Error("expected HasCode to reject non-app errors")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Appointment")
	if AsAppError(appErr) != appErr {
		t.Error("expected the same AppError back")
	}

	wrapped := AsAppError(fmt.Errorf("plain error"))
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, wrapped.Code)
	}
	if wrapped.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", wrapped.HTTPStatus)
	}
}
