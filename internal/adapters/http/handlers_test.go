package web

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	bookingStore "academy/internal/adapters/storage/booking"
	"academy/internal/application/orchestrators"
	"academy/internal/domain/account"
	"academy/internal/domain/booking"
	"academy/internal/domain/capacity"
	"academy/internal/domain/wizard"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"wizard validation", &wizard.ValidationError{Field: "step", Reason: "x"}, http.StatusBadRequest, wizard.KindValidation},
		{"wizard capacity", &wizard.CapacityError{Month: "2025-06"}, http.StatusConflict, wizard.KindCapacity},
		{"store down", &wizard.CollaboratorError{Op: "create_booking", Err: errors.New("disk full")}, http.StatusBadGateway, wizard.KindCollaborator},
		{"lost race", &wizard.CollaboratorError{Op: "create_booking", Err: capacity.ErrInsufficientSlots}, http.StatusConflict, wizard.KindCollaborator},
		{"bad credentials", orchestrators.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"locked", orchestrators.ErrAccountLocked, http.StatusLocked, ""},
		{"not owner", orchestrators.ErrNotOwner, http.StatusForbidden, ""},
		{"wrapped not found", fmt.Errorf("load: %w", bookingStore.ErrNotFound), http.StatusNotFound, ""},
		{"already confirmed", booking.ErrAlreadyConfirmed, http.StatusConflict, ""},
		{"stale status", fmt.Errorf("save booking: %w", booking.ErrStatusChanged), http.StatusConflict, ""},
		{"bad email", account.ErrInvalidEmail, http.StatusBadRequest, wizard.KindValidation},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, kind := classify(tt.err)
			if code != tt.wantCode || kind != tt.wantKind {
				t.Errorf("classify = %d %q, want %d %q", code, kind, tt.wantCode, tt.wantKind)
			}
		})
	}
}

// TestErrorFor_HidesInternalDetail verifies server-side failures never leak their message.
func TestErrorFor_HidesInternalDetail(t *testing.T) {
	_, body := errorFor(errors.New("sql: connection refused at 10.0.0.3"))
	if body.Error != "internal server error" {
		t.Errorf("500 body = %q", body.Error)
	}
	_, body = errorFor(&wizard.CollaboratorError{Op: "create_booking", Err: errors.New("disk full")})
	if body.Error == "" || body.Kind != wizard.KindCollaborator {
		t.Errorf("502 body = %+v", body)
	}
}
