package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", Validation("date must be YYYY-MM-DD"), "validation_error", http.StatusBadRequest},
		{"conflict", Conflict("slot taken"), "conflict", http.StatusConflict},
		{"forbidden", Forbidden("not the venue owner"), "forbidden", http.StatusForbidden},
		{"not found", NotFound("booking %s", "b1"), "not_found", http.StatusNotFound},
		{"already processed", AlreadyProcessed("booking is CONFIRMED"), "already_processed", http.StatusBadRequest},
		{"capacity", CapacityExceeded("2 places left"), "capacity_exceeded", http.StatusConflict},
		{"unauthenticated", Unauthenticated("missing bearer token"), "unauthenticated", http.StatusUnauthorized},
		{"internal", errors.New("disk on fire"), "internal_error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("failed to create booking: %w", Conflict("court c1 is booked"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "conflict", Code(err))
	assert.Equal(t, "slot unavailable: court c1 is booked", Message(err))
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("database is locked")))
	assert.Equal(t, "forbidden", Message(ErrForbidden))
}
