package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("ticket"), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden(), "FORBIDDEN", http.StatusForbidden},
		{"invalid status", NewInvalidStatus("RESOLVED"), "INVALID_STATUS", http.StatusBadRequest},
		{"invalid transition", NewInvalidTransition("CLOSED", "OPEN"), "INVALID_TRANSITION", http.StatusBadRequest},
		{"conflict", NewConflict("already final", nil), "CONFLICT", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de *DomainError
			require.True(t, errors.As(tc.err, &de))
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestForbiddenNeverLeaksDetail(t *testing.T) {
	de := ToDomainError(NewForbidden())
	assert.Equal(t, "access denied", de.Message)
	assert.Empty(t, de.Details)
}

func TestInvalidTransitionCarriesEdge(t *testing.T) {
	de := ToDomainError(NewInvalidTransition("IN_PROGRESS", "CLOSED"))
	assert.Equal(t, "Cannot change status from IN_PROGRESS to CLOSED", de.Message)
	assert.Equal(t, "IN_PROGRESS", de.Details["from"])
	assert.Equal(t, "CLOSED", de.Details["to"])
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewConflict("busy", map[string]any{"k": "v"})
	de := ToDomainError(original)
	assert.Same(t, original, de)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	wrapped := fmt.Errorf("load ticket: %w", pgx.ErrNoRows)
	de = ToDomainError(wrapped)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection refused")
	de := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)

	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(NewInternalError(cause))
	assert.ErrorIs(t, de, cause)
	assert.Contains(t, de.Error(), "boom")
}
