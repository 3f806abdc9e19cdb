package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("recipe not found"), http.StatusNotFound},
		{Conflict("already in favorites"), http.StatusBadRequest},
		{InvalidArgument("cannot follow yourself"), http.StatusBadRequest},
		{Forbidden("not the author"), http.StatusForbidden},
		{Unauthenticated("missing token"), http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("user not found")), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusOf(tt.err), tt.err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("toggle: %w", Conflict("recipe is already in favorites"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("database unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database unavailable: connection refused", err.Error())
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWithDetails(t *testing.T) {
	err := InvalidArgument("invalid recipe").WithDetails(map[string]string{"cooking_time": "must be at least 1"})

	assert.Equal(t, "must be at least 1", err.Details["cooking_time"])
	assert.Nil(t, ErrInvalidArgument.Details)
}
