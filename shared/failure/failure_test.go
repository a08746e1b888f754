package failure_test

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"restobook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "bad request from error",
			err:     failure.BadRequest(errors.New("party_size must be at least 1")),
			code:    http.StatusBadRequest,
			message: "party_size must be at least 1",
		},
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("reservation_date must be a date in YYYY-MM-DD format"),
			code:    http.StatusBadRequest,
			message: "reservation_date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "unauthorized",
			err:     failure.Unauthorized("Token has expired"),
			code:    http.StatusUnauthorized,
			message: "Token has expired",
		},
		{
			name:    "forbidden",
			err:     failure.Forbidden("staff only"),
			code:    http.StatusForbidden,
			message: "staff only",
		},
		{
			name:    "not found",
			err:     failure.NotFound("restaurant not found"),
			code:    http.StatusNotFound,
			message: "restaurant not found",
		},
		{
			name:    "not found by id",
			err:     failure.NotFoundByID("reservation", 12),
			code:    http.StatusNotFound,
			message: "reservation not found with id: 12",
		},
		{
			name:    "conflict",
			err:     failure.Conflict("no tables available for the requested party size"),
			code:    http.StatusConflict,
			message: "no tables available for the requested party size",
		},
		{
			name:    "internal",
			err:     failure.InternalError(errors.New("connection reset")),
			code:    http.StatusInternalServerError,
			message: "connection reset",
		},
		{
			name:    "predefined forbidden",
			err:     failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, failure.IsFailure(tt.err))
		})
	}
}

func TestNilPassThrough(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestUnwrap(t *testing.T) {
	err := failure.InternalError(fmt.Errorf("failed to load restaurant: %w", sql.ErrConnDone))

	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "failure",
			err:  failure.Conflict("taken"),
			want: http.StatusConflict,
		},
		{
			name: "wrapped failure",
			err:  fmt.Errorf("failed to create reservation: %w", failure.NotFoundByID("restaurant", 4)),
			want: http.StatusNotFound,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
		{
			name: "nil",
			err:  nil,
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}

func TestIsFailure(t *testing.T) {
	assert.False(t, failure.IsFailure(errors.New("boom")))
	assert.False(t, failure.IsFailure(nil))
	assert.True(t, failure.IsFailure(fmt.Errorf("wrapped: %w", failure.Unauthorized("Invalid token"))))
}
