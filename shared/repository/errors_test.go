package repository_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"restobook/shared/failure"
	"restobook/shared/repository"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantCode int
		same     bool
	}{
		{
			name:     "unique violation",
			err:      fmt.Errorf("failed to insert data: %w", &pq.Error{Code: "23505"}),
			wantCode: http.StatusConflict,
		},
		{
			name:     "foreign key violation",
			err:      &pq.Error{Code: "23503"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "other pq error",
			err:      &pq.Error{Code: "23514"},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "not a pq error",
			err:      plain,
			wantCode: http.StatusInternalServerError,
			same:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.TranslateError("reservation", tt.err)

			assert.Equal(t, tt.wantCode, failure.GetCode(got))

			if tt.same {
				assert.Same(t, plain, got)
			}
		})
	}
}
