package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped unauthorized", fmt.Errorf("login: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"precondition", ErrPrecondition, http.StatusUnprocessableEntity},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"app error code wins", New(http.StatusTeapot, "teh", ErrNotFound), http.StatusTeapot},
		{"wrapped app error", fmt.Errorf("svc: %w", Conflict("sudah diproses", nil)), http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("Gagal menambahkan poin.", cause)

	assert.Equal(t, "Gagal menambahkan poin.", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := New(http.StatusNotFound, "", ErrNotFound)
	assert.Equal(t, ErrNotFound.Error(), bare.Error())
}
