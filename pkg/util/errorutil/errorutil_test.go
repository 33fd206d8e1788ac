package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewInvalidCredentials()), "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"fiber error keeps status", fiber.NewError(http.StatusNotFound, "Cannot GET /x"), "NOT_FOUND", http.StatusNotFound},
		{"no rows is not found", fmt.Errorf("load: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique violation is conflict", &pgconn.PgError{Code: "23505"}, "CONFLICT", http.StatusConflict},
		{"foreign key violation is conflict", &pgconn.PgError{Code: "23503"}, "CONFLICT", http.StatusConflict},
		{"anything else is internal", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error: db down", err.Error())
}
