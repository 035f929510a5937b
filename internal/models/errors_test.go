package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("nope"), fiber.StatusUnauthorized},
		{"not found", NewNotFoundError("Post", "abc"), fiber.StatusNotFound},
		{"storage", NewStorageError(errors.New("conn refused")), fiber.StatusServiceUnavailable},
		{"upstream", NewUpstreamError(errors.New("tmdb down")), fiber.StatusBadGateway},
		{"wrapped app error", fmt.Errorf("ctx: %w", NewValidationError("bad")), fiber.StatusBadRequest},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewStorageError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Storage unavailable: dial tcp: connection refused", err.Error())
	assert.Equal(t, CodeStorageFailure, ErrorCode(err))
	assert.Equal(t, "", ErrorCode(cause))
}

func TestRespondWithError(t *testing.T) {
	app := fiber.New()
	app.Get("/storage", func(c *fiber.Ctx) error {
		err := NewStorageError(errors.New("timeout"))
		return RespondWithError(c, StatusFor(err), err)
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusTeapot, errors.New("short and stout"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/storage", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Storage unavailable", got.Error)
	assert.Equal(t, CodeStorageFailure, got.Code)
	assert.Equal(t, "timeout", got.Details)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	var plain ErrorResponse
	require.NoError(t, json.Unmarshal(body, &plain))
	assert.Equal(t, "short and stout", plain.Error)
	assert.Empty(t, plain.Code)
}
