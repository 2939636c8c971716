package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"rag-api-explorer-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Message string `json:"message" validate:"required,max=5"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hi"}))

	err := ValidateRequest(sampleRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "message is required")

	err = ValidateRequest(sampleRequest{Message: "too long"})
	assert.Contains(t, err.Error(), "at most 5")
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperror.New(apperror.ErrValidation, "message is required")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperror.New(apperror.ErrNotFound, "no session")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("fine", 1))
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", 400, "message is required"},
		{"/missing", 404, "no session"},
		{"/boom", 500, "Internal server error"},
		{"/ok", 200, "fine"},
		{"/nowhere", 404, "Cannot GET /nowhere"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.message, body["message"])
			assert.Equal(t, tc.status == 200, body["success"])
		})
	}
}
