package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapdata-service/internal/pkg/errors"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	if resp.StatusCode != fiber.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestSendSuccess(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, []string{"North"}, &Meta{MapKey: "world", Cached: true})
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{"North"}, body["data"])
	assert.Equal(t, map[string]interface{}{"map_key": "world", "cached": true}, body["meta"])
}

func TestSendError(t *testing.T) {
	t.Run("wrapped app error keeps its status", func(t *testing.T) {
		status, body := call(t, func(c *fiber.Ctx) error {
			return SendError(c, fmt.Errorf("load: %w", errors.InvalidPayload("items", "data is not an array")))
		})

		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		apiErr := body["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_PAYLOAD", apiErr["code"])
		assert.Equal(t, "items", apiErr["details"].(map[string]interface{})["dataset"])
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		status, body := call(t, func(c *fiber.Ctx) error {
			return SendError(c, fmt.Errorf("boom"))
		})

		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body["error"].(map[string]interface{})["code"])
	})
}

func TestSendNoContent(t *testing.T) {
	status, _ := call(t, SendNoContent)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestElapsedMS(t *testing.T) {
	assert.InDelta(t, 1500.0, ElapsedMS(time.Now().Add(-1500*time.Millisecond)), 100)
}
