package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDependency struct {
	enabled bool
	err     error
}

func (d fakeDependency) Enabled() bool              { return d.enabled }
func (d fakeDependency) Ping(context.Context) error { return d.err }

func probe(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/ready", h.Ready)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestReadyIgnoresDisabledDependencies(t *testing.T) {
	status, body := probe(t, NewHealthHandler("svc", "v1", map[string]Dependency{
		"postgres": fakeDependency{enabled: true},
		"redis":    fakeDependency{enabled: false, err: errors.New("never pinged")},
	}))

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "ok", "redis": "disabled"}, body["dependencies"])
}

func TestReadyReportsUnreachableDependency(t *testing.T) {
	status, body := probe(t, NewHealthHandler("svc", "v1", map[string]Dependency{
		"postgres": fakeDependency{enabled: true, err: errors.New("connection refused")},
	}))

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
	assert.Equal(t, map[string]any{"postgres": "unreachable"}, errBody["details"])
}
