package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/birbnest/jsonregistry/internal/api"
	"github.com/birbnest/jsonregistry/internal/registry"
)

func newTestApp(t *testing.T, core *registry.Core) *fiber.App {
	t.Helper()

	app := fiber.New()
	api.SetupMiddleware(app)
	api.SetupRoutes(app, api.NewHandler(core, "test"), "")
	return app
}

func TestAPI_RegisterBatch_ReturnsIDsInInputOrder(t *testing.T) {
	pgURL := setupContainer(t)
	core := newTestCore(t, pgURL, nil)
	app := newTestApp(t, core)

	payload := api.RegisterBatchRequest{
		Values: []json.RawMessage{
			json.RawMessage(`{"n": 1}`),
			json.RawMessage(`{"n": 2}`),
			json.RawMessage(`{"n": 1}`),
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/objects/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.RegisterBatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.IDs, 3)
	require.Equal(t, result.IDs[0], result.IDs[2])
	require.NotEqual(t, result.IDs[0], result.IDs[1])
}

func TestAPI_RegisterBatch_RejectsEmptyValues(t *testing.T) {
	pgURL := setupContainer(t)
	core := newTestCore(t, pgURL, nil)
	app := newTestApp(t, core)

	payload := api.RegisterBatchRequest{Values: []json.RawMessage{}}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/objects/batch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(t, api.ErrCodeInvalidRequest, errResp.Code)
}

func TestAPI_Register_RejectsInvalidRequestBody(t *testing.T) {
	pgURL := setupContainer(t)
	core := newTestCore(t, pgURL, nil)
	app := newTestApp(t, core)

	req := httptest.NewRequest(http.MethodPost, "/v1/objects", bytes.NewReader([]byte(`not json at all`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(t, api.ErrCodeInvalidRequest, errResp.Code)
}

func TestAPI_Register_ThenHealthz(t *testing.T) {
	pgURL := setupContainer(t)
	core := newTestCore(t, pgURL, nil)
	app := newTestApp(t, core)

	body, err := json.Marshal(api.RegisterRequest{Value: json.RawMessage(`{"ok": true}`)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/objects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var regResult api.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResult))
	require.NotZero(t, regResult.ID)

	healthReq := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	healthResp, err := app.Test(healthReq, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, healthResp.StatusCode)
}
