package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/birbnest/jsonregistry/internal/registry"
	"github.com/birbnest/jsonregistry/internal/telemetry"
)

// Handler holds all dependencies for the HTTP surface's handlers.
type Handler struct {
	core    *registry.Core
	version string
}

// NewHandler creates a new handler instance.
func NewHandler(core *registry.Core, version string) *Handler {
	return &Handler{core: core, version: version}
}

// Register handles POST /v1/objects: canonicalise, dedup, and return the
// stable id for a single JSON value.
func (h *Handler) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse("invalid request body", ErrCodeInvalidRequest),
		)
	}
	if len(req.Value) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse("value is required", ErrCodeInvalidRequest),
		)
	}

	id, err := h.core.RegisterObject(ctx, req.Value)
	if err != nil {
		return writeRegistryError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(RegisterResponse{ID: id})
}

// RegisterBatch handles POST /v1/objects/batch: resolve many JSON values
// to their ids in one call, preserving input order in the response.
func (h *Handler) RegisterBatch(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req RegisterBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse("invalid request body", ErrCodeInvalidRequest),
		)
	}
	if len(req.Values) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse("values array cannot be empty", ErrCodeInvalidRequest),
		)
	}

	values := make([][]byte, len(req.Values))
	for i, v := range req.Values {
		values[i] = v
	}

	ids, err := h.core.RegisterBatch(ctx, values)
	if err != nil {
		return writeRegistryError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(RegisterBatchResponse{IDs: ids})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	if h.core.IsClosed() {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(HealthResponse{
		Status:  status,
		Service: "jsonregistry",
		Version: h.version,
	})
}

// Metrics handles GET /metrics, serving the Prometheus exposition format.
func (h *Handler) Metrics(c *fiber.Ctx) error {
	return adaptor.HTTPHandler(telemetry.Handler())(c)
}

// writeRegistryError translates a registry.Error into the matching HTTP
// status and error code; anything not a *registry.Error is treated as
// an opaque internal failure.
func writeRegistryError(c *fiber.Ctx, err error) error {
	var rerr *registry.Error
	if !errors.As(err, &rerr) {
		return c.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse("internal error", ErrCodeInternalError),
		)
	}

	status, code := fiber.StatusInternalServerError, ErrCodeInternalError
	switch rerr.Kind {
	case registry.KindInvalidJSON:
		status, code = fiber.StatusBadRequest, ErrCodeInvalidJSON
	case registry.KindInvalidIdentifier:
		status, code = fiber.StatusInternalServerError, ErrCodeInvalidIdentifier
	case registry.KindPoolTimeout:
		status, code = fiber.StatusServiceUnavailable, ErrCodePoolTimeout
	case registry.KindPoolClosed:
		status, code = fiber.StatusServiceUnavailable, ErrCodePoolClosed
	case registry.KindDatabase:
		status, code = fiber.StatusBadGateway, ErrCodeDatabase
	case registry.KindCancelled:
		status, code = fiber.StatusRequestTimeout, ErrCodeCancelled
	}

	return c.Status(status).JSON(NewErrorResponse(rerr.Error(), code))
}
