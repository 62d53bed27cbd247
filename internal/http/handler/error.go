package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"bizprofile/internal/http/middleware"
	"bizprofile/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service and framework errors onto the error envelope.
// Anything unrecognised is logged and reported as INTERNAL_ERROR.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	var fe *fiber.Error

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Not authenticated")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Error())
	case errors.Is(err, service.ErrUpstreamUnavailable):
		zerolog.Ctx(c.UserContext()).Warn().Err(err).Msg("auth broker unavailable")
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Authentication service unavailable")
	case errors.As(err, &fe):
		return writeFiberError(c, fe)
	default:
		zerolog.Ctx(c.UserContext()).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeFiberError(c *fiber.Ctx, e *fiber.Error) error {
	switch e.Code {
	case fiber.StatusBadRequest:
		return writeError(c, e.Code, "BAD_REQUEST", "bad request")
	case fiber.StatusNotFound:
		return writeError(c, e.Code, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return writeError(c, e.Code, "METHOD_NOT_ALLOWED", "method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return writeError(c, e.Code, "PAYLOAD_TOO_LARGE", "request body too large")
	case fiber.StatusTooManyRequests:
		return writeError(c, e.Code, "RATE_LIMITED", "too many requests")
	case fiber.StatusServiceUnavailable:
		return writeError(c, e.Code, "SERVICE_UNAVAILABLE", "service unavailable")
	default:
		if e.Code >= fiber.StatusBadRequest && e.Code < fiber.StatusInternalServerError {
			return writeError(c, e.Code, "BAD_REQUEST", e.Message)
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses, including errors returned by middleware.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeServiceError(c, err)
	}
}
