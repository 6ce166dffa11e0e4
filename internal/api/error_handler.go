package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aciencia/catalog-system/internal/api/handler"
	"github.com/aciencia/catalog-system/internal/core/domain"
)

// statusMessages is the fixed code→text table every error envelope draws
// from. Clients match on the code; the message never varies per request.
var statusMessages = map[int]string{
	handler.StatusUpdated:           "Updated",
	http.StatusBadRequest:           "Bad Request",
	http.StatusUnauthorized:         "Unauthorized",
	http.StatusForbidden:            "Forbidden",
	http.StatusNotFound:             "Not Found",
	http.StatusMethodNotAllowed:     "Method Not Allowed",
	http.StatusNotAcceptable:        "Not Acceptable",
	http.StatusPreconditionFailed:   "Precondition Failed",
	http.StatusUnprocessableEntity:  "Unprocessable Entity",
	http.StatusTooManyRequests:      "Too Many Requests",
	http.StatusPreconditionRequired: "Precondition Required",
	http.StatusInternalServerError:  "Internal Server Error",
}

// StatusMessage returns the canonical message for a status code.
func StatusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}

// errorEnvelope is the canonical error body: {"code": <status>, "message": <table text>}.
type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their deterministic HTTP status codes.
//   - Renders every error with the fixed {code, message} envelope; per-error
//     detail stays in the logs, never in the body.
//   - Logs unexpected errors without leaking internals to the client.
//
// The login endpoint never reaches this handler with its credential
// failures: it renders its own error shape (see handler.LoginHandler).
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := resolveStatus(err, log, c)
		_ = c.JSON(code, errorEnvelope{Code: code, Message: StatusMessage(code)})
	}
}

func resolveStatus(err error, log zerolog.Logger, c echo.Context) int {
	// Echo's own errors (bind failures, 404/405 from the router) and
	// statuses chosen explicitly by middleware and handlers.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}

	// Domain failures → deterministic codes. Missing-vs-forbidden
	// conflation for under-privileged callers happens before this point,
	// in the scope middleware.
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrElementNotFound),
		errors.Is(err, domain.ErrUnpersistedEntity):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRelatedNotFound):
		return http.StatusNotAcceptable
	case errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingUserData),
		errors.Is(err, domain.ErrMissingElementName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPreconditionRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, domain.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrSignatureInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}

	// Unexpected error: log the real cause, return a generic 500.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError
}
