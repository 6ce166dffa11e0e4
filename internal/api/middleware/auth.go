package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/api/metrics"
	"github.com/aciencia/catalog-system/internal/core/service"
)

// Context keys set by Auth for downstream middleware and handlers.
const (
	ContextKeyClaims  = "auth_claims"
	ContextKeySubject = "auth_subject"
)

// TokenParser validates a raw bearer token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*service.Claims, error)
}

// Auth is the authentication gate: it extracts the bearer token from the
// Authorization header, validates it through the token service and injects
// the claims into the request context. Missing credentials and invalid,
// expired or tampered tokens all produce the same 401 — the client never
// learns which.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthFailuresTotal.WithLabelValues("scheme").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized)
			}

			claims, err := parser.Parse(parts[1])
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized)
			}

			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeySubject, claims.Subject)
			return next(c)
		}
	}
}
