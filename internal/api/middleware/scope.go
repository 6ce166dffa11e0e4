package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/service"
)

// RequireScope is the authorization gate: the authenticated token must
// carry the required scope.
//
// Disclosure policy for insufficient scope — one consistent precedence on
// every guarded route: a collection-scoped request (no resource id in the
// path) is refused with 403, while a resource-scoped request is refused
// with 404 so an under-privileged caller can never confirm that a given
// resource id exists.
func RequireScope(required domain.Role) echo.MiddlewareFunc {
	return requireScope(required, false)
}

// RequireScopeOnResource behaves like RequireScope but applies the
// resource-scoped disclosure rule (404 instead of 403).
func RequireScopeOnResource(required domain.Role) echo.MiddlewareFunc {
	return requireScope(required, true)
}

func requireScope(required domain.Role, resourceScoped bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*service.Claims)
			if !ok {
				// Auth middleware did not run; treat as unauthenticated.
				return echo.NewHTTPError(http.StatusUnauthorized)
			}
			if !claims.HasScope(required) {
				if resourceScoped {
					return echo.NewHTTPError(http.StatusNotFound)
				}
				return echo.NewHTTPError(http.StatusForbidden)
			}
			return next(c)
		}
	}
}
