package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/api/metrics"
	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

// LoginHandler exposes the token-issuance endpoint.
type LoginHandler struct {
	auth ports.AuthService
}

func NewLoginHandler(auth ports.AuthService) *LoginHandler {
	return &LoginHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	// Scope is an optional delimiter-joined list of role tokens, e.g.
	// "reader+writer". Empty requests the subject's full capability set.
	Scope string `json:"scope" form:"scope"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// loginError is the OAuth-style error shape of this endpoint — the one
// surface that does not use the generic {code, message} envelope.
type loginError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Login handles POST /access_token. Accepts form-encoded or JSON bodies.
//
// @Summary      Issue a bearer token
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and optional scope"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  loginError
// @Failure      429   {object}  loginError
// @Router       /access_token [post]
func (h *LoginHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, loginError{
			Error:       "invalid_request",
			Description: "request body could not be parsed",
		})
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password, req.Scope)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTooManyAttempts):
			return c.JSON(http.StatusTooManyRequests, loginError{
				Error:       "too_many_attempts",
				Description: "retry after the lockout window expires",
			})
		case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrNoGrantableScope):
			return c.JSON(http.StatusBadRequest, loginError{
				Error:       "invalid_scope",
				Description: "requested scope cannot be granted",
			})
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, loginError{
				Error:       "invalid_grant",
				Description: "incorrect username or password",
			})
		default:
			return err
		}
	}

	role := domain.RoleReader
	for _, s := range result.Scopes {
		if s == domain.RoleWriter.String() {
			role = domain.RoleWriter
		}
	}
	metrics.TokensIssuedTotal.WithLabelValues(role.String()).Inc()

	// Bearer tokens must never land in shared caches.
	c.Response().Header().Set("Cache-Control", "no-store")
	c.Response().Header().Set("Pragma", "no-cache")
	c.Response().Header().Set(echo.HeaderAuthorization, result.TokenType+" "+result.AccessToken)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}
