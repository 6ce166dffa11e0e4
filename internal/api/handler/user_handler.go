package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/etag"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

// UserHandler handles HTTP requests for the credential store.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// --- Request / Response types ---

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Email    string `json:"email" validate:"required,email,max=60"`
	Password string `json:"password" validate:"required,min=6"`
	// Role is validated by the domain parse so an unknown role reports
	// 400 like any other malformed value, not a 422 field error.
	Role string `json:"role"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=32"`
	Email    *string `json:"email" validate:"omitempty,email,max=60"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role"`
}

type userListResponse struct {
	Users []domain.UserEnvelope `json:"users"`
}

// List handles GET /api/v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Success      304  "Not Modified"
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	body := userListResponse{Users: make([]domain.UserEnvelope, 0, len(users))}
	tags := make([]etag.Tag, 0, len(users))
	for _, u := range users {
		env := domain.UserEnvelope{User: u}
		body.Users = append(body.Users, env)
		tag, err := etag.Fingerprint(env)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	if notModified(c, etag.Collection(tags)) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSON(http.StatusOK, body)
}

// Get handles GET and HEAD /api/v1/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.UserEnvelope
// @Success      304  "Not Modified"
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	env := domain.UserEnvelope{User: user}
	tag, err := etag.Fingerprint(env)
	if err != nil {
		return err
	}
	if notModified(c, tag) {
		return c.NoContent(http.StatusNotModified)
	}
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, env)
}

// Create handles POST /api/v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  domain.UserEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity)
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	env := domain.UserEnvelope{User: user}
	tag, err := etag.Fingerprint(env)
	if err != nil {
		return err
	}
	writeETag(c, tag)
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/v1/users/%d", user.ID))
	return c.JSON(http.StatusCreated, env)
}

// Update handles PUT /api/v1/users/:id. The client must echo the ETag it
// last read in If-Match; 428 without one, 412 when stale.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      int                true  "User id"
// @Param        If-Match  header    string             true  "ETag from the last read"
// @Param        body      body      updateUserRequest  true  "Changed fields"
// @Success      209       {object}  domain.UserEnvelope
// @Failure      404       {object}  errorEnvelope
// @Failure      412       {object}  errorEnvelope
// @Failure      428       {object}  errorEnvelope
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	current, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	currentTag, err := etag.Fingerprint(domain.UserEnvelope{User: current})
	if err != nil {
		return err
	}
	if err := requirePrecondition(c, currentTag); err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity)
	}

	user, err := h.service.Update(c.Request().Context(), id, ports.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	env := domain.UserEnvelope{User: user}
	tag, err := etag.Fingerprint(env)
	if err != nil {
		return err
	}
	writeETag(c, tag)
	return c.JSON(StatusUpdated, env)
}

// Delete handles DELETE /api/v1/users/:id. If-Match is honored when
// present but not required.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  int  true  "User id"
// @Success      204  "No Content"
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	current, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	currentTag, err := etag.Fingerprint(domain.UserEnvelope{User: current})
	if err != nil {
		return err
	}
	if err := optionalPrecondition(c, currentTag); err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Exists handles GET /api/v1/users/username/:username. The probe is
// unauthenticated and answers with status only, never a body.
//
// @Summary      Check whether a username is taken
// @Tags         users
// @Param        username  path  string  true  "Username"
// @Success      204  "Exists"
// @Failure      404  "Unknown"
// @Router       /api/v1/users/username/{username} [get]
func (h *UserHandler) Exists(c echo.Context) error {
	_, err := h.service.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Options advertises the verbs of the collection and unit routes. All
// resource families expose the same verb set.
func Options(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderAllow, "GET, POST, PUT, DELETE, HEAD, OPTIONS")
	return c.NoContent(http.StatusNoContent)
}
