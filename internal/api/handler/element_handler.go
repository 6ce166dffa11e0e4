package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/api/metrics"
	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/etag"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

// ElementHandler handles HTTP requests for one element kind. The same
// handler type serves persons, entities and products; the router binds
// each route group to a kind through the factory methods below.
type ElementHandler struct {
	service ports.ElementService
}

func NewElementHandler(service ports.ElementService) *ElementHandler {
	return &ElementHandler{service: service}
}

// otherKind resolves the trailing membership path segment and checks it
// names one of the owner kind's two counterpart kinds. "persons/3/persons"
// is not a route that can exist, so it resolves to 404.
func otherKind(c echo.Context, owner domain.ElementKind) (domain.ElementKind, error) {
	kind, err := domain.ElementKindFromPlural(c.Param("other"))
	if err != nil || kind == owner {
		return "", echo.NewHTTPError(http.StatusNotFound)
	}
	return kind, nil
}

// List handles GET /api/v1/{kind}.
//
// @Summary      List elements of a kind
// @Tags         elements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Success      304  "Not Modified"
// @Router       /api/v1/persons [get]
func (h *ElementHandler) List(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		details, err := h.service.List(c.Request().Context(), kind)
		if err != nil {
			return err
		}

		items := make([]any, 0, len(details))
		tags := make([]etag.Tag, 0, len(details))
		for _, d := range details {
			env := elementEnvelope(d)
			items = append(items, env)
			tag, err := etag.Fingerprint(env)
			if err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		if notModified(c, etag.Collection(tags)) {
			return c.NoContent(http.StatusNotModified)
		}
		return c.JSON(http.StatusOK, map[string]any{kind.Plural(): items})
	}
}

// Get handles GET and HEAD /api/v1/{kind}/:id.
//
// @Summary      Get an element by id
// @Tags         elements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "Element id"
// @Success      200  {object}  map[string]any
// @Success      304  "Not Modified"
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/persons/{id} [get]
func (h *ElementHandler) Get(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		detail, err := h.service.Get(c.Request().Context(), kind, id)
		if err != nil {
			return err
		}

		env := elementEnvelope(detail)
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
}

// Create handles POST /api/v1/{kind}.
//
// @Summary      Create an element
// @Tags         elements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  createElementRequest  true  "New element"
// @Success      201   {object}  map[string]any
// @Failure      422   {object}  errorEnvelope
// @Router       /api/v1/persons [post]
func (h *ElementHandler) Create(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createElementRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest)
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity)
		}

		detail, err := h.service.Create(c.Request().Context(), kind, ports.CreateElementInput{
			Name:      req.Name,
			BirthDate: req.BirthDate,
			DeathDate: req.DeathDate,
			ImageURL:  req.ImageURL,
			WikiURL:   req.WikiURL,
		})
		if err != nil {
			return err
		}
		metrics.ElementsCreatedTotal.WithLabelValues(string(kind)).Inc()

		env := elementEnvelope(detail)
		tag, err := etag.Fingerprint(env)
		if err != nil {
			return err
		}
		writeETag(c, tag)
		c.Response().Header().Set(echo.HeaderLocation,
			fmt.Sprintf("/api/v1/%s/%d", kind.Plural(), detail.Element.ID))
		return c.JSON(http.StatusCreated, env)
	}
}

// Update handles PUT /api/v1/{kind}/:id under the If-Match protocol.
//
// @Summary      Update an element
// @Tags         elements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path    int                   true  "Element id"
// @Param        If-Match  header  string                true  "ETag from the last read"
// @Param        body      body    updateElementRequest  true  "Changed fields"
// @Success      209  {object}  map[string]any
// @Failure      404  {object}  errorEnvelope
// @Failure      412  {object}  errorEnvelope
// @Failure      428  {object}  errorEnvelope
// @Router       /api/v1/persons/{id} [put]
func (h *ElementHandler) Update(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		current, err := h.service.Get(c.Request().Context(), kind, id)
		if err != nil {
			return err
		}
		currentTag, err := etag.Fingerprint(elementEnvelope(current))
		if err != nil {
			return err
		}
		if err := requirePrecondition(c, currentTag); err != nil {
			return err
		}

		var req updateElementRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest)
		}
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity)
		}

		detail, err := h.service.Update(c.Request().Context(), kind, id, ports.UpdateElementInput{
			Name:      req.Name,
			BirthDate: req.BirthDate,
			DeathDate: req.DeathDate,
			ImageURL:  req.ImageURL,
			WikiURL:   req.WikiURL,
		})
		if err != nil {
			return err
		}

		env := elementEnvelope(detail)
		tag, err := etag.Fingerprint(env)
		if err != nil {
			return err
		}
		writeETag(c, tag)
		return c.JSON(StatusUpdated, env)
	}
}

// Delete handles DELETE /api/v1/{kind}/:id. Removes the element and every
// edge it participates in. If-Match is honored when present.
//
// @Summary      Delete an element
// @Tags         elements
// @Security     BearerAuth
// @Param        id  path  int  true  "Element id"
// @Success      204  "No Content"
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/persons/{id} [delete]
func (h *ElementHandler) Delete(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}

		current, err := h.service.Get(c.Request().Context(), kind, id)
		if err != nil {
			return err
		}
		currentTag, err := etag.Fingerprint(elementEnvelope(current))
		if err != nil {
			return err
		}
		if err := optionalPrecondition(c, currentTag); err != nil {
			return err
		}

		if err := h.service.Delete(c.Request().Context(), kind, id); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// Members handles GET /api/v1/{kind}/:id/:other — the owner's membership
// set for the counterpart kind, in edge insertion order.
//
// @Summary      List an element's related elements of another kind
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Owner id"
// @Success      200  {object}  map[string]any
// @Success      304  "Not Modified"
// @Failure      404  {object}  errorEnvelope
// @Router       /api/v1/persons/{id}/entities [get]
func (h *ElementHandler) Members(kind domain.ElementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		other, err := otherKind(c, kind)
		if err != nil {
			return err
		}

		members, err := h.service.Members(c.Request().Context(), kind, id, other)
		if err != nil {
			return err
		}

		items := make([]any, 0, len(members))
		tags := make([]etag.Tag, 0, len(members))
		for _, m := range members {
			env := memberEnvelope(m)
			items = append(items, env)
			tag, err := etag.Fingerprint(env)
			if err != nil {
				return err
			}
			tags = append(tags, tag)
		}

		if notModified(c, etag.Collection(tags)) {
			return c.NoContent(http.StatusNotModified)
		}
		return c.JSON(http.StatusOK, map[string]any{other.Plural(): items})
	}
}

// Link handles PUT /api/v1/{kind}/:id/:other/add/:otherId. Idempotent:
// re-linking an existing edge still answers 209 with the owner body.
//
// @Summary      Link two elements
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int  true  "Owner id"
// @Param        otherId  path  int  true  "Target id"
// @Success      209  {object}  map[string]any
// @Failure      404  {object}  errorEnvelope
// @Failure      406  {object}  errorEnvelope
// @Router       /api/v1/persons/{id}/entities/add/{otherId} [put]
func (h *ElementHandler) Link(kind domain.ElementKind) echo.HandlerFunc {
	return h.mutateEdge(kind, "link", func(c echo.Context, owner domain.ElementKind, ownerID int64, other domain.ElementKind, otherID int64) (*ports.LinkResult, error) {
		return h.service.Link(c.Request().Context(), owner, ownerID, other, otherID)
	})
}

// Unlink handles PUT /api/v1/{kind}/:id/:other/rem/:otherId. Safe:
// removing an absent edge still answers 209 with the owner body.
//
// @Summary      Unlink two elements
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int  true  "Owner id"
// @Param        otherId  path  int  true  "Target id"
// @Success      209  {object}  map[string]any
// @Failure      404  {object}  errorEnvelope
// @Failure      406  {object}  errorEnvelope
// @Router       /api/v1/persons/{id}/entities/rem/{otherId} [put]
func (h *ElementHandler) Unlink(kind domain.ElementKind) echo.HandlerFunc {
	return h.mutateEdge(kind, "unlink", func(c echo.Context, owner domain.ElementKind, ownerID int64, other domain.ElementKind, otherID int64) (*ports.LinkResult, error) {
		return h.service.Unlink(c.Request().Context(), owner, ownerID, other, otherID)
	})
}

type edgeMutation func(c echo.Context, owner domain.ElementKind, ownerID int64, other domain.ElementKind, otherID int64) (*ports.LinkResult, error)

func (h *ElementHandler) mutateEdge(kind domain.ElementKind, op string, mutate edgeMutation) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		other, err := otherKind(c, kind)
		if err != nil {
			return err
		}
		otherID, err := pathID(c, "otherId")
		if err != nil {
			return err
		}

		result, err := mutate(c, kind, id, other, otherID)
		if err != nil {
			return err
		}
		if result.Changed {
			edge := domain.Relation{AKind: kind, BKind: other}.Normalize()
			pair := string(edge.AKind) + "-" + string(edge.BKind)
			metrics.RelationChangesTotal.WithLabelValues(op, pair).Inc()
		}

		env := elementEnvelope(result.Owner)
		tag, err := etag.Fingerprint(env)
		if err != nil {
			return err
		}
		writeETag(c, tag)
		return c.JSON(StatusUpdated, env)
	}
}
