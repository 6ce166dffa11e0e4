package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/aciencia/catalog-system/internal/api/metrics"
	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/etag"
)

// StatusUpdated is the non-standard success code returned by every
// resource update and relationship mutation.
const StatusUpdated = 209

// writeETag attaches the current fingerprint to the response.
func writeETag(c echo.Context, tag etag.Tag) {
	c.Response().Header().Set("ETag", tag.Quote())
}

// notModified evaluates If-None-Match against the current tag. It always
// attaches the ETag header; a true result means the handler should answer
// 304 with no body.
func notModified(c echo.Context, current etag.Tag) bool {
	writeETag(c, current)
	if etag.EvaluateRead(c.Request().Header.Get("If-None-Match"), current) == etag.ReadNotModified {
		metrics.NotModifiedTotal.Inc()
		return true
	}
	return false
}

// requirePrecondition enforces the update protocol: the client must echo
// the tag it last read. No If-Match at all is 428, a stale one is 412;
// either way the stored resource is left untouched.
func requirePrecondition(c echo.Context, current etag.Tag) error {
	switch etag.EvaluatePrecondition(c.Request().Header.Get("If-Match"), current) {
	case etag.WritePreconditionRequired:
		metrics.PreconditionFailuresTotal.WithLabelValues("required").Inc()
		return domain.ErrPreconditionRequired
	case etag.WritePreconditionFailed:
		metrics.PreconditionFailuresTotal.WithLabelValues("failed").Inc()
		return domain.ErrPreconditionFailed
	default:
		return nil
	}
}

// optionalPrecondition honors If-Match when the client supplies one but
// does not demand it. Deletes use this: removing a resource is terminal,
// so there is no lost update to defend against unless the caller opted
// into conditional semantics.
func optionalPrecondition(c echo.Context, current etag.Tag) error {
	header := c.Request().Header.Get("If-Match")
	if header == "" {
		return nil
	}
	if etag.EvaluatePrecondition(header, current) == etag.WritePreconditionFailed {
		metrics.PreconditionFailuresTotal.WithLabelValues("failed").Inc()
		return domain.ErrPreconditionFailed
	}
	return nil
}
