package ports

import (
	"context"
	"time"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

// CreateElementInput carries the data for a new catalog element.
type CreateElementInput struct {
	Name      string
	BirthDate *time.Time
	DeathDate *time.Time
	ImageURL  string
	WikiURL   string
}

// UpdateElementInput carries the mutable element fields. Nil pointers leave
// the field unchanged.
type UpdateElementInput struct {
	Name      *string
	BirthDate *time.Time
	DeathDate *time.Time
	ImageURL  *string
	WikiURL   *string
}

// ElementDetail is an element together with its two relation id lists,
// keyed by the other kinds. This is the unit resource representation the
// transport layer serializes and fingerprints.
type ElementDetail struct {
	Element   *domain.Element
	Relations map[domain.ElementKind][]int64
}

// LinkResult reports a relationship mutation: the updated owner detail and
// whether the edge set actually changed (idempotent re-link and unlink of
// an absent edge report Changed=false).
type LinkResult struct {
	Owner   *ElementDetail
	Changed bool
}

// ElementService defines the catalog use cases for one element kind plus
// the symmetric relationship operations between kinds.
type ElementService interface {
	Create(ctx context.Context, kind domain.ElementKind, input CreateElementInput) (*ElementDetail, error)
	Update(ctx context.Context, kind domain.ElementKind, id int64, input UpdateElementInput) (*ElementDetail, error)
	Delete(ctx context.Context, kind domain.ElementKind, id int64) error
	Get(ctx context.Context, kind domain.ElementKind, id int64) (*ElementDetail, error)
	List(ctx context.Context, kind domain.ElementKind) ([]*ElementDetail, error)

	// Link and Unlink mutate the symmetric edge between owner and other.
	// Unknown owner yields domain.ErrElementNotFound; unknown other yields
	// domain.ErrRelatedNotFound.
	Link(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind, otherID int64) (*LinkResult, error)
	Unlink(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind, otherID int64) (*LinkResult, error)
	// Members returns the owner's membership set for otherKind as full
	// elements, in edge insertion order.
	Members(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind) ([]*domain.Element, error)
}
