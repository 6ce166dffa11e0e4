package ports

import (
	"context"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

// ElementRepository defines persistence for catalog elements of any kind.
type ElementRepository interface {
	// Create persists a transient element and returns it with its assigned id.
	Create(ctx context.Context, element *domain.Element) (*domain.Element, error)
	Update(ctx context.Context, element *domain.Element) error
	Delete(ctx context.Context, kind domain.ElementKind, id int64) error
	FindByID(ctx context.Context, kind domain.ElementKind, id int64) (*domain.Element, error)
	FindByIDs(ctx context.Context, kind domain.ElementKind, ids []int64) ([]*domain.Element, error)
	// List returns all elements of one kind ordered by id.
	List(ctx context.Context, kind domain.ElementKind) ([]*domain.Element, error)
}

// RelationRepository maintains the symmetric edge set between elements.
// Each edge is stored once (in canonical endpoint order), so a single
// link or unlink is one atomic persistence operation: both membership
// sets change together or not at all.
type RelationRepository interface {
	// Link records an edge. Returns false without error when the edge
	// already exists.
	Link(ctx context.Context, rel domain.Relation) (bool, error)
	// Unlink removes an edge. Returns false without error when the edge
	// was absent.
	Unlink(ctx context.Context, rel domain.Relation) (bool, error)
	// Members returns the ids of ownerID's members of kind otherKind, in
	// edge insertion order.
	Members(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind) ([]int64, error)
	// DeleteFor removes every edge touching the given element. Called when
	// the element itself is deleted, so the surviving endpoints drop it
	// from their sets.
	DeleteFor(ctx context.Context, kind domain.ElementKind, id int64) error
}
