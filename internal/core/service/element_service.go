package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

type elementService struct {
	elements  ports.ElementRepository
	relations ports.RelationRepository
	log       zerolog.Logger
}

// NewElementService returns the catalog use cases for all three element
// kinds, including the symmetric relationship operations between them.
func NewElementService(elements ports.ElementRepository, relations ports.RelationRepository, log zerolog.Logger) ports.ElementService {
	return &elementService{elements: elements, relations: relations, log: log}
}

func (s *elementService) Create(ctx context.Context, kind domain.ElementKind, in ports.CreateElementInput) (*ports.ElementDetail, error) {
	if in.Name == "" {
		return nil, domain.ErrMissingElementName
	}
	element := domain.NewElement(kind, in.Name)
	element.BirthDate = in.BirthDate
	element.DeathDate = in.DeathDate
	element.ImageURL = in.ImageURL
	element.WikiURL = in.WikiURL

	created, err := s.elements.Create(ctx, element)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("kind", string(kind)).Int64("id", created.ID).Msg("element created")
	return s.detail(ctx, created)
}

func (s *elementService) Update(ctx context.Context, kind domain.ElementKind, id int64, in ports.UpdateElementInput) (*ports.ElementDetail, error) {
	element, err := s.elements.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrMissingElementName
		}
		element.Name = *in.Name
	}
	if in.BirthDate != nil {
		element.BirthDate = in.BirthDate
	}
	if in.DeathDate != nil {
		element.DeathDate = in.DeathDate
	}
	if in.ImageURL != nil {
		element.ImageURL = *in.ImageURL
	}
	if in.WikiURL != nil {
		element.WikiURL = *in.WikiURL
	}

	if err := s.elements.Update(ctx, element); err != nil {
		return nil, err
	}
	return s.detail(ctx, element)
}

// Delete removes the element and every edge touching it, so surviving
// endpoints drop it from their membership sets.
func (s *elementService) Delete(ctx context.Context, kind domain.ElementKind, id int64) error {
	if _, err := s.elements.FindByID(ctx, kind, id); err != nil {
		return err
	}
	if err := s.relations.DeleteFor(ctx, kind, id); err != nil {
		return err
	}
	if err := s.elements.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.log.Info().Str("kind", string(kind)).Int64("id", id).Msg("element deleted")
	return nil
}

func (s *elementService) Get(ctx context.Context, kind domain.ElementKind, id int64) (*ports.ElementDetail, error) {
	element, err := s.elements.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, element)
}

func (s *elementService) List(ctx context.Context, kind domain.ElementKind) ([]*ports.ElementDetail, error) {
	elements, err := s.elements.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	details := make([]*ports.ElementDetail, 0, len(elements))
	for _, element := range elements {
		d, err := s.detail(ctx, element)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *elementService) Link(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind, otherID int64) (*ports.LinkResult, error) {
	owner, other, err := s.endpoints(ctx, ownerKind, ownerID, otherKind, otherID)
	if err != nil {
		return nil, err
	}

	rel := domain.Relation{AKind: owner.Kind, AID: owner.ID, BKind: other.Kind, BID: other.ID}.Normalize()
	changed, err := s.relations.Link(ctx, rel)
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Info().
			Str("owner", string(ownerKind)).Int64("owner_id", ownerID).
			Str("other", string(otherKind)).Int64("other_id", otherID).
			Msg("elements linked")
	}

	detail, err := s.detail(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &ports.LinkResult{Owner: detail, Changed: changed}, nil
}

func (s *elementService) Unlink(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind, otherID int64) (*ports.LinkResult, error) {
	owner, other, err := s.endpoints(ctx, ownerKind, ownerID, otherKind, otherID)
	if err != nil {
		return nil, err
	}

	rel := domain.Relation{AKind: owner.Kind, AID: owner.ID, BKind: other.Kind, BID: other.ID}.Normalize()
	changed, err := s.relations.Unlink(ctx, rel)
	if err != nil {
		return nil, err
	}
	if changed {
		s.log.Info().
			Str("owner", string(ownerKind)).Int64("owner_id", ownerID).
			Str("other", string(otherKind)).Int64("other_id", otherID).
			Msg("elements unlinked")
	}

	detail, err := s.detail(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &ports.LinkResult{Owner: detail, Changed: changed}, nil
}

func (s *elementService) Members(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind) ([]*domain.Element, error) {
	if _, err := s.elements.FindByID(ctx, ownerKind, ownerID); err != nil {
		return nil, err
	}
	ids, err := s.relations.Members(ctx, ownerKind, ownerID, otherKind)
	if err != nil {
		return nil, err
	}
	return s.elements.FindByIDs(ctx, otherKind, ids)
}

// endpoints resolves both edge endpoints, enforcing the relationship
// invariants: transient ids are never valid endpoints, a missing owner is
// ErrElementNotFound and a missing target is ErrRelatedNotFound.
func (s *elementService) endpoints(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind, otherID int64) (*domain.Element, *domain.Element, error) {
	if ownerID == 0 || otherID == 0 {
		return nil, nil, domain.ErrUnpersistedEntity
	}
	owner, err := s.elements.FindByID(ctx, ownerKind, ownerID)
	if err != nil {
		return nil, nil, err
	}
	other, err := s.elements.FindByID(ctx, otherKind, otherID)
	if err != nil {
		if errors.Is(err, domain.ErrElementNotFound) {
			return nil, nil, domain.ErrRelatedNotFound
		}
		return nil, nil, err
	}
	return owner, other, nil
}

// detail assembles the unit resource representation: the element plus its
// two membership id lists in edge insertion order.
func (s *elementService) detail(ctx context.Context, element *domain.Element) (*ports.ElementDetail, error) {
	relations := make(map[domain.ElementKind][]int64, 2)
	for _, other := range element.Kind.Others() {
		ids, err := s.relations.Members(ctx, element.Kind, element.ID, other)
		if err != nil {
			return nil, err
		}
		relations[other] = ids
	}
	return &ports.ElementDetail{Element: element, Relations: relations}, nil
}
