package handler

import (
	"time"

	"github.com/aciencia/catalog-system/internal/core/domain"
	"github.com/aciencia/catalog-system/internal/core/ports"
)

// --- Request types ---

type createElementRequest struct {
	Name      string     `json:"name" validate:"required"`
	BirthDate *time.Time `json:"birthDate"`
	DeathDate *time.Time `json:"deathDate"`
	ImageURL  string     `json:"imageUrl" validate:"omitempty,url"`
	WikiURL   string     `json:"wikiUrl" validate:"omitempty,url"`
}

type updateElementRequest struct {
	Name      *string    `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	DeathDate *time.Time `json:"deathDate"`
	ImageURL  *string    `json:"imageUrl" validate:"omitempty,url"`
	WikiURL   *string    `json:"wikiUrl" validate:"omitempty,url"`
}

// --- Response views ---
//
// Every unit representation embeds the two relation id lists, so the
// element's fingerprint changes whenever its edge set does. The list for
// the element's own kind never appears.

type personView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	DeathDate *time.Time `json:"deathDate"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	WikiURL   string     `json:"wikiUrl,omitempty"`
	Entities  []int64    `json:"entities"`
	Products  []int64    `json:"products"`
}

type entityView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	DeathDate *time.Time `json:"deathDate"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	WikiURL   string     `json:"wikiUrl,omitempty"`
	Persons   []int64    `json:"persons"`
	Products  []int64    `json:"products"`
}

type productView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	DeathDate *time.Time `json:"deathDate"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	WikiURL   string     `json:"wikiUrl,omitempty"`
	Persons   []int64    `json:"persons"`
	Entities  []int64    `json:"entities"`
}

type personEnvelope struct {
	Person personView `json:"person"`
}

type entityEnvelope struct {
	Entity entityView `json:"entity"`
}

type productEnvelope struct {
	Product productView `json:"product"`
}

// relationIDs returns the detail's id list for the given kind, normalized
// to an empty (never nil) slice so it serializes as [].
func relationIDs(d *ports.ElementDetail, kind domain.ElementKind) []int64 {
	ids := d.Relations[kind]
	if ids == nil {
		return []int64{}
	}
	return ids
}

// elementEnvelope maps an element detail to its kind-tagged wire envelope.
func elementEnvelope(d *ports.ElementDetail) any {
	e := d.Element
	switch e.Kind {
	case domain.KindPerson:
		return personEnvelope{Person: personView{
			ID:        e.ID,
			Name:      e.Name,
			BirthDate: e.BirthDate,
			DeathDate: e.DeathDate,
			ImageURL:  e.ImageURL,
			WikiURL:   e.WikiURL,
			Entities:  relationIDs(d, domain.KindEntity),
			Products:  relationIDs(d, domain.KindProduct),
		}}
	case domain.KindEntity:
		return entityEnvelope{Entity: entityView{
			ID:        e.ID,
			Name:      e.Name,
			BirthDate: e.BirthDate,
			DeathDate: e.DeathDate,
			ImageURL:  e.ImageURL,
			WikiURL:   e.WikiURL,
			Persons:   relationIDs(d, domain.KindPerson),
			Products:  relationIDs(d, domain.KindProduct),
		}}
	default:
		return productEnvelope{Product: productView{
			ID:        e.ID,
			Name:      e.Name,
			BirthDate: e.BirthDate,
			DeathDate: e.DeathDate,
			ImageURL:  e.ImageURL,
			WikiURL:   e.WikiURL,
			Persons:   relationIDs(d, domain.KindPerson),
			Entities:  relationIDs(d, domain.KindEntity),
		}}
	}
}

// memberEnvelope wraps a bare element (no relation lists) under its kind
// key, the item shape of membership listings.
func memberEnvelope(e *domain.Element) map[string]*domain.Element {
	return map[string]*domain.Element{string(e.Kind): e}
}
