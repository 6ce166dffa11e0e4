package domain

import "time"

// ElementKind identifies one of the three catalog element families.
type ElementKind string

const (
	KindPerson  ElementKind = "person"
	KindEntity  ElementKind = "entity"
	KindProduct ElementKind = "product"
)

// plurals maps each kind to the path segment used on the wire.
var plurals = map[ElementKind]string{
	KindPerson:  "persons",
	KindEntity:  "entities",
	KindProduct: "products",
}

// ElementKindFromPlural resolves a URL path segment ("persons", "entities",
// "products") to its kind.
func ElementKindFromPlural(segment string) (ElementKind, error) {
	for kind, plural := range plurals {
		if plural == segment {
			return kind, nil
		}
	}
	return "", ErrElementNotFound
}

// Plural returns the wire path segment for the kind.
func (k ElementKind) Plural() string {
	return plurals[k]
}

// Others returns the two other kinds, in canonical person < entity < product
// order. Every element holds one membership set per returned kind.
func (k ElementKind) Others() [2]ElementKind {
	switch k {
	case KindPerson:
		return [2]ElementKind{KindEntity, KindProduct}
	case KindEntity:
		return [2]ElementKind{KindPerson, KindProduct}
	default:
		return [2]ElementKind{KindPerson, KindEntity}
	}
}

// Element is a catalog record of any kind. A zero ID marks a transient
// element; transient elements are never valid relationship endpoints.
type Element struct {
	ID        int64       `json:"id"`
	Kind      ElementKind `json:"-"`
	Name      string      `json:"name"`
	BirthDate *time.Time  `json:"birthDate"`
	DeathDate *time.Time  `json:"deathDate"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	WikiURL   string      `json:"wikiUrl,omitempty"`
}

// NewElement builds a transient element of the given kind.
func NewElement(kind ElementKind, name string) *Element {
	return &Element{Kind: kind, Name: name}
}

// Relation is one symmetric edge between two elements of different kinds.
// The edge is jointly owned by both endpoints: removing either endpoint
// removes the edge from the survivor's membership set.
type Relation struct {
	AKind ElementKind
	AID   int64
	BKind ElementKind
	BID   int64
}

// Normalize returns the relation with its endpoints in canonical kind order
// so that (person 1, product 2) and (product 2, person 1) denote the same
// edge.
func (r Relation) Normalize() Relation {
	if kindRank(r.AKind) <= kindRank(r.BKind) {
		return r
	}
	return Relation{AKind: r.BKind, AID: r.BID, BKind: r.AKind, BID: r.AID}
}

func kindRank(k ElementKind) int {
	switch k {
	case KindPerson:
		return 0
	case KindEntity:
		return 1
	default:
		return 2
	}
}
