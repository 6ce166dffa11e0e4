package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

const elementsCollection = "elements"

// ElementRepository persists all three element kinds in one collection,
// keyed by (kind, id). Ids are allocated per kind, so each kind keeps its
// own dense numeric sequence.
type ElementRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewElementRepository(db *mongo.Database) *ElementRepository {
	return &ElementRepository{db: db, coll: db.Collection(elementsCollection)}
}

type mongoElement struct {
	ID        int64      `bson:"id"`
	Kind      string     `bson:"kind"`
	Name      string     `bson:"name"`
	BirthDate *time.Time `bson:"birth_date,omitempty"`
	DeathDate *time.Time `bson:"death_date,omitempty"`
	ImageURL  string     `bson:"image_url,omitempty"`
	WikiURL   string     `bson:"wiki_url,omitempty"`
}

func toMongoElement(e *domain.Element) mongoElement {
	return mongoElement{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Name:      e.Name,
		BirthDate: e.BirthDate,
		DeathDate: e.DeathDate,
		ImageURL:  e.ImageURL,
		WikiURL:   e.WikiURL,
	}
}

func (me mongoElement) toDomain() *domain.Element {
	return &domain.Element{
		ID:        me.ID,
		Kind:      domain.ElementKind(me.Kind),
		Name:      me.Name,
		BirthDate: me.BirthDate,
		DeathDate: me.DeathDate,
		ImageURL:  me.ImageURL,
		WikiURL:   me.WikiURL,
	}
}

func (r *ElementRepository) Create(ctx context.Context, element *domain.Element) (*domain.Element, error) {
	id, err := nextSequence(ctx, r.db, "elements:"+string(element.Kind))
	if err != nil {
		return nil, err
	}

	doc := toMongoElement(element)
	doc.ID = id
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert element: %w", err)
	}

	created := *element
	created.ID = id
	return &created, nil
}

func (r *ElementRepository) Update(ctx context.Context, element *domain.Element) error {
	filter := bson.M{"kind": string(element.Kind), "id": element.ID}
	res, err := r.coll.ReplaceOne(ctx, filter, toMongoElement(element))
	if err != nil {
		return fmt.Errorf("update element: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrElementNotFound
	}
	return nil
}

func (r *ElementRepository) Delete(ctx context.Context, kind domain.ElementKind, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"kind": string(kind), "id": id})
	if err != nil {
		return fmt.Errorf("delete element: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrElementNotFound
	}
	return nil
}

func (r *ElementRepository) FindByID(ctx context.Context, kind domain.ElementKind, id int64) (*domain.Element, error) {
	var me mongoElement
	err := r.coll.FindOne(ctx, bson.M{"kind": string(kind), "id": id}).Decode(&me)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrElementNotFound
		}
		return nil, fmt.Errorf("find element: %w", err)
	}
	return me.toDomain(), nil
}

// FindByIDs returns the elements for ids, preserving the order of ids.
// Ids with no backing document are skipped.
func (r *ElementRepository) FindByIDs(ctx context.Context, kind domain.ElementKind, ids []int64) ([]*domain.Element, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"kind": string(kind), "id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find elements: %w", err)
	}
	defer cursor.Close(ctx)

	byID := make(map[int64]*domain.Element, len(ids))
	for cursor.Next(ctx) {
		var me mongoElement
		if err := cursor.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode element: %w", err)
		}
		byID[me.ID] = me.toDomain()
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	elements := make([]*domain.Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			elements = append(elements, e)
		}
	}
	return elements, nil
}

func (r *ElementRepository) List(ctx context.Context, kind domain.ElementKind) ([]*domain.Element, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"kind": string(kind)},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer cursor.Close(ctx)

	var elements []*domain.Element
	for cursor.Next(ctx) {
		var me mongoElement
		if err := cursor.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode element: %w", err)
		}
		elements = append(elements, me.toDomain())
	}
	return elements, cursor.Err()
}
