package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

const relationsCollection = "relations"

// RelationRepository stores each symmetric edge as one document in
// canonical endpoint order. Because an edge is a single document, link and
// unlink are single-document writes: both membership sets change together
// or not at all, and a partial failure can never leave a one-sided edge.
type RelationRepository struct {
	coll *mongo.Collection
}

func NewRelationRepository(db *mongo.Database) *RelationRepository {
	return &RelationRepository{coll: db.Collection(relationsCollection)}
}

type mongoRelation struct {
	AKind     string    `bson:"a_kind"`
	AID       int64     `bson:"a_id"`
	BKind     string    `bson:"b_kind"`
	BID       int64     `bson:"b_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func edgeFilter(rel domain.Relation) bson.M {
	return bson.M{
		"a_kind": string(rel.AKind), "a_id": rel.AID,
		"b_kind": string(rel.BKind), "b_id": rel.BID,
	}
}

func (r *RelationRepository) Link(ctx context.Context, rel domain.Relation) (bool, error) {
	rel = rel.Normalize()
	doc := mongoRelation{
		AKind: string(rel.AKind), AID: rel.AID,
		BKind: string(rel.BKind), BID: rel.BID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Idempotent re-link: the edge already exists.
			return false, nil
		}
		return false, fmt.Errorf("link: %w", err)
	}
	return true, nil
}

func (r *RelationRepository) Unlink(ctx context.Context, rel domain.Relation) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, edgeFilter(rel.Normalize()))
	if err != nil {
		return false, fmt.Errorf("unlink: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// Members returns ownerID's members of kind otherKind in edge insertion
// order (documents sorted by _id, which is monotonic per insertion).
func (r *RelationRepository) Members(ctx context.Context, ownerKind domain.ElementKind, ownerID int64, otherKind domain.ElementKind) ([]int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"a_kind": string(ownerKind), "a_id": ownerID, "b_kind": string(otherKind)},
		bson.M{"b_kind": string(ownerKind), "b_id": ownerID, "a_kind": string(otherKind)},
	}}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []int64
	for cursor.Next(ctx) {
		var mr mongoRelation
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode relation: %w", err)
		}
		if mr.AKind == string(ownerKind) && mr.AID == ownerID {
			ids = append(ids, mr.BID)
		} else {
			ids = append(ids, mr.AID)
		}
	}
	return ids, cursor.Err()
}

func (r *RelationRepository) DeleteFor(ctx context.Context, kind domain.ElementKind, id int64) error {
	filter := bson.M{"$or": bson.A{
		bson.M{"a_kind": string(kind), "a_id": id},
		bson.M{"b_kind": string(kind), "b_id": id},
	}}
	if _, err := r.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete relations: %w", err)
	}
	return nil
}
