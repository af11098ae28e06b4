package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/sangam/internal/apperr"
	"github.com/erazemk/sangam/internal/ordering"
)

// orderColl implements ordering.Repository over a collection whose documents
// carry an "order" field within a scope field. parent is nil when every
// non-empty scope key is valid.
type orderColl struct {
	noun   string
	coll   *mongo.Collection
	scope  string
	parent *mongo.Collection
	locks  *mongo.Collection
}

var _ ordering.Repository = orderColl{}

type positionDoc struct {
	ID     string `bson:"_id"`
	Parent string `bson:"parent"`
	Order  int    `bson:"order"`
}

// lock bumps a per-scope document. Two transactions reordering the same scope
// both write it, so one of them hits a write conflict and is retried instead
// of committing a duplicate order.
func (r orderColl) lock(ctx context.Context, parentID string) error {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": r.coll.Name() + ":" + parentID},
		bson.M{"$inc": bson.M{"version": int64(1)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("locking %s scope %s: %w", r.noun, parentID, err)
	}
	return nil
}

func (r orderColl) positions(ctx context.Context, filter bson.M) ([]ordering.Position, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$project", Value: bson.M{"_id": 1, "order": 1, "parent": "$" + r.scope}}},
		{{Key: "$sort", Value: bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var docs []positionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]ordering.Position, len(docs))
	for i, d := range docs {
		out[i] = ordering.Position{ID: d.ID, ParentID: d.Parent, Order: d.Order}
	}
	return out, nil
}

func (r orderColl) CountInScope(ctx context.Context, parentID string) (int, error) {
	if err := r.lock(ctx, parentID); err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{r.scope: parentID})
	if err != nil {
		return 0, fmt.Errorf("counting %ss: %w", r.noun, err)
	}
	return int(n), nil
}

func (r orderColl) ListInScope(ctx context.Context, parentID string) ([]ordering.Position, error) {
	if err := r.lock(ctx, parentID); err != nil {
		return nil, err
	}
	items, err := r.positions(ctx, bson.M{r.scope: parentID})
	if err != nil {
		return nil, fmt.Errorf("listing %s positions: %w", r.noun, err)
	}
	return items, nil
}

func (r orderColl) GetPosition(ctx context.Context, id string) (ordering.Position, error) {
	items, err := r.positions(ctx, bson.M{"_id": id})
	if err != nil {
		return ordering.Position{}, fmt.Errorf("getting %s position: %w", r.noun, err)
	}
	if len(items) == 0 {
		return ordering.Position{}, apperr.NotFound("%s %s", r.noun, id)
	}
	return items[0], nil
}

func (r orderColl) SaveOrder(ctx context.Context, id string, order int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"order": order, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("saving %s order: %w", r.noun, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("%s %s", r.noun, id)
	}
	return nil
}

// SaveOrderBatch writes all given orders in one unordered bulk write.
func (r orderColl) SaveOrderBatch(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(orders))
	for id, order := range orders {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": order, "updated_at": now}}))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("saving %s orders: %w", r.noun, err)
	}
	if int(res.MatchedCount) != len(orders) {
		return apperr.NotFound("%d of %d %ss", len(orders)-int(res.MatchedCount), len(orders), r.noun)
	}
	return nil
}

func (r orderColl) SetParent(ctx context.Context, id, parentID string, order int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{r.scope: parentID, "order": order, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("moving %s: %w", r.noun, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("%s %s", r.noun, id)
	}
	return nil
}

func (r orderColl) ScopeExists(ctx context.Context, parentID string) (bool, error) {
	if parentID == "" {
		return false, nil
	}
	if r.parent == nil {
		return true, nil
	}
	err := r.parent.FindOne(ctx, bson.M{"_id": parentID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", r.parent.Name(), err)
	}
	return true, nil
}
